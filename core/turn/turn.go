// Package turn implements the agent turn loop: the state machine that
// drives one user request through however many model-call/tool-call
// round trips it takes to reach a terminal state. It is built as an
// explicit state enum switch inside a for loop, not as nested
// callbacks, so interruption and error handling have one obvious place
// to live.
package turn

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tallesborges/zdx/core/cost"
	"github.com/tallesborges/zdx/core/fanout"
	"github.com/tallesborges/zdx/core/overview"
	"github.com/tallesborges/zdx/core/thread"
	"github.com/tallesborges/zdx/internal/toolrun"
	"github.com/tallesborges/zdx/providers/ai"
	"github.com/tallesborges/zdx/providers/tool"
)

// State names a position in the turn state machine.
type State string

const (
	StateIdle         State = "idle"
	StateWaiting      State = "waiting"       // request sent, awaiting first byte
	StateStreaming    State = "streaming"      // consuming model output
	StateToolExecuting State = "tool_executing" // running dispatched tool calls
	StateCompleted    State = "completed"
	StateInterrupted  State = "interrupted"
	StateErrored      State = "errored"
)

// maxRoundTrips bounds the tool-call loop so a misbehaving model/tool
// pair that always requests another call cannot run forever.
const maxRoundTrips = 64

// Runner drives a single turn: one user message through as many
// model/tool round trips as the model requests, against one thread log
// and one fanout.
type Runner struct {
	Provider     ai.Provider
	Catalog      *tool.Catalog
	Log          *thread.Log
	Fanout       *fanout.Fanout
	Model        string
	SystemPrompt string

	// ModelCost prices the configured Model's tokens so Outcome.Cost can
	// report what the turn cost. The zero value prices everything at $0,
	// which is correct for models the catalog has no pricing entry for.
	ModelCost cost.ModelCost
}

// Outcome summarizes how a turn ended.
type Outcome struct {
	State State
	Usage ai.Usage
	Cost  cost.CostSummary
	Err   error
}

// Run executes the turn loop for a new userText message, appending
// every event to the thread log and publishing every stream event to
// the fanout as it arrives. ctx cancellation moves the turn to
// StateInterrupted at the next safe checkpoint (between a stream
// completing and the next tool dispatch, or between tool calls) rather
// than mid-network-call. Request/response history, token usage, and
// pricing are accumulated in an [overview.Overview] carried on ctx,
// surfaced to the caller as Outcome.Cost.
func (r *Runner) Run(ctx context.Context, userText string) Outcome {
	ov := overview.OverviewFromContext(&ctx)
	ov.SetModelCost(&r.ModelCost)
	ov.StartExecution()
	defer ov.EndExecution()

	outcome := r.run(ctx, userText)
	outcome.Cost = ov.CostSummary()
	return outcome
}

func (r *Runner) run(ctx context.Context, userText string) Outcome {
	if err := r.Log.Append(thread.MessageEvent("user", userText)); err != nil {
		return Outcome{State: StateErrored, Err: fmt.Errorf("turn: persisting user message: %w", err)}
	}

	ov := overview.OverviewFromContext(&ctx)
	dispatcher := toolrun.New(r.Catalog)
	var totalUsage ai.Usage

	for round := 0; round < maxRoundTrips; round++ {
		select {
		case <-ctx.Done():
			r.Log.Append(thread.InterruptedEvent())
			return Outcome{State: StateInterrupted, Usage: totalUsage, Err: ctx.Err()}
		default:
		}

		events, err := r.Log.ReadEvents()
		if err != nil {
			return Outcome{State: StateErrored, Usage: totalUsage, Err: fmt.Errorf("turn: reading thread log: %w", err)}
		}

		request := ai.ChatRequest{
			Model:        r.Model,
			Messages:     thread.ToMessages(events),
			SystemPrompt: r.SystemPrompt,
			Tools:        toolDescriptions(r.Catalog),
		}
		ov.AddRequest(&request)

		response, usage, err := r.streamOne(ctx, request)
		totalUsage = addUsage(totalUsage, usage)
		ov.IncludeUsage(&usage)
		if usage != (ai.Usage{}) {
			// Persisted even on error/interrupt below: the tokens this
			// request already consumed are billed regardless of how the
			// stream ended.
			r.Log.Append(thread.UsageEvent(usage))
		}
		if err != nil {
			if ctx.Err() != nil {
				r.Log.Append(thread.InterruptedEvent())
				return Outcome{State: StateInterrupted, Usage: totalUsage, Err: ctx.Err()}
			}
			return Outcome{State: StateErrored, Usage: totalUsage, Err: err}
		}
		ov.AddResponse(response)

		if response.Content != "" {
			if err := r.Log.Append(thread.MessageEvent("assistant", response.Content)); err != nil {
				return Outcome{State: StateErrored, Usage: totalUsage, Err: err}
			}
		}

		if len(response.ToolCalls) == 0 {
			return Outcome{State: StateCompleted, Usage: totalUsage}
		}

		ov.AddToolCalls(response.ToolCalls)
		for _, call := range response.ToolCalls {
			r.Log.Append(thread.ToolUseEvent(call.ID, call.Function.Name, json.RawMessage(call.Function.Arguments)))
		}

		results := dispatcher.Dispatch(ctx, response.ToolCalls)
		for _, res := range results {
			r.Log.Append(thread.ToolResultEvent(res.Call.ID, json.RawMessage(res.Output.JSON()), res.Output.Ok))
		}

		if ctx.Err() != nil {
			r.Log.Append(thread.InterruptedEvent())
			return Outcome{State: StateInterrupted, Usage: totalUsage, Err: ctx.Err()}
		}
	}

	return Outcome{State: StateErrored, Usage: totalUsage, Err: fmt.Errorf("turn: exceeded %d tool round trips without completing", maxRoundTrips)}
}

// streamOne issues a single model request and consumes its stream (or
// falls back to a synchronous call for providers that don't implement
// ai.StreamProvider), publishing each event to the fanout and returning
// the accumulated response.
func (r *Runner) streamOne(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, ai.Usage, error) {
	var stream *ai.ChatStream

	if sp, ok := r.Provider.(ai.StreamProvider); ok {
		s, err := sp.StreamMessage(ctx, request)
		if err != nil {
			return nil, ai.Usage{}, err
		}
		stream = s
	} else {
		resp, err := r.Provider.SendMessage(ctx, request)
		if err != nil {
			return nil, ai.Usage{}, err
		}
		stream = ai.NewSingleEventStream(resp)
	}

	accumulated := &ai.ChatResponse{}
	var usage ai.Usage
	var toolCalls []ai.ToolCall

	for event, err := range stream.Iter() {
		if err != nil {
			return nil, usage, err
		}
		if r.Fanout != nil {
			r.Fanout.Publish(event)
		}
		switch event.Type {
		case ai.StreamEventContent:
			accumulated.Content += event.Content
		case ai.StreamEventToolCall:
			toolCalls = appendToolCallDelta(toolCalls, event.ToolCall)
		case ai.StreamEventUsage:
			if event.Usage != nil {
				usage = *event.Usage
			}
		case ai.StreamEventDone:
			accumulated.FinishReason = event.FinishReason
		}
		if ctx.Err() != nil {
			break
		}
	}

	accumulated.ToolCalls = toolCalls
	return accumulated, usage, nil
}

// appendToolCallDelta folds a ToolCallDelta into a flat ToolCall slice,
// growing it as new indices appear and concatenating argument
// fragments for a given index — the same accumulation ai.ChatStream.Collect
// performs internally, reused here because streamOne needs fanout
// publication interleaved with accumulation.
func appendToolCallDelta(calls []ai.ToolCall, delta *ai.ToolCallDelta) []ai.ToolCall {
	if delta == nil {
		return calls
	}
	for len(calls) <= delta.Index {
		calls = append(calls, ai.ToolCall{Type: "function"})
	}
	call := &calls[delta.Index]
	if delta.ID != "" {
		call.ID = delta.ID
	}
	if delta.Name != "" {
		call.Function.Name = delta.Name
	}
	if delta.Arguments != "" {
		call.Function.Arguments += delta.Arguments
	}
	return calls
}

func addUsage(a, b ai.Usage) ai.Usage {
	return ai.Usage{
		PromptTokens:     a.PromptTokens + b.PromptTokens,
		CompletionTokens: a.CompletionTokens + b.CompletionTokens,
		TotalTokens:      a.TotalTokens + b.TotalTokens,
		ReasoningTokens:  a.ReasoningTokens + b.ReasoningTokens,
		CachedTokens:     a.CachedTokens + b.CachedTokens,
	}
}

func toolDescriptions(catalog *tool.Catalog) []ai.ToolDescription {
	if catalog == nil {
		return nil
	}
	tools := catalog.Tools()
	descs := make([]ai.ToolDescription, 0, len(tools))
	for _, t := range tools {
		descs = append(descs, t.ToolInfo())
	}
	return descs
}
