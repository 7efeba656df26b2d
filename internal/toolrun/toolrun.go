// Package toolrun executes the tool calls a model requests during an
// agent turn. Calls are dispatched strictly sequentially, in the order
// the model emitted them, against a shared cancellation context so an
// interrupt stops dispatch before the next call starts rather than
// mid-call.
package toolrun

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tallesborges/zdx/core/parse"
	"github.com/tallesborges/zdx/core/toolenv"
	"github.com/tallesborges/zdx/providers/ai"
	"github.com/tallesborges/zdx/providers/tool"
)

// Dispatcher executes tool calls against a catalog.
type Dispatcher struct {
	catalog *tool.Catalog
}

// New builds a Dispatcher backed by catalog.
func New(catalog *tool.Catalog) *Dispatcher {
	return &Dispatcher{catalog: catalog}
}

// Result pairs a requested tool call with the envelope its execution
// produced, so the turn loop can build the corresponding tool-result
// message.
type Result struct {
	Call   ai.ToolCall
	Output toolenv.Output
}

// Dispatch executes calls in order, stopping early if ctx is canceled.
// A tool that panics or errors never aborts the batch: its failure is
// captured as a Failure envelope and dispatch continues to the next
// call, matching the provider contract that every requested tool call
// must receive a corresponding tool-result message.
func (d *Dispatcher) Dispatch(ctx context.Context, calls []ai.ToolCall) []Result {
	results := make([]Result, 0, len(calls))

	for _, call := range calls {
		select {
		case <-ctx.Done():
			results = append(results, Result{Call: call, Output: toolenv.Failure(toolenv.CodeInterrupted, "turn was interrupted before this tool call ran")})
			continue
		default:
		}

		results = append(results, Result{Call: call, Output: d.dispatchOne(ctx, call)})
	}

	return results
}

func (d *Dispatcher) dispatchOne(ctx context.Context, call ai.ToolCall) (output toolenv.Output) {
	defer func() {
		if r := recover(); r != nil {
			output = toolenv.Failure(toolenv.CodeInternal, fmt.Sprintf("tool %q panicked: %v", call.Function.Name, r))
		}
	}()

	t, ok := d.catalog.Get(call.Function.Name)
	if !ok {
		return toolenv.Failure(toolenv.CodeNotFound, fmt.Sprintf("unknown tool %q", call.Function.Name))
	}

	arguments := call.Function.Arguments
	if !json.Valid([]byte(arguments)) {
		// Models occasionally emit near-miss JSON (trailing commas, single
		// quotes, unquoted keys); repair it before giving up on the call.
		repaired, err := parse.ParseStringAs[map[string]any](arguments)
		if err != nil {
			return toolenv.Failure(toolenv.CodeInvalidInput, fmt.Sprintf("tool %q received malformed JSON arguments: %v", call.Function.Name, err))
		}
		fixed, err := json.Marshal(repaired)
		if err != nil {
			return toolenv.Failure(toolenv.CodeInvalidInput, fmt.Sprintf("tool %q received malformed JSON arguments", call.Function.Name))
		}
		arguments = string(fixed)
	}

	raw, err := t.Call(arguments)
	if err != nil {
		return toolenv.Failure(toolenv.CodeInternal, err.Error())
	}

	var data json.RawMessage
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		// The tool returned a bare scalar or malformed JSON; wrap it as a string
		// rather than fail the whole call over an encoding mismatch.
		return toolenv.Success(raw)
	}
	return toolenv.Output{Ok: true, Data: data}
}
