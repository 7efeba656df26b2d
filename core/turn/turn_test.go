package turn

import (
	"context"
	"net/http"
	"testing"

	"github.com/tallesborges/zdx/core/cost"
	"github.com/tallesborges/zdx/core/thread"
	"github.com/tallesborges/zdx/providers/ai"
	"github.com/tallesborges/zdx/providers/tool"
)

// mockProvider is a minimal ai.Provider that returns a scripted sequence
// of responses, one per call, to drive the tool-call round-trip loop.
type mockProvider struct {
	responses []*ai.ChatResponse
	calls     int
}

func (m *mockProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	resp := m.responses[m.calls]
	m.calls++
	return resp, nil
}
func (m *mockProvider) IsStopMessage(*ai.ChatResponse) bool             { return true }
func (m *mockProvider) WithAPIKey(string) ai.Provider                   { return m }
func (m *mockProvider) WithBaseURL(string) ai.Provider                  { return m }
func (m *mockProvider) WithHttpClient(*http.Client) ai.Provider         { return m }

func newTestEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
}

func mustRunner(t *testing.T, provider ai.Provider) *Runner {
	return mustRunnerWithCatalog(t, provider, tool.NewCatalog())
}

func mustRunnerWithCatalog(t *testing.T, provider ai.Provider, catalog *tool.Catalog) *Runner {
	t.Helper()
	log, err := thread.New()
	if err != nil {
		t.Fatalf("thread.New: %v", err)
	}
	return &Runner{Provider: provider, Catalog: catalog, Log: log, Model: "test-model"}
}

func TestRun_CompletesWithoutToolCalls(t *testing.T) {
	newTestEnv(t)
	provider := &mockProvider{responses: []*ai.ChatResponse{
		{Content: "hello there", FinishReason: "stop"},
	}}

	runner := mustRunner(t, provider)
	outcome := runner.Run(context.Background(), "hi")

	if outcome.State != StateCompleted {
		t.Fatalf("expected StateCompleted, got %+v", outcome)
	}
}

func TestRun_DispatchesToolCallsAndLoopsUntilDone(t *testing.T) {
	newTestEnv(t)
	provider := &mockProvider{responses: []*ai.ChatResponse{
		{
			ToolCalls: []ai.ToolCall{{ID: "1", Type: "function", Function: ai.ToolCallFunction{Name: "echo", Arguments: `{"text":"hi"}`}}},
		},
		{Content: "done", FinishReason: "stop"},
	}}

	catalog := tool.NewCatalog()
	catalog.AddTools(tool.NewTool("echo", func(ctx context.Context, in struct {
		Text string `json:"text"`
	}) (struct {
		Text string `json:"text"`
	}, error) {
		return struct {
			Text string `json:"text"`
		}{Text: in.Text}, nil
	}))

	runner := mustRunnerWithCatalog(t, provider, catalog)
	outcome := runner.Run(context.Background(), "please echo hi")

	if outcome.State != StateCompleted {
		t.Fatalf("expected StateCompleted after tool round trip, got %+v", outcome)
	}
	if provider.calls != 2 {
		t.Fatalf("expected 2 model calls (initial + after tool result), got %d", provider.calls)
	}
}

func TestRun_InterruptedContextStopsLoop(t *testing.T) {
	newTestEnv(t)
	provider := &mockProvider{responses: []*ai.ChatResponse{
		{Content: "hello", FinishReason: "stop"},
	}}
	runner := mustRunner(t, provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := runner.Run(ctx, "hi")
	if outcome.State != StateInterrupted {
		t.Fatalf("expected StateInterrupted, got %+v", outcome)
	}
}

func TestRun_PricesUsageAgainstModelCost(t *testing.T) {
	newTestEnv(t)
	provider := &mockProvider{responses: []*ai.ChatResponse{
		{
			Content:      "hello there",
			FinishReason: "stop",
			Usage:        &ai.Usage{PromptTokens: 1_000_000, CompletionTokens: 1_000_000},
		},
	}}

	runner := mustRunner(t, provider)
	runner.ModelCost = cost.ModelCost{InputCostPerMillion: 2, OutputCostPerMillion: 10}
	outcome := runner.Run(context.Background(), "hi")

	if outcome.Cost.ModelInputCost != 2 || outcome.Cost.ModelOutputCost != 10 {
		t.Fatalf("expected priced usage, got %+v", outcome.Cost)
	}
	if outcome.Cost.TotalCost != 12 {
		t.Fatalf("expected total cost 12, got %v", outcome.Cost.TotalCost)
	}
}

func TestRun_PersistsUsageEventPerRequest(t *testing.T) {
	newTestEnv(t)
	provider := &mockProvider{responses: []*ai.ChatResponse{
		{
			Content:      "hello there",
			FinishReason: "stop",
			Usage:        &ai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		},
	}}

	runner := mustRunner(t, provider)
	outcome := runner.Run(context.Background(), "hi")
	if outcome.State != StateCompleted {
		t.Fatalf("expected StateCompleted, got %+v", outcome)
	}

	events, err := runner.Log.ReadEvents()
	if err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	got := thread.UsageFromEvents(events)
	if got.PromptTokens != 10 || got.CompletionTokens != 5 || got.TotalTokens != 15 {
		t.Fatalf("expected usage event reconstructed from log, got %+v", got)
	}
}
