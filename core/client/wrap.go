package client

import (
	"context"
	"net/http"

	"github.com/tallesborges/zdx/providers/ai"
)

// WrappedProvider implements both ai.Provider and ai.StreamProvider,
// routing SendMessage/StreamMessage through a middleware chain built from
// MiddlewareConfig entries — retry, timeout, logging, or any
// caller-supplied middleware — before reaching the underlying provider.
// StreamMessage falls back to SendMessage plus [ai.NewSingleEventStream]
// when inner does not itself implement ai.StreamProvider.
type WrappedProvider struct {
	inner  ai.Provider
	send   SendFunc
	stream StreamFunc
}

// Wrap builds a WrappedProvider around inner. Middlewares run in the
// order given: middlewares[0] is outermost and sees the request first.
func Wrap(inner ai.Provider, middlewares ...MiddlewareConfig) *WrappedProvider {
	return &WrappedProvider{
		inner:  inner,
		send:   buildSendChain(inner, middlewares),
		stream: buildStreamChain(inner, middlewares),
	}
}

func (w *WrappedProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	return w.send(ctx, request)
}

func (w *WrappedProvider) StreamMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
	return w.stream(ctx, request)
}

func (w *WrappedProvider) IsStopMessage(message *ai.ChatResponse) bool {
	return w.inner.IsStopMessage(message)
}

func (w *WrappedProvider) WithAPIKey(apiKey string) ai.Provider {
	w.inner.WithAPIKey(apiKey)
	return w
}

func (w *WrappedProvider) WithBaseURL(baseURL string) ai.Provider {
	w.inner.WithBaseURL(baseURL)
	return w
}

func (w *WrappedProvider) WithHttpClient(httpClient *http.Client) ai.Provider {
	w.inner.WithHttpClient(httpClient)
	return w
}
