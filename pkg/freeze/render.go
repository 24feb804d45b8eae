package freeze

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
)

// Response is a rendered route.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Renderer produces the response for a route, e.g. "/" or "/music".
type Renderer interface {
	Render(ctx context.Context, route string) (*Response, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, route string) (*Response, error)

// Render calls f(ctx, route).
func (f RendererFunc) Render(ctx context.Context, route string) (*Response, error) {
	return f(ctx, route)
}

// HandlerRenderer renders routes by serving an in-process GET request through
// Handler and recording the result. Nothing touches the network.
type HandlerRenderer struct {
	Handler http.Handler
}

// Render implements Renderer.
func (h HandlerRenderer) Render(ctx context.Context, route string) (*Response, error) {
	if _, err := url.ParseRequestURI(route); err != nil {
		return nil, fmt.Errorf("invalid route %q: %w", route, err)
	}
	req := httptest.NewRequestWithContext(ctx, http.MethodGet, route, nil)
	rec := httptest.NewRecorder()
	h.Handler.ServeHTTP(rec, req)
	return &Response{
		Status: rec.Code,
		Header: rec.Header().Clone(),
		Body:   rec.Body.Bytes(),
	}, nil
}
