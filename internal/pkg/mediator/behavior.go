package mediator

import "context"

// Next continues the chain. Calling it runs the remaining behaviors and the
// handler.
type Next[Res any] func(ctx context.Context) (Res, error)

// Behavior is one link of a pipeline.
type Behavior[Req, Res any] interface {
	Handle(ctx context.Context, req Req, next Next[Res]) (Res, error)
}

// Handler serves one request type.
type Handler[Req, Res any] interface {
	Handle(ctx context.Context, req Req) (Res, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc[Req, Res any] func(ctx context.Context, req Req) (Res, error)

// Handle calls f.
func (f HandlerFunc[Req, Res]) Handle(ctx context.Context, req Req) (Res, error) {
	return f(ctx, req)
}

// Pipeline runs behaviors in order around a handler.
type Pipeline[Req, Res any] struct {
	behaviors []Behavior[Req, Res]
	handler   Handler[Req, Res]
}

// NewPipeline composes behaviors around h. The first behavior is outermost.
func NewPipeline[Req, Res any](h Handler[Req, Res], behaviors ...Behavior[Req, Res]) *Pipeline[Req, Res] {
	return &Pipeline[Req, Res]{behaviors: behaviors, handler: h}
}

// Handle dispatches req through the chain.
func (p *Pipeline[Req, Res]) Handle(ctx context.Context, req Req) (Res, error) {
	next := Next[Res](func(ctx context.Context) (Res, error) {
		return p.handler.Handle(ctx, req)
	})

	for i := len(p.behaviors) - 1; i >= 0; i-- {
		b, inner := p.behaviors[i], next
		next = func(ctx context.Context) (Res, error) {
			return b.Handle(ctx, req, inner)
		}
	}

	return next(ctx)
}
