package widget

import "context"

// ViewPromise yields a view, possibly after asynchronous construction.
type ViewPromise interface {
	Await(ctx context.Context) (View, error)
}

type settled struct {
	view View
	err  error
}

func (s settled) Await(context.Context) (View, error) { return s.view, s.err }

// Resolved wraps a view that already exists.
func Resolved(v View) ViewPromise { return settled{view: v} }

// Rejected returns a promise that fails with err.
func Rejected(err error) ViewPromise { return settled{err: err} }

type pending struct {
	done chan struct{}
	view View
	err  error
}

// Go starts fn in a goroutine. Abandoning Await does not cancel fn;
// it runs to completion with the context given here.
func Go(ctx context.Context, fn func(ctx context.Context) (View, error)) ViewPromise {
	p := &pending{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.view, p.err = fn(ctx)
	}()
	return p
}

func (p *pending) Await(ctx context.Context) (View, error) {
	select {
	case <-p.done:
		return p.view, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
