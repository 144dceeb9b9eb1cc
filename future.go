package coi

import "context"

// resolveFuture holds the result of a resolution that may still be in
// progress on another goroutine.
type resolveFuture struct {
	val  any
	err  error
	done chan struct{}
}

func newFuture() *resolveFuture {
	return &resolveFuture{
		done: make(chan struct{}),
	}
}

// setResult must be called exactly once, by the goroutine that performed the
// build.
func (f *resolveFuture) setResult(val any, err error) {
	f.val = val
	f.err = err
	close(f.done)
}

// Result waits for the resolution to finish and returns its outcome. If ctx
// is cancelled first, the build is left running and ctx's error is returned.
func (f *resolveFuture) Result(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
