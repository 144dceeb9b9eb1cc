package coi

import (
	"context"
)

// Closer is used to close a value when the Container or scope that owns it is
// closed.
//
// If a value built by a provider implements Closer, or one of the other
// compatible function signatures, its Close function is called when the
// owning Container is closed.
//
// Any of these Close method signatures are supported:
//
//	Close(context.Context) error
//	Close() error
//	Close()
//
// See [IgnoreCloser] to opt a provider out.
type Closer interface {
	Close(ctx context.Context) error
}

// getCloser returns the Closer interface if the given value implements it,
// or any of the compatible Close method signatures.
func getCloser(val any) Closer {
	switch c := val.(type) {
	case Closer:
		return c
	case closerWithError:
		return closerWithErrorWrapper{c}
	case closerNoError:
		return closerNoErrorWrapper{c}
	default:
		return nil
	}
}

type closerWithError interface {
	Close() error
}

type closerNoError interface {
	Close()
}

type closerWithErrorWrapper struct {
	c closerWithError
}

func (w closerWithErrorWrapper) Close(context.Context) error {
	return w.c.Close()
}

type closerNoErrorWrapper struct {
	c closerNoError
}

func (w closerNoErrorWrapper) Close(context.Context) error {
	w.c.Close()
	return nil
}
