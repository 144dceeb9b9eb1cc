package coi

import (
	"context"
	"net/http"
	"reflect"

	"github.com/Nashenas88/coi-go/internal/errors"
)

// Wrap rewrites fn into a function with the [Injected] parameters removed.
//
// The returned function has the original signature minus every Injected
// parameter, with the results unchanged. When called, it derives one fresh
// scope from the container attached to the request context, resolves each
// injected parameter in declared order, and invokes fn with the resolved
// values spliced into their original positions. Resolution failures are
// returned through fn's own error result; fn is never invoked with a missing
// dependency.
//
// The request context is located through fn's own parameters: a
// context.Context parameter, or failing that the context of a *http.Request
// parameter. A function with injected parameters must declare one of the two
// and must return an error; Wrap reports a violation immediately rather than
// at request time.
//
// A function with no injected parameters wraps to a plain pass-through so
// call sites stay uniform; it never touches the container.
//
// The result must be type-asserted back to the reduced signature:
//
//	get := coi.MustWrap(getData).(func(http.ResponseWriter, *http.Request) error)
//
// Available options:
//   - [WithNamed] assigns a registration name to an injected parameter.
//   - [WithScopeCloseErrorHandler] handles errors closing the request scope.
func Wrap(fn any, opts ...HandlerOption) (any, error) {
	h, err := NewHandler(fn, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "coi.Wrap")
	}

	p := h.plan
	if p.numInjected > 0 {
		if p.ctxIndex < 0 {
			return nil, errors.Errorf(
				"coi.Wrap %T: fn must accept a context.Context or *http.Request parameter to reach the request scope",
				fn)
		}
		if p.errIndex < 0 {
			return nil, errors.Errorf(
				"coi.Wrap %T: fn must return an error to report resolution failures", fn)
		}
	}

	outer := reflect.MakeFunc(p.outer, func(callArgs []reflect.Value) []reflect.Value {
		ctx := context.Background()
		if p.ctxIndex >= 0 {
			if p.ctxFromRequest {
				if r, ok := callArgs[p.ctxIndex].Interface().(*http.Request); ok && r != nil {
					ctx = r.Context()
				}
			} else if c, ok := callArgs[p.ctxIndex].Interface().(context.Context); ok && c != nil {
				ctx = c
			}
		}

		args := make([]any, len(callArgs))
		for i, v := range callArgs {
			args[i] = v.Interface()
		}

		results, err := h.Call(ctx, args)
		if err != nil {
			return errorReturn(p, err)
		}

		out := make([]reflect.Value, len(results))
		for i, res := range results {
			out[i] = safeVal(p.outer.Out(i), res)
		}
		return out
	})

	return outer.Interface(), nil
}

// MustWrap rewrites fn like [Wrap] and panics if fn cannot be wrapped.
func MustWrap(fn any, opts ...HandlerOption) any {
	outer, err := Wrap(fn, opts...)
	if err != nil {
		panic(err)
	}
	return outer
}

// errorReturn builds the reduced function's results for a failed call: zero
// values everywhere except the error slot.
func errorReturn(p *plan, err error) []reflect.Value {
	if p.errIndex < 0 {
		// Wrap only builds error-free wrappers for functions that cannot
		// fail, so this is unreachable.
		panic(err)
	}

	out := make([]reflect.Value, p.outer.NumOut())
	for i := range out {
		if i == p.errIndex {
			ev := reflect.New(typeError).Elem()
			ev.Set(reflect.ValueOf(err))
			out[i] = ev
			continue
		}
		out[i] = reflect.Zero(p.outer.Out(i))
	}

	return out
}
