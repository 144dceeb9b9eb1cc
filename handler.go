package coi

import (
	"context"
	"log/slog"
	"reflect"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/Nashenas88/coi-go/internal/errors"
)

// Handler is a compiled handler function.
//
// It records which parameters are container-supplied and which are ordinary,
// the reduced signature with the injected parameters removed, and how to
// reach the request context. Build one with [NewHandler], or use [Wrap] to go
// straight to the reduced-signature function.
type Handler struct {
	plan  *plan
	fnVal reflect.Value

	// names holds the registration name for each injected parameter,
	// parallel to plan.params.
	names        []string
	closeHandler func(ctx context.Context, err error)
}

// handlerParam describes one parameter of the original function.
type handlerParam struct {
	typ reflect.Type

	// elem is the capability type T for an Injected[T] parameter, nil for an
	// ordinary parameter.
	elem reflect.Type

	// outerIndex is the parameter's position in the reduced signature, -1 for
	// injected parameters.
	outerIndex int
}

// plan is the compiled, immutable shape of a handler function type. Plans
// depend only on the function type, so they are cached per type.
type plan struct {
	fnType      reflect.Type
	outer       reflect.Type
	params      []handlerParam
	numInjected int

	// ctxIndex is the reduced-signature position of the parameter used to
	// locate the request context, -1 if there is none. If ctxFromRequest is
	// set the parameter is a *http.Request, otherwise a context.Context.
	ctxIndex       int
	ctxFromRequest bool

	// errIndex is the result position of the error return, -1 if there is
	// none.
	errIndex int
}

var plans = xsync.NewMapOf[reflect.Type, planResult]()

type planResult struct {
	p   *plan
	err error
}

func planFor(t reflect.Type) (*plan, error) {
	res, _ := plans.LoadOrCompute(t, func() planResult {
		return buildPlan(t)
	})

	return res.p, res.err
}

func buildPlan(t reflect.Type) planResult {
	if t.IsVariadic() {
		return planResult{err: errors.New("variadic functions are not supported")}
	}

	p := &plan{
		fnType:   t,
		ctxIndex: -1,
		errIndex: -1,
	}

	var outerIn []reflect.Type
	for i := range t.NumIn() {
		paramType := t.In(i)

		if elem, ok := injectedElemOf(paramType); ok {
			p.params = append(p.params, handlerParam{
				typ:        paramType,
				elem:       elem,
				outerIndex: -1,
			})
			p.numInjected++
			continue
		}

		p.params = append(p.params, handlerParam{
			typ:        paramType,
			outerIndex: len(outerIn),
		})
		outerIn = append(outerIn, paramType)
	}

	outerOut := make([]reflect.Type, t.NumOut())
	for i := range t.NumOut() {
		outerOut[i] = t.Out(i)

		if p.errIndex < 0 && t.Out(i) == typeError {
			p.errIndex = i
		}
	}

	// Prefer an explicit context.Context parameter over a *http.Request.
	for i, in := range outerIn {
		if in == typeContext {
			p.ctxIndex = i
			break
		}
	}
	if p.ctxIndex < 0 {
		for i, in := range outerIn {
			if in == typeRequest {
				p.ctxIndex = i
				p.ctxFromRequest = true
				break
			}
		}
	}

	p.outer = reflect.FuncOf(outerIn, outerOut, false)
	return planResult{p: p}
}

// NewHandler compiles fn into a [Handler].
//
// Parameters of type [Injected] are removed from the reduced signature and
// resolved from a fresh request scope on every call; all other parameters
// pass through unchanged and in their original order.
//
// Available options:
//   - [WithNamed] assigns a registration name to an injected parameter.
//   - [WithScopeCloseErrorHandler] handles errors closing the request scope.
func NewHandler(fn any, opts ...HandlerOption) (*Handler, error) {
	if fn == nil {
		return nil, errors.New("coi.NewHandler: fn is nil")
	}

	t := reflect.TypeOf(fn)
	if t.Kind() != reflect.Func {
		return nil, errors.Errorf("coi.NewHandler %T: fn must be a function", fn)
	}

	p, err := planFor(t)
	if err != nil {
		return nil, errors.Wrapf(err, "coi.NewHandler %T", fn)
	}

	h := &Handler{
		plan:         p,
		fnVal:        reflect.ValueOf(fn),
		names:        make([]string, len(p.params)),
		closeHandler: defaultScopeCloseErrorHandler,
	}

	err = applyOptions(opts, func(opt HandlerOption) error {
		return opt.applyHandler(h)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "coi.NewHandler %T", fn)
	}

	return h, nil
}

// Type returns the reduced function signature: the original signature with
// all [Injected] parameters removed and the results unchanged.
func (h *Handler) Type() reflect.Type {
	return h.plan.outer
}

// NumInjected returns the number of injected parameters.
func (h *Handler) NumInjected() int {
	return h.plan.numInjected
}

// Call invokes the handler with the given reduced-signature arguments.
//
// If the handler has injected parameters, Call derives one fresh scope from
// the container attached to ctx, resolves each injected parameter in its
// declared order, and splices the resolved values into their original
// positions. The original function only ever runs with all dependencies
// resolved; any failure short-circuits before it is invoked. The scope is
// closed after the call returns.
//
// scopeOpts are applied to the request scope; adapters use this to register
// per-request values such as the *http.Request.
//
// The results of the original function are returned unchanged.
func (h *Handler) Call(ctx context.Context, args []any, scopeOpts ...ContainerOption) ([]any, error) {
	p := h.plan
	if len(args) != p.outer.NumIn() {
		return nil, errors.Errorf("coi.Handler.Call: expected %d arguments, got %d",
			p.outer.NumIn(), len(args))
	}

	in := make([]reflect.Value, len(p.params))

	if p.numInjected > 0 {
		scope, err := ScopeFor(ctx, scopeOpts...)
		if err != nil {
			return nil, err
		}
		defer func() {
			closeErr := scope.Close(ctx)
			if closeErr != nil && h.closeHandler != nil {
				h.closeHandler(ctx, closeErr)
			}
		}()

		for i, param := range p.params {
			if param.elem == nil {
				in[i] = safeVal(param.typ, args[param.outerIndex])
				continue
			}

			var resolveOpts []ResolveOption
			if h.names[i] != "" {
				resolveOpts = append(resolveOpts, WithName(h.names[i]))
			}

			val, err := scope.Resolve(ctx, param.elem, resolveOpts...)
			if err != nil {
				// Stop at the first error
				return nil, errors.Wrapf(err, "coi: resolve parameter %d", i)
			}
			in[i] = newInjectedValue(param.typ, param.elem, val)
		}

		// Check for a context error before we invoke the function
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	} else {
		for i, param := range p.params {
			in[i] = safeVal(param.typ, args[param.outerIndex])
		}
	}

	out := h.fnVal.Call(in)

	results := make([]any, len(out))
	for i := range out {
		results[i] = out[i].Interface()
	}

	return results, nil
}

func defaultScopeCloseErrorHandler(ctx context.Context, err error) {
	slog.ErrorContext(ctx, "error closing request scope", "error", err)
}

// HandlerOption is used to configure a handler when calling [NewHandler],
// [Wrap], or [MustWrap].
type HandlerOption interface {
	applyHandler(*Handler) error
}

type handlerOption func(*Handler) error

func (o handlerOption) applyHandler(h *Handler) error {
	return o(h)
}

// WithNamed assigns a registration name to an injected parameter of
// capability type Dependency.
//
// The name is assigned to the first Injected[Dependency] parameter that does
// not already have one, so the option can be repeated for handlers that
// inject the same capability type more than once:
//
//	h, err := coi.NewHandler(moveData,
//		coi.WithNamed[Store]("source"),
//		coi.WithNamed[Store]("destination"),
//	)
//
// This option will return an error if the handler has no matching injected
// parameter.
func WithNamed[Dependency any](name string) HandlerOption {
	dep := reflect.TypeFor[Dependency]()

	return handlerOption(func(h *Handler) error {
		for i, param := range h.plan.params {
			// Find an injected parameter with the right type
			// Skip past any that have already been assigned a name
			if param.elem == dep && h.names[i] == "" {
				h.names[i] = name
				return nil
			}
		}
		return errors.Errorf("with named %s: injected parameter not found", dep)
	})
}

// WithScopeCloseErrorHandler sets the handler called when closing the request
// scope after a call fails.
//
// The default handler logs the error to [slog.Default].
func WithScopeCloseErrorHandler(f func(ctx context.Context, err error)) HandlerOption {
	return handlerOption(func(h *Handler) error {
		if f == nil {
			return errors.New("with scope close error handler: f is nil")
		}
		h.closeHandler = f
		return nil
	})
}
