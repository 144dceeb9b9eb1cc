package coihttp

import (
	"context"
	"log/slog"
	"net/http"
	"reflect"

	"github.com/Nashenas88/coi-go"
	"github.com/Nashenas88/coi-go/internal/errors"
)

// These are commonly used types.
var (
	typeError          = reflect.TypeFor[error]()
	typeContext        = reflect.TypeFor[context.Context]()
	typeRequest        = reflect.TypeFor[*http.Request]()
	typeResponseWriter = reflect.TypeFor[http.ResponseWriter]()
)

// argument kinds for the reduced signature
type argKind uint8

const (
	argWriter argKind = iota
	argRequest
	argContext
)

// NewHandler adapts fn to an [http.HandlerFunc].
//
// fn may take [http.ResponseWriter], [*http.Request], and [context.Context]
// parameters in any order, plus any number of [coi.Injected] parameters, and
// may return nothing or an error.
//
// Each request derives one fresh scope from the container attached by
// [NewContainerMiddleware], resolves every injected parameter from it, and
// invokes fn. If the container was never attached, or a dependency cannot be
// resolved, fn is not invoked and the resolve error handler writes the
// response instead.
//
// The current *http.Request is registered with the request scope so providers
// can depend on it.
//
// Available options:
//   - [WithResolveErrorHandler] handles scope and resolution failures.
//   - [WithErrorHandler] handles errors returned by fn.
//   - [WithHandlerOptions] forwards options such as [coi.WithNamed] to
//     [coi.NewHandler].
func NewHandler(fn any, opts ...HandlerOption) (http.HandlerFunc, error) {
	cfg := &handlerConfig{
		resolveErrorHandler: defaultResolveErrorHandler,
		errorHandler:        defaultErrorHandler,
	}
	for _, opt := range opts {
		err := opt.applyHandler(cfg)
		if err != nil {
			return nil, errors.Wrap(err, "coihttp.NewHandler")
		}
	}

	h, err := coi.NewHandler(fn, cfg.handlerOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "coihttp.NewHandler")
	}

	t := h.Type()

	kinds := make([]argKind, t.NumIn())
	for i := range t.NumIn() {
		switch t.In(i) {
		case typeResponseWriter:
			kinds[i] = argWriter
		case typeRequest:
			kinds[i] = argRequest
		case typeContext:
			kinds[i] = argContext
		default:
			return nil, errors.Errorf("coihttp.NewHandler %T: unsupported parameter type %s",
				fn, t.In(i))
		}
	}

	errIndex := -1
	switch {
	case t.NumOut() == 0:
	case t.NumOut() == 1 && t.Out(0) == typeError:
		errIndex = 0
	default:
		return nil, errors.Errorf("coihttp.NewHandler %T: fn must return nothing or an error", fn)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		args := make([]any, len(kinds))
		for i, kind := range kinds {
			switch kind {
			case argWriter:
				args[i] = w
			case argRequest:
				args[i] = r
			case argContext:
				args[i] = r.Context()
			}
		}

		results, callErr := h.Call(r.Context(), args, coi.ProvideValue(r))
		if callErr != nil {
			cfg.resolveErrorHandler(w, r, callErr)
			return
		}

		if errIndex >= 0 {
			if handlerErr, ok := results[errIndex].(error); ok && handlerErr != nil {
				cfg.errorHandler(w, r, handlerErr)
			}
		}
	}, nil
}

// MustNewHandler adapts fn like [NewHandler] and panics if fn cannot be
// adapted.
//
// Intended for route tables built at startup.
func MustNewHandler(fn any, opts ...HandlerOption) http.HandlerFunc {
	handler, err := NewHandler(fn, opts...)
	if err != nil {
		panic(err)
	}
	return handler
}

// ErrorHandler is a function that writes an error response to the client.
type ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error)

// The default handlers log the error to [slog.Default] and write a
// 500 Internal Server Error response.

func defaultResolveErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "error resolving handler dependencies", "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "handler error", "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

type handlerConfig struct {
	handlerOpts         []coi.HandlerOption
	resolveErrorHandler ErrorHandler
	errorHandler        ErrorHandler
}

// HandlerOption is used to configure a handler when calling [NewHandler] or
// [MustNewHandler].
type HandlerOption interface {
	applyHandler(*handlerConfig) error
}

type handlerOption func(*handlerConfig) error

func (o handlerOption) applyHandler(cfg *handlerConfig) error {
	return o(cfg)
}

// WithResolveErrorHandler sets the handler called when the request scope
// cannot be created or an injected parameter cannot be resolved.
//
// The wrapped function does not run in that case; the handler owns the
// response.
func WithResolveErrorHandler(h ErrorHandler) HandlerOption {
	return handlerOption(func(cfg *handlerConfig) error {
		if h == nil {
			return errors.New("WithResolveErrorHandler: h is nil")
		}
		cfg.resolveErrorHandler = h
		return nil
	})
}

// WithErrorHandler sets the handler called when the wrapped function returns
// a non-nil error.
func WithErrorHandler(h ErrorHandler) HandlerOption {
	return handlerOption(func(cfg *handlerConfig) error {
		if h == nil {
			return errors.New("WithErrorHandler: h is nil")
		}
		cfg.errorHandler = h
		return nil
	})
}

// WithHandlerOptions forwards options to [coi.NewHandler].
func WithHandlerOptions(opts ...coi.HandlerOption) HandlerOption {
	return handlerOption(func(cfg *handlerConfig) error {
		cfg.handlerOpts = append(cfg.handlerOpts, opts...)
		return nil
	})
}
