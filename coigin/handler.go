package coigin

import (
	"context"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"

	"github.com/Nashenas88/coi-go"
	"github.com/Nashenas88/coi-go/internal/errors"
)

// These are commonly used types.
var (
	typeError          = reflect.TypeFor[error]()
	typeContext        = reflect.TypeFor[context.Context]()
	typeRequest        = reflect.TypeFor[*http.Request]()
	typeResponseWriter = reflect.TypeFor[http.ResponseWriter]()
	typeGinContext     = reflect.TypeFor[*gin.Context]()
)

// argument kinds for the reduced signature
type argKind uint8

const (
	argGinContext argKind = iota
	argWriter
	argRequest
	argContext
)

// NewMiddleware returns middleware that attaches the shared [coi.Container]
// to every request's context.
//
// Install it once, ahead of any handler built with [NewHandler].
func NewMiddleware(c *coi.Container) (gin.HandlerFunc, error) {
	if c == nil {
		return nil, errors.New("coigin.NewMiddleware: container is nil")
	}

	return func(g *gin.Context) {
		ctx := coi.WithContainer(g.Request.Context(), c)
		g.Request = g.Request.WithContext(ctx)
		g.Next()
	}, nil
}

// MustNewMiddleware builds middleware like [NewMiddleware] and panics if the
// container is nil.
func MustNewMiddleware(c *coi.Container) gin.HandlerFunc {
	mw, err := NewMiddleware(c)
	if err != nil {
		panic(err)
	}
	return mw
}

// NewHandler adapts fn to a [gin.HandlerFunc].
//
// fn may take [*gin.Context], [http.ResponseWriter], [*http.Request], and
// [context.Context] parameters in any order, plus any number of
// [coi.Injected] parameters, and may return nothing or an error.
//
// Each request derives one fresh scope from the container attached by
// [NewMiddleware] and resolves every injected parameter from it before fn
// runs. Scope and resolution failures, and errors returned by fn, go through
// the error handler; the default records the error on the gin context and
// aborts with a 500 response.
//
// The current *gin.Context and *http.Request are registered with the request
// scope so providers can depend on them.
//
// Available options:
//   - [WithErrorHandler] sets the error handler.
//   - [WithHandlerOptions] forwards options such as [coi.WithNamed] to
//     [coi.NewHandler].
func NewHandler(fn any, opts ...HandlerOption) (gin.HandlerFunc, error) {
	cfg := &handlerConfig{
		errorHandler: defaultErrorHandler,
	}
	for _, opt := range opts {
		err := opt.applyHandler(cfg)
		if err != nil {
			return nil, errors.Wrap(err, "coigin.NewHandler")
		}
	}

	h, err := coi.NewHandler(fn, cfg.handlerOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "coigin.NewHandler")
	}

	t := h.Type()

	kinds := make([]argKind, t.NumIn())
	for i := range t.NumIn() {
		switch t.In(i) {
		case typeGinContext:
			kinds[i] = argGinContext
		case typeResponseWriter:
			kinds[i] = argWriter
		case typeRequest:
			kinds[i] = argRequest
		case typeContext:
			kinds[i] = argContext
		default:
			return nil, errors.Errorf("coigin.NewHandler %T: unsupported parameter type %s",
				fn, t.In(i))
		}
	}

	errIndex := -1
	switch {
	case t.NumOut() == 0:
	case t.NumOut() == 1 && t.Out(0) == typeError:
		errIndex = 0
	default:
		return nil, errors.Errorf("coigin.NewHandler %T: fn must return nothing or an error", fn)
	}

	return func(g *gin.Context) {
		args := make([]any, len(kinds))
		for i, kind := range kinds {
			switch kind {
			case argGinContext:
				args[i] = g
			case argWriter:
				args[i] = g.Writer
			case argRequest:
				args[i] = g.Request
			case argContext:
				args[i] = g.Request.Context()
			}
		}

		results, callErr := h.Call(g.Request.Context(), args,
			coi.ProvideValue(g),
			coi.ProvideValue(g.Request),
		)
		if callErr != nil {
			cfg.errorHandler(g, callErr)
			return
		}

		if errIndex >= 0 {
			if handlerErr, ok := results[errIndex].(error); ok && handlerErr != nil {
				cfg.errorHandler(g, handlerErr)
			}
		}
	}, nil
}

// MustNewHandler adapts fn like [NewHandler] and panics if fn cannot be
// adapted.
func MustNewHandler(fn any, opts ...HandlerOption) gin.HandlerFunc {
	handler, err := NewHandler(fn, opts...)
	if err != nil {
		panic(err)
	}
	return handler
}

// ErrorHandler handles scope, resolution, and handler errors.
type ErrorHandler = func(g *gin.Context, err error)

func defaultErrorHandler(g *gin.Context, err error) {
	_ = g.Error(err)
	g.AbortWithStatus(http.StatusInternalServerError)
}

type handlerConfig struct {
	handlerOpts  []coi.HandlerOption
	errorHandler ErrorHandler
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

// WithErrorHandler sets the handler called for scope and resolution failures
// and for errors returned by the wrapped function.
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
