package coi

import (
	"context"

	"github.com/Nashenas88/coi-go/internal/errors"
)

type containerContextKey struct{}

// WithContainer returns a new [context.Context] that carries the provided
// [Container].
//
// This is how a container is attached to a running application: middleware
// such as coihttp stores the shared container on every request's context
// before any handler runs. Attach once, before the server starts accepting
// requests. Nesting WithContainer shadows the outer container; the innermost
// one wins.
func WithContainer(ctx context.Context, c *Container) context.Context {
	return context.WithValue(ctx, containerContextKey{}, c)
}

// ContainerFromContext returns the [Container] stored on the
// [context.Context], or nil if none was attached.
func ContainerFromContext(ctx context.Context) *Container {
	if c, ok := ctx.Value(containerContextKey{}).(*Container); ok {
		return c
	}
	return nil
}

// ScopeFor looks up the attached [Container] and derives one fresh scope for
// the current request.
//
// Every call yields an independent scope; the caller owns it and is
// responsible for closing it when the request completes. ScopeFor returns an
// error wrapping [ErrNotAttached] if no container was attached to ctx.
//
// Available options:
//   - [Provide] registers a provider function with the new scope.
//   - [ProvideValue] registers an existing value with the new scope.
func ScopeFor(ctx context.Context, opts ...ContainerOption) (*Container, error) {
	c := ContainerFromContext(ctx)
	if c == nil {
		return nil, errors.Wrap(ErrNotAttached, "coi.ScopeFor")
	}

	scope, err := c.NewScope(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "coi.ScopeFor")
	}

	return scope, nil
}
