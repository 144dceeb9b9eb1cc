package coi

import (
	"context"
	"reflect"

	"github.com/Nashenas88/coi-go/internal/errors"
)

// Scope resolves values by their capability type.
//
// A Scope is handed to provider functions so they can resolve their own
// dependencies, and one fresh Scope is derived per request to resolve
// injected handler parameters.
//
// Scope is implemented by *Container.
type Scope interface {
	// Contains returns true if a provider is registered for the given type.
	//
	// Available options:
	//   - [WithName] specifies the name associated with the provider.
	Contains(t reflect.Type, opts ...ResolveOption) bool

	// Resolve returns a value of the given type from the Scope.
	//
	// Available options:
	//   - [WithName] specifies the name associated with the provider.
	Resolve(ctx context.Context, t reflect.Type, opts ...ResolveOption) (any, error)
}

// Resolve a value of the given type from the [Scope].
func Resolve[T any](ctx context.Context, s Scope, opts ...ResolveOption) (T, error) {
	var val T
	anyVal, err := s.Resolve(ctx, reflect.TypeFor[T](), opts...)
	if anyVal != nil {
		val = anyVal.(T)
	}

	return val, err
}

// MustResolve resolves a value of the given type from the [Scope].
//
// If the value cannot be resolved, this function will panic.
func MustResolve[T any](ctx context.Context, s Scope, opts ...ResolveOption) T {
	val, err := Resolve[T](ctx, s, opts...)
	if err != nil {
		panic(err)
	}
	return val
}

// resolveScope is the Scope handed to provider functions while a resolution
// is in progress. It threads the visited set through nested Resolve calls so
// cycles are detected instead of recursing forever.
type resolveScope struct {
	c       *Container
	visited resolveVisitor
}

func (s *resolveScope) Contains(t reflect.Type, opts ...ResolveOption) bool {
	return s.c.Contains(t, opts...)
}

func (s *resolveScope) Resolve(
	ctx context.Context,
	t reflect.Type,
	opts ...ResolveOption,
) (any, error) {
	key := serviceKey{Type: t}
	for _, opt := range opts {
		key = opt.applyServiceKey(key)
	}

	val, err := s.c.resolveKey(ctx, key, s.visited)
	if err != nil {
		return val, errors.Wrapf(err, "dependency %s", key)
	}

	return val, nil
}

var _ Scope = (*resolveScope)(nil)

// resolveVisitor tracks providers entered on one resolution chain.
type resolveVisitor map[*provider]struct{}

func (v resolveVisitor) Enter(p *provider) bool {
	if _, exists := v[p]; exists {
		return false
	}

	v[p] = struct{}{}
	return true
}

func (v resolveVisitor) Leave(p *provider) {
	delete(v, p)
}
