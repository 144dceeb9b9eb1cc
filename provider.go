package coi

import (
	"context"
	"fmt"
	"reflect"

	"github.com/Nashenas88/coi-go/internal/errors"
)

// serviceKey identifies a provider registration: a capability type plus an
// optional name.
type serviceKey struct {
	Type reflect.Type
	Name string
}

func (k serviceKey) String() string {
	if k.Name != "" {
		return fmt.Sprintf("%s (name %q)", k.Type, k.Name)
	}
	return k.Type.String()
}

// provider builds values for one serviceKey.
type provider struct {
	key       serviceKey
	lifetime  Lifetime
	autoClose bool
	build     func(ctx context.Context, s Scope) (any, error)

	// owner is the Container the provider was registered with. Singletons are
	// cached there and resolve their dependencies from it.
	owner *Container
}

// Provide registers a provider function for capability type T when calling
// [NewContainer] or [Container.NewScope].
//
// The function receives the current [Scope] so it can resolve its own
// dependencies. It is called the first time T is resolved, or more often
// depending on the configured [Lifetime].
//
// If the built value implements [Closer], or a compatible Close method
// signature, it is closed when the owning Container or scope is closed.
//
// Available options:
//   - [Lifetime] specifies how the value is cached when resolved.
//   - [WithName] registers the provider under a name in addition to its type.
//   - [IgnoreCloser] specifies that the value should not be closed by the
//     Container.
func Provide[T any](build func(context.Context, Scope) (T, error), opts ...ProvideOption) ContainerOption {
	return containerOption(func(c *Container) error {
		t := reflect.TypeFor[T]()
		if build == nil {
			return errors.Errorf("provide %s: build is nil", t)
		}

		p := &provider{
			key:       serviceKey{Type: t},
			lifetime:  Singleton,
			autoClose: true,
			build: func(ctx context.Context, s Scope) (any, error) {
				return build(ctx, s)
			},
		}

		err := applyOptions(opts, func(opt ProvideOption) error {
			return opt.applyProvider(p)
		})
		if err != nil {
			return errors.Wrapf(err, "provide %s", t)
		}

		c.register(p)
		return nil
	})
}

// ProvideValue registers an existing value for capability type T when calling
// [NewContainer] or [Container.NewScope].
//
// The value is returned as-is on every resolution. Value providers are always
// [Singleton] and are not closed by the Container.
//
// Available options:
//   - [WithName] registers the provider under a name in addition to its type.
func ProvideValue[T any](val T, opts ...ProvideOption) ContainerOption {
	return containerOption(func(c *Container) error {
		t := reflect.TypeFor[T]()

		p := &provider{
			key:      serviceKey{Type: t},
			lifetime: Singleton,
			build: func(context.Context, Scope) (any, error) {
				return val, nil
			},
		}

		err := applyOptions(opts, func(opt ProvideOption) error {
			return opt.applyProvider(p)
		})
		if err != nil {
			return errors.Wrapf(err, "provide value %s", t)
		}

		if p.lifetime != Singleton {
			return errors.Errorf("provide value %s: value providers must be %s", t, Singleton)
		}

		c.register(p)
		return nil
	})
}

// ProvideOption is used to configure a provider registration when calling
// [Provide] or [ProvideValue].
type ProvideOption interface {
	applyProvider(p *provider) error
}

type provideOption func(*provider) error

func (o provideOption) applyProvider(p *provider) error {
	return o(p)
}

// IgnoreCloser is used when you do not want a built value that implements
// [Closer], or another supported Close method signature, to be closed when
// the Container is closed.
//
// This is useful when the lifecycle of a value is managed outside of the
// Container.
func IgnoreCloser() ProvideOption {
	return provideOption(func(p *provider) error {
		p.autoClose = false
		return nil
	})
}

// WithName associates a name with a provider or a resolution.
//
// Use it to register multiple providers for one capability type:
//
//	c, err := coi.NewContainer(
//		coi.Provide(NewPrimaryDB, coi.WithName("primary")),
//		coi.Provide(NewReplicaDB, coi.WithName("replica")),
//	)
//
// WithName can be used with:
//   - [Provide]
//   - [ProvideValue]
//   - [Resolve]
//   - [MustResolve]
//   - [Container.Resolve]
//   - [Container.Contains]
func WithName(name string) ProviderNameOption {
	return nameOption{name: name}
}

// ProviderNameOption is used to specify the name associated with a provider
// when registering or resolving.
type ProviderNameOption interface {
	ProvideOption
	ResolveOption
}

// ResolveOption can be used when calling [Resolve], [MustResolve],
// [Container.Resolve], or [Container.Contains].
//
// Available options:
//   - [WithName]
type ResolveOption interface {
	applyServiceKey(serviceKey) serviceKey
}

type nameOption struct {
	name string
}

func (o nameOption) applyProvider(p *provider) error {
	p.key.Name = o.name
	return nil
}

func (o nameOption) applyServiceKey(key serviceKey) serviceKey {
	return serviceKey{
		Type: key.Type,
		Name: o.name,
	}
}

var _ ProviderNameOption = nameOption{}
