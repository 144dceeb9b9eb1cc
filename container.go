package coi

import (
	"context"
	"reflect"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/Nashenas88/coi-go/internal/errors"
)

// Container is a registry mapping capability types to providers.
//
// A Container is built once at application startup, attached to the running
// application, and shared read-only by all requests. Each request derives its
// own isolated scope with [Container.NewScope].
type Container struct {
	parent    *Container
	providers map[serviceKey]*provider
	resolved  *xsync.MapOf[*provider, *resolveFuture]
	closers   []Closer
	closersMu sync.Mutex
	closedMu  sync.RWMutex
	closed    bool
}

var _ Scope = (*Container)(nil)

// NewContainer creates a new [Container] with the provided options.
//
// Available options:
//   - [Provide] registers a provider function for a capability type.
//   - [ProvideValue] registers an existing value for a capability type.
//   - [WithModule] applies a group of options.
func NewContainer(opts ...ContainerOption) (*Container, error) {
	c := &Container{
		providers: make(map[serviceKey]*provider),
		resolved:  xsync.NewMapOf[*provider, *resolveFuture](),
	}

	err := c.applyOptions(opts)
	if err != nil {
		return nil, errors.Wrap(err, "coi.NewContainer")
	}

	return c, nil
}

// ContainerOption is used to configure a new [Container] when calling
// [NewContainer] or [Container.NewScope].
type ContainerOption interface {
	applyContainer(*Container) error
}

type containerOption func(*Container) error

func (o containerOption) applyContainer(c *Container) error {
	return o(c)
}

func (c *Container) applyOptions(opts []ContainerOption) error {
	// Flatten any modules before applying options.
	// Registration order matters because the last provider for a key wins.
	opts = flattenModules(opts)

	return applyOptions(opts, func(o ContainerOption) error {
		return o.applyContainer(c)
	})
}

func (c *Container) register(p *provider) {
	p.owner = c

	// The last provider registered for a key wins. A provider registered on a
	// scope shadows the parent's registration for that scope only.
	c.providers[p.key] = p
}

func (c *Container) lookup(key serviceKey) *provider {
	for scope := c; scope != nil; scope = scope.parent {
		if p, ok := scope.providers[key]; ok {
			return p
		}
	}

	return nil
}

// NewScope derives a new [Container] with a child scope.
//
// Providers registered with the parent are inherited by the child. Additional
// providers can be registered with the new scope and are isolated from the
// parent and sibling scopes. Values built by [Scoped] and [Transient]
// providers are owned by the scope and closed when it is closed.
//
// Available options:
//   - [Provide] registers a provider function for a capability type.
//   - [ProvideValue] registers an existing value for a capability type.
func (c *Container) NewScope(opts ...ContainerOption) (*Container, error) {
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()

	if c.closed {
		return nil, errors.Wrap(ErrContainerClosed, "coi.Container.NewScope")
	}

	scope := &Container{
		parent:    c,
		providers: make(map[serviceKey]*provider),
		resolved:  xsync.NewMapOf[*provider, *resolveFuture](),
	}

	err := scope.applyOptions(opts)
	if err != nil {
		return nil, errors.Wrap(err, "coi.Container.NewScope")
	}

	return scope, nil
}

// Contains returns true if a provider is registered for the given type.
//
// Available options:
//   - [WithName] specifies the name associated with the provider.
func (c *Container) Contains(t reflect.Type, opts ...ResolveOption) bool {
	key := serviceKey{Type: t}
	for _, opt := range opts {
		key = opt.applyServiceKey(key)
	}

	return c.lookup(key) != nil
}

// Resolve returns a value of the given type.
//
// A provider for the type must be registered with the [Container] or one of
// its parents. This will return an error if the Container has been closed.
//
// Resolve is safe for concurrent use. Concurrent resolutions of one
// [Singleton] or [Scoped] key build the value once; later callers wait for
// the first build to finish.
//
// Available options:
//   - [WithName] specifies the name associated with the provider.
func (c *Container) Resolve(ctx context.Context, t reflect.Type, opts ...ResolveOption) (any, error) {
	key := serviceKey{Type: t}
	for _, opt := range opts {
		key = opt.applyServiceKey(key)
	}

	c.closedMu.RLock()
	defer c.closedMu.RUnlock()

	if c.closed {
		return nil, errors.Wrapf(ErrContainerClosed, "coi.Container.Resolve %s", key)
	}

	val, err := c.resolveKey(ctx, key, make(resolveVisitor))
	if err != nil {
		return val, errors.Wrapf(err, "coi.Container.Resolve %s", key)
	}

	return val, nil
}

func (c *Container) resolveKey(
	ctx context.Context,
	key serviceKey,
	visited resolveVisitor,
) (any, error) {
	p := c.lookup(key)
	if p == nil {
		return nil, ErrNotRegistered
	}

	switch p.lifetime {
	case Singleton:
		// Singletons are cached on the Container the provider was registered
		// with and resolve their dependencies from it, so they never capture
		// request-scoped values.
		return p.owner.resolveProvider(ctx, p, visited)

	case Scoped:
		if c == p.owner {
			return nil, errors.New("scoped provider must be resolved from a derived scope")
		}
		return c.resolveProvider(ctx, p, visited)

	default: // Transient
		if !visited.Enter(p) {
			return nil, ErrDependencyCycle
		}
		defer visited.Leave(p)

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		val, err := p.build(ctx, &resolveScope{c: c, visited: visited})
		if err != nil {
			return nil, err
		}

		c.addCloser(p, val)
		return val, nil
	}
}

// resolveProvider builds p's value memoized on c. Exactly one caller builds;
// concurrent callers wait for the result.
func (c *Container) resolveProvider(
	ctx context.Context,
	p *provider,
	visited resolveVisitor,
) (any, error) {
	if !visited.Enter(p) {
		return nil, ErrDependencyCycle
	}
	defer visited.Leave(p)

	f, loaded := c.resolved.LoadOrStore(p, newFuture())
	if loaded {
		return f.Result(ctx)
	}

	if ctx.Err() != nil {
		f.setResult(nil, ctx.Err())
		return nil, ctx.Err()
	}

	val, err := p.build(ctx, &resolveScope{c: c, visited: visited})
	if err == nil {
		c.addCloser(p, val)
	}

	f.setResult(val, err)
	return val, err
}

func (c *Container) addCloser(p *provider, val any) {
	if !p.autoClose {
		return
	}

	closer := getCloser(val)
	if closer == nil {
		return
	}

	c.closersMu.Lock()
	c.closers = append(c.closers, closer)
	c.closersMu.Unlock()
}

// Close the [Container] and the values it owns.
//
// Values are closed in the reverse order they were created. Errors returned
// from closing values are joined together.
//
// Close will return an error if called more than once.
func (c *Container) Close(ctx context.Context) error {
	c.closedMu.Lock()
	defer c.closedMu.Unlock()

	if c.closed {
		return errors.Wrap(ErrContainerClosed, "coi.Container.Close")
	}
	c.closed = true

	// Close in LIFO order because later values may depend on earlier ones.
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		err := c.closers[i].Close(ctx)
		if err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return errors.Wrap(err, "coi.Container.Close")
	}

	return nil
}
