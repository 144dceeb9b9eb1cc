package coi

import "fmt"

// Lifetime specifies how provider results are cached when resolved.
//
// Available lifetimes:
//   - [Singleton] specifies that a value is created once per Container.
//   - [Scoped] specifies that a value is created once per request scope.
//   - [Transient] specifies that a value is created for each resolution.
type Lifetime uint8

const (
	// Singleton specifies that a value is created once and subsequent
	// resolutions return the same instance.
	//
	// This is the default lifetime for providers.
	Singleton Lifetime = iota

	// Scoped specifies that a value is created once per scope.
	//
	// Scoped providers must be resolved from a scope derived with
	// [Container.NewScope], not from the Container they were registered with.
	Scoped

	// Transient specifies that a new value is created for each resolution.
	Transient
)

// Lifetime is itself a ProvideOption:
//
//	c, err := coi.NewContainer(
//		coi.Provide(NewService, coi.Scoped),
//	)
func (l Lifetime) applyProvider(p *provider) error {
	p.lifetime = l
	return nil
}

var _ ProvideOption = Singleton

func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "Singleton"
	case Scoped:
		return "Scoped"
	case Transient:
		return "Transient"
	default:
		return fmt.Sprintf("Unknown Lifetime %d", l)
	}
}
