package coi

import (
	"errors"
)

var (
	// ErrNotAttached is returned when a request scope is requested before a
	// Container has been attached to the request context.
	ErrNotAttached = errors.New("container not attached")
	// ErrNotRegistered is returned when no provider is registered for a type.
	ErrNotRegistered = errors.New("no provider registered")
	// ErrDependencyCycle is returned when a provider depends on itself,
	// directly or through other providers.
	ErrDependencyCycle = errors.New("dependency cycle detected")
	// ErrContainerClosed is returned when a closed Container is used.
	ErrContainerClosed = errors.New("container closed")
)
