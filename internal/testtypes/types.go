// Package testtypes provides types and providers for use in tests.
package testtypes

import (
	"context"

	"github.com/Nashenas88/coi-go"
)

type InterfaceA interface {
	A()
}

type StructA struct {
	Tag int
}

func (*StructA) A() {}

func NewInterfaceA() InterfaceA {
	return &StructA{}
}

// ProvideInterfaceA provides an InterfaceA with no dependencies.
func ProvideInterfaceA(context.Context, coi.Scope) (InterfaceA, error) {
	return NewInterfaceA(), nil
}

type InterfaceB interface {
	B()
}

type StructB struct {
	A InterfaceA
}

func (*StructB) B() {}

// ProvideInterfaceB provides an InterfaceB that depends on InterfaceA.
func ProvideInterfaceB(ctx context.Context, s coi.Scope) (InterfaceB, error) {
	a, err := coi.Resolve[InterfaceA](ctx, s)
	if err != nil {
		return nil, err
	}

	return &StructB{A: a}, nil
}

// Closable records whether it was closed.
type Closable struct {
	Closed   bool
	CloseErr error
}

func (c *Closable) Close(context.Context) error {
	c.Closed = true
	return c.CloseErr
}
