package coi

import "reflect"

// Injected marks a handler parameter as container-supplied.
//
// Declare a parameter of type Injected[T], where T is the capability type a
// provider is registered for, and the wrappers produced by [Wrap],
// coihttp.NewHandler, and coigin.NewHandler will remove the parameter from
// the public signature and resolve its value from the request scope instead:
//
//	func getData(w http.ResponseWriter, r *http.Request, svc coi.Injected[Service]) error {
//		return svc.Value.Handle(w, r)
//	}
//
// The wrapped function receives the resolved value in the Value field.
type Injected[T any] struct {
	// Value is the resolved dependency.
	Value T
}

func (Injected[T]) injectedElem() reflect.Type {
	return reflect.TypeFor[T]()
}

// injectedMarker is how the reflection code recognizes Injected[T]
// instantiations and recovers T.
type injectedMarker interface {
	injectedElem() reflect.Type
}

var typeInjectedMarker = reflect.TypeFor[injectedMarker]()

// injectedElemOf returns the capability type T if t is an Injected[T]
// instantiation.
func injectedElemOf(t reflect.Type) (reflect.Type, bool) {
	if t.Kind() != reflect.Struct || !t.Implements(typeInjectedMarker) {
		return nil, false
	}

	elem := reflect.Zero(t).Interface().(injectedMarker).injectedElem()
	return elem, true
}

// newInjectedValue builds an Injected[T] value of type t around the resolved
// value.
func newInjectedValue(t reflect.Type, elem reflect.Type, val any) reflect.Value {
	iv := reflect.New(t).Elem()
	iv.FieldByName("Value").Set(safeVal(elem, val))
	return iv
}
