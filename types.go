package coi

import (
	"context"
	"net/http"
	"reflect"
)

// These are commonly used types.
var (
	typeError   = reflect.TypeFor[error]()
	typeContext = reflect.TypeFor[context.Context]()
	typeRequest = reflect.TypeFor[*http.Request]()
)
