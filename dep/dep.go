/*
Package dep provides utilities for dependency injection.

Still just the one.
*/
package dep

import (
	"fmt"
	"reflect"
	"runtime"
)

// missing reports whether v is a value a constructor can't work with: an
// untyped nil, a nil pointer hiding in an interface, or an empty string.
func missing(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Func, reflect.Chan, reflect.Slice:
		return v.IsNil()
	case reflect.String:
		return v.Len() == 0
	}
	return false
}

// Required returns t, or panics naming the caller if t is missing.
func Required[T any](t T) T {
	if !missing(reflect.ValueOf(t)) {
		return t
	}
	pc, file, line, ok := runtime.Caller(1)
	if !ok {
		panic(fmt.Sprintf("missing required dependency of type %T", t))
	}
	if fn := runtime.FuncForPC(pc); fn != nil {
		panic(fmt.Sprintf("missing required dependency of type %T in %s (%s:%d)", t, fn.Name(), file, line))
	}
	panic(fmt.Sprintf("missing required dependency of type %T (%s:%d)", t, file, line))
}
