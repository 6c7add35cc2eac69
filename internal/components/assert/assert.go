// Package assert guards constructor arguments that a caller can only get
// wrong by programming error, such as a missing telemetry API.
package assert

import (
	"fmt"
	"reflect"
)

// NotNil panics when value is nil, including a nil pointer, map, func or
// chan stored in an interface.
func NotNil(name string, value any) {
	if value == nil {
		panic(fmt.Sprintf("uwcatalog: %s must not be nil", name))
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan, reflect.Interface, reflect.Slice:
		if v.IsNil() {
			panic(fmt.Sprintf("uwcatalog: %s must not be a nil %s", name, v.Type()))
		}
	}
}

// NotEmptyStr panics when str is empty or only whitespace.
func NotEmptyStr(name, str string) {
	for _, r := range str {
		if r != ' ' && r != '\t' && r != '\n' {
			return
		}
	}
	panic(fmt.Sprintf("uwcatalog: %s must not be empty", name))
}
