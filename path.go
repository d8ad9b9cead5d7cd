package meterface

import (
	"fmt"
	"reflect"
)

// pathString coerces an outcome path or cause to its stable textual form:
// strings as-is, errors by type name (fully qualified when qualified is
// set, with the error message returned separately), named values via
// fmt.Stringer, and anything else via its default textual representation.
func pathString(v any, qualified bool) (path, message string) {
	switch v := v.(type) {
	case nil:
		return ``, ``
	case string:
		return v, ``
	case error:
		if qualified {
			return qualifiedTypeName(v), v.Error()
		}
		return simpleTypeName(v), v.Error()
	case fmt.Stringer:
		return v.String(), ``
	default:
		return fmt.Sprint(v), ``
	}
}

func qualifiedTypeName(v any) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() != `` {
		return t.PkgPath() + `.` + t.Name()
	}
	return t.String()
}

func simpleTypeName(v any) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != `` {
		return t.Name()
	}
	return t.String()
}
