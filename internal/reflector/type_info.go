// Package reflector derives stable names for message types, cached per
// reflect.Type. The names label metrics and log fields.
package reflector

import (
	"reflect"
	"sync"
)

var (
	muCache sync.RWMutex
	cache   = make(map[reflect.Type]TypeInfo)
)

// TypeInfo describes one message type.
type TypeInfo struct {
	Name string
	Type reflect.Type
}

// TypeInfoOf returns the TypeInfo for the dynamic type of x.
func TypeInfoOf(x any) TypeInfo {
	return TypeInfoForType(reflect.TypeOf(x))
}

// TypeInfoFor returns the TypeInfo for T.
func TypeInfoFor[T any]() TypeInfo {
	return TypeInfoForType(reflect.TypeOf((*T)(nil)).Elem())
}

// TypeInfoForType returns the TypeInfo for t, following one level of
// pointer indirection. Unnamed types (maps, slices, anonymous structs)
// fall back to their type literal.
func TypeInfoForType(t reflect.Type) TypeInfo {
	if t == nil {
		return TypeInfo{}
	}

	muCache.RLock()
	ti, ok := cache[t]
	muCache.RUnlock()
	if ok {
		return ti
	}

	orig := t
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	name := t.Name()
	if name == "" {
		name = t.String()
	} else if pkg := t.PkgPath(); pkg != "" {
		name = pkg + "." + name
	}

	ti = TypeInfo{
		Name: name,
		Type: t,
	}

	muCache.Lock()
	cache[orig] = ti
	muCache.Unlock()
	return ti
}
