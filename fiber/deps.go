package fiber

import "reflect"

// Deps is an effect dependency list. A nil Deps means the effect runs after
// every commit; an empty, non-nil Deps means it runs only on mount.
type Deps []any

// EffectFunc runs after commit and may return a cleanup, which is called
// before the effect re-runs and when the component unmounts.
type EffectFunc func() (cleanup func())

func depsEqual(prev, next Deps) bool {
	if prev == nil || next == nil {
		return false
	}
	if len(prev) != len(next) {
		return false
	}
	for i := range prev {
		if !sameValue(prev[i], next[i]) {
			return false
		}
	}
	return true
}

// sameValue compares by == where the dynamic type allows it and by identity
// for maps and slices. Funcs have no identity in Go and never compare equal,
// nor do comparable values that hold an uncomparable one.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}
	if ta.Comparable() {
		return equalComparable(a, b)
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch ta.Kind() {
	case reflect.Map:
		return va.UnsafePointer() == vb.UnsafePointer()
	case reflect.Slice:
		return va.UnsafePointer() == vb.UnsafePointer() && va.Len() == vb.Len()
	default:
		return false
	}
}

// equalComparable is == for types whose interface fields or elements may
// still hold a slice, map or func at runtime, where == panics.
func equalComparable(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
