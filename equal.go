package modelbind

import (
	"bytes"
	"reflect"
	"time"
)

// Equal reports whether a and b hold the same data. Model types are ignored
// beyond their kind. Records compare by field values and extras, arrays by
// items in order, dictionaries and mappings by entries regardless of order.
// Numbers compare by value across integer and float representations.
func Equal(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case NullType:
		_, ok := b.(NullType)
		return ok
	case *Object:
		y, ok := b.(*Object)
		return ok && objectsEqual(x, y)
	case *Array:
		y, ok := b.(*Array)
		return ok && sequencesEqual(x.items, y.items)
	case *Dictionary:
		y, ok := b.(*Dictionary)
		if !ok || len(x.keys) != len(y.keys) {
			return false
		}
		for k, v := range x.values {
			w, ok := y.values[k]
			if !ok || !Equal(v, w) {
				return false
			}
		}
		return true
	case Date:
		y, ok := b.(Date)
		return ok && x == y
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	case []byte:
		y, ok := b.([]byte)
		return ok && bytes.Equal(x, y)
	}
	if _, ok := b.(Model); ok {
		return false
	}
	if mx, ok := asMapping(a); ok {
		my, ok := asMapping(b)
		return ok && mx.Equal(my)
	}
	if sx, ok := asSequence(a); ok {
		sy, ok := asSequence(b)
		return ok && sequencesEqual(sx, sy)
	}
	if nx, ok := numeric(a); ok {
		ny, ok := numeric(b)
		return ok && nx == ny
	}
	return reflect.DeepEqual(a, b)
}

func objectsEqual(x, y *Object) bool {
	if len(x.values) != len(y.values) {
		return false
	}
	for k, v := range x.values {
		w, ok := y.values[k]
		if !ok || !Equal(v, w) {
			return false
		}
	}
	if x.extra.Len() != y.extra.Len() {
		return false
	}
	return x.extra.Len() == 0 || x.extra.Equal(y.extra)
}

func sequencesEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func numeric(v any) (float64, bool) {
	n, ok := normalizeScalar(v)
	if !ok {
		return 0, false
	}
	switch x := n.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}
