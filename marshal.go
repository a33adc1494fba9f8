package modelbind

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/reoring/modelbind/codec"
)

// Marshal converts v into plain data: *Mapping, []any, string, bool, int64,
// float64 or nil. Records emit their fields in declaration order under their
// wire names, followed by extras. Null becomes nil.
func Marshal(v any) (any, error) {
	return marshalValue(v, nil, containerTypes{}, nil)
}

// MarshalTypes is Marshal guided by a candidate list for values that are not
// models, such as dates and byte strings.
func MarshalTypes(v any, types *Types) (any, error) {
	return marshalValue(v, types, containerTypes{}, nil)
}

func marshalValue(v any, types *Types, ct containerTypes, parent Model) (any, error) {
	switch x := v.(type) {
	case nil, NullType:
		return nil, nil
	case Model:
		return marshalModel(x)
	}
	if types.Len() > 0 {
		return marshalTyped(v, types, ct, parent)
	}
	return marshalPlain(v, ct, parent)
}

func marshalModel(m Model) (any, error) {
	h := baseHooks(m)
	if h.BeforeMarshal != nil {
		var err error
		if m, err = h.BeforeMarshal(m); err != nil {
			return nil, err
		}
	}
	var (
		data any
		err  error
	)
	switch x := m.(type) {
	case *Object:
		data, err = x.marshalFields()
	case *Array:
		data, err = x.marshalItems()
	case *Dictionary:
		data, err = x.marshalEntries()
	default:
		return nil, &ObjectDiscrepancyError{Message: fmt.Sprintf("cannot marshal %T", m)}
	}
	if err != nil {
		return nil, err
	}
	if h.AfterMarshal != nil {
		return h.AfterMarshal(data)
	}
	return data, nil
}

func (o *Object) marshalFields() (*Mapping, error) {
	out := NewMapping()
	meta := ReadObjectMeta(o)
	for _, name := range meta.Names() {
		v := o.values[name]
		if v == nil {
			continue
		}
		p, _ := meta.Get(name)
		mv, err := marshalProperty(v, p, o)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", o.typeName(), name, err)
		}
		out.Set(p.wireName(name), mv)
	}
	var err error
	o.extra.Range(func(k string, v any) bool {
		if out.Has(k) {
			return true
		}
		var mv any
		if mv, err = marshalValue(v, nil, containerTypes{}, o); err != nil {
			return false
		}
		out.Set(k, mv)
		return true
	})
	return out, err
}

func (a *Array) marshalItems() ([]any, error) {
	types := itemTypesOf(a)
	out := make([]any, len(a.items))
	for i, v := range a.items {
		mv, err := marshalValue(v, types, containerTypes{}, a)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", a.typeName(), i, err)
		}
		out[i] = mv
	}
	return out, nil
}

func (d *Dictionary) marshalEntries() (*Mapping, error) {
	types := valueTypesOf(d)
	out := NewMapping()
	for _, k := range d.keys {
		mv, err := marshalValue(d.values[k], types, containerTypes{}, d)
		if err != nil {
			return nil, fmt.Errorf("%s[%q]: %w", d.typeName(), k, err)
		}
		out.Set(k, mv)
	}
	return out, nil
}

func marshalProperty(v any, p *Property, parent Model) (any, error) {
	switch v.(type) {
	case nil, NullType:
		return nil, nil
	}
	switch p.kind {
	case PropertyDate:
		switch x := v.(type) {
		case Date:
			return p.DateToString(x), nil
		case time.Time:
			return p.DateToString(DateOf(x)), nil
		}
	case PropertyDateTime:
		if t, ok := v.(time.Time); ok {
			return p.DateTimeToString(t), nil
		}
	case PropertyBytes:
		if b, ok := v.([]byte); ok {
			return base64.StdEncoding.EncodeToString(b), nil
		}
	case PropertyArray:
		if _, ok := v.(Model); !ok {
			items, err := p.itemTypes.Resolve(parent)
			if err != nil {
				return nil, err
			}
			return marshalPlain(v, containerTypes{items: items}, parent)
		}
	case PropertyDictionary:
		if _, ok := v.(Model); !ok {
			values, err := p.valueTypes.Resolve(parent)
			if err != nil {
				return nil, err
			}
			return marshalPlain(v, containerTypes{values: values}, parent)
		}
	}
	types, err := p.types.Resolve(parent)
	if err != nil {
		return nil, err
	}
	return marshalValue(v, types, containerTypes{}, parent)
}

// marshalTyped marshals v through the first candidate it satisfies.
func marshalTyped(v any, types *Types, ct containerTypes, parent Model) (any, error) {
	for _, c := range types.entries {
		if p, ok := c.(*Property); ok && propertyAccepts(v, p, parent) {
			return marshalProperty(v, p, parent)
		}
	}
	return marshalPlain(v, ct, parent)
}

func marshalPlain(v any, ct containerTypes, parent Model) (any, error) {
	switch x := v.(type) {
	case nil, NullType:
		return nil, nil
	case Model:
		return marshalModel(x)
	case []byte:
		return base64.StdEncoding.EncodeToString(x), nil
	case Date:
		return x.String(), nil
	case time.Time:
		return codec.FormatDateTime(x), nil
	}
	if n, ok := normalizeScalar(v); ok {
		return n, nil
	}
	if mp, ok := asMapping(v); ok {
		out := NewMapping()
		for _, k := range mp.Keys() {
			x, _ := mp.Get(k)
			mv, err := marshalValue(x, ct.values, containerTypes{}, parent)
			if err != nil {
				return nil, err
			}
			out.Set(k, mv)
		}
		return out, nil
	}
	if seq, ok := asSequence(v); ok {
		out := make([]any, len(seq))
		for i, x := range seq {
			mv, err := marshalValue(x, ct.items, containerTypes{}, parent)
			if err != nil {
				return nil, err
			}
			out[i] = mv
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %T cannot be marshalled", ErrInvalidType, v)
}
