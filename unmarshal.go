package modelbind

import (
	"encoding/base64"
	"fmt"
	"math"
	"time"
)

// containerTypes carries item or value candidates for a generic Array or
// Dictionary created while resolving an ArrayProperty or DictionaryProperty.
type containerTypes struct {
	items  *Types
	values *Types
}

// Unmarshal converts plain data into models using types as candidates, tried
// in order. With no types, mappings become Dictionaries and sequences become
// Arrays. A literal null yields Null.
func Unmarshal(data any, types ...Candidate) (any, error) {
	ts, err := NewTypes(types...)
	if err != nil {
		return nil, err
	}
	return UnmarshalTypes(data, ts)
}

// UnmarshalTypes is Unmarshal with a prepared candidate list.
func UnmarshalTypes(data any, types *Types) (any, error) {
	st := &bindState{}
	v, err := unmarshalValue(data, types, "types", containerTypes{}, nil, st)
	if err != nil {
		return nil, err
	}
	if m, ok := v.(Model); ok && m.Pointer() == "" {
		SetPointer(m, "#")
	}
	st.flush()
	return v, nil
}

// UnmarshalAs converts data into a model of type t.
func UnmarshalAs(data any, t *ModelType) (Model, error) {
	st := &bindState{}
	m, err := unmarshalModel(data, t, containerTypes{}, st)
	if err != nil {
		return nil, asUnmarshalError(err, data, MustTypes(t), "types")
	}
	if m.Pointer() == "" {
		SetPointer(m, "#")
	}
	st.flush()
	return m, nil
}

// UnmarshalObject converts data into a record of type t (ObjectType when nil).
func UnmarshalObject(data any, t *ModelType) (*Object, error) {
	if t == nil {
		t = ObjectType
	}
	if t.kind != ModelObject {
		return nil, kindMismatch(t, ModelObject)
	}
	m, err := UnmarshalAs(data, t)
	if err != nil {
		return nil, err
	}
	o, ok := m.(*Object)
	if !ok {
		return nil, &ObjectDiscrepancyError{Message: fmt.Sprintf("%s unmarshalled into %T", t.name, m)}
	}
	return o, nil
}

// UnmarshalArray converts data into an array of type t (ArrayType when nil).
func UnmarshalArray(data any, t *ModelType) (*Array, error) {
	if t == nil {
		t = ArrayType
	}
	if t.kind != ModelArray {
		return nil, kindMismatch(t, ModelArray)
	}
	m, err := UnmarshalAs(data, t)
	if err != nil {
		return nil, err
	}
	a, ok := m.(*Array)
	if !ok {
		return nil, &ObjectDiscrepancyError{Message: fmt.Sprintf("%s unmarshalled into %T", t.name, m)}
	}
	return a, nil
}

// UnmarshalDictionary converts data into a dictionary of type t
// (DictionaryType when nil).
func UnmarshalDictionary(data any, t *ModelType) (*Dictionary, error) {
	if t == nil {
		t = DictionaryType
	}
	if t.kind != ModelDictionary {
		return nil, kindMismatch(t, ModelDictionary)
	}
	m, err := UnmarshalAs(data, t)
	if err != nil {
		return nil, err
	}
	d, ok := m.(*Dictionary)
	if !ok {
		return nil, &ObjectDiscrepancyError{Message: fmt.Sprintf("%s unmarshalled into %T", t.name, m)}
	}
	return d, nil
}

// kindError records a candidate rejected because of the kind of the data.
type kindError struct {
	want Candidate
	data any
}

func (e *kindError) Error() string {
	return fmt.Sprintf("%s: got %s", e.want.candidateName(), describeKind(e.data))
}

func describeKind(data any) string {
	if _, ok := asMapping(data); ok {
		return "a mapping"
	}
	if _, ok := asSequence(data); ok {
		return "a sequence"
	}
	switch v, _ := normalizeScalar(data); v.(type) {
	case string:
		return "a string"
	case []byte:
		return "bytes"
	case bool:
		return "a boolean"
	case int64:
		return "an integer"
	case float64:
		return "a number"
	case Date:
		return "a date"
	case time.Time:
		return "a date-time"
	case NullType:
		return "null"
	}
	return fmt.Sprintf("%T", data)
}

// asUnmarshalError turns a bare kind rejection into an *UnmarshalError.
func asUnmarshalError(err error, data any, types *Types, label string) error {
	if ke, ok := err.(*kindError); ok {
		return &UnmarshalError{Reason: ReasonType, Data: data, Types: types, Label: label, Attempts: []error{ke}}
	}
	return err
}

func unmarshalValue(data any, types *Types, label string, ct containerTypes, parent Model, st *bindState) (any, error) {
	switch d := data.(type) {
	case nil, NullType:
		return Null, nil
	case Model:
		if types.Len() == 0 || acceptsModel(types, d, parent) {
			return d, nil
		}
		plain, err := Marshal(d)
		if err != nil {
			return nil, err
		}
		data = plain
	}
	if types.Len() == 0 {
		return unmarshalUntyped(data, ct, st)
	}
	return unmarshalTyped(data, types, label, ct, parent, st)
}

// acceptsModel reports whether m already satisfies one of the candidates and
// can be kept as is.
func acceptsModel(types *Types, m Model, parent Model) bool {
	for _, c := range types.entries {
		switch c := c.(type) {
		case *ModelType:
			if m.Type().IsSubtypeOf(c) {
				return true
			}
		case *Property:
			switch c.kind {
			case PropertyArray:
				if _, ok := m.(*Array); ok {
					return true
				}
			case PropertyDictionary:
				if _, ok := m.(*Dictionary); ok {
					return true
				}
			case PropertyAny, PropertyEnumerated:
				ts, err := c.types.Resolve(parent)
				if err == nil && (ts.Len() == 0 || acceptsModel(ts, m, parent)) {
					return true
				}
			}
		}
	}
	return false
}

func unmarshalUntyped(data any, ct containerTypes, st *bindState) (any, error) {
	if _, ok := asMapping(data); ok {
		return unmarshalModel(data, DictionaryType, ct, st)
	}
	if _, ok := asSequence(data); ok {
		return unmarshalModel(data, ArrayType, ct, st)
	}
	if v, ok := normalizeScalar(data); ok {
		return v, nil
	}
	return nil, &UnmarshalError{Reason: ReasonType, Data: data, Detail: fmt.Sprintf("%T is not plain data", data)}
}

// unmarshalTyped tries each candidate in order. The first candidate that
// accepts the data without leftover keys wins; failing that, the accepted
// record with the fewest leftover keys does.
func unmarshalTyped(data any, types *Types, label string, ct containerTypes, parent Model, st *bindState) (any, error) {
	var (
		attempts  []error
		partial   any
		partialSt *bindState
		extras    = -1
	)
	for _, c := range types.entries {
		trial := &bindState{}
		v, err := unmarshalCandidate(data, c, ct, parent, trial)
		if err != nil {
			attempts = append(attempts, err)
			continue
		}
		if o, ok := v.(*Object); ok && o.extra.Len() > 0 {
			if extras < 0 || o.extra.Len() < extras {
				partial, partialSt, extras = v, trial, o.extra.Len()
			}
			continue
		}
		st.merge(trial)
		return v, nil
	}
	if extras >= 0 {
		st.merge(partialSt)
		return partial, nil
	}
	if len(attempts) == 1 {
		if _, ok := attempts[0].(*kindError); !ok {
			return nil, attempts[0]
		}
	}
	reason := ReasonValue
	if len(attempts) > 0 && isTypeFailure(attempts[0]) {
		reason = ReasonType
	}
	return nil, &UnmarshalError{Reason: reason, Data: data, Types: types, Label: label, Attempts: attempts}
}

func isTypeFailure(err error) bool {
	switch e := err.(type) {
	case *kindError:
		return true
	case *UnmarshalError:
		return e.Reason == ReasonType
	}
	return false
}

func unmarshalCandidate(data any, c Candidate, ct containerTypes, parent Model, st *bindState) (any, error) {
	switch c := c.(type) {
	case Kind:
		if v, ok := coerceKind(data, c); ok {
			return v, nil
		}
		return nil, &kindError{want: c, data: data}
	case *ModelType:
		if c != ArrayType && c != DictionaryType {
			ct = containerTypes{}
		}
		return unmarshalModel(data, c, ct, st)
	case *Property:
		return unmarshalProperty(data, c, parent, st)
	}
	return nil, fmt.Errorf("%w: %T is not a type candidate", ErrInvalidType, c)
}

// unmarshalModel builds an instance of t from data. The before-unmarshal hook
// receives a copy of data.
func unmarshalModel(data any, t *ModelType, ct containerTypes, st *bindState) (Model, error) {
	h := baseHooks(t)
	if h.BeforeUnmarshal != nil {
		var err error
		if data, err = h.BeforeUnmarshal(copyData(data)); err != nil {
			return nil, err
		}
	}
	var m Model
	switch t.kind {
	case ModelObject:
		mp, ok := asMapping(data)
		if !ok {
			return nil, &kindError{want: t, data: data}
		}
		o := NewObject(t)
		if err := o.fill(mp, st); err != nil {
			return nil, err
		}
		m = o
	case ModelArray:
		seq, ok := asSequence(data)
		if !ok {
			return nil, &kindError{want: t, data: data}
		}
		a := NewArray(t)
		if ct.items.Len() > 0 {
			WritableMeta(a).(*ArrayMeta).ItemTypes = ct.items.DeepCopy()
		}
		for _, v := range seq {
			if err := a.append(v, st); err != nil {
				return nil, err
			}
		}
		m = a
	case ModelDictionary:
		mp, ok := asMapping(data)
		if !ok {
			return nil, &kindError{want: t, data: data}
		}
		d := NewDictionary(t)
		if ct.values.Len() > 0 {
			WritableMeta(d).(*DictionaryMeta).ValueTypes = ct.values.DeepCopy()
		}
		for _, k := range mp.Keys() {
			v, _ := mp.Get(k)
			if err := d.setItem(k, v, st); err != nil {
				return nil, err
			}
		}
		m = d
	}
	if h.AfterUnmarshal != nil {
		return h.AfterUnmarshal(m)
	}
	return m, nil
}

// unmarshalProperty converts data for one property. parent is the model the
// value will be stored in and is handed to deferred resolvers.
func unmarshalProperty(data any, p *Property, parent Model, st *bindState) (any, error) {
	switch data.(type) {
	case nil, NullType:
		return Null, nil
	}
	switch p.kind {
	case PropertyDate:
		switch v := data.(type) {
		case Date:
			return v, nil
		case time.Time:
			return DateOf(v), nil
		case string:
			d, err := p.DateFromString(v)
			if err != nil {
				return nil, &UnmarshalError{Reason: ReasonValue, Data: data, Types: MustTypes(p), Attempts: []error{err}}
			}
			return d, nil
		}
		return nil, &UnmarshalError{Reason: ReasonType, Data: data, Types: MustTypes(p)}
	case PropertyDateTime:
		switch v := data.(type) {
		case time.Time:
			return v, nil
		case Date:
			return v.Time(), nil
		case string:
			t, err := p.DateTimeFromString(v)
			if err != nil {
				return nil, &UnmarshalError{Reason: ReasonValue, Data: data, Types: MustTypes(p), Attempts: []error{err}}
			}
			return t, nil
		}
		return nil, &UnmarshalError{Reason: ReasonType, Data: data, Types: MustTypes(p)}
	case PropertyBytes:
		switch v := data.(type) {
		case []byte:
			return v, nil
		case string:
			b, err := base64.StdEncoding.DecodeString(v)
			if err != nil {
				return nil, &UnmarshalError{Reason: ReasonValue, Data: data, Types: MustTypes(p), Attempts: []error{err}}
			}
			return b, nil
		}
		return nil, &UnmarshalError{Reason: ReasonType, Data: data, Types: MustTypes(p)}
	case PropertyEnumerated:
		values, err := p.values.Resolve(parent)
		if err != nil {
			return nil, err
		}
		if values != nil && !containsValue(values, data) {
			return nil, &UnmarshalError{
				Reason: ReasonValue,
				Data:   data,
				Types:  MustTypes(p),
				Detail: "The value provided is not a valid option: " + represent(values),
			}
		}
	case PropertyArray:
		items, err := p.itemTypes.Resolve(parent)
		if err != nil {
			return nil, err
		}
		return unmarshalValue(data, p.types.fixed, "types", containerTypes{items: items}, parent, st)
	case PropertyDictionary:
		values, err := p.valueTypes.Resolve(parent)
		if err != nil {
			return nil, err
		}
		return unmarshalValue(data, p.types.fixed, "types", containerTypes{values: values}, parent, st)
	}
	types, err := p.types.Resolve(parent)
	if err != nil {
		return nil, err
	}
	return unmarshalValue(data, types, "types", containerTypes{}, parent, st)
}

func containsValue(values []any, v any) bool {
	for _, x := range values {
		if Equal(x, v) {
			return true
		}
	}
	return false
}

// coerceKind returns data as a value of kind k. Integral floats are accepted
// as integers and integers as numbers.
func coerceKind(data any, k Kind) (any, bool) {
	if k == KindNull {
		switch data.(type) {
		case nil, NullType:
			return Null, true
		}
		return nil, false
	}
	v, ok := normalizeScalar(data)
	if !ok {
		return nil, false
	}
	switch k {
	case KindString:
		s, ok := v.(string)
		return s, ok
	case KindBytes:
		b, ok := v.([]byte)
		return b, ok
	case KindBoolean:
		b, ok := v.(bool)
		return b, ok
	case KindInteger:
		switch n := v.(type) {
		case int64:
			return n, true
		case float64:
			if n == math.Trunc(n) && n >= math.MinInt64 && n < math.MaxInt64 {
				return int64(n), true
			}
		}
	case KindNumber:
		switch n := v.(type) {
		case int64, float64:
			return n, true
		}
	case KindDate:
		d, ok := v.(Date)
		return d, ok
	case KindDateTime:
		t, ok := v.(time.Time)
		return t, ok
	}
	return nil, false
}
