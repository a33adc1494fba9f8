package modelbind

import (
	"fmt"
	"maps"
	"slices"
)

// Model is implemented by *Object, *Array and *Dictionary.
type Model interface {
	Target
	Type() *ModelType
	// Pointer is the JSON pointer ("#/a/0") of the model within the document
	// it was unmarshalled from.
	Pointer() string
	// URL locates the document the model was loaded from, if known.
	URL() string
	// Format is the serialization format the model was loaded from ("json", "yaml").
	Format() string
	state() *modelState
}

// ObjectModel is the capability set of records.
type ObjectModel interface {
	Model
	Get(name string) any
	SetField(name string, value any) error
	Item(key string) (any, bool)
	SetItem(key string, value any) error
	Fields() []string
}

// ArrayModel is the capability set of sequences.
type ArrayModel interface {
	Model
	Len() int
	At(i int) any
	SetItem(i int, value any) error
	Append(value any) error
}

// DictionaryModel is the capability set of mappings.
type DictionaryModel interface {
	Model
	Len() int
	Keys() []string
	Get(key string) (any, bool)
	SetItem(key string, value any) error
}

var (
	_ ObjectModel     = (*Object)(nil)
	_ ArrayModel      = (*Array)(nil)
	_ DictionaryModel = (*Dictionary)(nil)
)

// modelState is embedded by every model. The meta and hooks slots inherit
// from typ until the instance owns them.
type modelState struct {
	typ     *ModelType
	meta    metaSlot
	hooks   hooksSlot
	pointer string
	url     string
	format  string
}

func (s *modelState) Type() *ModelType      { return s.typ }
func (s *modelState) Pointer() string       { return s.pointer }
func (s *modelState) URL() string           { return s.url }
func (s *modelState) Format() string        { return s.format }
func (s *modelState) state() *modelState    { return s }
func (s *modelState) modelKind() ModelKind  { return s.typ.kind }
func (s *modelState) metaSlot() *metaSlot   { return &s.meta }
func (s *modelState) hooksSlot() *hooksSlot { return &s.hooks }
func (s *modelState) inheritFrom() Target   { return s.typ }
func (s *modelState) typeName() string      { return s.typ.name }

// clone copies the state, giving the copy its own instance meta and hooks
// when the original owns them.
func (s *modelState) clone() modelState {
	c := *s
	if s.meta.state == owned {
		c.meta.meta = s.meta.meta.cloneMeta()
	}
	if s.hooks.state == owned {
		c.hooks.hooks = s.hooks.hooks.cloneHooks()
	}
	return c
}

func checkKind(t *ModelType, want ModelKind) {
	if t.kind != want {
		panic(fmt.Sprintf("modelbind: %s is a %s type, not a %s type", t.name, t.kind, want))
	}
}

// Object is a record: named fields bound to the properties of its metadata.
// Keys without a property are kept as extras.
type Object struct {
	modelState
	values map[string]any
	extra  *Mapping
}

// NewObject returns an empty record of type t (ObjectType when nil).
// It panics if t is not a record type.
func NewObject(t *ModelType) *Object {
	if t == nil {
		t = ObjectType
	}
	checkKind(t, ModelObject)
	return &Object{modelState: modelState{typ: t}, values: map[string]any{}}
}

// Get returns the value of field name, or nil when absent.
func (o *Object) Get(name string) any { return o.values[name] }

// SetField assigns a field by name, converting value through the field's
// property. A nil value clears the field.
func (o *Object) SetField(name string, value any) error {
	st := &bindState{}
	if err := o.setField(name, value, st); err != nil {
		return err
	}
	st.flush()
	return nil
}

func (o *Object) setField(name string, value any, st *bindState) error {
	h := ReadObjectHooks(o)
	if h != nil && h.BeforeSetAttribute != nil {
		var err error
		if name, value, err = h.BeforeSetAttribute(o, name, value); err != nil {
			return err
		}
	}
	p, ok := ReadObjectMeta(o).Get(name)
	if !ok {
		return &UnmarshalKeyError{Type: o.typeName(), Key: name}
	}
	if value == nil {
		delete(o.values, name)
	} else {
		v, err := unmarshalProperty(value, p, o, st)
		if err != nil {
			return withPath(err, fieldToken(p.wireName(name)))
		}
		o.values[name] = v
		value = v
	}
	if h != nil && h.AfterSetAttribute != nil {
		return h.AfterSetAttribute(o, name, value)
	}
	return nil
}

// Item returns the value stored under a wire key, including extras.
func (o *Object) Item(key string) (any, bool) {
	if name, _, ok := ReadObjectMeta(o).fieldForKey(key); ok {
		v := o.values[name]
		return v, v != nil
	}
	return o.extra.Get(key)
}

// SetItem assigns by wire key. A key with no property is stored as an extra
// and reported through an UndefinedPropertyWarning.
func (o *Object) SetItem(key string, value any) error {
	st := &bindState{}
	if err := o.setItem(key, value, st); err != nil {
		return err
	}
	st.flush()
	return nil
}

func (o *Object) setItem(key string, value any, st *bindState) error {
	h := ReadObjectHooks(o)
	if h != nil && h.BeforeSetItem != nil {
		var err error
		if key, value, err = h.BeforeSetItem(o, key, value); err != nil {
			return err
		}
	}
	if name, _, ok := ReadObjectMeta(o).fieldForKey(key); ok {
		if err := o.setField(name, value, st); err != nil {
			return err
		}
		value = o.values[name]
	} else if value == nil {
		o.extra.Delete(key)
	} else {
		if o.extra == nil {
			o.extra = NewMapping()
		}
		o.extra.Set(key, value)
		w := UndefinedPropertyWarning{Type: o.typeName(), Key: key}
		if o.pointer != "" {
			w.Pointer = joinPointer(o.pointer, key)
		}
		st.warn(w)
	}
	if h != nil && h.AfterSetItem != nil {
		return h.AfterSetItem(o, key, value)
	}
	return nil
}

// DeleteField clears a field. Unknown names fail with *UnmarshalKeyError.
func (o *Object) DeleteField(name string) error {
	if _, ok := ReadObjectMeta(o).Get(name); !ok {
		return &UnmarshalKeyError{Type: o.typeName(), Key: name}
	}
	delete(o.values, name)
	return nil
}

// Fields returns the names of fields holding a value, in declaration order.
func (o *Object) Fields() []string {
	var out []string
	for _, n := range ReadObjectMeta(o).Names() {
		if o.values[n] != nil {
			out = append(out, n)
		}
	}
	return out
}

// Extra returns a copy of the keys that matched no property.
func (o *Object) Extra() *Mapping { return o.extra.Copy() }

// fill assigns every entry of data. Fields whose typing depends on the record
// are assigned last so their resolvers see the other fields.
func (o *Object) fill(data *Mapping, st *bindState) error {
	meta := ReadObjectMeta(o)
	var later []string
	for _, k := range data.Keys() {
		if _, p, ok := meta.fieldForKey(k); ok && p.dependsOnParent() {
			later = append(later, k)
			continue
		}
		if err := o.fillKey(data, k, st); err != nil {
			return err
		}
	}
	for _, k := range later {
		if err := o.fillKey(data, k, st); err != nil {
			return err
		}
	}
	return nil
}

func (o *Object) fillKey(data *Mapping, k string, st *bindState) error {
	v, _ := data.Get(k)
	if v == nil {
		v = Null
	}
	return o.setItem(k, v, st)
}

func (o *Object) Copy() *Object {
	return &Object{modelState: o.clone(), values: maps.Clone(o.values), extra: o.extra.Copy()}
}

func (o *Object) DeepCopy() *Object {
	c := o.Copy()
	for k, v := range c.values {
		c.values[k] = copyData(v)
	}
	c.extra, _ = copyData(o.extra).(*Mapping)
	return c
}

// Array is an ordered sequence whose items match the item types of its
// metadata.
type Array struct {
	modelState
	items []any
}

// NewArray returns an empty array of type t (ArrayType when nil).
func NewArray(t *ModelType) *Array {
	if t == nil {
		t = ArrayType
	}
	checkKind(t, ModelArray)
	return &Array{modelState: modelState{typ: t}}
}

func (a *Array) Len() int { return len(a.items) }

func (a *Array) At(i int) any { return a.items[i] }

// Items returns a copy of the items.
func (a *Array) Items() []any { return append([]any(nil), a.items...) }

func (a *Array) index(i, n int) (int, error) {
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("%w: index %d out of range for %s of length %d", ErrInvalidValue, i, a.typeName(), n)
	}
	return i, nil
}

func (a *Array) unmarshalItem(value any, st *bindState) (any, error) {
	return unmarshalValue(value, itemTypesOf(a), "item_types", containerTypes{}, a, st)
}

// SetItem replaces item i. Negative indexes count from the end.
func (a *Array) SetItem(i int, value any) error {
	st := &bindState{}
	if err := a.setItem(i, value, st); err != nil {
		return err
	}
	st.flush()
	return nil
}

func (a *Array) setItem(i int, value any, st *bindState) error {
	h := ReadArrayHooks(a)
	if h != nil && h.BeforeSetItem != nil {
		var err error
		if i, value, err = h.BeforeSetItem(a, i, value); err != nil {
			return err
		}
	}
	idx, err := a.index(i, len(a.items))
	if err != nil {
		return err
	}
	v, err := a.unmarshalItem(value, st)
	if err != nil {
		return withPath(err, indexToken(idx))
	}
	a.items[idx] = v
	if h != nil && h.AfterSetItem != nil {
		return h.AfterSetItem(a, idx, v)
	}
	return nil
}

// Append adds value at the end.
func (a *Array) Append(value any) error {
	st := &bindState{}
	if err := a.append(value, st); err != nil {
		return err
	}
	st.flush()
	return nil
}

func (a *Array) append(value any, st *bindState) error {
	h := ReadArrayHooks(a)
	if h != nil && h.BeforeAppend != nil {
		var err error
		if value, err = h.BeforeAppend(a, value); err != nil {
			return err
		}
	}
	v, err := a.unmarshalItem(value, st)
	if err != nil {
		return withPath(err, indexToken(len(a.items)))
	}
	a.items = append(a.items, v)
	if h != nil && h.AfterAppend != nil {
		return h.AfterAppend(a, v)
	}
	return nil
}

// Extend appends every value in order, stopping at the first failure.
func (a *Array) Extend(values ...any) error {
	for _, v := range values {
		if err := a.Append(v); err != nil {
			return err
		}
	}
	return nil
}

// Insert places value before item i. i may equal Len; a negative i counts
// from the end, so Insert(-1, v) lands before the last item. The value goes
// through the set-item hooks.
func (a *Array) Insert(i int, value any) error {
	n := len(a.items)
	idx := i
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx > n {
		return fmt.Errorf("%w: index %d out of range for insert into %s of length %d", ErrInvalidValue, i, a.typeName(), n)
	}
	a.items = slices.Insert(a.items, idx, any(Null))
	st := &bindState{}
	if err := a.setItem(idx, value, st); err != nil {
		a.items = slices.Delete(a.items, idx, idx+1)
		return err
	}
	st.flush()
	return nil
}

func (a *Array) Delete(i int) error {
	_, err := a.Pop(i)
	return err
}

// Pop removes and returns item i.
func (a *Array) Pop(i int) (any, error) {
	idx, err := a.index(i, len(a.items))
	if err != nil {
		return nil, err
	}
	v := a.items[idx]
	a.items = append(a.items[:idx], a.items[idx+1:]...)
	return v, nil
}

func (a *Array) Copy() *Array {
	return &Array{modelState: a.clone(), items: append([]any(nil), a.items...)}
}

func (a *Array) DeepCopy() *Array {
	c := a.Copy()
	for i, v := range c.items {
		c.items[i] = copyData(v)
	}
	return c
}

// Dictionary is a string-keyed mapping whose values match the value types of
// its metadata. Keys keep insertion order.
type Dictionary struct {
	modelState
	keys   []string
	values map[string]any
}

// NewDictionary returns an empty dictionary of type t (DictionaryType when nil).
func NewDictionary(t *ModelType) *Dictionary {
	if t == nil {
		t = DictionaryType
	}
	checkKind(t, ModelDictionary)
	return &Dictionary{modelState: modelState{typ: t}, values: map[string]any{}}
}

func (d *Dictionary) Len() int { return len(d.keys) }

// Keys returns the keys in insertion order.
func (d *Dictionary) Keys() []string { return append([]string(nil), d.keys...) }

func (d *Dictionary) Get(key string) (any, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Range calls fn for each entry in order until fn returns false.
func (d *Dictionary) Range(fn func(key string, value any) bool) {
	for _, k := range d.keys {
		if !fn(k, d.values[k]) {
			return
		}
	}
}

// SetItem stores value under key, converting it through the value types.
func (d *Dictionary) SetItem(key string, value any) error {
	st := &bindState{}
	if err := d.setItem(key, value, st); err != nil {
		return err
	}
	st.flush()
	return nil
}

func (d *Dictionary) setItem(key string, value any, st *bindState) error {
	h := ReadDictionaryHooks(d)
	if h != nil && h.BeforeSetItem != nil {
		var err error
		if key, value, err = h.BeforeSetItem(d, key, value); err != nil {
			return err
		}
	}
	v, err := unmarshalValue(value, valueTypesOf(d), "value_types", containerTypes{}, d, st)
	if err != nil {
		return withPath(err, fieldToken(key))
	}
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
	if h != nil && h.AfterSetItem != nil {
		return h.AfterSetItem(d, key, v)
	}
	return nil
}

// Delete removes key and reports whether it was present.
func (d *Dictionary) Delete(key string) bool {
	if _, ok := d.values[key]; !ok {
		return false
	}
	delete(d.values, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
	return true
}

func (d *Dictionary) Copy() *Dictionary {
	return &Dictionary{modelState: d.clone(), keys: append([]string(nil), d.keys...), values: maps.Clone(d.values)}
}

func (d *Dictionary) DeepCopy() *Dictionary {
	c := d.Copy()
	for k, v := range c.values {
		c.values[k] = copyData(v)
	}
	return c
}

// CopyModel returns a shallow copy of m. Owned instance metadata and hooks
// are copied with it.
func CopyModel(m Model) Model {
	switch x := m.(type) {
	case *Object:
		return x.Copy()
	case *Array:
		return x.Copy()
	case *Dictionary:
		return x.Copy()
	}
	return m
}

func deepCopyModel(m Model) Model {
	switch x := m.(type) {
	case *Object:
		return x.DeepCopy()
	case *Array:
		return x.DeepCopy()
	case *Dictionary:
		return x.DeepCopy()
	}
	return m
}

// DeepCopyModel returns a deep copy of m.
func DeepCopyModel(m Model) Model { return deepCopyModel(m) }

// CopyMetaTo gives dst a copy of the metadata and hooks src owns. Both must be
// of the same kind.
func CopyMetaTo(src, dst Model) error {
	if src.modelKind() != dst.modelKind() {
		return kindMismatch(dst, src.modelKind())
	}
	if s := src.metaSlot(); s.state == owned {
		if err := WriteMeta(dst, s.meta.cloneMeta()); err != nil {
			return err
		}
	}
	if s := src.hooksSlot(); s.state == owned {
		if err := WriteHooks(dst, s.hooks.cloneHooks()); err != nil {
			return err
		}
	}
	return nil
}
