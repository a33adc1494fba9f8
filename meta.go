package modelbind

import (
	"fmt"
	"slices"
)

// ModelKind distinguishes records, sequences and mappings.
type ModelKind uint8

const (
	ModelObject ModelKind = iota + 1
	ModelArray
	ModelDictionary
)

func (k ModelKind) String() string {
	switch k {
	case ModelObject:
		return "object"
	case ModelArray:
		return "array"
	case ModelDictionary:
		return "dictionary"
	}
	return fmt.Sprintf("ModelKind(%d)", uint8(k))
}

// Meta is the metadata bound to a model type or instance: *ObjectMeta,
// *ArrayMeta or *DictionaryMeta.
type Meta interface {
	ModelKind() ModelKind
	cloneMeta() Meta
}

// FieldDef pairs a field name with its property.
type FieldDef struct {
	Name     string
	Property *Property
}

// Field is shorthand for FieldDef{name, p}.
func Field(name string, p *Property) FieldDef { return FieldDef{Name: name, Property: p} }

// ObjectMeta maps field names to properties, preserving insertion order.
type ObjectMeta struct {
	names []string
	props map[string]*Property
}

// NewObjectMeta returns metadata holding fields in order.
func NewObjectMeta(fields ...FieldDef) *ObjectMeta {
	m := &ObjectMeta{props: map[string]*Property{}}
	for _, f := range fields {
		m.Set(f.Name, f.Property)
	}
	return m
}

func (m *ObjectMeta) ModelKind() ModelKind { return ModelObject }

// Set binds p to name. An existing name keeps its position.
func (m *ObjectMeta) Set(name string, p *Property) {
	if m.props == nil {
		m.props = map[string]*Property{}
	}
	if _, ok := m.props[name]; !ok {
		m.names = append(m.names, name)
	}
	m.props[name] = p
}

func (m *ObjectMeta) Get(name string) (*Property, bool) {
	if m == nil {
		return nil, false
	}
	p, ok := m.props[name]
	return p, ok
}

func (m *ObjectMeta) Delete(name string) {
	if _, ok := m.props[name]; !ok {
		return
	}
	delete(m.props, name)
	m.names = slices.DeleteFunc(m.names, func(n string) bool { return n == name })
}

// Names returns field names in declaration order.
func (m *ObjectMeta) Names() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.names)
}

func (m *ObjectMeta) Len() int {
	if m == nil {
		return 0
	}
	return len(m.names)
}

// fieldForKey resolves a wire key to its field. A property with a wire name
// is only reachable through that name.
func (m *ObjectMeta) fieldForKey(key string) (string, *Property, bool) {
	if m == nil {
		return "", nil, false
	}
	for _, n := range m.names {
		p := m.props[n]
		if p.wireName(n) == key {
			return n, p, true
		}
	}
	return "", nil, false
}

// DeepCopy copies the field table and every property.
func (m *ObjectMeta) DeepCopy() *ObjectMeta {
	c := &ObjectMeta{names: slices.Clone(m.names), props: make(map[string]*Property, len(m.props))}
	for n, p := range m.props {
		c.props[n] = p.DeepCopy()
	}
	return c
}

func (m *ObjectMeta) cloneMeta() Meta { return m.DeepCopy() }

// ArrayMeta holds the candidates for the items of an array.
type ArrayMeta struct {
	ItemTypes *Types
}

func (m *ArrayMeta) ModelKind() ModelKind { return ModelArray }

func (m *ArrayMeta) DeepCopy() *ArrayMeta { return &ArrayMeta{ItemTypes: m.ItemTypes.DeepCopy()} }

func (m *ArrayMeta) cloneMeta() Meta { return m.DeepCopy() }

// DictionaryMeta holds the candidates for the values of a dictionary.
type DictionaryMeta struct {
	ValueTypes *Types
}

func (m *DictionaryMeta) ModelKind() ModelKind { return ModelDictionary }

func (m *DictionaryMeta) DeepCopy() *DictionaryMeta {
	return &DictionaryMeta{ValueTypes: m.ValueTypes.DeepCopy()}
}

func (m *DictionaryMeta) cloneMeta() Meta { return m.DeepCopy() }

func newMeta(kind ModelKind) Meta {
	switch kind {
	case ModelObject:
		return NewObjectMeta()
	case ModelArray:
		return &ArrayMeta{}
	default:
		return &DictionaryMeta{}
	}
}

// isNilMeta reports a nil interface or a typed nil pointer.
func isNilMeta(m Meta) bool {
	switch v := m.(type) {
	case nil:
		return true
	case *ObjectMeta:
		return v == nil
	case *ArrayMeta:
		return v == nil
	case *DictionaryMeta:
		return v == nil
	}
	return false
}

// ownership is the state of a metadata or hooks slot: inherited from the
// parent type (or, for instances, from the model type) until owned.
type ownership uint8

const (
	inherited ownership = iota
	owned
)

type metaSlot struct {
	state ownership
	meta  Meta
}

// Target is a *ModelType or a Model: anything that carries metadata and hooks.
type Target interface {
	modelKind() ModelKind
	metaSlot() *metaSlot
	hooksSlot() *hooksSlot
	// inheritFrom returns the target consulted while this one inherits, or
	// nil at the root.
	inheritFrom() Target
	typeName() string
}

// ReadMeta returns the metadata in effect for target without mutating
// anything: its own if owned, else the nearest ancestor's, else nil.
func ReadMeta(target Target) Meta {
	for t := target; t != nil; t = t.inheritFrom() {
		if s := t.metaSlot(); s.state == owned {
			return s.meta
		}
	}
	return nil
}

// MetaOwned reports whether target owns its metadata.
func MetaOwned(target Target) bool { return target.metaSlot().state == owned }

// WritableMeta returns metadata that can be mutated without affecting any
// other type or instance. On first use it materializes a deep copy of the
// inherited metadata (or empty metadata of the target's kind).
func WritableMeta(target Target) Meta {
	s := target.metaSlot()
	if s.state == owned {
		return s.meta
	}
	var m Meta
	if up := target.inheritFrom(); up != nil {
		if base := ReadMeta(up); base != nil {
			m = base.cloneMeta()
		}
	}
	if m == nil {
		m = newMeta(target.modelKind())
	}
	s.state, s.meta = owned, m
	return m
}

// WriteMeta assigns m to target. A nil m returns target to inheriting. The
// kind of m must match the kind of target.
func WriteMeta(target Target, m Meta) error {
	s := target.metaSlot()
	if isNilMeta(m) {
		s.state, s.meta = inherited, nil
		return nil
	}
	if m.ModelKind() != target.modelKind() {
		return &ObjectDiscrepancyError{Message: fmt.Sprintf(
			"%s metadata cannot be assigned to %s (a %s)", m.ModelKind(), target.typeName(), target.modelKind())}
	}
	s.state, s.meta = owned, m
	return nil
}

func kindMismatch(target Target, want ModelKind) error {
	return &ObjectDiscrepancyError{Message: fmt.Sprintf(
		"%s is a %s, not a %s", target.typeName(), target.modelKind(), want)}
}

// ReadObjectMeta is ReadMeta for records. It returns nil for other kinds.
func ReadObjectMeta(target Target) *ObjectMeta {
	m, _ := ReadMeta(target).(*ObjectMeta)
	return m
}

// WritableObjectMeta is WritableMeta for records.
func WritableObjectMeta(target Target) (*ObjectMeta, error) {
	if target.modelKind() != ModelObject {
		return nil, kindMismatch(target, ModelObject)
	}
	return WritableMeta(target).(*ObjectMeta), nil
}

// ReadArrayMeta is ReadMeta for arrays. It returns nil for other kinds.
func ReadArrayMeta(target Target) *ArrayMeta {
	m, _ := ReadMeta(target).(*ArrayMeta)
	return m
}

// WritableArrayMeta is WritableMeta for arrays.
func WritableArrayMeta(target Target) (*ArrayMeta, error) {
	if target.modelKind() != ModelArray {
		return nil, kindMismatch(target, ModelArray)
	}
	return WritableMeta(target).(*ArrayMeta), nil
}

// ReadDictionaryMeta is ReadMeta for dictionaries. It returns nil for other kinds.
func ReadDictionaryMeta(target Target) *DictionaryMeta {
	m, _ := ReadMeta(target).(*DictionaryMeta)
	return m
}

// WritableDictionaryMeta is WritableMeta for dictionaries.
func WritableDictionaryMeta(target Target) (*DictionaryMeta, error) {
	if target.modelKind() != ModelDictionary {
		return nil, kindMismatch(target, ModelDictionary)
	}
	return WritableMeta(target).(*DictionaryMeta), nil
}

func itemTypesOf(target Target) *Types {
	if m := ReadArrayMeta(target); m != nil {
		return m.ItemTypes
	}
	return nil
}

func valueTypesOf(target Target) *Types {
	if m := ReadDictionaryMeta(target); m != nil {
		return m.ValueTypes
	}
	return nil
}
