package modelbind

import "fmt"

// ModelType is the runtime descriptor of a model type. It carries the class
// level metadata and hooks, and inherits both from its parent until it owns
// them.
type ModelType struct {
	name   string
	kind   ModelKind
	parent *ModelType
	meta   metaSlot
	hooks  hooksSlot
}

// Root types. Generic models belong to them; declared types descend from them.
var (
	ObjectType     = &ModelType{name: "Object", kind: ModelObject}
	ArrayType      = &ModelType{name: "Array", kind: ModelArray}
	DictionaryType = &ModelType{name: "Dictionary", kind: ModelDictionary}
)

// TypeOption configures a ModelType at declaration.
type TypeOption func(*ModelType)

// Extends sets the parent type. A parent of another kind panics.
func Extends(parent *ModelType) TypeOption {
	return func(t *ModelType) {
		if parent.kind != t.kind {
			panic(fmt.Sprintf("modelbind: %s (a %s) cannot extend %s (a %s)", t.name, t.kind, parent.name, parent.kind))
		}
		t.parent = parent
	}
}

// WithHooks gives the type its own hooks. Hooks of another kind panic.
func WithHooks(h ModelHooks) TypeOption {
	return func(t *ModelType) {
		if err := WriteHooks(t, h); err != nil {
			panic(err)
		}
	}
}

func newModelType(name string, kind ModelKind, root *ModelType, meta Meta, opts []TypeOption) *ModelType {
	t := &ModelType{name: name, kind: kind, parent: root}
	for _, o := range opts {
		o(t)
	}
	if !isNilMeta(meta) {
		t.meta = metaSlot{state: owned, meta: meta}
	}
	return t
}

// NewObjectType declares a record type. A nil meta inherits the parent's.
func NewObjectType(name string, meta *ObjectMeta, opts ...TypeOption) *ModelType {
	var m Meta
	if meta != nil {
		m = meta
	}
	return newModelType(name, ModelObject, ObjectType, m, opts)
}

// NewArrayType declares an array type whose items match itemTypes.
func NewArrayType(name string, itemTypes *Types, opts ...TypeOption) *ModelType {
	var m Meta
	if itemTypes != nil {
		m = &ArrayMeta{ItemTypes: itemTypes}
	}
	return newModelType(name, ModelArray, ArrayType, m, opts)
}

// NewDictionaryType declares a dictionary type whose values match valueTypes.
func NewDictionaryType(name string, valueTypes *Types, opts ...TypeOption) *ModelType {
	var m Meta
	if valueTypes != nil {
		m = &DictionaryMeta{ValueTypes: valueTypes}
	}
	return newModelType(name, ModelDictionary, DictionaryType, m, opts)
}

func (t *ModelType) Name() string      { return t.name }
func (t *ModelType) Kind() ModelKind   { return t.kind }
func (t *ModelType) Parent() *ModelType { return t.parent }
func (t *ModelType) String() string    { return t.name }

// Ancestors returns t followed by its parents, nearest first.
func (t *ModelType) Ancestors() []*ModelType {
	var out []*ModelType
	for c := t; c != nil; c = c.parent {
		out = append(out, c)
	}
	return out
}

// IsSubtypeOf reports whether other is t or one of its ancestors.
func (t *ModelType) IsSubtypeOf(other *ModelType) bool {
	for c := t; c != nil; c = c.parent {
		if c == other {
			return true
		}
	}
	return false
}

// New returns an empty instance of t.
func (t *ModelType) New() Model {
	switch t.kind {
	case ModelObject:
		return NewObject(t)
	case ModelArray:
		return NewArray(t)
	default:
		return NewDictionary(t)
	}
}

func (t *ModelType) candidateName() string { return t.name }
func (t *ModelType) modelKind() ModelKind  { return t.kind }
func (t *ModelType) metaSlot() *metaSlot   { return &t.meta }
func (t *ModelType) hooksSlot() *hooksSlot { return &t.hooks }
func (t *ModelType) typeName() string      { return t.name }

func (t *ModelType) inheritFrom() Target {
	if t.parent == nil {
		return nil
	}
	return t.parent
}
