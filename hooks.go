package modelbind

import "fmt"

// Hooks holds the lifecycle callbacks shared by every model kind. Before
// hooks may return a replacement for their input; an error from any hook is
// returned to the caller unchanged.
type Hooks struct {
	BeforeMarshal   func(m Model) (Model, error)
	AfterMarshal    func(data any) (any, error)
	BeforeUnmarshal func(data any) (any, error)
	AfterUnmarshal  func(m Model) (Model, error)
	BeforeSerialize func(data any) (any, error)
	AfterSerialize  func(text string) (string, error)
	BeforeValidate  func(m Model) (Model, error)
	AfterValidate   func(m Model) error
}

// ObjectHooks adds field and item assignment callbacks for records.
type ObjectHooks struct {
	Hooks
	BeforeSetAttribute func(o *Object, name string, value any) (string, any, error)
	AfterSetAttribute  func(o *Object, name string, value any) error
	BeforeSetItem      func(o *Object, key string, value any) (string, any, error)
	AfterSetItem       func(o *Object, key string, value any) error
}

// ArrayHooks adds item assignment and append callbacks for arrays.
type ArrayHooks struct {
	Hooks
	BeforeSetItem func(a *Array, index int, value any) (int, any, error)
	AfterSetItem  func(a *Array, index int, value any) error
	BeforeAppend  func(a *Array, value any) (any, error)
	AfterAppend   func(a *Array, value any) error
}

// DictionaryHooks adds item assignment callbacks for dictionaries.
type DictionaryHooks struct {
	Hooks
	BeforeSetItem func(d *Dictionary, key string, value any) (string, any, error)
	AfterSetItem  func(d *Dictionary, key string, value any) error
}

// ModelHooks is *ObjectHooks, *ArrayHooks or *DictionaryHooks.
type ModelHooks interface {
	ModelKind() ModelKind
	base() *Hooks
	cloneHooks() ModelHooks
}

func (h *ObjectHooks) ModelKind() ModelKind   { return ModelObject }
func (h *ObjectHooks) base() *Hooks           { return &h.Hooks }
func (h *ObjectHooks) cloneHooks() ModelHooks {
	c := *h
	return &c
}

func (h *ArrayHooks) ModelKind() ModelKind   { return ModelArray }
func (h *ArrayHooks) base() *Hooks           { return &h.Hooks }
func (h *ArrayHooks) cloneHooks() ModelHooks {
	c := *h
	return &c
}

func (h *DictionaryHooks) ModelKind() ModelKind   { return ModelDictionary }
func (h *DictionaryHooks) base() *Hooks           { return &h.Hooks }
func (h *DictionaryHooks) cloneHooks() ModelHooks {
	c := *h
	return &c
}

func newHooks(kind ModelKind) ModelHooks {
	switch kind {
	case ModelObject:
		return &ObjectHooks{}
	case ModelArray:
		return &ArrayHooks{}
	default:
		return &DictionaryHooks{}
	}
}

func isNilHooks(h ModelHooks) bool {
	switch v := h.(type) {
	case nil:
		return true
	case *ObjectHooks:
		return v == nil
	case *ArrayHooks:
		return v == nil
	case *DictionaryHooks:
		return v == nil
	}
	return false
}

type hooksSlot struct {
	state ownership
	hooks ModelHooks
}

// ReadHooks returns the hooks in effect for target: its own if owned, else
// the nearest ancestor's, else nil.
func ReadHooks(target Target) ModelHooks {
	for t := target; t != nil; t = t.inheritFrom() {
		if s := t.hooksSlot(); s.state == owned {
			return s.hooks
		}
	}
	return nil
}

// HooksOwned reports whether target owns its hooks.
func HooksOwned(target Target) bool { return target.hooksSlot().state == owned }

// WritableHooks returns hooks that can be mutated without affecting any other
// type or instance, copying inherited hooks on first use.
func WritableHooks(target Target) ModelHooks {
	s := target.hooksSlot()
	if s.state == owned {
		return s.hooks
	}
	var h ModelHooks
	if up := target.inheritFrom(); up != nil {
		if base := ReadHooks(up); base != nil {
			h = base.cloneHooks()
		}
	}
	if h == nil {
		h = newHooks(target.modelKind())
	}
	s.state, s.hooks = owned, h
	return h
}

// WriteHooks assigns h to target. A nil h returns target to inheriting.
func WriteHooks(target Target, h ModelHooks) error {
	s := target.hooksSlot()
	if isNilHooks(h) {
		s.state, s.hooks = inherited, nil
		return nil
	}
	if h.ModelKind() != target.modelKind() {
		return &ObjectDiscrepancyError{Message: fmt.Sprintf(
			"%s hooks cannot be assigned to %s (a %s)", h.ModelKind(), target.typeName(), target.modelKind())}
	}
	s.state, s.hooks = owned, h
	return nil
}

// ReadObjectHooks is ReadHooks for records. It returns nil for other kinds.
func ReadObjectHooks(target Target) *ObjectHooks {
	h, _ := ReadHooks(target).(*ObjectHooks)
	return h
}

// WritableObjectHooks is WritableHooks for records.
func WritableObjectHooks(target Target) (*ObjectHooks, error) {
	if target.modelKind() != ModelObject {
		return nil, kindMismatch(target, ModelObject)
	}
	return WritableHooks(target).(*ObjectHooks), nil
}

// ReadArrayHooks is ReadHooks for arrays. It returns nil for other kinds.
func ReadArrayHooks(target Target) *ArrayHooks {
	h, _ := ReadHooks(target).(*ArrayHooks)
	return h
}

// WritableArrayHooks is WritableHooks for arrays.
func WritableArrayHooks(target Target) (*ArrayHooks, error) {
	if target.modelKind() != ModelArray {
		return nil, kindMismatch(target, ModelArray)
	}
	return WritableHooks(target).(*ArrayHooks), nil
}

// ReadDictionaryHooks is ReadHooks for dictionaries. It returns nil for other kinds.
func ReadDictionaryHooks(target Target) *DictionaryHooks {
	h, _ := ReadHooks(target).(*DictionaryHooks)
	return h
}

// WritableDictionaryHooks is WritableHooks for dictionaries.
func WritableDictionaryHooks(target Target) (*DictionaryHooks, error) {
	if target.modelKind() != ModelDictionary {
		return nil, kindMismatch(target, ModelDictionary)
	}
	return WritableHooks(target).(*DictionaryHooks), nil
}

// baseHooks returns the shared callbacks in effect for target, or an empty set.
func baseHooks(target Target) *Hooks {
	if h := ReadHooks(target); h != nil {
		return h.base()
	}
	return &Hooks{}
}
