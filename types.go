package modelbind

import (
	"fmt"
	"strings"
)

// Kind tags a primitive shape in a Types list.
type Kind uint8

const (
	KindString Kind = iota + 1
	KindBytes
	KindBoolean
	KindInteger
	KindNumber
	KindDate
	KindDateTime
	KindNull
)

var kindNames = map[Kind]string{
	KindString:   "String",
	KindBytes:    "Bytes",
	KindBoolean:  "Boolean",
	KindInteger:  "Integer",
	KindNumber:   "Number",
	KindDate:     "Date",
	KindDateTime: "DateTime",
	KindNull:     "Null",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

func (k Kind) candidateName() string { return k.String() }

// Candidate is one acceptable shape in a Types list: a Kind, a *Property or a
// *ModelType.
type Candidate interface {
	candidateName() string
}

func checkCandidate(c Candidate) error {
	switch v := c.(type) {
	case Kind:
		if _, ok := kindNames[v]; !ok {
			return fmt.Errorf("%w: unknown kind %d", ErrInvalidType, uint8(v))
		}
	case *Property:
		if v == nil {
			return fmt.Errorf("%w: nil property", ErrInvalidType)
		}
	case *ModelType:
		if v == nil {
			return fmt.Errorf("%w: nil model type", ErrInvalidType)
		}
	default:
		return fmt.Errorf("%w: %T is not a type candidate", ErrInvalidType, c)
	}
	return nil
}

// Types is an ordered list of candidates. Order defines trial order during
// unmarshal. Every insertion is checked.
type Types struct {
	entries []Candidate
}

// NewTypes returns a list holding cs in order.
func NewTypes(cs ...Candidate) (*Types, error) {
	t := &Types{}
	for _, c := range cs {
		if err := t.Append(c); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// MustTypes is like NewTypes but panics on an invalid candidate.
func MustTypes(cs ...Candidate) *Types {
	t, err := NewTypes(cs...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Types) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

func (t *Types) At(i int) Candidate { return t.entries[i] }

// All returns a copy of the entries.
func (t *Types) All() []Candidate {
	if t == nil {
		return nil
	}
	return append([]Candidate(nil), t.entries...)
}

func (t *Types) Append(c Candidate) error {
	if err := checkCandidate(c); err != nil {
		return err
	}
	t.entries = append(t.entries, c)
	return nil
}

// Insert places c before index i. i may equal Len.
func (t *Types) Insert(i int, c Candidate) error {
	if err := checkCandidate(c); err != nil {
		return err
	}
	if i < 0 || i > len(t.entries) {
		return fmt.Errorf("%w: index %d out of range", ErrInvalidValue, i)
	}
	t.entries = append(t.entries, nil)
	copy(t.entries[i+1:], t.entries[i:])
	t.entries[i] = c
	return nil
}

func (t *Types) Set(i int, c Candidate) error {
	if err := checkCandidate(c); err != nil {
		return err
	}
	if i < 0 || i >= len(t.entries) {
		return fmt.Errorf("%w: index %d out of range", ErrInvalidValue, i)
	}
	t.entries[i] = c
	return nil
}

func (t *Types) Delete(i int) error {
	_, err := t.Pop(i)
	return err
}

// Pop removes and returns the entry at i.
func (t *Types) Pop(i int) (Candidate, error) {
	if i < 0 || i >= t.Len() {
		return nil, fmt.Errorf("%w: index %d out of range", ErrInvalidValue, i)
	}
	c := t.entries[i]
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	return c, nil
}

// Copy returns a new list with the same entries.
func (t *Types) Copy() *Types {
	if t == nil {
		return nil
	}
	return &Types{entries: append([]Candidate(nil), t.entries...)}
}

// DeepCopy also copies property entries. Model types are shared.
func (t *Types) DeepCopy() *Types {
	if t == nil {
		return nil
	}
	c := &Types{entries: make([]Candidate, len(t.entries))}
	for i, e := range t.entries {
		if p, ok := e.(*Property); ok {
			e = p.DeepCopy()
		}
		c.entries[i] = e
	}
	return c
}

func (t *Types) has(k Kind) bool {
	for _, e := range t.All() {
		if e == Candidate(k) {
			return true
		}
	}
	return false
}

func (t *Types) String() string {
	names := make([]string, 0, t.Len())
	for _, e := range t.All() {
		names = append(names, e.candidateName())
	}
	return "(" + strings.Join(names, ", ") + ")"
}

// TypesSource is either a fixed Types list or a function deferring the
// choice until the enclosing model is known.
type TypesSource struct {
	fixed    *Types
	deferred func(parent Model) (*Types, error)
}

// Fixed wraps a literal list.
func Fixed(t *Types) TypesSource { return TypesSource{fixed: t} }

// Deferred wraps fn, which receives the model holding the property (or the
// container whose items are being typed).
func Deferred(fn func(parent Model) (*Types, error)) TypesSource {
	return TypesSource{deferred: fn}
}

func (s TypesSource) IsDeferred() bool { return s.deferred != nil }

// IsZero reports whether no list and no function is set.
func (s TypesSource) IsZero() bool { return s.fixed == nil && s.deferred == nil }

// Resolve returns the list for parent. Fixed lists ignore parent.
func (s TypesSource) Resolve(parent Model) (*Types, error) {
	if s.deferred != nil {
		return s.deferred(parent)
	}
	return s.fixed, nil
}

func (s TypesSource) deepCopy() TypesSource {
	return TypesSource{fixed: s.fixed.DeepCopy(), deferred: s.deferred}
}

// ValuesSource is either a fixed set of permitted values or a function
// computing it from the enclosing model.
type ValuesSource struct {
	fixed    []any
	deferred func(parent Model) ([]any, error)
}

func FixedValues(vs ...any) ValuesSource { return ValuesSource{fixed: vs} }

func DeferredValues(fn func(parent Model) ([]any, error)) ValuesSource {
	return ValuesSource{deferred: fn}
}

func (s ValuesSource) IsZero() bool { return s.fixed == nil && s.deferred == nil }

func (s ValuesSource) IsDeferred() bool { return s.deferred != nil }

func (s ValuesSource) Resolve(parent Model) ([]any, error) {
	if s.deferred != nil {
		return s.deferred(parent)
	}
	return s.fixed, nil
}
