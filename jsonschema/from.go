// Package jsonschema projects model types and properties onto JSON Schema.
// Named types are emitted once under $defs and referenced, so recursive types
// terminate; the exported type itself is referenced as "#". Candidates
// resolved at runtime project to the empty schema.
package jsonschema

import (
	"fmt"

	"github.com/reoring/modelbind"
)

type builder struct {
	root *modelbind.ModelType
	defs map[string]*Schema
	seen map[*modelbind.ModelType]bool
}

func newBuilder() *builder {
	return &builder{defs: map[string]*Schema{}, seen: map[*modelbind.ModelType]bool{}}
}

func (b *builder) finish(s *Schema) *Schema {
	if len(b.defs) > 0 {
		s.Defs = b.defs
	}
	return s
}

// FromType returns the schema of t.
func FromType(t *modelbind.ModelType) (*Schema, error) {
	b := newBuilder()
	b.root = t
	b.seen[t] = true
	s, err := b.typeBody(t)
	if err != nil {
		return nil, err
	}
	return b.finish(s), nil
}

// FromProperty returns the schema of values accepted by p.
func FromProperty(p *modelbind.Property) (*Schema, error) {
	b := newBuilder()
	s, err := b.property(p)
	if err != nil {
		return nil, err
	}
	return b.finish(s), nil
}

func (b *builder) typeRef(t *modelbind.ModelType) (*Schema, error) {
	if t == b.root {
		return &Schema{Ref: "#"}, nil
	}
	if t.Parent() == nil {
		return b.typeBody(t)
	}
	if !b.seen[t] {
		b.seen[t] = true
		body, err := b.typeBody(t)
		if err != nil {
			return nil, err
		}
		b.defs[t.Name()] = body
	}
	return &Schema{Ref: "#/$defs/" + t.Name()}, nil
}

func (b *builder) typeBody(t *modelbind.ModelType) (*Schema, error) {
	switch t.Kind() {
	case modelbind.ModelObject:
		s := &Schema{Type: "object", Title: t.Name()}
		meta := modelbind.ReadObjectMeta(t)
		for _, name := range meta.Names() {
			p, _ := meta.Get(name)
			ps, err := b.property(p)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", t.Name(), name, err)
			}
			key := name
			if p.Name() != "" {
				key = p.Name()
			}
			if s.Properties == nil {
				s.Properties = map[string]*Schema{}
			}
			s.Properties[key] = ps
			if !p.HasRequiredPredicate() && p.IsRequired(nil) {
				s.Required = append(s.Required, key)
			}
		}
		return s, nil
	case modelbind.ModelArray:
		var items *modelbind.Types
		if m := modelbind.ReadArrayMeta(t); m != nil {
			items = m.ItemTypes
		}
		is, err := b.types(items)
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "array", Title: t.Name(), Items: is}, nil
	default:
		var values *modelbind.Types
		if m := modelbind.ReadDictionaryMeta(t); m != nil {
			values = m.ValueTypes
		}
		vs, err := b.types(values)
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "object", Title: t.Name(), AdditionalProperties: vs}, nil
	}
}

func (b *builder) source(src modelbind.TypesSource) (*Schema, error) {
	if src.IsDeferred() {
		return &Schema{}, nil
	}
	ts, err := src.Resolve(nil)
	if err != nil {
		return nil, err
	}
	return b.types(ts)
}

func (b *builder) types(ts *modelbind.Types) (*Schema, error) {
	switch ts.Len() {
	case 0:
		return &Schema{}, nil
	case 1:
		return b.candidate(ts.At(0))
	}
	s := &Schema{}
	for _, c := range ts.All() {
		cs, err := b.candidate(c)
		if err != nil {
			return nil, err
		}
		s.OneOf = append(s.OneOf, cs)
	}
	return s, nil
}

func (b *builder) candidate(c modelbind.Candidate) (*Schema, error) {
	switch c := c.(type) {
	case modelbind.Kind:
		return kindSchema(c), nil
	case *modelbind.Property:
		return b.property(c)
	case *modelbind.ModelType:
		return b.typeRef(c)
	}
	return nil, fmt.Errorf("%w: %T", modelbind.ErrInvalidType, c)
}

func kindSchema(k modelbind.Kind) *Schema {
	switch k {
	case modelbind.KindString:
		return &Schema{Type: "string"}
	case modelbind.KindBytes:
		return &Schema{Type: "string", ContentEncoding: "base64"}
	case modelbind.KindBoolean:
		return &Schema{Type: "boolean"}
	case modelbind.KindInteger:
		return &Schema{Type: "integer"}
	case modelbind.KindNumber:
		return &Schema{Type: "number"}
	case modelbind.KindDate:
		return &Schema{Type: "string", Format: "date"}
	case modelbind.KindDateTime:
		return &Schema{Type: "string", Format: "date-time"}
	case modelbind.KindNull:
		return &Schema{Type: "null"}
	}
	return &Schema{}
}

func (b *builder) property(p *modelbind.Property) (*Schema, error) {
	switch p.Kind() {
	case modelbind.PropertyString:
		return kindSchema(modelbind.KindString), nil
	case modelbind.PropertyDate:
		return kindSchema(modelbind.KindDate), nil
	case modelbind.PropertyDateTime:
		return kindSchema(modelbind.KindDateTime), nil
	case modelbind.PropertyBytes:
		return kindSchema(modelbind.KindBytes), nil
	case modelbind.PropertyNumber:
		return kindSchema(modelbind.KindNumber), nil
	case modelbind.PropertyInteger:
		return kindSchema(modelbind.KindInteger), nil
	case modelbind.PropertyBoolean:
		return kindSchema(modelbind.KindBoolean), nil
	case modelbind.PropertyArray:
		items, err := b.source(p.ItemTypes())
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "array", Items: items}, nil
	case modelbind.PropertyDictionary:
		values, err := b.source(p.ValueTypes())
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "object", AdditionalProperties: values}, nil
	case modelbind.PropertyEnumerated:
		s, err := b.source(p.Types())
		if err != nil {
			return nil, err
		}
		if vs := p.Values(); !vs.IsDeferred() {
			values, _ := vs.Resolve(nil)
			if s.Ref != "" || s.OneOf != nil {
				s = &Schema{AllOf: []*Schema{s}}
			}
			s.Enum = values
		}
		return s, nil
	}
	return b.source(p.Types())
}
