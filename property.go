package modelbind

import (
	"fmt"
	"slices"
	"time"

	"github.com/reoring/modelbind/codec"
)

// PropertyKind selects the conversion rules of a Property.
type PropertyKind uint8

const (
	PropertyAny PropertyKind = iota
	PropertyString
	PropertyDate
	PropertyDateTime
	PropertyBytes
	PropertyEnumerated
	PropertyNumber
	PropertyInteger
	PropertyBoolean
	PropertyArray
	PropertyDictionary
)

var propertyKindNames = [...]string{
	PropertyAny:        "Property",
	PropertyString:     "StringProperty",
	PropertyDate:       "DateProperty",
	PropertyDateTime:   "DateTimeProperty",
	PropertyBytes:      "BytesProperty",
	PropertyEnumerated: "EnumeratedProperty",
	PropertyNumber:     "NumberProperty",
	PropertyInteger:    "IntegerProperty",
	PropertyBoolean:    "BooleanProperty",
	PropertyArray:      "ArrayProperty",
	PropertyDictionary: "DictionaryProperty",
}

func (k PropertyKind) String() string {
	if int(k) < len(propertyKindNames) {
		return propertyKindNames[k]
	}
	return fmt.Sprintf("PropertyKind(%d)", uint8(k))
}

// fixedTypes lists the kinds whose types cannot be reassigned.
var fixedTypes = map[PropertyKind]func() *Types{
	PropertyString:     func() *Types { return MustTypes(KindString) },
	PropertyDate:       func() *Types { return MustTypes(KindDate) },
	PropertyDateTime:   func() *Types { return MustTypes(KindDateTime) },
	PropertyBytes:      func() *Types { return MustTypes(KindBytes) },
	PropertyNumber:     func() *Types { return MustTypes(KindNumber) },
	PropertyInteger:    func() *Types { return MustTypes(KindInteger) },
	PropertyBoolean:    func() *Types { return MustTypes(KindBoolean) },
	PropertyArray:      func() *Types { return MustTypes(ArrayType) },
	PropertyDictionary: func() *Types { return MustTypes(DictionaryType) },
}

// Property describes one field or element: its acceptable shapes, wire
// name, required-ness and the specification versions it applies to.
type Property struct {
	kind       PropertyKind
	types      TypesSource
	itemTypes  TypesSource
	valueTypes TypesSource
	values     ValuesSource
	name       string
	required   bool
	requiredFn func(parent Model) bool
	versions   []*Version

	dateToString       func(Date) string
	dateFromString     func(string) (Date, error)
	dateTimeToString   func(time.Time) string
	dateTimeFromString func(string) (time.Time, error)
}

// PropertyOption configures a Property at construction.
type PropertyOption func(*Property)

// Named sets the wire name used in place of the field name.
func Named(name string) PropertyOption { return func(p *Property) { p.name = name } }

// Required marks the property as required.
func Required() PropertyOption { return func(p *Property) { p.required = true } }

// RequiredWhen makes the property required when fn returns true for the
// enclosing model.
func RequiredWhen(fn func(parent Model) bool) PropertyOption {
	return func(p *Property) { p.requiredFn = fn }
}

// Versions restricts the property to the given specification versions.
func Versions(vs ...*Version) PropertyOption {
	return func(p *Property) { p.versions = append(p.versions, vs...) }
}

// WithVersions is Versions for specifier strings such as "oas>=3.0". An
// invalid specifier panics.
func WithVersions(specs ...string) PropertyOption {
	return func(p *Property) {
		for _, s := range specs {
			p.versions = append(p.versions, MustParseVersion(s))
		}
	}
}

// WithTypes sets the candidate list of an untyped or enumerated property.
func WithTypes(cs ...Candidate) PropertyOption {
	return func(p *Property) { p.types = Fixed(MustTypes(cs...)) }
}

// TypesFrom sets the candidates from a fixed or deferred source.
func TypesFrom(s TypesSource) PropertyOption { return func(p *Property) { p.types = s } }

// ItemTypesFrom sets the item candidates of an array property.
func ItemTypesFrom(s TypesSource) PropertyOption { return func(p *Property) { p.itemTypes = s } }

// ValueTypesFrom sets the value candidates of a dictionary property.
func ValueTypesFrom(s TypesSource) PropertyOption { return func(p *Property) { p.valueTypes = s } }

// ValuesFrom sets the permitted values of an enumerated property.
func ValuesFrom(s ValuesSource) PropertyOption { return func(p *Property) { p.values = s } }

// DateConverters replaces the ISO-8601 converters of a date property.
func DateConverters(toString func(Date) string, fromString func(string) (Date, error)) PropertyOption {
	return func(p *Property) {
		p.dateToString = toString
		p.dateFromString = fromString
	}
}

// DateTimeConverters replaces the ISO-8601 converters of a date-time property.
func DateTimeConverters(toString func(time.Time) string, fromString func(string) (time.Time, error)) PropertyOption {
	return func(p *Property) {
		p.dateTimeToString = toString
		p.dateTimeFromString = fromString
	}
}

func newProperty(kind PropertyKind, opts []PropertyOption) *Property {
	p := &Property{kind: kind}
	for _, o := range opts {
		o(p)
	}
	if f, ok := fixedTypes[kind]; ok {
		p.types = Fixed(f())
	}
	switch kind {
	case PropertyDate:
		if p.dateToString == nil {
			p.dateToString = Date.String
		}
		if p.dateFromString == nil {
			p.dateFromString = parseDate
		}
	case PropertyDateTime:
		if p.dateTimeToString == nil {
			p.dateTimeToString = codec.FormatDateTime
		}
		if p.dateTimeFromString == nil {
			p.dateTimeFromString = codec.ParseDateTime
		}
	}
	return p
}

func parseDate(s string) (Date, error) {
	t, err := codec.ParseDate(s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// NewProperty returns a property accepting the given candidates. With no
// candidates any plain data is accepted.
func NewProperty(types []Candidate, opts ...PropertyOption) *Property {
	p := newProperty(PropertyAny, opts)
	if len(types) > 0 {
		p.types = Fixed(MustTypes(types...))
	}
	return p
}

func StringProperty(opts ...PropertyOption) *Property  { return newProperty(PropertyString, opts) }
func NumberProperty(opts ...PropertyOption) *Property  { return newProperty(PropertyNumber, opts) }
func IntegerProperty(opts ...PropertyOption) *Property { return newProperty(PropertyInteger, opts) }
func BooleanProperty(opts ...PropertyOption) *Property { return newProperty(PropertyBoolean, opts) }

// BytesProperty values marshal as base64 strings.
func BytesProperty(opts ...PropertyOption) *Property { return newProperty(PropertyBytes, opts) }

// DateProperty values are Date and marshal as ISO-8601 dates unless
// DateConverters says otherwise.
func DateProperty(opts ...PropertyOption) *Property { return newProperty(PropertyDate, opts) }

// DateTimeProperty values are time.Time and marshal as ISO-8601 date-times.
func DateTimeProperty(opts ...PropertyOption) *Property {
	return newProperty(PropertyDateTime, opts)
}

// EnumeratedProperty restricts values to a closed set. Use WithTypes to also
// restrict their shape, or ValuesFrom for a deferred set.
func EnumeratedProperty(values []any, opts ...PropertyOption) *Property {
	return newProperty(PropertyEnumerated, append([]PropertyOption{ValuesFrom(FixedValues(values...))}, opts...))
}

// ArrayProperty holds an Array whose items match itemTypes.
func ArrayProperty(itemTypes []Candidate, opts ...PropertyOption) *Property {
	p := newProperty(PropertyArray, opts)
	if len(itemTypes) > 0 {
		p.itemTypes = Fixed(MustTypes(itemTypes...))
	}
	return p
}

// DictionaryProperty holds a Dictionary whose values match valueTypes.
func DictionaryProperty(valueTypes []Candidate, opts ...PropertyOption) *Property {
	p := newProperty(PropertyDictionary, opts)
	if len(valueTypes) > 0 {
		p.valueTypes = Fixed(MustTypes(valueTypes...))
	}
	return p
}

func (p *Property) candidateName() string {
	switch p.kind {
	case PropertyArray:
		if !p.itemTypes.IsZero() && !p.itemTypes.IsDeferred() {
			return "ArrayProperty(item_types=" + p.itemTypes.fixed.String() + ")"
		}
	case PropertyDictionary:
		if !p.valueTypes.IsZero() && !p.valueTypes.IsDeferred() {
			return "DictionaryProperty(value_types=" + p.valueTypes.fixed.String() + ")"
		}
	case PropertyAny, PropertyEnumerated:
		if !p.types.IsZero() && !p.types.IsDeferred() {
			return p.kind.String() + "(types=" + p.types.fixed.String() + ")"
		}
	}
	return p.kind.String()
}

func (p *Property) Kind() PropertyKind { return p.kind }

// Name returns the wire name override, or "".
func (p *Property) Name() string { return p.name }

func (p *Property) SetName(name string) { p.name = name }

// wireName returns the key used in plain data for field.
func (p *Property) wireName(field string) string {
	if p.name != "" {
		return p.name
	}
	return field
}

func (p *Property) Types() TypesSource { return p.types }

// SetTypes replaces the candidate list. Kinds with fixed types reject it.
func (p *Property) SetTypes(s TypesSource) error {
	if _, ok := fixedTypes[p.kind]; ok {
		return fmt.Errorf("%w: the types of a %s are fixed", ErrInvalidType, p.kind)
	}
	p.types = s
	return nil
}

func (p *Property) ItemTypes() TypesSource { return p.itemTypes }

func (p *Property) SetItemTypes(s TypesSource) error {
	if p.kind != PropertyArray {
		return fmt.Errorf("%w: %s has no item types", ErrInvalidType, p.kind)
	}
	p.itemTypes = s
	return nil
}

func (p *Property) ValueTypes() TypesSource { return p.valueTypes }

func (p *Property) SetValueTypes(s TypesSource) error {
	if p.kind != PropertyDictionary {
		return fmt.Errorf("%w: %s has no value types", ErrInvalidType, p.kind)
	}
	p.valueTypes = s
	return nil
}

func (p *Property) Values() ValuesSource { return p.values }

func (p *Property) SetValues(s ValuesSource) error {
	if p.kind != PropertyEnumerated {
		return fmt.Errorf("%w: %s has no values", ErrInvalidType, p.kind)
	}
	p.values = s
	return nil
}

// SetRequired sets a static required flag and clears any predicate.
func (p *Property) SetRequired(required bool) {
	p.required = required
	p.requiredFn = nil
}

// SetRequiredWhen installs a predicate over the enclosing model.
func (p *Property) SetRequiredWhen(fn func(parent Model) bool) { p.requiredFn = fn }

// HasRequiredPredicate reports whether required-ness depends on the
// enclosing model.
func (p *Property) HasRequiredPredicate() bool { return p.requiredFn != nil }

// IsRequired evaluates required-ness for the model holding the property.
func (p *Property) IsRequired(parent Model) bool {
	if p.requiredFn != nil {
		return p.requiredFn(parent)
	}
	return p.required
}

// dependsOnParent reports whether any candidate list or value set is
// resolved against the enclosing model.
func (p *Property) dependsOnParent() bool {
	return p.types.IsDeferred() || p.itemTypes.IsDeferred() || p.valueTypes.IsDeferred() || p.values.IsDeferred()
}

func (p *Property) Versions() []*Version { return slices.Clone(p.versions) }

func (p *Property) SetVersions(vs ...*Version) { p.versions = slices.Clone(vs) }

// AppliesTo reports whether the property is visible for version of
// specification. Versions declared for other specifications are ignored; a
// property without versions for specification always applies.
func (p *Property) AppliesTo(specification string, version any) (bool, error) {
	scoped := false
	for _, v := range p.versions {
		if v.Specification != specification {
			continue
		}
		scoped = true
		ok, err := v.Matches(version)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return !scoped, nil
}

// DateToString renders d with the property's converter.
func (p *Property) DateToString(d Date) string {
	if p.dateToString == nil {
		return d.String()
	}
	return p.dateToString(d)
}

// DateFromString parses s with the property's converter.
func (p *Property) DateFromString(s string) (Date, error) {
	if p.dateFromString == nil {
		return parseDate(s)
	}
	return p.dateFromString(s)
}

// DateTimeToString renders t with the property's converter.
func (p *Property) DateTimeToString(t time.Time) string {
	if p.dateTimeToString == nil {
		return codec.FormatDateTime(t)
	}
	return p.dateTimeToString(t)
}

// DateTimeFromString parses s with the property's converter.
func (p *Property) DateTimeFromString(s string) (time.Time, error) {
	if p.dateTimeFromString == nil {
		return codec.ParseDateTime(s)
	}
	return p.dateTimeFromString(s)
}

// Copy returns a shallow copy: candidate lists are shared.
func (p *Property) Copy() *Property {
	c := *p
	c.versions = slices.Clone(p.versions)
	return &c
}

// DeepCopy also copies candidate lists, values and versions.
func (p *Property) DeepCopy() *Property {
	c := *p
	c.types = p.types.deepCopy()
	c.itemTypes = p.itemTypes.deepCopy()
	c.valueTypes = p.valueTypes.deepCopy()
	if p.values.fixed != nil {
		c.values.fixed = slices.Clone(p.values.fixed)
	}
	c.versions = make([]*Version, len(p.versions))
	for i, v := range p.versions {
		c.versions[i] = v.Copy()
	}
	return &c
}
