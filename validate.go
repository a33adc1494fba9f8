package modelbind

import "time"

// ValidateOpt configures Validate.
type ValidateOpt struct {
	// FailFast stops at the first issue.
	FailFast bool
	// Specification and Version, when set, hide properties that do not apply
	// to that version and report values held by them.
	Specification string
	Version       any
}

// Validate checks v recursively against its metadata: required fields, nulls,
// candidate kinds, enumerations and undefined keys. It returns every issue as
// "path: message" together with a *ValidationError, or (nil, nil) when v is
// valid. Hook failures and invalid version targets are returned as is.
func Validate(v any, opts ...ValidateOpt) ([]string, error) {
	var opt ValidateOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	val := &validator{opt: opt}
	if err := val.value(v, nil, nil, pathRef{}); err != nil {
		return nil, err
	}
	if len(val.issues) == 0 {
		return nil, nil
	}
	verr := &ValidationError{Issues: val.issues}
	return verr.Messages(), verr
}

type validator struct {
	opt    ValidateOpt
	issues Issues
}

func (v *validator) done() bool { return v.opt.FailFast && len(v.issues) > 0 }

func (v *validator) add(it Issue) { v.issues = AppendIssues(v.issues, it) }

func (v *validator) value(x any, types *Types, parent Model, path pathRef) error {
	if x == Null {
		if types.Len() > 0 && !types.has(KindNull) {
			v.add(path.issue(CodeNullNotAllowed, nil))
		}
		return nil
	}
	if !satisfies(x, types, parent) {
		v.add(path.issue(CodeInvalidType, nil))
		return nil
	}
	if m, ok := x.(Model); ok {
		return v.model(m, path)
	}
	return nil
}

func (v *validator) model(m Model, path pathRef) error {
	h := baseHooks(m)
	if h.BeforeValidate != nil {
		var err error
		if m, err = h.BeforeValidate(m); err != nil {
			return err
		}
	}
	var err error
	switch x := m.(type) {
	case *Object:
		err = v.object(x, path)
	case *Array:
		types := itemTypesOf(x)
		for i, item := range x.items {
			if v.done() {
				break
			}
			if err = v.value(item, types, x, path.Index(i)); err != nil {
				break
			}
		}
	case *Dictionary:
		types := valueTypesOf(x)
		for _, k := range x.keys {
			if v.done() {
				break
			}
			if err = v.value(x.values[k], types, x, path.Field(k)); err != nil {
				break
			}
		}
	}
	if err != nil {
		return err
	}
	if h.AfterValidate != nil {
		return h.AfterValidate(m)
	}
	return nil
}

func (v *validator) object(o *Object, path pathRef) error {
	meta := ReadObjectMeta(o)
	for _, name := range meta.Names() {
		if v.done() {
			return nil
		}
		p, _ := meta.Get(name)
		val := o.values[name]
		fp := path.Field(p.wireName(name))
		if v.opt.Specification != "" {
			ok, err := p.AppliesTo(v.opt.Specification, v.opt.Version)
			if err != nil {
				return err
			}
			if !ok {
				if val != nil {
					v.add(fp.issue(CodeVersionMismatch, nil))
				}
				continue
			}
		}
		switch {
		case val == nil:
			if p.IsRequired(o) {
				v.add(fp.issue(CodeRequired, nil))
			}
		case val == Null:
			if !nullable(p, o) {
				v.add(fp.issue(CodeNullNotAllowed, nil))
			}
		default:
			if err := v.property(val, p, o, fp); err != nil {
				return err
			}
		}
	}
	o.extra.Range(func(k string, _ any) bool {
		if v.done() {
			return false
		}
		v.add(path.Field(k).issue(CodeUnknownKey, nil))
		return true
	})
	return nil
}

func (v *validator) property(val any, p *Property, parent Model, path pathRef) error {
	if !propertyAccepts(val, p, parent) {
		code := CodeInvalidType
		if p.kind == PropertyEnumerated {
			code = CodeInvalidEnum
		}
		v.add(path.issue(code, nil))
		return nil
	}
	if m, ok := val.(Model); ok {
		return v.model(m, path)
	}
	return nil
}

func nullable(p *Property, parent Model) bool {
	types, err := p.types.Resolve(parent)
	return err == nil && types.has(KindNull)
}

// satisfies reports whether x already is a value of one of the candidates.
// An empty list accepts anything.
func satisfies(x any, types *Types, parent Model) bool {
	if types.Len() == 0 {
		return true
	}
	for _, c := range types.entries {
		switch c := c.(type) {
		case Kind:
			if _, ok := coerceKind(x, c); ok {
				return true
			}
		case *ModelType:
			if m, ok := x.(Model); ok && m.Type().IsSubtypeOf(c) {
				return true
			}
		case *Property:
			if propertyAccepts(x, c, parent) {
				return true
			}
		}
	}
	return false
}

// propertyAccepts reports whether x is a value p would have produced.
func propertyAccepts(x any, p *Property, parent Model) bool {
	switch p.kind {
	case PropertyDate:
		switch x.(type) {
		case Date, time.Time:
			return true
		}
		return false
	case PropertyDateTime:
		_, ok := x.(time.Time)
		return ok
	case PropertyBytes:
		_, ok := x.([]byte)
		return ok
	case PropertyArray:
		if _, ok := x.(*Array); ok {
			return true
		}
		if _, ok := x.(Model); ok {
			return false
		}
		_, ok := asSequence(x)
		return ok
	case PropertyDictionary:
		if _, ok := x.(*Dictionary); ok {
			return true
		}
		if _, ok := x.(Model); ok {
			return false
		}
		_, ok := asMapping(x)
		return ok
	case PropertyEnumerated:
		values, err := p.values.Resolve(parent)
		if err != nil || (values != nil && !containsValue(values, x)) {
			return false
		}
	}
	types, err := p.types.Resolve(parent)
	if err != nil {
		return false
	}
	return satisfies(x, types, parent)
}
