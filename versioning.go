package modelbind

import "fmt"

// VersionModel narrows m, and every model nested in it, to the given version
// of specification. Properties that do not apply are removed from the
// instance metadata, as are candidates of type lists that do not apply. The
// model types are left untouched. A field that holds a value but does not
// apply fails with *VersionError.
func VersionModel(m Model, specification string, version any) error {
	switch x := m.(type) {
	case *Object:
		return versionObject(x, specification, version)
	case *Array:
		return versionArray(x, specification, version)
	case *Dictionary:
		return versionDictionary(x, specification, version)
	}
	return nil
}

func versionObject(o *Object, spec string, version any) error {
	meta := ReadObjectMeta(o)
	narrowed := NewObjectMeta()
	changed := false
	for _, name := range meta.Names() {
		p, _ := meta.Get(name)
		ok, err := p.AppliesTo(spec, version)
		if err != nil {
			return err
		}
		if !ok {
			if val := o.values[name]; val != nil {
				return &VersionError{
					Type:          o.typeName(),
					Field:         name,
					Specification: spec,
					Version:       fmt.Sprint(version),
					Value:         val,
				}
			}
			changed = true
			continue
		}
		np, pc, err := versionProperty(p, spec, version)
		if err != nil {
			return err
		}
		changed = changed || pc
		narrowed.Set(name, np)
	}
	if changed {
		// The narrowed table still points at properties of the type.
		narrowed = narrowed.DeepCopy()
		if err := WriteMeta(o, narrowed); err != nil {
			return err
		}
	}
	for _, name := range narrowed.Names() {
		if child, ok := o.values[name].(Model); ok {
			if err := VersionModel(child, spec, version); err != nil {
				return err
			}
		}
	}
	return nil
}

func versionArray(a *Array, spec string, version any) error {
	types, changed, err := versionTypes(itemTypesOf(a), spec, version)
	if err != nil {
		return err
	}
	if changed {
		if err := WriteMeta(a, &ArrayMeta{ItemTypes: types.DeepCopy()}); err != nil {
			return err
		}
	}
	for _, item := range a.items {
		if child, ok := item.(Model); ok {
			if err := VersionModel(child, spec, version); err != nil {
				return err
			}
		}
	}
	return nil
}

func versionDictionary(d *Dictionary, spec string, version any) error {
	types, changed, err := versionTypes(valueTypesOf(d), spec, version)
	if err != nil {
		return err
	}
	if changed {
		if err := WriteMeta(d, &DictionaryMeta{ValueTypes: types.DeepCopy()}); err != nil {
			return err
		}
	}
	for _, k := range d.keys {
		if child, ok := d.values[k].(Model); ok {
			if err := VersionModel(child, spec, version); err != nil {
				return err
			}
		}
	}
	return nil
}

// versionProperty returns p with its fixed candidate lists narrowed. p itself
// is returned when nothing changed.
func versionProperty(p *Property, spec string, version any) (*Property, bool, error) {
	var np *Property
	for _, src := range []*TypesSource{&p.types, &p.itemTypes, &p.valueTypes} {
		if src.IsDeferred() || src.fixed == nil {
			continue
		}
		ts, changed, err := versionTypes(src.fixed, spec, version)
		if err != nil {
			return nil, false, err
		}
		if !changed {
			continue
		}
		if np == nil {
			np = p.Copy()
		}
		switch src {
		case &p.types:
			np.types = Fixed(ts)
		case &p.itemTypes:
			np.itemTypes = Fixed(ts)
		default:
			np.valueTypes = Fixed(ts)
		}
	}
	if np == nil {
		return p, false, nil
	}
	return np, true, nil
}

// versionTypes drops property candidates that do not apply and narrows the
// rest.
func versionTypes(ts *Types, spec string, version any) (*Types, bool, error) {
	if ts.Len() == 0 {
		return ts, false, nil
	}
	out := &Types{}
	changed := false
	for _, c := range ts.entries {
		p, ok := c.(*Property)
		if !ok {
			out.entries = append(out.entries, c)
			continue
		}
		applies, err := p.AppliesTo(spec, version)
		if err != nil {
			return nil, false, err
		}
		if !applies {
			changed = true
			continue
		}
		np, pc, err := versionProperty(p, spec, version)
		if err != nil {
			return nil, false, err
		}
		changed = changed || pc
		out.entries = append(out.entries, np)
	}
	if !changed {
		return ts, false, nil
	}
	return out, true, nil
}
