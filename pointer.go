package modelbind

import "strconv"

// SetPointer assigns pointer to m and derives the pointers of every nested
// model from it.
func SetPointer(m Model, pointer string) {
	m.state().pointer = pointer
	switch x := m.(type) {
	case *Object:
		meta := ReadObjectMeta(x)
		for _, name := range meta.Names() {
			if child, ok := x.values[name].(Model); ok {
				p, _ := meta.Get(name)
				SetPointer(child, joinPointer(pointer, p.wireName(name)))
			}
		}
	case *Array:
		for i, item := range x.items {
			if child, ok := item.(Model); ok {
				SetPointer(child, pointer+"/"+strconv.Itoa(i))
			}
		}
	case *Dictionary:
		for _, k := range x.keys {
			if child, ok := x.values[k].(Model); ok {
				SetPointer(child, joinPointer(pointer, k))
			}
		}
	}
}

// SetURL records the source document of m and every nested model.
func SetURL(m Model, url string) {
	walkModels(m, func(c Model) { c.state().url = url })
}

// SetFormat records the serialization format of m and every nested model.
func SetFormat(m Model, format string) {
	walkModels(m, func(c Model) { c.state().format = format })
}

func walkModels(m Model, fn func(Model)) {
	fn(m)
	switch x := m.(type) {
	case *Object:
		for _, v := range x.values {
			if child, ok := v.(Model); ok {
				walkModels(child, fn)
			}
		}
	case *Array:
		for _, v := range x.items {
			if child, ok := v.(Model); ok {
				walkModels(child, fn)
			}
		}
	case *Dictionary:
		for _, v := range x.values {
			if child, ok := v.(Model); ok {
				walkModels(child, fn)
			}
		}
	}
}
