package modelbind

import (
	"strconv"
	"strings"
)

// pathRef builds JSON Pointer paths in a chain-safe way.
type pathRef struct {
	parts []string
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// escapePointerToken escapes '~' -> '~0', '/' -> '~1' per RFC6901.
func escapePointerToken(s string) string { return pointerEscaper.Replace(s) }

func (p pathRef) Field(name string) pathRef {
	return pathRef{parts: append(append([]string{}, p.parts...), escapePointerToken(name))}
}

func (p pathRef) Index(i int) pathRef {
	return pathRef{parts: append(append([]string{}, p.parts...), strconv.Itoa(i))}
}

func (p pathRef) prepend(token string) pathRef {
	return pathRef{parts: append([]string{token}, p.parts...)}
}

func (p pathRef) Pointer() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}

func (p pathRef) issue(code string, data map[string]string) Issue {
	return Issue{Path: p.Pointer(), Code: code, Message: message(code, data)}
}

func fieldToken(key string) string { return escapePointerToken(key) }

func indexToken(i int) string { return strconv.Itoa(i) }

// joinPointer appends an unescaped token to a document pointer such as "#/a".
func joinPointer(base, token string) string {
	return base + "/" + escapePointerToken(token)
}
