// Package serial reads, decodes and encodes the text forms of plain data.
// JSON is handled by goccy/go-json and YAML by gopkg.in/yaml.v3; both decode
// into ordered plain data suitable for modelbind.Unmarshal.
package serial

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"syscall"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/modelbind"
	"github.com/reoring/modelbind/internal/engine"
)

// Read returns the content of r. Seekable readers are rewound first. A
// reader whose Seek is unsupported (errors.ErrUnsupported, or ESPIPE from a
// pipe) is read from its current position; other seek errors are returned.
func Read(r io.Reader) ([]byte, error) {
	if s, ok := r.(io.Seeker); ok {
		if _, err := s.Seek(0, io.SeekStart); err != nil &&
			!errors.Is(err, errors.ErrUnsupported) && !errors.Is(err, syscall.ESPIPE) {
			return nil, err
		}
	}
	return io.ReadAll(r)
}

func text(data any) ([]byte, error) {
	switch v := data.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case io.Reader:
		return Read(v)
	}
	return nil, fmt.Errorf("%w: cannot deserialize %T", modelbind.ErrInvalidType, data)
}

// DuplicateKeyWarning reports a key repeated within one object while the
// duplicate policy is Warn.
type DuplicateKeyWarning struct {
	Path    string
	Message string
}

func (w DuplicateKeyWarning) Code() string { return modelbind.CodeDuplicateKey }

func (w DuplicateKeyWarning) String() string { return w.Path + ": " + w.Message }

func decode(src engine.TokenSource, b []byte, opt Options) (any, error) {
	var dups []modelbind.Warning
	sink := func(si engine.SimpleIssue) {
		if si.Code == modelbind.CodeDuplicateKey && opt.Strictness.OnDuplicateKey == Warn {
			dups = append(dups, DuplicateKeyWarning{Path: si.Path, Message: si.Message})
		}
	}
	v, err := engine.Decode(engine.WrapWithEnforcement(src, opt.enforce(sink)), opt.numbers())
	if err != nil {
		return nil, &modelbind.DeserializeError{Data: string(b), Message: err.Error(), Cause: err}
	}
	for _, w := range dups {
		modelbind.Warn(w)
	}
	return v, nil
}

// Deserialize decodes JSON text (a string, []byte or io.Reader) into plain
// data. Objects become *modelbind.Mapping in document order. Failures are
// reported as *modelbind.DeserializeError.
func Deserialize(data any, opts ...Options) (any, error) {
	b, err := text(data)
	if err != nil {
		return nil, err
	}
	return decode(engine.NewJSONBytes(b), b, pick(opts))
}

// DeserializeYAML decodes a YAML document into plain data. An empty document
// yields nil.
func DeserializeYAML(data any, opts ...Options) (any, error) {
	b, err := text(data)
	if err != nil {
		return nil, err
	}
	opt := pick(opts)
	if opt.MaxBytes > 0 && int64(len(b)) > opt.MaxBytes {
		return nil, &modelbind.DeserializeError{Data: string(b), Message: "max bytes exceeded"}
	}
	var n yaml.Node
	if err := yaml.Unmarshal(b, &n); err != nil {
		return nil, &modelbind.DeserializeError{Data: string(b), Message: err.Error(), Cause: err}
	}
	if n.Kind == 0 {
		return nil, nil
	}
	src, err := engine.NewYAMLNode(&n)
	if err != nil {
		return nil, &modelbind.DeserializeError{Data: string(b), Message: err.Error(), Cause: err}
	}
	return decode(src, b, opt)
}

// baseHooks returns the shared hooks in effect for m.
func baseHooks(m modelbind.Model) modelbind.Hooks {
	switch h := modelbind.ReadHooks(m).(type) {
	case *modelbind.ObjectHooks:
		return h.Hooks
	case *modelbind.ArrayHooks:
		return h.Hooks
	case *modelbind.DictionaryHooks:
		return h.Hooks
	}
	return modelbind.Hooks{}
}

type encoder func(data any, opt Options) ([]byte, error)

func serialize(v any, opt Options, enc encoder) (string, error) {
	var h modelbind.Hooks
	if m, ok := v.(modelbind.Model); ok {
		h = baseHooks(m)
	}
	data, err := modelbind.Marshal(v)
	if err != nil {
		return "", err
	}
	if h.BeforeSerialize != nil {
		if data, err = h.BeforeSerialize(data); err != nil {
			return "", err
		}
	}
	b, err := enc(data, opt)
	if err != nil {
		return "", err
	}
	s := string(b)
	if h.AfterSerialize != nil {
		return h.AfterSerialize(s)
	}
	return s, nil
}

// Serialize marshals v and encodes it as JSON. Keys keep their marshalled
// order. The before/after serialize hooks of a model run around the encoding.
func Serialize(v any, opts ...Options) (string, error) {
	return serialize(v, pick(opts), encodeJSON)
}

// SerializeYAML is Serialize producing YAML.
func SerializeYAML(v any, opts ...Options) (string, error) {
	return serialize(v, pick(opts), encodeYAML)
}

func encodeJSON(data any, opt Options) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if opt.Indent != "" {
		enc.SetIndent("", opt.Indent)
	}
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func encodeYAML(data any, opt Options) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := yaml.NewEncoder(buf)
	indent := 2
	if opt.Indent != "" {
		indent = len(opt.Indent)
	}
	enc.SetIndent(indent)
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load deserializes JSON and unmarshals it into a model of type t. The model
// records its format as "json" and, when data is a named reader such as an
// *os.File, its URL.
func Load(data any, t *modelbind.ModelType, opts ...Options) (modelbind.Model, error) {
	return load(data, t, "json", Deserialize, opts)
}

// LoadYAML is Load for YAML documents.
func LoadYAML(data any, t *modelbind.ModelType, opts ...Options) (modelbind.Model, error) {
	return load(data, t, "yaml", DeserializeYAML, opts)
}

func load(data any, t *modelbind.ModelType, format string, deserialize func(any, ...Options) (any, error), opts []Options) (modelbind.Model, error) {
	plain, err := deserialize(data, opts...)
	if err != nil {
		return nil, err
	}
	m, err := modelbind.UnmarshalAs(plain, t)
	if err != nil {
		return nil, err
	}
	modelbind.SetFormat(m, format)
	if u := sourceURL(data); u != "" {
		modelbind.SetURL(m, u)
	}
	return m, nil
}

// sourceURL derives a file URL from readers exposing Name, as *os.File does.
func sourceURL(data any) string {
	n, ok := data.(interface{ Name() string })
	if !ok || n.Name() == "" {
		return ""
	}
	name := n.Name()
	if strings.Contains(name, "://") {
		return name
	}
	if abs, err := filepath.Abs(name); err == nil {
		name = abs
	}
	return "file://" + filepath.ToSlash(name)
}
