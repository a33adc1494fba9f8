package serial_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mb "github.com/reoring/modelbind"
	"github.com/reoring/modelbind/serial"
)

func petType() *mb.ModelType {
	return mb.NewObjectType("Pet", mb.NewObjectMeta(
		mb.Field("name", mb.StringProperty(mb.Required())),
		mb.Field("age", mb.IntegerProperty()),
		mb.Field("tags", mb.ArrayProperty([]mb.Candidate{mb.StringProperty()})),
	))
}

func TestDeserialize_KeepsDocumentOrder(t *testing.T) {
	v, err := serial.Deserialize(`{"b":1,"a":{"d":true,"c":null}}`)
	require.NoError(t, err)
	m := v.(*mb.Mapping)
	assert.Equal(t, []string{"b", "a"}, m.Keys())
	inner, _ := m.Get("a")
	assert.Equal(t, []string{"d", "c"}, inner.(*mb.Mapping).Keys())
}

func TestDeserializeYAML_KeepsDocumentOrder(t *testing.T) {
	v, err := serial.DeserializeYAML([]byte("b: 1\na:\n  - x\n  - 2\n"))
	require.NoError(t, err)
	m := v.(*mb.Mapping)
	assert.Equal(t, []string{"b", "a"}, m.Keys())
	a, _ := m.Get("a")
	assert.Equal(t, []any{"x", int64(2)}, a)

	v, err = serial.DeserializeYAML("")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestDeserialize_DuplicateKeys(t *testing.T) {
	doc := `{"a":1,"a":2}`

	v, err := serial.Deserialize(doc)
	require.NoError(t, err)
	a, _ := v.(*mb.Mapping).Get("a")
	assert.Equal(t, int64(2), a)

	c, restore := mb.CollectWarnings()
	defer restore()
	_, err = serial.Deserialize(doc, serial.Options{Strictness: serial.Strictness{OnDuplicateKey: serial.Warn}})
	require.NoError(t, err)
	require.Len(t, c.Warnings(), 1)
	w := c.Warnings()[0].(serial.DuplicateKeyWarning)
	assert.Equal(t, "/a", w.Path)
	assert.Equal(t, mb.CodeDuplicateKey, w.Code())

	_, err = serial.Deserialize(doc, serial.Options{Strictness: serial.Strictness{OnDuplicateKey: serial.Error}})
	var de *mb.DeserializeError
	require.True(t, errors.As(err, &de), "got %v", err)
	assert.Contains(t, de.Message, "duplicated")
	assert.Equal(t, doc, de.Data)
}

func TestDeserialize_Limits(t *testing.T) {
	_, err := serial.Deserialize(`[[[1]]]`, serial.Options{MaxDepth: 2})
	var de *mb.DeserializeError
	require.True(t, errors.As(err, &de), "got %v", err)

	_, err = serial.DeserializeYAML("a: "+strings.Repeat("x", 100), serial.Options{MaxBytes: 10})
	require.True(t, errors.As(err, &de), "got %v", err)
}

func TestDeserialize_Malformed(t *testing.T) {
	for _, doc := range []string{`{"a":`, `{"a":1}{}`, `nope`} {
		_, err := serial.Deserialize(doc)
		var de *mb.DeserializeError
		if !errors.As(err, &de) {
			t.Fatalf("Deserialize(%q) error = %v, want *DeserializeError", doc, err)
		}
	}
	if _, err := serial.Deserialize(42); !errors.Is(err, mb.ErrInvalidType) {
		t.Fatalf("Deserialize(42) error = %v", err)
	}
}

func TestDeserialize_NumberModes(t *testing.T) {
	v, err := serial.Deserialize(`[1, 1.5]`, serial.Options{Numbers: serial.NumberFloat64})
	require.NoError(t, err)
	assert.Equal(t, []any{1.0, 1.5}, v)
}

func TestRead_RewindsSeekers(t *testing.T) {
	r := strings.NewReader(`{"a":1}`)
	buf := make([]byte, 3)
	_, _ = r.Read(buf)
	b, err := serial.Read(r)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(b))
}

type seekFailReader struct {
	*strings.Reader
	err error
}

func (r seekFailReader) Seek(int64, int) (int64, error) { return 0, r.err }

func TestRead_SeekErrors(t *testing.T) {
	r := seekFailReader{Reader: strings.NewReader(`{"a":1}`), err: errors.ErrUnsupported}
	buf := make([]byte, 3)
	_, _ = r.Read(buf)
	b, err := serial.Read(r)
	require.NoError(t, err)
	assert.Equal(t, `":1}`, string(b))

	broken := errors.New("disk gone")
	_, err = serial.Read(seekFailReader{Reader: strings.NewReader("x"), err: broken})
	assert.ErrorIs(t, err, broken)
}

func TestSerialize_RoundTrip(t *testing.T) {
	doc := `{"name":"Rex","age":3,"tags":["a","b"]}`
	m, err := serial.Load(doc, petType())
	require.NoError(t, err)
	assert.Equal(t, "json", m.Format())
	assert.Equal(t, "json", m.(*mb.Object).Get("tags").(mb.Model).Format())

	out, err := serial.Serialize(m)
	require.NoError(t, err)
	assert.Equal(t, doc, out)

	pretty, err := serial.Serialize(m, serial.Options{Indent: "  "})
	require.NoError(t, err)
	assert.Contains(t, pretty, "\n")
	again, err := serial.Deserialize(pretty)
	require.NoError(t, err)
	assert.True(t, mb.Equal(again, mustDeserialize(t, doc)))
}

func TestSerializeYAML_RoundTrip(t *testing.T) {
	m, err := serial.LoadYAML("name: Rex\nage: 3\n", petType())
	require.NoError(t, err)
	assert.Equal(t, "yaml", m.Format())

	out, err := serial.SerializeYAML(m)
	require.NoError(t, err)
	assert.Equal(t, "name: Rex\nage: 3\n", out)
}

func TestSerialize_Hooks(t *testing.T) {
	h := &mb.ObjectHooks{}
	h.BeforeSerialize = func(data any) (any, error) {
		data.(*mb.Mapping).Set("kind", "pet")
		return data, nil
	}
	h.AfterSerialize = func(s string) (string, error) { return s + "\n", nil }
	pet := mb.NewObjectType("HookedPet", mb.ReadObjectMeta(petType()), mb.WithHooks(h))

	m, err := serial.Load(`{"name":"Rex"}`, pet)
	require.NoError(t, err)
	out, err := serial.Serialize(m)
	require.NoError(t, err)
	assert.Equal(t, "{\"name\":\"Rex\",\"kind\":\"pet\"}\n", out)
}

func TestLoad_RecordsFileURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pet.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"Rex","tags":["a"]}`), 0o600))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	m, err := serial.Load(f, petType())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(m.URL(), "file://"), m.URL())
	assert.True(t, strings.HasSuffix(m.URL(), "/pet.json"), m.URL())
	assert.Equal(t, m.URL(), m.(*mb.Object).Get("tags").(mb.Model).URL())
	assert.Equal(t, "#", m.Pointer())
}

func TestLoad_UnmarshalFailure(t *testing.T) {
	_, err := serial.Load(`{"name":"Rex","age":"old"}`, petType())
	var ue *mb.UnmarshalError
	require.True(t, errors.As(err, &ue), "got %v", err)
	assert.Equal(t, "/age", ue.Path())
}

func mustDeserialize(t *testing.T, s string) any {
	t.Helper()
	v, err := serial.Deserialize(s)
	require.NoError(t, err)
	return v
}
