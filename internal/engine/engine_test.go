package engine

import (
	"errors"
	"io"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/reoring/modelbind"
)

func decodeJSON(t *testing.T, s string, mode NumberMode, opt EnforceOptions) (any, error) {
	t.Helper()
	return Decode(WrapWithEnforcement(NewJSONReader(strings.NewReader(s)), opt), mode)
}

func TestDecode_PreservesKeyOrder(t *testing.T) {
	v, err := decodeJSON(t, `{"z":1,"a":{"y":[true,null,"s"],"b":2.5}}`, NumberNative, EnforceOptions{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	m := v.(*modelbind.Mapping)
	if diff := cmp.Diff([]string{"z", "a"}, m.Keys()); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}
	z, _ := m.Get("z")
	if z != int64(1) {
		t.Fatalf("z = %#v", z)
	}
	inner, _ := m.Get("a")
	im := inner.(*modelbind.Mapping)
	if diff := cmp.Diff([]string{"y", "b"}, im.Keys()); diff != "" {
		t.Fatalf("inner keys (-want +got):\n%s", diff)
	}
	y, _ := im.Get("y")
	if diff := cmp.Diff([]any{true, nil, "s"}, y); diff != "" {
		t.Fatalf("array (-want +got):\n%s", diff)
	}
	b, _ := im.Get("b")
	if b != 2.5 {
		t.Fatalf("b = %#v", b)
	}
}

func TestDecode_NumberModes(t *testing.T) {
	cases := []struct {
		mode NumberMode
		want any
	}{
		{NumberNative, int64(12)},
		{NumberFloat64, float64(12)},
		{NumberJSONNumber, json.Number("12")},
	}
	for _, tc := range cases {
		v, err := decodeJSON(t, `12`, tc.mode, EnforceOptions{})
		if err != nil {
			t.Fatalf("mode %d: %v", tc.mode, err)
		}
		if v != tc.want {
			t.Fatalf("mode %d: got %#v, want %#v", tc.mode, v, tc.want)
		}
	}
}

func TestDecode_TrailingData(t *testing.T) {
	if _, err := decodeJSON(t, `{} {}`, NumberNative, EnforceOptions{}); !errors.Is(err, ErrTrailingData) {
		t.Fatalf("expected ErrTrailingData, got %v", err)
	}
	if _, err := decodeJSON(t, ``, NumberNative, EnforceOptions{}); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestEnforce_DuplicateKeys(t *testing.T) {
	doc := `{"a":1,"b":{"c":1,"c":2},"a":3}`

	v, err := decodeJSON(t, doc, NumberNative, EnforceOptions{OnDuplicate: DupIgnore})
	if err != nil {
		t.Fatalf("ignore: %v", err)
	}
	a, _ := v.(*modelbind.Mapping).Get("a")
	if a != int64(3) {
		t.Fatalf("last value should win, got %#v", a)
	}

	var got []SimpleIssue
	_, err = decodeJSON(t, doc, NumberNative, EnforceOptions{
		OnDuplicate: DupWarn,
		IssueSink:   func(si SimpleIssue) { got = append(got, si) },
	})
	if err != nil {
		t.Fatalf("warn: %v", err)
	}
	if len(got) != 2 || got[0].Path != "/b/c" || got[1].Path != "/a" {
		t.Fatalf("issues = %+v", got)
	}

	_, err = decodeJSON(t, doc, NumberNative, EnforceOptions{OnDuplicate: DupError})
	var ie IssueError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IssueError, got %v", err)
	}
	if ie.Code != "duplicate_key" || ie.Path != "/b/c" {
		t.Fatalf("issue = %+v", ie.SimpleIssue)
	}
}

func TestEnforce_MaxDepth(t *testing.T) {
	_, err := decodeJSON(t, `{"a":[[1]]}`, NumberNative, EnforceOptions{MaxDepth: 2})
	var ie IssueError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IssueError, got %v", err)
	}
	if ie.Path != "/a/0" {
		t.Fatalf("path = %q", ie.Path)
	}
	if _, err := decodeJSON(t, `{"a":[1]}`, NumberNative, EnforceOptions{MaxDepth: 2}); err != nil {
		t.Fatalf("depth 2 should pass: %v", err)
	}
}

func TestEnforce_MaxBytes(t *testing.T) {
	doc := `["` + strings.Repeat("x", 64) + `"]`
	_, err := decodeJSON(t, doc, NumberNative, EnforceOptions{MaxBytes: 16})
	var ie IssueError
	if !errors.As(err, &ie) || ie.Code != "truncated" {
		t.Fatalf("expected truncated issue, got %v", err)
	}
}

func TestYAMLNode_Decode(t *testing.T) {
	src := `
name: Rex
age: 3
weight: 4.5
good: true
nothing: ~
base: &b {x: 1}
copy: *b
tags: [a, "1"]
`
	var n yaml.Node
	if err := yaml.Unmarshal([]byte(src), &n); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	ts, err := NewYAMLNode(&n)
	if err != nil {
		t.Fatalf("NewYAMLNode: %v", err)
	}
	v, err := Decode(ts, NumberNative)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	m := v.(*modelbind.Mapping)
	want := []string{"name", "age", "weight", "good", "nothing", "base", "copy", "tags"}
	if diff := cmp.Diff(want, m.Keys()); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}
	for k, w := range map[string]any{"name": "Rex", "age": int64(3), "weight": 4.5, "good": true, "nothing": nil} {
		if got, _ := m.Get(k); got != w {
			t.Fatalf("%s = %#v, want %#v", k, got, w)
		}
	}
	cp, _ := m.Get("copy")
	x, _ := cp.(*modelbind.Mapping).Get("x")
	if x != int64(1) {
		t.Fatalf("alias not expanded: %#v", cp)
	}
	tags, _ := m.Get("tags")
	if diff := cmp.Diff([]any{"a", "1"}, tags); diff != "" {
		t.Fatalf("tags (-want +got):\n%s", diff)
	}
}

func TestYAMLNode_IntegralFloatsStayFloats(t *testing.T) {
	var n yaml.Node
	if err := yaml.Unmarshal([]byte("[1.0, 2, 1e3, 0.5]"), &n); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	ts, err := NewYAMLNode(&n)
	if err != nil {
		t.Fatalf("NewYAMLNode: %v", err)
	}
	v, err := Decode(ts, NumberNative)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff([]any{1.0, int64(2), 1000.0, 0.5}, v); diff != "" {
		t.Fatalf("numbers (-want +got):\n%s", diff)
	}
}

func TestYAMLNode_EnforcedDuplicates(t *testing.T) {
	var n yaml.Node
	// yaml.v3 rejects duplicate keys while decoding into Go values but keeps
	// them in the node tree.
	if err := yaml.Unmarshal([]byte("a: 1\na: 2\n"), &n); err != nil {
		t.Skipf("yaml parser rejected duplicate keys: %v", err)
	}
	ts, err := NewYAMLNode(&n)
	if err != nil {
		t.Fatalf("NewYAMLNode: %v", err)
	}
	_, err = Decode(WrapWithEnforcement(ts, EnforceOptions{OnDuplicate: DupError}), NumberNative)
	var ie IssueError
	if !errors.As(err, &ie) || ie.Path != "/a" {
		t.Fatalf("expected duplicate at /a, got %v", err)
	}
}
