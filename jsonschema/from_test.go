package jsonschema_test

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	mb "github.com/reoring/modelbind"
	"github.com/reoring/modelbind/jsonschema"
)

func petType() *mb.ModelType {
	return mb.NewObjectType("Pet", mb.NewObjectMeta(
		mb.Field("name", mb.StringProperty(mb.Required())),
		mb.Field("age", mb.IntegerProperty()),
		mb.Field("birthDate", mb.DateProperty(mb.Named("birth_date"))),
		mb.Field("tags", mb.ArrayProperty([]mb.Candidate{mb.StringProperty()})),
	))
}

func TestFromType_Object(t *testing.T) {
	got, err := jsonschema.FromType(petType())
	if err != nil {
		t.Fatalf("FromType: %v", err)
	}
	want := &jsonschema.Schema{
		Type:  "object",
		Title: "Pet",
		Properties: map[string]*jsonschema.Schema{
			"name":       {Type: "string"},
			"age":        {Type: "integer"},
			"birth_date": {Type: "string", Format: "date"},
			"tags":       {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
		},
		Required: []string{"name"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("schema (-want +got):\n%s", diff)
	}
}

func TestFromType_NamedTypesGoToDefs(t *testing.T) {
	pet := petType()
	owner := mb.NewObjectType("Owner", mb.NewObjectMeta(
		mb.Field("pet", mb.NewProperty([]mb.Candidate{pet})),
		mb.Field("pets", mb.ArrayProperty([]mb.Candidate{pet})),
	))
	got, err := jsonschema.FromType(owner)
	if err != nil {
		t.Fatalf("FromType: %v", err)
	}
	ref := &jsonschema.Schema{Ref: "#/$defs/Pet"}
	if diff := cmp.Diff(ref, got.Properties["pet"]); diff != "" {
		t.Fatalf("pet (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(ref, got.Properties["pets"].Items); diff != "" {
		t.Fatalf("pets items (-want +got):\n%s", diff)
	}
	if len(got.Defs) != 1 || got.Defs["Pet"] == nil || got.Defs["Pet"].Title != "Pet" {
		t.Fatalf("defs = %#v", got.Defs)
	}
}

func TestFromType_RecursiveRoot(t *testing.T) {
	node := mb.NewObjectType("Node", mb.NewObjectMeta(mb.Field("value", mb.IntegerProperty())))
	meta, err := mb.WritableObjectMeta(node)
	if err != nil {
		t.Fatalf("WritableObjectMeta: %v", err)
	}
	meta.Set("children", mb.ArrayProperty([]mb.Candidate{node}))

	got, err := jsonschema.FromType(node)
	if err != nil {
		t.Fatalf("FromType: %v", err)
	}
	if diff := cmp.Diff(&jsonschema.Schema{Ref: "#"}, got.Properties["children"].Items); diff != "" {
		t.Fatalf("children items (-want +got):\n%s", diff)
	}
	if got.Defs != nil {
		t.Fatalf("unexpected defs: %#v", got.Defs)
	}
}

func TestFromProperty(t *testing.T) {
	cases := []struct {
		name string
		p    *mb.Property
		want *jsonschema.Schema
	}{
		{
			name: "enum",
			p:    mb.EnumeratedProperty([]any{"a", "b"}, mb.WithTypes(mb.KindString)),
			want: &jsonschema.Schema{Type: "string", Enum: []any{"a", "b"}},
		},
		{
			name: "nullable",
			p:    mb.NewProperty([]mb.Candidate{mb.KindString, mb.KindNull}),
			want: &jsonschema.Schema{OneOf: []*jsonschema.Schema{{Type: "string"}, {Type: "null"}}},
		},
		{
			name: "bytes",
			p:    mb.BytesProperty(),
			want: &jsonschema.Schema{Type: "string", ContentEncoding: "base64"},
		},
		{
			name: "dictionary",
			p:    mb.DictionaryProperty([]mb.Candidate{mb.KindNumber}),
			want: &jsonschema.Schema{Type: "object", AdditionalProperties: &jsonschema.Schema{Type: "number"}},
		},
		{
			name: "deferred",
			p: mb.NewProperty(nil, mb.TypesFrom(mb.Deferred(func(mb.Model) (*mb.Types, error) {
				return mb.MustTypes(mb.KindString), nil
			}))),
			want: &jsonschema.Schema{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := jsonschema.FromProperty(tc.p)
			if err != nil {
				t.Fatalf("FromProperty: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("schema (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSchema_JSON(t *testing.T) {
	s := &jsonschema.Schema{Ref: "#/$defs/Pet", Defs: map[string]*jsonschema.Schema{"Pet": {Type: "object"}}}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got, want := string(b), `{"$ref":"#/$defs/Pet","$defs":{"Pet":{"type":"object"}}}`; got != want {
		t.Fatalf("json = %s, want %s", got, want)
	}
}
