package modelbind_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mb "github.com/reoring/modelbind"
)

func TestUnmarshal_RoundTrip(t *testing.T) {
	data := petData()
	o, err := mb.UnmarshalObject(data, petType())
	require.NoError(t, err)

	assert.Equal(t, "Rex", o.Get("name"))
	assert.Equal(t, int64(3), o.Get("age"))
	assert.Equal(t, mb.Date{Year: 2020, Month: time.February, Day: 29}, o.Get("birthDate"))
	tags, ok := o.Get("tags").(*mb.Array)
	require.True(t, ok, "tags should be an Array, got %T", o.Get("tags"))
	assert.Equal(t, 2, tags.Len())

	out, err := mb.Marshal(o)
	require.NoError(t, err)
	mp, ok := out.(*mb.Mapping)
	require.True(t, ok)
	assert.Equal(t, []string{"name", "age", "birth_date", "tags"}, mp.Keys())
	assert.True(t, mb.Equal(out, data), "round trip changed the data: %v", out)
}

func TestUnmarshal_Pointers(t *testing.T) {
	o, err := mb.UnmarshalObject(petData(), petType())
	require.NoError(t, err)
	assert.Equal(t, "#", o.Pointer())
	assert.Equal(t, "#/tags", o.Get("tags").(mb.Model).Pointer())
}

func TestUnmarshal_Untyped(t *testing.T) {
	v, err := mb.Unmarshal(map[string]any{"b": []any{1, nil}, "a": "x"})
	require.NoError(t, err)
	d, ok := v.(*mb.Dictionary)
	require.True(t, ok, "got %T", v)
	assert.Equal(t, []string{"a", "b"}, d.Keys())
	b, _ := d.Get("b")
	arr := b.(*mb.Array)
	assert.Equal(t, int64(1), arr.At(0))
	assert.Equal(t, mb.Null, arr.At(1))

	v, err = mb.Unmarshal(nil)
	require.NoError(t, err)
	assert.Equal(t, mb.Null, v)
}

func TestUnmarshal_CandidateOrder(t *testing.T) {
	cases := []struct {
		name  string
		data  any
		types []mb.Candidate
		want  any
	}{
		{"string skips integer", "3", []mb.Candidate{mb.KindInteger, mb.KindString}, "3"},
		{"number first", 3, []mb.Candidate{mb.KindNumber, mb.KindInteger}, int64(3)},
		{"integral float as integer", 3.0, []mb.Candidate{mb.KindInteger, mb.KindNumber}, int64(3)},
		{"fraction falls through", 3.5, []mb.Candidate{mb.KindInteger, mb.KindNumber}, 3.5},
		{"boolean", true, []mb.Candidate{mb.KindInteger, mb.KindBoolean}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := mb.Unmarshal(tc.data, tc.types...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestUnmarshal_BooleanIsNotANumber(t *testing.T) {
	_, err := mb.Unmarshal(true, mb.KindInteger, mb.KindNumber)
	require.Error(t, err)
	assert.True(t, errors.Is(err, mb.ErrUnmarshalType))
	assert.True(t, errors.Is(err, mb.ErrUnmarshal))
}

func TestUnmarshal_PrefersCandidateWithoutExtras(t *testing.T) {
	a := mb.NewObjectType("A", mb.NewObjectMeta(mb.Field("a", mb.IntegerProperty())))
	b := mb.NewObjectType("B", mb.NewObjectMeta(
		mb.Field("a", mb.IntegerProperty()),
		mb.Field("b", mb.IntegerProperty()),
	))

	v, err := mb.Unmarshal(mb.MappingOf("a", 1, "b", 2), a, b)
	require.NoError(t, err)
	assert.Same(t, b, v.(mb.Model).Type())

	c, restore := mb.CollectWarnings()
	defer restore()
	v, err = mb.Unmarshal(mb.MappingOf("a", 1, "c", 3), a, b)
	require.NoError(t, err)
	assert.Same(t, a, v.(mb.Model).Type())
	// Only the accepted candidate reports its undefined key.
	require.Len(t, c.Warnings(), 1)
	assert.Equal(t, "c", c.Warnings()[0].(mb.UndefinedPropertyWarning).Key)
}

func TestUnmarshal_ErrorPath(t *testing.T) {
	cases := []struct {
		name string
		data *mb.Mapping
		path string
	}{
		{"field", mb.MappingOf("name", "Rex", "age", "old"), "/age"},
		{"item", mb.MappingOf("name", "Rex", "tags", []any{"ok", 5}), "/tags/1"},
		{"wire name", mb.MappingOf("name", "Rex", "birth_date", "someday"), "/birth_date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := mb.UnmarshalObject(tc.data, petType())
			require.Error(t, err)
			var ue *mb.UnmarshalError
			require.True(t, errors.As(err, &ue), "expected *UnmarshalError, got %T: %v", err, err)
			assert.Equal(t, tc.path, ue.Path())
			assert.Contains(t, err.Error(), tc.path)
		})
	}
}

func TestUnmarshal_ErrorCarriesValueAndTypes(t *testing.T) {
	_, err := mb.Unmarshal("abc", mb.KindInteger, mb.KindBoolean)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `"abc"`)
	assert.Contains(t, msg, "(Integer, Boolean)")
}

func TestUnmarshal_EnumeratedRejectsValue(t *testing.T) {
	status := mb.NewObjectType("Status", mb.NewObjectMeta(
		mb.Field("state", mb.EnumeratedProperty([]any{"open", "closed"})),
	))
	_, err := mb.UnmarshalObject(mb.MappingOf("state", "pending"), status)
	require.Error(t, err)
	assert.True(t, errors.Is(err, mb.ErrUnmarshalValue))

	o, err := mb.UnmarshalObject(mb.MappingOf("state", "open"), status)
	require.NoError(t, err)
	assert.Equal(t, "open", o.Get("state"))
}

func TestUnmarshal_NullIsKept(t *testing.T) {
	o, err := mb.UnmarshalObject(map[string]any{"name": nil}, petType())
	require.NoError(t, err)
	assert.Equal(t, mb.Null, o.Get("name"))
	assert.Nil(t, o.Get("age"))

	out, err := mb.Marshal(o)
	require.NoError(t, err)
	v, ok := out.(*mb.Mapping).Get("name")
	assert.True(t, ok)
	assert.Nil(t, v)
	assert.False(t, out.(*mb.Mapping).Has("age"))
}

func TestUnmarshal_DeferredTypesSeeSiblings(t *testing.T) {
	value := mb.NewProperty(nil, mb.TypesFrom(mb.Deferred(func(parent mb.Model) (*mb.Types, error) {
		if o, ok := parent.(*mb.Object); ok && o.Get("kind") == "n" {
			return mb.MustTypes(mb.KindInteger), nil
		}
		return mb.MustTypes(mb.KindString), nil
	})))
	tagged := mb.NewObjectType("Tagged", mb.NewObjectMeta(
		mb.Field("value", value),
		mb.Field("kind", mb.StringProperty()),
	))

	o, err := mb.UnmarshalObject(mb.MappingOf("value", 5, "kind", "n"), tagged)
	require.NoError(t, err)
	assert.Equal(t, int64(5), o.Get("value"))

	_, err = mb.UnmarshalObject(mb.MappingOf("value", 5, "kind", "s"), tagged)
	require.Error(t, err)
}

func TestUnmarshal_BeforeUnmarshalGetsCopy(t *testing.T) {
	h := &mb.ObjectHooks{}
	h.BeforeUnmarshal = func(data any) (any, error) {
		data.(*mb.Mapping).Set("name", "Changed")
		return data, nil
	}
	pet := mb.NewObjectType("HookedPet", mb.ReadObjectMeta(petType()), mb.WithHooks(h))

	data := petData()
	o, err := mb.UnmarshalObject(data, pet)
	require.NoError(t, err)
	assert.Equal(t, "Changed", o.Get("name"))
	name, _ := data.Get("name")
	assert.Equal(t, "Rex", name)
}

func TestUnmarshal_HookErrorIsReturnedUnchanged(t *testing.T) {
	boom := errors.New("boom")
	h := &mb.ObjectHooks{}
	h.AfterUnmarshal = func(m mb.Model) (mb.Model, error) { return nil, boom }
	pet := mb.NewObjectType("FailingPet", mb.ReadObjectMeta(petType()), mb.WithHooks(h))

	_, err := mb.UnmarshalObject(petData(), pet)
	assert.Same(t, boom, err)
}

func TestUnmarshal_ModelPassesThrough(t *testing.T) {
	o, err := mb.UnmarshalObject(petData(), petType())
	require.NoError(t, err)
	v, err := mb.Unmarshal(o, o.Type())
	require.NoError(t, err)
	assert.Same(t, o, v)
}

func TestUnmarshal_WrongShape(t *testing.T) {
	_, err := mb.UnmarshalObject([]any{1, 2}, petType())
	require.Error(t, err)
	assert.True(t, errors.Is(err, mb.ErrUnmarshalType))
}
