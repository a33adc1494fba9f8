package modelbind_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	mb "github.com/reoring/modelbind"
)

func TestArray_Operations(t *testing.T) {
	ints := mb.NewArrayType("Ints", mb.MustTypes(mb.KindInteger))
	a := mb.NewArray(ints)

	require.NoError(t, a.Extend(1, 2.0, 3))
	require.Equal(t, []any{int64(1), int64(2), int64(3)}, a.Items())

	require.NoError(t, a.Insert(0, 0))
	require.NoError(t, a.SetItem(-1, 30))
	require.Equal(t, []any{int64(0), int64(1), int64(2), int64(30)}, a.Items())

	v, err := a.Pop(-1)
	require.NoError(t, err)
	require.Equal(t, int64(30), v)
	require.NoError(t, a.Delete(0))
	require.Equal(t, 2, a.Len())

	_, err = a.Pop(5)
	require.True(t, errors.Is(err, mb.ErrInvalidValue))
}

func TestArray_SetItemErrorPath(t *testing.T) {
	a := mb.NewArray(mb.NewArrayType("Ints", mb.MustTypes(mb.KindInteger)))
	require.NoError(t, a.Extend(1, 2))

	err := a.SetItem(1, "two")
	var ue *mb.UnmarshalError
	require.True(t, errors.As(err, &ue), "got %T: %v", err, err)
	require.Equal(t, "/1", ue.Path())
	require.Equal(t, "item_types", ue.Label)
	require.Equal(t, int64(2), a.At(1))
}

func TestArray_Hooks(t *testing.T) {
	a := mb.NewArray(nil)
	h, err := mb.WritableArrayHooks(a)
	require.NoError(t, err)
	h.BeforeAppend = func(_ *mb.Array, value any) (any, error) {
		if value == "skip" {
			return nil, errors.New("skipped")
		}
		return value, nil
	}
	require.NoError(t, a.Append("keep"))
	require.EqualError(t, a.Append("skip"), "skipped")
	require.Equal(t, 1, a.Len())
}

func TestArray_InsertUsesSetItemHooks(t *testing.T) {
	a := mb.NewArray(mb.NewArrayType("Ints", mb.MustTypes(mb.KindInteger)))
	require.NoError(t, a.Extend(1, 2, 3))
	h, err := mb.WritableArrayHooks(a)
	require.NoError(t, err)
	var seen []int
	h.BeforeSetItem = func(_ *mb.Array, i int, value any) (int, any, error) {
		seen = append(seen, i)
		return i, value, nil
	}

	require.NoError(t, a.Insert(-1, 9))
	require.Equal(t, []any{int64(1), int64(2), int64(9), int64(3)}, a.Items())
	require.NoError(t, a.Insert(a.Len(), 10))
	require.Equal(t, []int{2, 4}, seen)

	err = a.Insert(0, "x")
	var ue *mb.UnmarshalError
	require.True(t, errors.As(err, &ue), "got %v", err)
	require.Equal(t, "/0", ue.Path())
	require.Equal(t, 5, a.Len())
	require.Equal(t, int64(1), a.At(0))

	require.True(t, errors.Is(a.Insert(7, 1), mb.ErrInvalidValue))
	require.True(t, errors.Is(a.Insert(-6, 1), mb.ErrInvalidValue))
}

func TestDictionary_Operations(t *testing.T) {
	d := mb.NewDictionary(mb.NewDictionaryType("Counts", mb.MustTypes(mb.KindInteger)))
	require.NoError(t, d.SetItem("b", 2))
	require.NoError(t, d.SetItem("a", 1))
	require.NoError(t, d.SetItem("b", 20))
	require.Equal(t, []string{"b", "a"}, d.Keys())

	err := d.SetItem("c/d", "x")
	var ue *mb.UnmarshalError
	require.True(t, errors.As(err, &ue), "got %v", err)
	require.Equal(t, "/c~1d", ue.Path())

	require.True(t, d.Delete("b"))
	require.False(t, d.Delete("b"))
	v, ok := d.Get("a")
	require.True(t, ok)
	require.Equal(t, int64(1), v)
}

func TestObject_ExtrasAndWarnings(t *testing.T) {
	o, err := mb.UnmarshalObject(mb.MappingOf("name", "Rex"), petType())
	require.NoError(t, err)

	c, restore := mb.CollectWarnings()
	defer restore()
	require.NoError(t, o.SetItem("color", "brown"))
	require.NoError(t, o.SetItem("birth_date", "2021-01-02"))

	require.Len(t, c.Warnings(), 1)
	w := c.Warnings()[0].(mb.UndefinedPropertyWarning)
	require.Equal(t, "color", w.Key)
	require.Equal(t, "#/color", w.Pointer)
	require.Equal(t, mb.CodeUnknownKey, w.Code())

	v, ok := o.Item("color")
	require.True(t, ok)
	require.Equal(t, "brown", v)
	require.Equal(t, mb.Date{Year: 2021, Month: 1, Day: 2}, o.Get("birthDate"))
	require.Equal(t, []string{"name", "birthDate"}, o.Fields())

	out, err := mb.Marshal(o)
	require.NoError(t, err)
	require.Equal(t, []string{"name", "birth_date", "color"}, out.(*mb.Mapping).Keys())
}

func TestObject_DeleteField(t *testing.T) {
	o, err := mb.UnmarshalObject(petData(), petType())
	require.NoError(t, err)
	require.NoError(t, o.DeleteField("age"))
	require.Nil(t, o.Get("age"))

	err = o.DeleteField("weight")
	require.True(t, errors.Is(err, mb.ErrUnmarshal))

	require.NoError(t, o.SetField("name", nil))
	require.Equal(t, []string{"birthDate", "tags"}, o.Fields())
}

func TestModel_DeepCopy(t *testing.T) {
	o, err := mb.UnmarshalObject(petData(), petType())
	require.NoError(t, err)

	shallow := o.Copy()
	deep := o.DeepCopy()
	require.NoError(t, o.Get("tags").(*mb.Array).Append("loyal"))

	require.Equal(t, 3, shallow.Get("tags").(*mb.Array).Len())
	require.Equal(t, 2, deep.Get("tags").(*mb.Array).Len())
	require.True(t, mb.Equal(o, shallow))
	require.False(t, mb.Equal(o, deep))
}

func TestModel_NewPanicsOnKindMismatch(t *testing.T) {
	require.Panics(t, func() { mb.NewArray(petType()) })
	require.Panics(t, func() {
		mb.NewObjectType("Bad", nil, mb.Extends(mb.ArrayType))
	})
}

func TestPointer_SetPointerRecurses(t *testing.T) {
	o, err := mb.UnmarshalObject(petData(), petType())
	require.NoError(t, err)
	mb.SetPointer(o, "#/components/pet")
	require.Equal(t, "#/components/pet/tags", o.Get("tags").(mb.Model).Pointer())

	mb.SetURL(o, "file:///tmp/pet.json")
	mb.SetFormat(o, "json")
	tags := o.Get("tags").(mb.Model)
	require.Equal(t, "file:///tmp/pet.json", tags.URL())
	require.Equal(t, "json", tags.Format())
}
