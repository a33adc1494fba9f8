package modelbind

import (
	"math"
	"reflect"
	"sort"
	"strconv"
	"time"

	"github.com/davecgh/go-spew/spew"
	json "github.com/goccy/go-json"
	"github.com/mohae/deepcopy"

	"github.com/reoring/modelbind/codec"
	"github.com/reoring/modelbind/i18n"
)

// NullType is the type of Null.
type NullType struct{}

// Null is the explicit-null sentinel. A nil value means "absent"; Null means
// the data carried a literal null.
var Null = NullType{}

func (NullType) String() string               { return "null" }
func (NullType) MarshalJSON() ([]byte, error) { return []byte("null"), nil }
func (NullType) MarshalYAML() (any, error)    { return nil, nil }

// Date is a calendar date without a time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time { return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC) }

func (d Date) String() string { return codec.FormatDate(d.Time()) }

func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d Date) MarshalYAML() (any, error) { return d.String(), nil }

func message(code string, data map[string]string) string { return i18n.T(code, data) }

// asMapping views data as an ordered mapping. Go maps are iterated in sorted
// key order.
func asMapping(data any) (*Mapping, bool) {
	switch v := data.(type) {
	case *Mapping:
		if v == nil {
			return nil, false
		}
		return v, true
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := &Mapping{keys: keys, values: make(map[string]any, len(v))}
		for k, x := range v {
			m.values[k] = x
		}
		return m, true
	}
	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	keys := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	m := NewMapping()
	for _, k := range keys {
		m.Set(k, rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
	}
	return m, true
}

// asSequence views data as an ordered sequence. Byte slices are scalars.
func asSequence(data any) ([]any, bool) {
	switch v := data.(type) {
	case []any:
		return v, true
	case []byte, string, nil:
		return nil, false
	}
	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// normalizeScalar maps Go scalar kinds onto the plain-data set: integers
// become int64 and floats become float64.
func normalizeScalar(data any) (any, bool) {
	switch v := data.(type) {
	case string, bool, []byte, Date, time.Time, NullType:
		return v, true
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return uintToInt(uint64(v))
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return uintToInt(v)
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case json.Number:
		return numberValue(string(v))
	}
	return nil, false
}

func uintToInt(u uint64) (any, bool) {
	if u > math.MaxInt64 {
		return float64(u), true
	}
	return int64(u), true
}

func numberValue(s string) (any, bool) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, true
	}
	return nil, false
}

// copyData deep-copies plain data.
func copyData(data any) any {
	switch v := data.(type) {
	case nil, NullType, string, bool, int64, float64, Date, time.Time:
		return v
	case Model:
		return deepCopyModel(v)
	case *Mapping:
		if v == nil {
			return v
		}
		c := &Mapping{keys: append([]string(nil), v.keys...), values: make(map[string]any, len(v.values))}
		for k, x := range v.values {
			c.values[k] = copyData(x)
		}
		return c
	case []any:
		c := make([]any, len(v))
		for i, x := range v {
			c[i] = copyData(x)
		}
		return c
	case map[string]any:
		c := make(map[string]any, len(v))
		for k, x := range v {
			c[k] = copyData(x)
		}
		return c
	case []byte:
		return append([]byte(nil), v...)
	}
	return deepcopy.Copy(data)
}

// ReplaceNulls returns a copy of plain data in which every Null is replaced
// with nil.
func ReplaceNulls(data any) any {
	switch v := data.(type) {
	case NullType:
		return nil
	case *Mapping:
		if v == nil {
			return v
		}
		out := NewMapping()
		v.Range(func(k string, x any) bool {
			out.Set(k, ReplaceNulls(x))
			return true
		})
		return out
	case []any:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = ReplaceNulls(x)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, x := range v {
			out[k] = ReplaceNulls(x)
		}
		return out
	}
	return data
}

var spewConfig = spew.ConfigState{
	Indent:                  " ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// represent renders data for error messages.
func represent(data any) string {
	if m, ok := data.(Model); ok {
		if plain, err := Marshal(m); err == nil {
			data = plain
		}
	}
	if b, err := json.Marshal(data); err == nil {
		return truncate(string(b), 500)
	}
	return truncate(spewConfig.Sprintf("%v", data), 500)
}
