package modelbind

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// VersionNumber is a dotted sequence of non-negative integers.
type VersionNumber []int

var dotSyntax = regexp.MustCompile(`^\d+(\.\d+)*$`)

// ParseVersionNumber accepts a dotted string ("3.0.1"), an integer, a float
// (split on the decimal point, so 3.1 is [3 1] and 3.0 is [3 0]), an []int or
// a VersionNumber.
func ParseVersionNumber(v any) (VersionNumber, error) {
	switch x := v.(type) {
	case VersionNumber:
		return slices.Clone(x), nil
	case []int:
		for _, n := range x {
			if n < 0 {
				return nil, fmt.Errorf("%w: negative version component in %v", ErrInvalidValue, x)
			}
		}
		return slices.Clone(VersionNumber(x)), nil
	case string:
		return parseDotted(strings.TrimSpace(x))
	case int:
		return parseDotted(strconv.Itoa(x))
	case int64:
		return parseDotted(strconv.FormatInt(x, 10))
	case float64:
		return parseDotted(floatVersion(strconv.FormatFloat(x, 'f', -1, 64)))
	case float32:
		return parseDotted(floatVersion(strconv.FormatFloat(float64(x), 'f', -1, 32)))
	}
	return nil, fmt.Errorf("%w: %T is not a version number", ErrInvalidType, v)
}

// floatVersion keeps the fractional component of an integral float.
func floatVersion(s string) string {
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// MustVersionNumber is like ParseVersionNumber but panics on error.
func MustVersionNumber(v any) VersionNumber {
	n, err := ParseVersionNumber(v)
	if err != nil {
		panic(err)
	}
	return n
}

func parseDotted(s string) (VersionNumber, error) {
	if !dotSyntax.MatchString(s) {
		return nil, fmt.Errorf("%w: invalid version number %q", ErrInvalidValue, s)
	}
	parts := strings.Split(s, ".")
	out := make(VersionNumber, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid version number %q", ErrInvalidValue, s)
		}
		out[i] = n
	}
	return out, nil
}

func (n VersionNumber) String() string {
	parts := make([]string, len(n))
	for i, c := range n {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ".")
}

// comparePadded compares a and b component-wise, treating missing trailing
// components as zero.
func comparePadded(a, b VersionNumber) int {
	for i := 0; i < max(len(a), len(b)); i++ {
		var x, y int
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		if c := cmp.Compare(x, y); c != 0 {
			return c
		}
	}
	return 0
}

// versionsEqual compares at the precision of b: a longer a matches when its
// prefix equals b, a shorter a is padded with zeros.
func versionsEqual(a, b VersionNumber) bool {
	if len(a) >= len(b) {
		return slices.Equal(a[:len(b)], b)
	}
	return comparePadded(a, b) == 0
}

// versionsCompatible implements "~=": a less precise a must equal b's
// prefix; otherwise b <= a < b[:-2] + (b[-2]+1, 0).
func versionsCompatible(a, b VersionNumber) bool {
	if len(a) < len(b) {
		return slices.Equal(a, b[:len(a)])
	}
	if len(b) > 1 {
		upper := append(slices.Clone(b[:len(b)-2]), b[len(b)-2]+1, 0)
		return slices.Compare(b, a) <= 0 && slices.Compare(a, upper) < 0
	}
	return slices.Equal(a, b)
}

// Version constrains a version number of one specification. Every set slot
// must be satisfied.
type Version struct {
	Specification string

	ExactlyEquals        VersionNumber
	Equals               VersionNumber
	NotEquals            VersionNumber
	LessThan             VersionNumber
	LessThanOrEqualTo    VersionNumber
	GreaterThan          VersionNumber
	GreaterThanOrEqualTo VersionNumber
	CompatibleWith       VersionNumber
}

// slotID enumerates the constraint slots in display order.
type slotID int

const (
	slotExactlyEquals slotID = iota
	slotEquals
	slotCompatibleWith
	slotNotEquals
	slotGreaterThan
	slotGreaterThanOrEqualTo
	slotLessThan
	slotLessThanOrEqualTo
	slotCount
)

var slotOperators = [slotCount]string{"===", "==", "~=", "!=", ">", ">=", "<", "<="}

func (v *Version) slot(id slotID) *VersionNumber {
	switch id {
	case slotExactlyEquals:
		return &v.ExactlyEquals
	case slotEquals:
		return &v.Equals
	case slotCompatibleWith:
		return &v.CompatibleWith
	case slotNotEquals:
		return &v.NotEquals
	case slotGreaterThan:
		return &v.GreaterThan
	case slotGreaterThanOrEqualTo:
		return &v.GreaterThanOrEqualTo
	case slotLessThan:
		return &v.LessThan
	default:
		return &v.LessThanOrEqualTo
	}
}

// match applies slot id to version a and bound b. Outside "==" and "~=",
// versions compare as integer tuples: a shorter prefix sorts first, so 3 < 3.0.
func (id slotID) match(a, b VersionNumber) bool {
	switch id {
	case slotExactlyEquals:
		return slices.Compare(a, b) == 0
	case slotEquals:
		return versionsEqual(a, b)
	case slotCompatibleWith:
		return versionsCompatible(a, b)
	case slotNotEquals:
		return slices.Compare(a, b) != 0
	case slotGreaterThan:
		return slices.Compare(a, b) > 0
	case slotGreaterThanOrEqualTo:
		return slices.Compare(a, b) >= 0
	case slotLessThan:
		return slices.Compare(a, b) < 0
	default:
		return slices.Compare(a, b) <= 0
	}
}

// parseOperators is ordered so that longer tokens win ("===" before "==",
// "<=" before "<" and "=").
var parseOperators = []struct {
	token string
	slot  slotID
}{
	{"===", slotExactlyEquals},
	{"<=", slotLessThanOrEqualTo},
	{">=", slotGreaterThanOrEqualTo},
	{"!=", slotNotEquals},
	{"==", slotEquals},
	{"~=", slotCompatibleWith},
	{"<", slotLessThan},
	{">", slotGreaterThan},
	{"=", slotEquals},
}

// ParseVersion parses a specifier such as "openapi>=3.0,<3.1". The
// specification prefix may appear on any clause but must not differ between
// clauses.
func ParseVersion(s string) (*Version, error) {
	v := &Version{}
	for _, clause := range strings.Split(s, ",") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		matched := false
		for _, op := range parseOperators {
			i := strings.Index(clause, op.token)
			if i < 0 {
				continue
			}
			matched = true
			spec := strings.TrimSpace(clause[:i])
			if spec != "" {
				if v.Specification != "" && v.Specification != spec {
					return nil, fmt.Errorf("%w: multiple specifications in %q: %q and %q",
						ErrInvalidValue, s, v.Specification, spec)
				}
				v.Specification = spec
			}
			n, err := parseDotted(strings.TrimSpace(clause[i+len(op.token):]))
			if err != nil {
				return nil, fmt.Errorf("%w (in %q)", err, s)
			}
			slot := v.slot(op.slot)
			if *slot != nil {
				return nil, fmt.Errorf("%w: %q sets %q twice", ErrInvalidValue, s, op.token)
			}
			*slot = n
			break
		}
		if !matched {
			return nil, fmt.Errorf("%w: no comparison operator in %q", ErrInvalidValue, clause)
		}
	}
	return v, nil
}

// MustParseVersion is like ParseVersion but panics on error. It is meant for
// schema declarations.
func MustParseVersion(s string) *Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Matches reports whether version satisfies every set constraint. version
// accepts the forms listed for ParseVersionNumber.
func (v *Version) Matches(version any) (bool, error) {
	n, err := ParseVersionNumber(version)
	if err != nil {
		return false, err
	}
	for id := slotID(0); id < slotCount; id++ {
		want := *v.slot(id)
		if want != nil && !id.match(n, want) {
			return false, nil
		}
	}
	return true, nil
}

// String is the inverse of ParseVersion.
func (v *Version) String() string {
	var clauses []string
	for id := slotID(0); id < slotCount; id++ {
		if n := *v.slot(id); n != nil {
			clauses = append(clauses, slotOperators[id]+n.String())
		}
	}
	return v.Specification + strings.Join(clauses, ",")
}

// Copy returns an independent copy.
func (v *Version) Copy() *Version {
	c := &Version{Specification: v.Specification}
	for id := slotID(0); id < slotCount; id++ {
		*c.slot(id) = slices.Clone(*v.slot(id))
	}
	return c
}
