package modelbind

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType     = "invalid_type"
	CodeInvalidValue    = "invalid_value"
	CodeInvalidEnum     = "invalid_enum"
	CodeInvalidFormat   = "invalid_format"
	CodeRequired        = "required"
	CodeUnknownKey      = "unknown_key"
	CodeNullNotAllowed  = "null_not_allowed"
	CodeVersionMismatch = "version_mismatch"
	CodeDuplicateKey    = "duplicate_key"
	CodeParseError      = "parse_error"
	CodeTruncated       = "truncated"
	CodeKindMismatch    = "kind_mismatch"
)

// Sentinel error kinds. Structured errors report them through errors.Is.
var (
	// ErrInvalidType reports a value of an unacceptable kind, such as an
	// invalid entry for a Types list.
	ErrInvalidType = errors.New("modelbind: invalid type")
	// ErrInvalidValue reports a value of the right kind with unacceptable content.
	ErrInvalidValue = errors.New("modelbind: invalid value")

	ErrUnmarshal      = errors.New("modelbind: unmarshal failed")
	ErrUnmarshalType  = errors.New("modelbind: unmarshal type mismatch")
	ErrUnmarshalValue = errors.New("modelbind: unmarshal value mismatch")
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error.
}

// String renders the issue as "path: message".
func (it Issue) String() string { return it.Path + ": " + it.Message }

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// DeserializeError is returned when text could not be decoded at all.
type DeserializeError struct {
	Data    string
	Message string
	Cause   error
}

func (e *DeserializeError) Error() string {
	b := &strings.Builder{}
	b.WriteString("modelbind: could not deserialize")
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Data != "" {
		b.WriteString("\n  - data: ")
		b.WriteString(truncate(e.Data, 200))
	}
	return b.String()
}

func (e *DeserializeError) Unwrap() error { return e.Cause }

// UnmarshalReason tells whether an unmarshal failure was caused by the kind
// of the data or by its content.
type UnmarshalReason uint8

const (
	ReasonType UnmarshalReason = iota + 1
	ReasonValue
)

// UnmarshalError is returned when no candidate in a Types list accepted the
// given data. Path is layered while the recursive unmarshal unwinds, so it
// locates the failing value relative to the data handed to the outermost call.
type UnmarshalError struct {
	Reason UnmarshalReason
	Data   any
	Types  *Types
	// Label names the list that was tried: "types", "item_types" or "value_types".
	Label string
	// Detail replaces the generic headline when set.
	Detail   string
	Attempts []error
	path     pathRef
}

// Path returns the JSON Pointer of the failing value ("/" for the root).
func (e *UnmarshalError) Path() string { return e.path.Pointer() }

func (e *UnmarshalError) Error() string {
	b := &strings.Builder{}
	if e.Detail != "" {
		b.WriteString(e.Detail)
	} else {
		b.WriteString("The data provided does not match any of the expected types and/or property definitions:")
	}
	fmt.Fprintf(b, "\n  - path: %s", e.Path())
	fmt.Fprintf(b, "\n  - data: %s", represent(e.Data))
	if e.Types != nil && e.Types.Len() > 0 {
		label := e.Label
		if label == "" {
			label = "types"
		}
		fmt.Fprintf(b, "\n  - %s: %s", label, e.Types)
	}
	for _, a := range e.Attempts {
		b.WriteString("\n    ")
		b.WriteString(strings.ReplaceAll(a.Error(), "\n", "\n    "))
	}
	return b.String()
}

func (e *UnmarshalError) Is(target error) bool {
	switch target {
	case ErrUnmarshal:
		return true
	case ErrUnmarshalType:
		return e.Reason == ReasonType
	case ErrUnmarshalValue:
		return e.Reason != ReasonType
	}
	return false
}

// within prefixes the error path with the enclosing field, index or key.
func (e *UnmarshalError) within(token string) *UnmarshalError {
	e.path = e.path.prepend(token)
	return e
}

// withPath layers token onto err when err is an *UnmarshalError or an
// *UnmarshalKeyError. Other errors, including hook failures, pass unmodified.
func withPath(err error, token string) error {
	switch e := err.(type) {
	case *UnmarshalError:
		return e.within(token)
	case *UnmarshalKeyError:
		e.path = e.path.prepend(token)
		return e
	}
	return err
}

// UnmarshalKeyError is returned when a key or field name has no property
// definition where one is required.
type UnmarshalKeyError struct {
	Type string
	Key  string
	path pathRef
}

func (e *UnmarshalKeyError) Path() string { return e.path.Pointer() }

func (e *UnmarshalKeyError) Error() string {
	return fmt.Sprintf("modelbind: %s has no property named %q (at %s)", e.Type, e.Key, e.Path())
}

func (e *UnmarshalKeyError) Is(target error) bool { return target == ErrUnmarshal }

// ValidationError carries every violation found by Validate.
type ValidationError struct {
	Issues Issues
}

// Messages renders each issue as "path: message".
func (e *ValidationError) Messages() []string {
	out := make([]string, 0, len(e.Issues))
	for _, it := range e.Issues {
		out = append(out, it.String())
	}
	return out
}

func (e *ValidationError) Error() string {
	return "modelbind: validation failed:\n  - " + strings.Join(e.Messages(), "\n  - ")
}

func (e *ValidationError) Unwrap() error { return e.Issues }

// VersionError is returned when a field holding a value is not applicable to
// the specification version a model is being narrowed to.
type VersionError struct {
	Type          string
	Field         string
	Specification string
	Version       string
	Value         any
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("modelbind: %s.%s is not applicable to %s version %s but holds %s",
		e.Type, e.Field, e.Specification, e.Version, represent(e.Value))
}

// ObjectDiscrepancyError reports an internal inconsistency, such as metadata
// or hooks of the wrong kind for a model.
type ObjectDiscrepancyError struct {
	Message string
}

func (e *ObjectDiscrepancyError) Error() string { return "modelbind: " + e.Message }

func (e *ObjectDiscrepancyError) Unwrap() error { return ErrInvalidValue }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
