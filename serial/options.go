package serial

import "github.com/reoring/modelbind/internal/engine"

// Severity expresses the severity level for issues.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// Strictness configures enforcement for duplicate keys.
type Strictness struct {
	// OnDuplicateKey selects the handling of a key repeated within one
	// object. Under Ignore and Warn the last value wins.
	OnDuplicateKey Severity
}

// NumberMode dictates how numbers are interpreted.
type NumberMode int

const (
	NumberNative     NumberMode = iota // int64 when integral, float64 otherwise.
	NumberJSONNumber                   // Preserve json.Number.
	NumberFloat64                      // Always float64.
)

// Options bundles deserialize and serialize options. The zero value applies
// no limits and reads numbers natively.
type Options struct {
	Strictness Strictness
	MaxDepth   int
	MaxBytes   int64
	Numbers    NumberMode
	// Indent, when set, pretty-prints serialized output with this unit. YAML
	// uses its length as the indentation width.
	Indent string
}

func pick(opts []Options) Options {
	if len(opts) == 0 {
		return Options{}
	}
	return opts[len(opts)-1]
}

func (o Options) enforce(sink func(engine.SimpleIssue)) engine.EnforceOptions {
	dup := engine.DupIgnore
	switch o.Strictness.OnDuplicateKey {
	case Warn:
		dup = engine.DupWarn
	case Error:
		dup = engine.DupError
	}
	return engine.EnforceOptions{OnDuplicate: dup, MaxDepth: o.MaxDepth, MaxBytes: o.MaxBytes, IssueSink: sink}
}

func (o Options) numbers() engine.NumberMode {
	switch o.Numbers {
	case NumberJSONNumber:
		return engine.NumberJSONNumber
	case NumberFloat64:
		return engine.NumberFloat64
	}
	return engine.NumberNative
}
