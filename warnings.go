package modelbind

import (
	"fmt"
	"log/slog"
	"sync"
)

// Warning is a non-fatal diagnostic raised while binding data.
type Warning interface {
	Code() string
	String() string
}

// UndefinedPropertyWarning reports a key that matched no property of a
// record. The value is kept as an extra and marshalled back unchanged.
type UndefinedPropertyWarning struct {
	Type    string
	Key     string
	Pointer string
}

func (w UndefinedPropertyWarning) Code() string { return CodeUnknownKey }

func (w UndefinedPropertyWarning) String() string {
	s := fmt.Sprintf("%s: %s", w.Type, message("undefined_property", map[string]string{"key": fmt.Sprintf("%q", w.Key)}))
	if w.Pointer != "" {
		s += " (at " + w.Pointer + ")"
	}
	return s
}

// WarningHandler receives warnings.
type WarningHandler func(Warning)

func logWarning(w Warning) {
	slog.Warn(w.String(), "code", w.Code())
}

var (
	warnMu  sync.RWMutex
	handler WarningHandler = logWarning
)

// SetWarningHandler installs h as the process-wide warning handler and
// returns the previous one. A nil h restores the default, which logs through
// log/slog.
func SetWarningHandler(h WarningHandler) WarningHandler {
	warnMu.Lock()
	defer warnMu.Unlock()
	prev := handler
	if h == nil {
		h = logWarning
	}
	handler = h
	return prev
}

func emitWarnings(ws []Warning) {
	if len(ws) == 0 {
		return
	}
	warnMu.RLock()
	h := handler
	warnMu.RUnlock()
	for _, w := range ws {
		h(w)
	}
}

// Diag carries non-fatal warnings.
type Diag interface {
	HasWarnings() bool
	Warnings() []Warning
}

// WarningCollector is a Diag that records warnings passed to Handle. It is
// safe for concurrent use.
type WarningCollector struct {
	mu sync.Mutex
	ws []Warning
}

func (c *WarningCollector) Handle(w Warning) {
	c.mu.Lock()
	c.ws = append(c.ws, w)
	c.mu.Unlock()
}

func (c *WarningCollector) HasWarnings() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ws) > 0
}

func (c *WarningCollector) Warnings() []Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Warning(nil), c.ws...)
}

// bindState buffers warnings raised during one binding call. Candidates that
// lose a trial discard their buffer, so only warnings from the accepted shape
// reach the handler.
type bindState struct {
	warnings []Warning
}

func (s *bindState) warn(w Warning) { s.warnings = append(s.warnings, w) }

func (s *bindState) merge(o *bindState) { s.warnings = append(s.warnings, o.warnings...) }

func (s *bindState) flush() {
	emitWarnings(s.warnings)
	s.warnings = nil
}

// CollectWarnings installs a WarningCollector as the handler. The returned
// function restores the previous handler.
func CollectWarnings() (*WarningCollector, func()) {
	c := &WarningCollector{}
	prev := SetWarningHandler(c.Handle)
	return c, func() { SetWarningHandler(prev) }
}

// Warn sends w to the installed warning handler. Packages layered on the
// engine use it to report their own diagnostics.
func Warn(w Warning) { emitWarnings([]Warning{w}) }
