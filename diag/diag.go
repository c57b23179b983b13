// Package diag implements the diagnostic sink the core routes every
// non-fatal MetadataMiss (and other advisory) condition through, in addition
// to appending it to a transpiler.Result. Grounded directly on the teacher's
// tsqlruntime/splogger.go: an SPLogger-shaped interface with slog/file/
// multi/nop backends, adapted from "log a CATCH-block error" to "log a
// rewrite-time diagnostic".
package diag

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// Severity classifies a diagnostic for the sink, independent of the
// transpiler.ErrorKind taxonomy (which governs whether translation fails).
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic is one recorded event, stamped with a translation-unit ID so a
// caller correlating many parallel TransformSQL calls can group log lines
// back to the Result they belong to.
type Diagnostic struct {
	UnitID   string    `json:"unit_id"`
	Severity Severity  `json:"severity"`
	Kind     string    `json:"kind"` // e.g. "MetadataMiss"
	Message  string    `json:"message"`
	Line     int       `json:"line,omitempty"`
	Column   int       `json:"column,omitempty"`
}

// Sink is the pluggable diagnostic destination.
type Sink interface {
	Record(d Diagnostic)
}

// SlogSink backs onto log/slog, the teacher's own default backend choice.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink wraps an existing *slog.Logger, or the default logger if nil.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

func (s *SlogSink) Record(d Diagnostic) {
	level := slog.LevelInfo
	switch d.Severity {
	case SeverityWarning:
		level = slog.LevelWarn
	case SeverityError:
		level = slog.LevelError
	}
	s.logger.Log(nil, level, d.Message,
		slog.String("unit_id", d.UnitID),
		slog.String("kind", d.Kind),
		slog.Int("line", d.Line),
		slog.Int("column", d.Column),
	)
}

// FileSink appends one JSON line per diagnostic to a file.
type FileSink struct {
	mu   sync.Mutex
	file *os.File
}

// NewFileSink opens (creating/appending) the file at path.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("diag: open sink file: %w", err)
	}
	return &FileSink{file: f}, nil
}

func (s *FileSink) Record(d Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := json.Marshal(d)
	if err != nil {
		return
	}
	b = append(b, '\n')
	_, _ = s.file.Write(b)
}

// Close releases the underlying file handle.
func (s *FileSink) Close() error { return s.file.Close() }

// MultiSink fans a diagnostic out to every wrapped sink.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink combines sinks into one.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (s *MultiSink) Record(d Diagnostic) {
	for _, sink := range s.sinks {
		sink.Record(d)
	}
}

// NopSink discards every diagnostic; the default for tests.
type NopSink struct{}

func NewNopSink() *NopSink { return &NopSink{} }

func (*NopSink) Record(Diagnostic) {}
