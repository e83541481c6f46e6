package wand

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Severity orders diagnostic records. A run is only considered blocked
// when the accumulated severity exceeds SeverityError.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// Diagnostic codes. Parse and state errors abort only the option that
// raised them; fatal codes terminate the run.
const (
	CodeInvalidArgument      = "InvalidArgument"
	CodeInvalidArgumentCount = "InvalidArgumentCount"
	CodeUnexpectedColorToken = "UnexpectedColorToken"
	CodeNestedTooDeeply      = "NestedTooDeeply"
	CodeUnbalancedGrouping   = "UnbalancedGrouping"
	CodeNoSourceToClone      = "NoSourceToClone"
	CodeUnrecognizedOption   = "UnrecognizedOption"
	CodeDelegateFailed       = "DelegateFailed"
	CodeAllocationFailure    = "AllocationFailure"
)

// Record is one accumulated diagnostic.
type Record struct {
	Severity Severity
	Code     string
	Context  string
}

func (r Record) String() string {
	return fmt.Sprintf("%s: %s: %s", r.Severity, r.Code, r.Context)
}

// ExceptionSink accumulates diagnostics during option processing.
// Failures are recorded here rather than returned, so a faulty option
// degrades gracefully and the caller keeps feeding subsequent options.
// The sink is drained on demand.
type ExceptionSink struct {
	records []Record
	log     *zap.Logger
}

// NewExceptionSink returns an empty sink reporting through the given
// logger (nil for silent accumulation).
func NewExceptionSink(log *zap.Logger) *ExceptionSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExceptionSink{log: log}
}

// Report appends one diagnostic record.
func (s *ExceptionSink) Report(sev Severity, code, context string) {
	s.records = append(s.records, Record{Severity: sev, Code: code, Context: context})
}

// Reportf is Report with fmt-style context formatting.
func (s *ExceptionSink) Reportf(sev Severity, code, format string, args ...interface{}) {
	s.Report(sev, code, fmt.Sprintf(format, args...))
}

// Max returns the highest severity recorded, or SeverityInfo when empty.
func (s *ExceptionSink) Max() Severity {
	max := SeverityInfo
	for _, r := range s.records {
		if r.Severity > max {
			max = r.Severity
		}
	}
	return max
}

// Fatal reports whether a fatal diagnostic has been recorded. Once true,
// the dispatcher refuses further options.
func (s *ExceptionSink) Fatal() bool {
	return s.Max() >= SeverityFatal
}

// Records returns a snapshot of the accumulated diagnostics.
func (s *ExceptionSink) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Drain reports whether accumulated severity exceeds SeverityError —
// i.e. whether the caller should abort the run. Unless blocking (or when
// all is true), the pending records are emitted through the logger and
// cleared, so a warnings-only run produces its output without aborting.
func (s *ExceptionSink) Drain(all bool) bool {
	blocking := s.Max() > SeverityError
	if !blocking || all {
		for _, r := range s.records {
			s.log.Log(zapLevel(r.Severity), r.Code, zap.String("context", r.Context))
		}
		s.records = s.records[:0]
	}
	return blocking
}

func zapLevel(sev Severity) zapcore.Level {
	switch sev {
	case SeverityInfo:
		return zapcore.InfoLevel
	case SeverityWarning:
		return zapcore.WarnLevel
	case SeverityError:
		return zapcore.ErrorLevel
	}
	return zapcore.ErrorLevel // fatal records must not call os.Exit here
}
