// Package obslog is the structured-logging wrapper shared by every
// component of the receive chain. It exists so that a per-cell child
// logger can be created once and threaded through the receiver
// coordinator without every package importing charmbracelet/log
// directly.
package obslog

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
)

// Logger is a thin facade over *log.Logger with the fields this chain
// actually needs (cell id, subframe number).
type Logger struct {
	base *log.Logger
}

// New builds a root logger writing to w at the given level. Pass
// os.Stderr and log.InfoLevel for interactive use.
func New(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           level,
	})
	return &Logger{base: l}
}

// ForCell returns a child logger tagged with the cell's physical cell
// identity, so every subsequent line carries it without repetition.
func (l *Logger) ForCell(pci int) *Logger {
	return &Logger{base: l.base.With("pci", pci)}
}

// WithSubframe tags the logger with a subframe sequence number, for the
// one-structured-record-per-subframe-per-user convention
func (l *Logger) WithSubframe(sfn int) *Logger {
	return &Logger{base: l.base.With("sfn", sfn)}
}

func (l *Logger) Debug(msg string, kv ...any) { l.base.Debug(msg, kv...) }
func (l *Logger) Info(msg string, kv ...any)  { l.base.Info(msg, kv...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.base.Warn(msg, kv...) }
func (l *Logger) Error(msg string, kv ...any) { l.base.Error(msg, kv...) }

// DailyMeasurementFile opens (creating if needed) a per-day measurement
// log under dir, named by the given strftime pattern -- the same daily
// log-rotation convention used elsewhere for packet logging, applied
// here to SNR/CFO/TA measurement export.
func DailyMeasurementFile(dir, pattern string) (*os.File, error) {
	name, err := strftime.Format(pattern, time.Now())
	if err != nil {
		return nil, fmt.Errorf("obslog: format daily file name: %w", err)
	}
	path := dir + string(os.PathSeparator) + name
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
