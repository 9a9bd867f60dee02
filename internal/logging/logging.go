package logging

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// Level selects which records reach the output.
type Level int

const (
	// LevelInfo is the default level.
	LevelInfo Level = iota
	// LevelDebug is selected by --debug.
	LevelDebug
)

// String makes Level satisfy the fmt.Stringer interface.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	default:
		return "INFO"
	}
}

// SlogLevel maps Level onto the slog level used by the handler.
func (l Level) SlogLevel() slog.Level {
	if l == LevelDebug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// LevelFor returns LevelDebug when debug is set.
func LevelFor(debug bool) Level {
	if debug {
		return LevelDebug
	}
	return LevelInfo
}

// New builds a text logger writing to output. Command output goes to stdout,
// so output is normally stderr.
func New(level Level, output io.Writer) *slog.Logger {
	handler := slog.NewTextHandler(output, &slog.HandlerOptions{Level: level.SlogLevel()})
	return slog.New(handler)
}

// WithRun tags every record of one suite execution with a fresh run id.
func WithRun(logger *slog.Logger, subsystem string) (*slog.Logger, string) {
	runID := uuid.NewString()
	return logger.With(slog.String("subsystem", subsystem), slog.String("run_id", runID)), runID
}
