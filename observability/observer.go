// Package observability provides event-based observability for the
// conversation kernel. Level values align with OpenTelemetry SeverityNumbers
// so events translate to OTel log records without remapping.
package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/rs/zerolog"
)

// Level represents event severity aligned with OTel SeverityNumber ranges.
type Level int

const (
	LevelVerbose Level = 5  // OTel DEBUG (5-8)
	LevelInfo    Level = 9  // OTel INFO (9-12)
	LevelWarning Level = 13 // OTel WARN (13-16)
	LevelError   Level = 17 // OTel ERROR (17-20)
)

// String returns the OTel severity text for the level.
func (l Level) String() string {
	switch {
	case l <= 4:
		return "TRACE"
	case l <= 8:
		return "DEBUG"
	case l <= 12:
		return "INFO"
	case l <= 16:
		return "WARN"
	case l <= 20:
		return "ERROR"
	default:
		return "FATAL"
	}
}

// SlogLevel maps this level to the corresponding slog.Level.
func (l Level) SlogLevel() slog.Level {
	switch {
	case l <= 8:
		return slog.LevelDebug
	case l <= 12:
		return slog.LevelInfo
	case l <= 16:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// ZerologLevel maps this level to the corresponding zerolog.Level.
func (l Level) ZerologLevel() zerolog.Level {
	switch {
	case l <= 4:
		return zerolog.TraceLevel
	case l <= 8:
		return zerolog.DebugLevel
	case l <= 12:
		return zerolog.InfoLevel
	case l <= 16:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// EventType identifies the kind of event. Each subsystem defines its own
// constants using this type (e.g. "kernel.turn.start").
type EventType string

// Event is an observability event. Fields map to OTel LogRecord fields:
// Type→EventName, Level→SeverityNumber, Timestamp→Timestamp,
// Source→InstrumentationScope, Data→Attributes.
type Event struct {
	Type      EventType      `json:"type"`
	Level     Level          `json:"level"`
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source"`
	Data      map[string]any `json:"data,omitempty"`
}

// Observer receives events for logging, tracing, or publishing.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}
