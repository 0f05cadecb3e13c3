package observability

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"time"
)

// SlogObserver writes events through a slog.Logger. Records carry the event
// timestamp rather than the time of logging, so a turn logged after a slow
// completion still shows when each state was reached. Data keys are emitted
// in sorted order after the source attribute.
type SlogObserver struct {
	logger *slog.Logger
}

// NewSlogObserver creates a SlogObserver writing to logger.
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	return &SlogObserver{logger: logger}
}

func (o *SlogObserver) OnEvent(ctx context.Context, event Event) {
	level := event.Level.SlogLevel()
	if !o.logger.Enabled(ctx, level) {
		return
	}

	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	r := slog.NewRecord(ts, level, string(event.Type), 0)
	r.AddAttrs(slog.String("source", event.Source))
	for _, k := range slices.Sorted(maps.Keys(event.Data)) {
		r.AddAttrs(slog.Any(k, event.Data[k]))
	}
	_ = o.logger.Handler().Handle(ctx, r)
}
