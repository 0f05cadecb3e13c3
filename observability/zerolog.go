package observability

import (
	"context"

	"github.com/rs/zerolog"
)

// ZerologObserver emits events to a zerolog.Logger with the same shape as
// SlogObserver: event type as message, source and Data as fields.
type ZerologObserver struct {
	logger zerolog.Logger
}

// NewZerologObserver creates a ZerologObserver that emits to logger.
func NewZerologObserver(logger zerolog.Logger) *ZerologObserver {
	return &ZerologObserver{logger: logger}
}

func (o *ZerologObserver) OnEvent(_ context.Context, event Event) {
	e := o.logger.WithLevel(event.Level.ZerologLevel())
	if e == nil {
		return
	}
	e.Str("source", event.Source).
		Fields(event.Data).
		Msg(string(event.Type))
}
