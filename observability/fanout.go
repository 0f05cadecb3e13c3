package observability

import "context"

// NoOpObserver drops every event. It backs the "noop" observer name and keeps
// tests quiet.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(context.Context, Event) {}

// MultiObserver delivers each event to its observers in registration order,
// so a console observer sees a turn before it is published to the broker.
type MultiObserver struct {
	observers []Observer
}

// NewMultiObserver combines observers. Nil and NoOpObserver entries are
// dropped and nested MultiObservers are flattened. With nothing left it
// returns NoOpObserver; with a single observer it returns that observer.
func NewMultiObserver(observers ...Observer) Observer {
	var flat []Observer
	for _, obs := range observers {
		switch o := obs.(type) {
		case nil, NoOpObserver:
		case *MultiObserver:
			flat = append(flat, o.observers...)
		default:
			flat = append(flat, o)
		}
	}

	switch len(flat) {
	case 0:
		return NoOpObserver{}
	case 1:
		return flat[0]
	default:
		return &MultiObserver{observers: flat}
	}
}

func (m *MultiObserver) OnEvent(ctx context.Context, event Event) {
	for _, obs := range m.observers {
		obs.OnEvent(ctx, event)
	}
}
