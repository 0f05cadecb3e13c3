// Package kernel runs conversation turns. It composes the conversation
// registry, the transcript store and a completion provider: a submitted
// message is appended to its conversation, the full transcript is sent for
// completion, the reply is appended, and the committed snapshot of every
// conversation is written back to the store.
//
// The kernel initializes from configuration via New, creating all subsystems
// internally. Functional options allow test overrides of any subsystem.
//
//	k, err := kernel.New(&cfg)
//	err = k.Bootstrap(ctx)
//	result, err := k.SubmitActive(ctx, "hello")
package kernel

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/tailored-agentic-units/threads/agent"
	"github.com/tailored-agentic-units/threads/conversation"
	"github.com/tailored-agentic-units/threads/core/protocol"
	"github.com/tailored-agentic-units/threads/observability"
	"github.com/tailored-agentic-units/threads/registry"
	"github.com/tailored-agentic-units/threads/transcript"
)

// TurnState is the progress of a single turn.
type TurnState string

const (
	StateIdle               TurnState = "idle"
	StateUserAppended       TurnState = "user_appended"
	StateAwaitingCompletion TurnState = "awaiting_completion"
	StateAssistantAppended  TurnState = "assistant_appended"
	StatePersisted          TurnState = "persisted"
	StateFailed             TurnState = "failed"
)

// Result holds the outcome of a turn. It is returned alongside ModelError
// and PersistenceError so callers can see how far the turn progressed.
type Result struct {
	ConversationID string           `json:"conversation_id"`
	Reply          protocol.Message `json:"reply"`
	Title          string           `json:"title"`
	State          TurnState        `json:"state"`
}

// View is the workspace as a UI renders it.
type View struct {
	Active        *conversation.Conversation `json:"active,omitempty"`
	Conversations []registry.Summary         `json:"conversations"`
}

// Option configures a Kernel after config-driven initialization.
// Applied by New after cold start; overrides replace config-created defaults.
type Option func(*Kernel)

// WithStore overrides the config-created transcript store.
func WithStore(s transcript.Store) Option {
	return func(k *Kernel) { k.store = s }
}

// WithCompleter overrides the config-created completer.
func WithCompleter(c agent.Completer) Option {
	return func(k *Kernel) { k.completer = c }
}

// WithAgents overrides the config-created agent registry.
func WithAgents(r *agent.Registry) Option {
	return func(k *Kernel) { k.agents = r }
}

// WithObserver overrides the default SlogObserver.
func WithObserver(o observability.Observer) Option {
	return func(k *Kernel) { k.observer = o }
}

// WithAllocator overrides the id allocator. The default allocator consults
// the registry so ids of live and deleted conversations are never reissued.
func WithAllocator(a *conversation.Allocator) Option {
	return func(k *Kernel) { k.allocator = a }
}

// WithClock overrides time.Now for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(k *Kernel) { k.now = now }
}

// Kernel owns the conversation workspace: the registry, the active
// conversation, and the turn loop that keeps registry and store converged.
type Kernel struct {
	registry  *registry.Registry
	store     transcript.Store
	agents    *agent.Registry
	allocator *conversation.Allocator
	observer  observability.Observer
	now       func() time.Time

	mu        sync.Mutex // guards completer, active, inflight
	completer agent.Completer
	active    string
	inflight  map[string]bool

	// persistMu serializes SaveAll so each write carries the latest
	// committed snapshot.
	persistMu sync.Mutex
}

// New creates a Kernel from configuration. Options applied after
// initialization can override any subsystem.
func New(cfg *Config, opts ...Option) (*Kernel, error) {
	store, err := transcript.NewStore(&cfg.Store)
	if err != nil {
		return nil, errors.WithMessage(err, "create transcript store")
	}

	completer, err := agent.New(&cfg.Agent)
	if err != nil {
		return nil, errors.WithMessage(err, "create completer")
	}

	agents := agent.NewRegistry()
	for name, agentCfg := range cfg.Agents {
		if err := agents.Register(name, agentCfg); err != nil {
			return nil, errors.WithMessagef(err, "register agent %q", name)
		}
	}

	k := &Kernel{
		registry:  registry.New(),
		store:     store,
		agents:    agents,
		completer: completer,
		observer:  observability.NewSlogObserver(slog.Default()),
		now:       time.Now,
		inflight:  make(map[string]bool),
	}

	for _, opt := range opts {
		opt(k)
	}

	if k.allocator == nil {
		prefix := cfg.IDPrefix
		if prefix == "" {
			prefix = conversation.DefaultIDPrefix
		}
		k.allocator = conversation.NewAllocator(
			conversation.WithPrefix(prefix),
			conversation.WithTaken(k.registry.Taken),
		)
	}

	return k, nil
}

// Agents returns the kernel's named agent registry.
func (k *Kernel) Agents() *agent.Registry {
	return k.agents
}

// UseAgent switches subsequent turns to the named agent. Turns already
// awaiting completion keep the completer they started with.
func (k *Kernel) UseAgent(name string) error {
	c, err := k.agents.Get(name)
	if err != nil {
		return err
	}

	k.mu.Lock()
	k.completer = c
	k.mu.Unlock()
	return nil
}

// Bootstrap loads the store into the registry. Corrupt store content yields
// an error matching ErrStoreCorrupt and leaves the registry empty; the
// kernel remains usable and the next successful write replaces the corrupt
// snapshot.
func (k *Kernel) Bootstrap(ctx context.Context) error {
	records, err := k.store.LoadAll(ctx)
	if err == nil {
		err = k.registry.Bootstrap(records)
		if err != nil {
			err = errors.WithMessage(ErrStoreCorrupt, err.Error())
		}
	}

	if err != nil {
		if errors.Is(err, ErrStoreCorrupt) {
			k.emit(ctx, EventStoreCorrupt, observability.LevelWarning, "kernel.Bootstrap", map[string]any{
				"error": err.Error(),
			})
			return err
		}
		return &PersistenceError{Op: "load", Err: err}
	}

	k.emit(ctx, EventStoreLoaded, observability.LevelInfo, "kernel.Bootstrap", map[string]any{
		"conversations": len(records),
	})
	return nil
}

// Submit runs one turn on conversation id.
//
// On completion failure the user message stays in the conversation, no
// assistant message is added, nothing is persisted, and a *ModelError is
// returned. On store failure the full turn stays in memory, Result.State is
// StateAssistantAppended, and a *PersistenceError is returned.
func (k *Kernel) Submit(ctx context.Context, id, text string) (*Result, error) {
	completer, err := k.acquire(id)
	if err != nil {
		return nil, err
	}
	defer k.release(id)

	return k.runTurn(ctx, completer, id, text)
}

// SubmitActive runs one turn on the active conversation, creating one when
// none is active.
func (k *Kernel) SubmitActive(ctx context.Context, text string) (*Result, error) {
	id, err := k.ensureActive(ctx)
	if err != nil {
		return nil, err
	}
	return k.Submit(ctx, id, text)
}

func (k *Kernel) runTurn(ctx context.Context, completer agent.Completer, id, text string) (*Result, error) {
	result := &Result{ConversationID: id, State: StateIdle}

	conv, ok := k.registry.Get(id)
	if !ok {
		return nil, errors.WithMessagef(ErrNotFound, "%s", id)
	}

	k.emit(ctx, EventTurnStart, observability.LevelInfo, "kernel.Submit", map[string]any{
		"conversation_id": id,
		"prompt_length":   len(text),
	})

	conv.Append(protocol.NewMessage(protocol.RoleUser, text), k.now())
	k.registry.Upsert(conv)
	result.State = StateUserAppended

	k.emit(ctx, EventTurnUserAppended, observability.LevelVerbose, "kernel.Submit", map[string]any{
		"conversation_id": id,
		"messages":        len(conv.Messages),
	})

	result.State = StateAwaitingCompletion
	reply, err := completer.Complete(ctx, protocol.Clone(conv.Messages))
	if err != nil {
		result.State = StateFailed
		k.emit(ctx, EventTurnFailed, observability.LevelError, "kernel.Submit", map[string]any{
			"conversation_id": id,
			"error":           err.Error(),
		})
		return result, &ModelError{ConversationID: id, Err: err}
	}
	reply.Role = protocol.RoleAssistant

	k.emit(ctx, EventTurnCompletion, observability.LevelVerbose, "kernel.Submit", map[string]any{
		"conversation_id": id,
		"reply_length":    len(reply.Content),
	})

	conv.Append(reply, k.now())
	conv.Retitle()
	k.registry.Upsert(conv)
	k.registry.Commit(id)

	result.Reply = reply
	result.Title = conv.Title
	result.State = StateAssistantAppended

	k.emit(ctx, EventTurnAssistantAppended, observability.LevelVerbose, "kernel.Submit", map[string]any{
		"conversation_id": id,
		"messages":        len(conv.Messages),
		"title":           conv.Title,
	})

	if err := k.persist(ctx, "save turn"); err != nil {
		return result, err
	}
	result.State = StatePersisted

	k.emit(ctx, EventTurnPersisted, observability.LevelInfo, "kernel.Submit", map[string]any{
		"conversation_id": id,
		"messages":        len(conv.Messages),
	})

	return result, nil
}

// NewConversation creates an empty conversation and makes it active. It is
// written to the store with its first completed turn.
func (k *Kernel) NewConversation(ctx context.Context) (conversation.Conversation, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.createLocked(ctx)
}

// Select makes id the active conversation.
func (k *Kernel) Select(ctx context.Context, id string) error {
	k.mu.Lock()
	if !k.registry.Has(id) {
		k.mu.Unlock()
		return errors.WithMessagef(ErrNotFound, "%s", id)
	}
	k.active = id
	k.mu.Unlock()

	k.emit(ctx, EventConversationSelected, observability.LevelVerbose, "kernel.Select", map[string]any{
		"conversation_id": id,
	})
	return nil
}

// Delete removes id from the registry and the store. Deleting the active
// conversation makes a fresh empty conversation active. A conversation with
// a turn in progress cannot be deleted.
//
// The registry is updated before the snapshot is written. If the write fails,
// Delete returns a *PersistenceError and the conversation is already gone from
// memory, but the stored snapshot still holds it until the next successful
// save. A restart before then brings it back.
func (k *Kernel) Delete(ctx context.Context, id string) error {
	k.mu.Lock()
	if k.inflight[id] {
		k.mu.Unlock()
		return errors.WithMessagef(ErrTurnInProgress, "%s", id)
	}
	if !k.registry.Delete(id) {
		k.mu.Unlock()
		return errors.WithMessagef(ErrNotFound, "%s", id)
	}
	if k.active == id {
		k.active = ""
		if _, err := k.createLocked(ctx); err != nil {
			k.mu.Unlock()
			return err
		}
	}
	k.mu.Unlock()

	k.emit(ctx, EventConversationDeleted, observability.LevelInfo, "kernel.Delete", map[string]any{
		"conversation_id": id,
	})

	return k.persist(ctx, "delete")
}

// Conversation returns a copy of conversation id.
func (k *Kernel) Conversation(id string) (conversation.Conversation, error) {
	c, ok := k.registry.Get(id)
	if !ok {
		return conversation.Conversation{}, errors.WithMessagef(ErrNotFound, "%s", id)
	}
	return c, nil
}

// Active returns the active conversation id, or "" when none is active.
func (k *Kernel) Active() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.active
}

// State returns the active conversation and all conversations ordered by
// recency.
func (k *Kernel) State() View {
	view := View{Conversations: k.registry.ListSortedByRecency()}
	if id := k.Active(); id != "" {
		if c, ok := k.registry.Get(id); ok {
			view.Active = &c
		}
	}
	return view
}

// Close releases the store when it holds resources.
func (k *Kernel) Close() error {
	if c, ok := k.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (k *Kernel) acquire(id string) (agent.Completer, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.inflight[id] {
		return nil, errors.WithMessagef(ErrTurnInProgress, "%s", id)
	}
	if !k.registry.Has(id) {
		return nil, errors.WithMessagef(ErrNotFound, "%s", id)
	}
	k.inflight[id] = true
	return k.completer, nil
}

func (k *Kernel) release(id string) {
	k.mu.Lock()
	delete(k.inflight, id)
	k.mu.Unlock()
}

func (k *Kernel) ensureActive(ctx context.Context) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.active != "" && k.registry.Has(k.active) {
		return k.active, nil
	}
	c, err := k.createLocked(ctx)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

// createLocked requires k.mu.
func (k *Kernel) createLocked(ctx context.Context) (conversation.Conversation, error) {
	id, err := k.allocator.Allocate()
	if err != nil {
		return conversation.Conversation{}, err
	}

	c := conversation.New(id, k.now())
	k.registry.Upsert(c)
	k.active = id

	k.emit(ctx, EventConversationCreated, observability.LevelInfo, "kernel.NewConversation", map[string]any{
		"conversation_id": id,
	})
	return c, nil
}

func (k *Kernel) persist(ctx context.Context, op string) error {
	k.persistMu.Lock()
	defer k.persistMu.Unlock()

	records := k.registry.Records()
	if err := k.store.SaveAll(ctx, records); err != nil {
		k.emit(ctx, EventPersistFailed, observability.LevelError, "kernel.persist", map[string]any{
			"op":    op,
			"error": err.Error(),
		})
		return &PersistenceError{Op: op, Err: err}
	}
	return nil
}

func (k *Kernel) emit(ctx context.Context, typ observability.EventType, level observability.Level, source string, data map[string]any) {
	k.observer.OnEvent(ctx, observability.Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Source:    source,
		Data:      data,
	})
}
