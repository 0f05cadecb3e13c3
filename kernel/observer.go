package kernel

import "github.com/tailored-agentic-units/threads/observability"

// Kernel event types.
const (
	EventTurnStart             observability.EventType = "kernel.turn.start"
	EventTurnUserAppended      observability.EventType = "kernel.turn.user_appended"
	EventTurnCompletion        observability.EventType = "kernel.turn.completion"
	EventTurnAssistantAppended observability.EventType = "kernel.turn.assistant_appended"
	EventTurnPersisted         observability.EventType = "kernel.turn.persisted"
	EventTurnFailed            observability.EventType = "kernel.turn.failed"
	EventPersistFailed         observability.EventType = "kernel.persist.failed"
	EventStoreLoaded           observability.EventType = "kernel.store.loaded"
	EventStoreCorrupt          observability.EventType = "kernel.store.corrupt"
	EventConversationCreated   observability.EventType = "kernel.conversation.created"
	EventConversationSelected  observability.EventType = "kernel.conversation.selected"
	EventConversationDeleted   observability.EventType = "kernel.conversation.deleted"
)
