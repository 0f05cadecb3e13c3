package conversation

import (
	"time"

	"github.com/pkg/errors"

	"github.com/tailored-agentic-units/threads/core/protocol"
)

// Record is the persisted shape of a conversation. A store holds a mapping
// from conversation id to Record.
type Record struct {
	Messages  []protocol.Message `json:"messages" yaml:"messages"`
	Timestamp string             `json:"timestamp" yaml:"timestamp"`
	Title     string             `json:"title" yaml:"title"`
}

// ErrInvalidRecord reports a record that does not match the persisted schema.
var ErrInvalidRecord = errors.New("invalid conversation record")

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// FormatTimestamp renders t as an ISO-8601 (RFC 3339) string in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTimestamp parses an ISO-8601 timestamp. Values without a zone are
// read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.WithMessagef(ErrInvalidRecord, "timestamp %q is not ISO-8601", s)
}

// Validate checks r against the persisted schema.
func (r Record) Validate() error {
	if _, err := ParseTimestamp(r.Timestamp); err != nil {
		return err
	}
	for i, msg := range r.Messages {
		if !msg.Role.IsValid() {
			return errors.WithMessagef(ErrInvalidRecord, "message %d has unknown role %q", i, msg.Role)
		}
	}
	return nil
}

// FromRecord validates r and converts it to a Conversation with the given id.
// The stored title is kept as-is.
func FromRecord(id string, r Record) (Conversation, error) {
	if id == "" {
		return Conversation{}, errors.WithMessage(ErrInvalidRecord, "empty conversation id")
	}
	if err := r.Validate(); err != nil {
		return Conversation{}, errors.WithMessagef(err, "conversation %s", id)
	}
	ts, _ := ParseTimestamp(r.Timestamp)
	return Conversation{
		ID:           id,
		Title:        r.Title,
		Messages:     protocol.Clone(r.Messages),
		LastModified: ts,
	}, nil
}

// CloneRecords returns a deep copy of a record mapping.
func CloneRecords(records map[string]Record) map[string]Record {
	copied := make(map[string]Record, len(records))
	for id, r := range records {
		r.Messages = protocol.Clone(r.Messages)
		copied[id] = r
	}
	return copied
}
