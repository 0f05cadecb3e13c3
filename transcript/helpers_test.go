package transcript_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/threads/conversation"
	"github.com/tailored-agentic-units/threads/core/protocol"
	"github.com/tailored-agentic-units/threads/transcript"
)

func sampleRecords() map[string]conversation.Record {
	return map[string]conversation.Record{
		"thread-a": {
			Messages: []protocol.Message{
				protocol.NewMessage(protocol.RoleUser, "hello"),
				protocol.NewMessage(protocol.RoleAssistant, "hi"),
			},
			Timestamp: "2024-05-01T12:00:00.123456789Z",
			Title:     "hello",
		},
		"thread-b": {
			Messages: []protocol.Message{
				protocol.NewMessage(protocol.RoleUser, "  spaces and\nnewlines  "),
				protocol.NewMessage(protocol.RoleAssistant, ""),
				protocol.NewMessage(protocol.RoleUser, "unicode: héllo ✓"),
			},
			Timestamp: "2024-05-02T08:30:00Z",
			Title:     "spaces and\nnewlines",
		},
		"thread-empty": {
			Messages:  []protocol.Message{},
			Timestamp: "2024-05-03T00:00:00Z",
			Title:     "New Chat",
		},
	}
}

// assertRoundTrip saves records, loads them back, and requires equality.
func assertRoundTrip(t *testing.T, store transcript.Store) {
	t.Helper()
	ctx := context.Background()
	original := sampleRecords()

	require.NoError(t, store.SaveAll(ctx, original))

	loaded, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)

	require.NoError(t, store.SaveAll(ctx, loaded))
	again, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, original, again)
}

// assertReplaces checks that SaveAll drops records missing from the new snapshot.
func assertReplaces(t *testing.T, store transcript.Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.SaveAll(ctx, sampleRecords()))

	smaller := sampleRecords()
	delete(smaller, "thread-a")
	require.NoError(t, store.SaveAll(ctx, smaller))

	loaded, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.NotContains(t, loaded, "thread-a")
	assert.Len(t, loaded, 2)

	require.NoError(t, store.SaveAll(ctx, map[string]conversation.Record{}))
	loaded, err = store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

// assertRejectsInvalidUTF8 checks that SaveAll refuses text that cannot be
// stored byte-for-byte and leaves the previous snapshot in place.
func assertRejectsInvalidUTF8(t *testing.T, store transcript.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.SaveAll(ctx, sampleRecords()))

	tests := []struct {
		name   string
		mutate func(map[string]conversation.Record)
	}{
		{"message content", func(records map[string]conversation.Record) {
			rec := records["thread-a"]
			rec.Messages = append(rec.Messages, protocol.NewMessage(protocol.RoleUser, "caf\xe9"))
			records["thread-a"] = rec
		}},
		{"title", func(records map[string]conversation.Record) {
			rec := records["thread-b"]
			rec.Title = "bad \xff title"
			records["thread-b"] = rec
		}},
		{"conversation id", func(records map[string]conversation.Record) {
			records["thread-\xfe"] = records["thread-empty"]
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := sampleRecords()
			tt.mutate(records)

			err := store.SaveAll(ctx, records)
			assert.ErrorIs(t, err, transcript.ErrSaveFailed)

			loaded, err := store.LoadAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, sampleRecords(), loaded)
		})
	}
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
