package transcript_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/threads/transcript"
)

func newSQLiteStore(t *testing.T) *transcript.SQLStore {
	t.Helper()
	db, err := transcript.OpenSQL("sqlite", filepath.Join(t.TempDir(), "threads.db"))
	require.NoError(t, err)

	store, err := transcript.NewSQLStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLStore_LoadAll_Empty(t *testing.T) {
	records, err := newSQLiteStore(t).LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSQLStore_RoundTrip(t *testing.T) {
	assertRoundTrip(t, newSQLiteStore(t))
}

func TestSQLStore_Replaces(t *testing.T) {
	assertReplaces(t, newSQLiteStore(t))
}

func TestSQLStore_SaveAll_RejectsInvalidUTF8(t *testing.T) {
	assertRejectsInvalidUTF8(t, newSQLiteStore(t))
}

func TestOpenSQL_UnknownDialect(t *testing.T) {
	_, err := transcript.OpenSQL("oracle", "dsn")
	assert.Error(t, err)
}
