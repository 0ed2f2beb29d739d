package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgecode/agentkit/agentloop"
	"github.com/forgecode/agentkit/unifiedllm"
)

func sampleSnapshot() agentloop.Snapshot {
	return agentloop.Snapshot{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().Truncate(time.Second),
		UpdatedAt: time.Now().Truncate(time.Second),
		TurnCount: 3,
		Messages: []agentloop.EngineMessage{
			{Role: unifiedllm.RoleUser, Content: "hi", Tokens: 1},
			{Role: unifiedllm.RoleAssistant, Content: "hello", Tokens: 1},
		},
		TotalUsage: unifiedllm.Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	}
}

// TestSessionRoundTrip covers testable property #8: snapshot -> JSON ->
// snapshot yields an equal session.
func TestSessionRoundTrip(t *testing.T) {
	store, err := NewSessionStoreAt(t.TempDir())
	require.NoError(t, err)

	snap := sampleSnapshot()
	require.NoError(t, store.Save(snap))

	loaded, err := store.Load(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap, loaded)
}

func TestListSortsByUpdatedAtDescending(t *testing.T) {
	store, err := NewSessionStoreAt(t.TempDir())
	require.NoError(t, err)

	older := sampleSnapshot()
	older.UpdatedAt = time.Now().Add(-time.Hour).Truncate(time.Second)
	newer := sampleSnapshot()
	newer.UpdatedAt = time.Now().Truncate(time.Second)

	require.NoError(t, store.Save(older))
	require.NoError(t, store.Save(newer))

	list, err := store.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)
}

func TestCheckpointRoundTrip(t *testing.T) {
	store, err := NewSessionStoreAt(t.TempDir())
	require.NoError(t, err)

	snap := sampleSnapshot()
	name, err := store.SaveCheckpoint(snap, time.Now())
	require.NoError(t, err)
	assert.Contains(t, name, snap.ID+"_")

	loaded, err := store.LoadCheckpoint(name)
	require.NoError(t, err)
	assert.Equal(t, snap, loaded)
}
