package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

func TestHistoryStore_AppendRecent(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(0)

	for i := 0; i < 4; i++ {
		require.NoError(t, store.Append(ctx, "s1", domain.Message{Role: domain.RoleUser, Text: fmt.Sprintf("q%d", i)}))
	}
	require.NoError(t, store.Append(ctx, "s2", domain.Message{Role: domain.RoleUser, Text: "other"}))

	msgs, err := store.Recent(ctx, "s1", 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "q2", msgs[0].Text)
	assert.Equal(t, "q3", msgs[1].Text)

	msgs, _ = store.Recent(ctx, "s1", 10)
	assert.Len(t, msgs, 4)

	msgs, _ = store.Recent(ctx, "s1", 0)
	assert.Empty(t, msgs)

	msgs, _ = store.Recent(ctx, "unknown", 3)
	assert.Empty(t, msgs)
}

func TestHistoryStore_Limit(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(3)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(ctx, "s", domain.Message{Text: fmt.Sprintf("m%d", i)}))
	}

	msgs, _ := store.Recent(ctx, "s", 10)
	require.Len(t, msgs, 3)
	assert.Equal(t, "m2", msgs[0].Text)
}

func TestHistoryStore_RecentReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(10)
	require.NoError(t, store.Append(ctx, "s", domain.Message{Text: "a"}))

	msgs, _ := store.Recent(ctx, "s", 1)
	msgs[0].Text = "changed"

	again, _ := store.Recent(ctx, "s", 1)
	assert.Equal(t, "a", again[0].Text)
}

func TestHistoryStore_Clear(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(10)
	require.NoError(t, store.Append(ctx, "s", domain.Message{Text: "a"}))
	require.NoError(t, store.Clear(ctx, "s"))

	msgs, _ := store.Recent(ctx, "s", 5)
	assert.Empty(t, msgs)
}

func TestHistoryStore_AppendTurnTogether(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(3)
	require.NoError(t, store.Append(ctx, "s", domain.Message{Text: "q1"}, domain.Message{Text: "a1"}))
	require.NoError(t, store.Append(ctx, "s", domain.Message{Text: "q2"}, domain.Message{Text: "a2"}))
	require.NoError(t, store.Append(ctx, "s"))

	msgs, err := store.Recent(ctx, "s", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{"a1", "q2", "a2"}, []string{msgs[0].Text, msgs[1].Text, msgs[2].Text})
}

func TestHistoryStore_EvictsBeyondSessionCap(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(10, WithMaxSessions(2))
	for _, id := range []string{"s1", "s2", "s3"} {
		require.NoError(t, store.Append(ctx, id, domain.Message{Text: id}))
	}

	assert.Equal(t, 2, store.Sessions())
	msgs, _ := store.Recent(ctx, "s1", 5)
	assert.Empty(t, msgs)
	msgs, _ = store.Recent(ctx, "s3", 5)
	require.Len(t, msgs, 1)
	assert.Equal(t, "s3", msgs[0].Text)
}

func TestHistoryStore_EvictsIdleSessions(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(10, WithSessionTTL(20*time.Millisecond))
	require.NoError(t, store.Append(ctx, "idle", domain.Message{Text: "a"}))

	assert.Eventually(t, func() bool {
		msgs, _ := store.Recent(ctx, "idle", 5)
		return len(msgs) == 0
	}, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return store.Sessions() == 0 }, time.Second, 10*time.Millisecond)
}
