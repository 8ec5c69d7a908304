package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("corpus.source", "feedback.csv"))
	require.NoError(t, store.Set("corpus.source", "feedback.xlsx"))

	val, ok := store.Get("corpus.source")
	assert.True(t, ok)
	assert.Equal(t, "feedback.xlsx", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("retrieval.default_max_results", int64(20)))
	require.NoError(t, store.Set("retrieval.reject_threshold", 0.6))
	require.NoError(t, store.Set("history.window", 5))
	require.NoError(t, store.Set("corpus.force_rebuild", true))
	require.NoError(t, store.Set("routing.precedence", []any{"visualization", 1, "content"}))
	require.NoError(t, store.Set("chart.size", "large"))

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"int from int64", store.GetInt("retrieval.default_max_results"), 20},
		{"int from float64", store.GetInt("retrieval.reject_threshold"), 0},
		{"float from float64", store.GetFloat("retrieval.reject_threshold"), 0.6},
		{"float from int", store.GetFloat("history.window"), 5.0},
		{"float missing", store.GetFloat("missing"), 0.0},
		{"bool", store.GetBool("corpus.force_rebuild"), true},
		{"bool wrong type", store.GetBool("chart.size"), false},
		{"string", store.GetString("chart.size"), "large"},
		{"string wrong type", store.GetString("history.window"), ""},
		{"slice skips non-strings", store.GetStringSlice("routing.precedence"), []string{"visualization", "content"}},
		{"slice missing", store.GetStringSlice("missing"), []string(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}

func TestConfigStore_PersistenceNoOps(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("k", "v"))
	require.NoError(t, store.Save())
	require.NoError(t, store.Load())

	assert.Equal(t, "v", store.GetString("k"))
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set(fmt.Sprintf("key.%d", n), n)
		}(i)
		go func(n int) {
			defer wg.Done()
			_ = store.GetInt(fmt.Sprintf("key.%d", n))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		assert.Equal(t, i, store.GetInt(fmt.Sprintf("key.%d", i)))
	}
}
