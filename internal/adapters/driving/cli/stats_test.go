package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

func TestStatsCmd_PrintsSnapshot(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "stats")

	require.NoError(t, err)
	assert.Contains(t, out, "Records:  3")
	assert.Contains(t, out, "[Categories]")
	assert.Contains(t, out, "Promoter")
	assert.Contains(t, out, "[Topics]\n  (none)")
}

func TestStatsCmd_EmptyCorpus(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.statistics.snap = &domain.Snapshot{Empty: true}

	out, err := execute(t, "stats")

	require.NoError(t, err)
	assert.Contains(t, out, "The corpus is empty.")
}

func TestStatsCmd_Unavailable(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.statistics.snap = nil
	mocks.statistics.err = domain.ErrIndexUnavailable

	_, err := execute(t, "stats")

	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestStatsCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "stats", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"TotalRecords": 3`)
}
