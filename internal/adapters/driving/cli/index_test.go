package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

func TestIndexCmd_HasForceFlag(t *testing.T) {
	flag := indexCmd.Flags().Lookup("force")
	require.NotNil(t, flag)
	assert.Equal(t, "f", flag.Shorthand)
}

func TestIndexCmd_RebuildsFromArgument(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "index", "--force", "export.xlsx")

	require.NoError(t, err)
	assert.Equal(t, domain.RebuildOptions{Source: "export.xlsx", Force: true}, mocks.index.lastOpts)
	assert.Contains(t, out, "Indexed feedback.csv")
	assert.Contains(t, out, "Records:  3")
	assert.Contains(t, out, "Took:     1.5s")
}

func TestIndexCmd_Reused(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.index.status.Reused = true

	out, err := execute(t, "index")

	require.NoError(t, err)
	assert.Contains(t, out, "Reused persisted index for feedback.csv")
}

func TestIndexCmd_RebuildInProgress(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.index.err = domain.ErrRebuildInProgress

	_, err := execute(t, "index")

	assert.ErrorIs(t, err, domain.ErrRebuildInProgress)
}
