package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

func TestLoadVocabulary_Default(t *testing.T) {
	vocab, err := loadVocabulary("")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultVocabulary(), vocab)
}

func TestLoadVocabulary_MissingFileKeepsDefaults(t *testing.T) {
	vocab, err := loadVocabulary(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultVocabulary(), vocab)
}

func TestLoadVocabulary_RejectsUnknownTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("no_such_table: [x]\n"), 0o600))

	_, err := loadVocabulary(path)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
