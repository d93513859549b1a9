package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "interview", "mcp", "specs", "version"} {
		assert.Contains(t, names, want)
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("env-file"))
}

func TestLoadCatalog(t *testing.T) {
	t.Run("embedded default", func(t *testing.T) {
		c, err := loadCatalog("")
		require.NoError(t, err)
		assert.Equal(t, 10, c.Len())
	})

	t.Run("override file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "questions.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`questions:
  - id: 1
    key: name
    text: "Name?"
  - id: 2
    key: description
    text: "Describe it."
  - id: 3
    key: users
    text: "Who uses it?"
`), 0o644))

		c, err := loadCatalog(path)
		require.NoError(t, err)
		assert.Equal(t, 3, c.Len())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorContains(t, err, "load questions")
	})
}
