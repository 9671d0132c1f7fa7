package textfile_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screwyprof/airdrop/pkg/textfile"
)

func TestLines(t *testing.T) {
	t.Parallel()

	// Arrange
	input := "first\r\n\n  # a comment\n  second  \n\nthird"

	// Act
	lines, err := textfile.Lines(strings.NewReader(input))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, lines)
}

func TestReadLines(t *testing.T) {
	t.Parallel()

	t.Run("it reads a list from disk", func(t *testing.T) {
		t.Parallel()

		// Arrange
		path := filepath.Join(t.TempDir(), "secrets.txt")
		require.NoError(t, os.WriteFile(path, []byte("a\nb\n"), 0o600))

		// Act
		lines, err := textfile.ReadLines(path)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, lines)
	})

	t.Run("it fails on a missing file", func(t *testing.T) {
		t.Parallel()

		// Act
		_, err := textfile.ReadLines(filepath.Join(t.TempDir(), "missing.txt"))

		// Assert
		assert.ErrorIs(t, err, textfile.ErrReadFailed)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
