package actionlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestAppendAndTail verifies newline handling and tail slicing.
func TestAppendAndTail(t *testing.T) {
	t.Parallel()

	log := New(filepath.Join(t.TempDir(), "actions.log"))

	// Empty log: no tail, no error.
	tail, err := log.Tail(10)
	require.NoError(t, err)
	require.Empty(t, tail)

	require.NoError(t, log.Append("first"))
	require.NoError(t, log.Append("second\n"))
	require.NoError(t, log.Append("third"))

	tail, err = log.Tail(2)
	require.NoError(t, err)
	require.Equal(t, []string{"second", "third"}, tail)

	tail, err = log.Tail(10)
	require.NoError(t, err)
	require.Len(t, tail, 3)
}

// TestAppendOnly ensures appends never truncate earlier content.
func TestAppendOnly(t *testing.T) {
	t.Parallel()

	log := New(filepath.Join(t.TempDir(), "actions.log"))

	require.NoError(t, log.Append("kept"))
	before := log.Size()
	require.NoError(t, log.Append("more"))
	require.Greater(t, log.Size(), before)

	contents, err := os.ReadFile(log.Path())
	require.NoError(t, err)
	require.Equal(t, "kept\nmore\n", string(contents))
}

// TestOpenWriter streams bytes to the log end.
func TestOpenWriter(t *testing.T) {
	t.Parallel()

	log := New(filepath.Join(t.TempDir(), "actions.log"))
	require.NoError(t, log.Append("header"))

	w, err := log.OpenWriter()
	require.NoError(t, err)

	_, err = w.Write([]byte("opkg output line\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	tail, err := log.Tail(1)
	require.NoError(t, err)
	require.Equal(t, []string{"opkg output line"}, tail)
}
