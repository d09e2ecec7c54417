package mmap

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "payload.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestOpen(t *testing.T) {
	data := []byte("spilled result payload")

	m, err := Open(writeFile(t, data))
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, data, m.Bytes())
	assert.Equal(t, int64(len(data)), m.Size())
}

func TestOpenEmptyFile(t *testing.T) {
	m, err := Open(writeFile(t, nil))
	require.NoError(t, err)

	assert.Empty(t, m.Bytes())
	assert.Equal(t, int64(0), m.Size())
	require.NoError(t, m.Close())
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.bin"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestReadAt(t *testing.T) {
	m, err := Open(writeFile(t, []byte("0123456789")))
	require.NoError(t, err)
	defer m.Close()

	buf := make([]byte, 4)

	n, err := m.ReadAt(buf, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "3456", string(buf))

	n, err = m.ReadAt(buf, 8)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 2, n)
	assert.Equal(t, "89", string(buf[:n]))

	_, err = m.ReadAt(buf, 100)
	assert.ErrorIs(t, err, io.EOF)

	_, err = m.ReadAt(buf, -1)
	require.Error(t, err)
}

func TestCloseIdempotent(t *testing.T) {
	m, err := Open(writeFile(t, []byte("x")))
	require.NoError(t, err)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	assert.Nil(t, m.Bytes(), "bytes are gone after close")
}

func TestAdvise(t *testing.T) {
	m, err := Open(writeFile(t, []byte("sequential scan target")))
	require.NoError(t, err)
	defer m.Close()

	// Hints must never fail or invalidate the mapping.
	m.Advise(AccessSequential)
	m.Advise(AccessRandom)
	m.Advise(AccessNormal)

	assert.Equal(t, "sequential scan target", string(m.Bytes()))
}
