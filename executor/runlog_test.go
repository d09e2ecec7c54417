package executor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/histgo/accum"
	"github.com/hupe1980/histgo/blobstore"
	"github.com/hupe1980/histgo/columns"
)

func openRunLog(t *testing.T, path string) *FileRunLog {
	t.Helper()

	l, err := OpenFileRunLog(path)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestFileRunLog_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "run.log")

	l := openRunLog(t, path)

	done, err := l.Completed(ctx)
	require.NoError(t, err)
	assert.Empty(t, done)

	require.NoError(t, l.MarkDone(ctx, 0, "run-1/task-000000.res"))
	require.NoError(t, l.MarkDone(ctx, 2, "run-1/task-000002.res"))
	require.NoError(t, l.MarkDone(ctx, 7, "run-1/task-000007.res"))
	require.NoError(t, l.Close())

	reopened := openRunLog(t, path)
	done, err = reopened.Completed(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{
		0: "run-1/task-000000.res",
		2: "run-1/task-000002.res",
		7: "run-1/task-000007.res",
	}, done)
}

func TestFileRunLog_IdempotentMark(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "run.log")

	l := openRunLog(t, path)
	require.NoError(t, l.MarkDone(ctx, 3, "k"))

	stat, err := os.Stat(path)
	require.NoError(t, err)
	before := stat.Size()

	// Same index and key again: no new record.
	require.NoError(t, l.MarkDone(ctx, 3, "k"))

	stat, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, before, stat.Size())

	done, err := l.Completed(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{3: "k"}, done)
}

func TestFileRunLog_LastKeyWins(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "run.log")

	l := openRunLog(t, path)
	require.NoError(t, l.MarkDone(ctx, 1, "old-key"))
	require.NoError(t, l.MarkDone(ctx, 1, "new-key"))
	require.NoError(t, l.Close())

	reopened := openRunLog(t, path)
	done, err := reopened.Completed(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{1: "new-key"}, done)
}

func TestFileRunLog_TornTail(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "run.log")

	l := openRunLog(t, path)
	require.NoError(t, l.MarkDone(ctx, 0, "a"))
	require.NoError(t, l.MarkDone(ctx, 1, "b"))
	require.NoError(t, l.Close())

	// Simulate a crash mid-append: garbage after the last full record.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte{0xde, 0xad, 0xbe})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	reopened := openRunLog(t, path)
	done, err := reopened.Completed(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{0: "a", 1: "b"}, done)

	// The torn tail was truncated, so new appends replay cleanly.
	require.NoError(t, reopened.MarkDone(ctx, 2, "c"))
	require.NoError(t, reopened.Close())

	again := openRunLog(t, path)
	done, err = again.Completed(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{0: "a", 1: "b", 2: "c"}, done)
}

func TestFileRunLog_CorruptRecord(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "run.log")

	l := openRunLog(t, path)
	require.NoError(t, l.MarkDone(ctx, 0, "a"))
	require.NoError(t, l.MarkDone(ctx, 1, "b"))
	require.NoError(t, l.Close())

	// Flip a byte inside the second record's key. Replay keeps the first
	// record and drops everything from the bad one on.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xff
	require.NoError(t, os.WriteFile(path, data, 0o644))

	reopened := openRunLog(t, path)
	done, err := reopened.Completed(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{0: "a"}, done)
}

func TestFileRunLog_InvalidHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	require.NoError(t, os.WriteFile(path, []byte("NOTARUNLOGFILE"), 0o644))

	_, err := OpenFileRunLog(path)
	require.ErrorIs(t, err, ErrInvalidRunLog)
}

func TestFileRunLog_Closed(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "run.log")

	l := openRunLog(t, path)
	require.NoError(t, l.Close())

	assert.ErrorIs(t, l.MarkDone(ctx, 0, "k"), os.ErrClosed)
	_, err := l.Completed(ctx)
	assert.ErrorIs(t, err, os.ErrClosed)
	assert.ErrorIs(t, l.Close(), os.ErrClosed)
}

func TestFileRunLog_ResumesDistributedRun(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "run.log")

	batch, want := valueBatch(400)
	src := columns.NewMemorySource(batch)
	tasks := makeTasks(t, src, 100)
	store := blobstore.NewMemoryStore()

	// First attempt: run everything, committing each task to the file log.
	l := openRunLog(t, path)
	first := NewDistributed(NewLoopback(NewWorker(src), 2), "test.sum",
		func(o *DistributedOptions) {
			o.Store = store
			o.RunLog = l
			o.Run = "run-filelog-test"
		})

	res, err := first.Execute(ctx, tasks, nil, accum.NewSum())
	require.NoError(t, err)
	require.Equal(t, want, sumOf(res.Value))
	require.NoError(t, l.Close())

	// Second attempt with a fresh handle over the same file: every task
	// replays from disk and the remote never sees a submission.
	reopened := openRunLog(t, path)
	remote := &countingRemote{inner: failingRemote{}}
	second := NewDistributed(remote, "test.sum",
		func(o *DistributedOptions) {
			o.Store = store
			o.RunLog = reopened
			o.Run = "run-filelog-test"
		})

	res, err = second.Execute(ctx, tasks, nil, accum.NewSum())
	require.NoError(t, err)

	assert.Equal(t, want, sumOf(res.Value))
	assert.Equal(t, len(tasks), res.Stats.Resumed)
	assert.Zero(t, remote.submits.Load())
}
