package executor

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hupe1980/histgo/internal/hash"
)

const (
	runLogMagic      = "HGRUNLOG" // 8 bytes
	runLogVersion    = 1
	runLogHeaderSize = 12

	// Record layout: [CRC32C: 4] [Index: 4] [KeyLen: 2] [Key: KeyLen].
	// The checksum covers everything after itself.
	runLogRecordHeaderSize = 10
	runLogMaxKeyLen        = 1<<16 - 1
)

// ErrInvalidRunLog reports a file that is not a run log, or a run log
// written by an incompatible version.
var ErrInvalidRunLog = errors.New("invalid run log file")

// FileRunLog is a RunLog backed by a single append-only local file. It is
// the single-machine counterpart to the DynamoDB log in blobstore/s3: the
// coordinator and any retry of it must see the same file, so it suits runs
// driven from one host (a Loopback over local workers, or a coordinator
// with stable local disk).
//
// Every commit is a checksummed record followed by fsync. Opening replays
// the file and drops a torn or corrupt tail, so a coordinator killed
// mid-write resumes from the last fully committed task.
type FileRunLog struct {
	mu      sync.Mutex
	f       *os.File
	entries map[int]string
	closed  bool
}

var _ RunLog = (*FileRunLog)(nil)

// OpenFileRunLog opens or creates the run log at path. Existing entries are
// replayed into memory; a trailing partial record is truncated away.
func OpenFileRunLog(path string) (*FileRunLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}

	l := &FileRunLog{f: f, entries: make(map[int]string)}
	if err := l.load(); err != nil {
		f.Close()
		return nil, err
	}

	return l, nil
}

// load validates the header, replays all intact records and truncates
// anything after the last one.
func (l *FileRunLog) load() error {
	stat, err := l.f.Stat()
	if err != nil {
		return err
	}
	size := stat.Size()

	if size == 0 {
		header := make([]byte, runLogHeaderSize)
		copy(header[0:8], runLogMagic)
		binary.LittleEndian.PutUint32(header[8:12], runLogVersion)
		if _, err := l.f.Write(header); err != nil {
			return err
		}
		return l.f.Sync()
	}

	if size < runLogHeaderSize {
		return fmt.Errorf("%w: %d bytes", ErrInvalidRunLog, size)
	}

	header := make([]byte, runLogHeaderSize)
	if _, err := l.f.ReadAt(header, 0); err != nil {
		return err
	}
	if string(header[0:8]) != runLogMagic {
		return fmt.Errorf("%w: bad magic %q", ErrInvalidRunLog, header[0:8])
	}
	if v := binary.LittleEndian.Uint32(header[8:12]); v != runLogVersion {
		return fmt.Errorf("%w: version %d (want %d)", ErrInvalidRunLog, v, runLogVersion)
	}

	if _, err := l.f.Seek(runLogHeaderSize, io.SeekStart); err != nil {
		return err
	}

	r := bufio.NewReader(l.f)
	valid := int64(runLogHeaderSize)
	for {
		index, key, n, err := readRunLogRecord(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			// Torn or corrupt tail from an interrupted append. Everything
			// before it replayed cleanly, so cut the file back to there
			// and carry on.
			if err := l.f.Truncate(valid); err != nil {
				return err
			}
			break
		}
		l.entries[index] = key
		valid += n
	}

	_, err = l.f.Seek(0, io.SeekEnd)
	return err
}

func readRunLogRecord(r io.Reader) (index int, key string, n int64, err error) {
	header := make([]byte, 4+runLogRecordHeaderSize)
	if _, err := io.ReadFull(r, header[:4]); err != nil {
		return 0, "", 0, err
	}
	if _, err := io.ReadFull(r, header[4:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, "", 0, err
	}

	checksum := binary.LittleEndian.Uint32(header[0:4])
	idx := binary.LittleEndian.Uint32(header[4:8])
	keyLen := binary.LittleEndian.Uint16(header[8:10])

	keyBytes := make([]byte, keyLen)
	if _, err := io.ReadFull(r, keyBytes); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, "", 0, err
	}

	crc := hash.NewCRC32C()
	crc.Write(header[4:])
	crc.Write(keyBytes)
	if crc.Sum32() != checksum {
		return 0, "", 0, fmt.Errorf("%w: record checksum mismatch", ErrInvalidRunLog)
	}

	return int(idx), string(keyBytes), int64(len(header)) + int64(keyLen), nil
}

func encodeRunLogRecord(index int, key string) []byte {
	buf := make([]byte, 4+runLogRecordHeaderSize+len(key))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(index))
	binary.LittleEndian.PutUint16(buf[8:10], uint16(len(key)))
	copy(buf[10:], key)
	binary.LittleEndian.PutUint32(buf[0:4], hash.CRC32C(buf[4:]))
	return buf
}

// Completed returns the result store keys committed so far, by task index.
func (l *FileRunLog) Completed(ctx context.Context) (map[int]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, os.ErrClosed
	}

	out := make(map[int]string, len(l.entries))
	for k, v := range l.entries {
		out[k] = v
	}
	return out, nil
}

// MarkDone commits one task's result key and fsyncs. Re-marking a task with
// the same key is a no-op; a different key overwrites, with the last record
// winning on replay.
func (l *FileRunLog) MarkDone(ctx context.Context, index int, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if index < 0 {
		return fmt.Errorf("task index must not be negative, got %d", index)
	}
	if len(key) > runLogMaxKeyLen {
		return fmt.Errorf("result key too long: %d bytes", len(key))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return os.ErrClosed
	}
	if prev, ok := l.entries[index]; ok && prev == key {
		return nil
	}

	if _, err := l.f.Write(encodeRunLogRecord(index, key)); err != nil {
		return fmt.Errorf("append run log record: %w", err)
	}
	if err := l.f.Sync(); err != nil {
		return fmt.Errorf("sync run log: %w", err)
	}

	l.entries[index] = key
	return nil
}

// Close releases the underlying file. Further calls report os.ErrClosed.
func (l *FileRunLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return os.ErrClosed
	}
	l.closed = true
	return l.f.Close()
}
