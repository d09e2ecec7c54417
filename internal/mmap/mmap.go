// Package mmap provides read-only memory-mapped file access for spilled
// results and local run artifacts, so large payloads are paged in on demand
// instead of copied up front.
//
// Unix platforms map with mmap(2) and take access hints via madvise(2);
// Windows uses CreateFileMapping/MapViewOfFile and ignores hints. Close is
// idempotent, but callers must not touch Bytes after it returns.
package mmap

import (
	"errors"
	"io"
	"os"
	"sync/atomic"
)

// AccessPattern hints how a mapping will be read.
type AccessPattern uint8

const (
	// AccessNormal leaves the kernel's default readahead in place.
	AccessNormal AccessPattern = iota
	// AccessSequential hints a front-to-back scan, as when decoding a
	// whole spilled payload.
	AccessSequential
	// AccessRandom hints scattered reads.
	AccessRandom
)

// Mapping is a read-only memory-mapped file.
type Mapping struct {
	data   []byte
	closed atomic.Bool
	unmap  func([]byte) error
}

// Open maps the file at path read-only. Empty files map to an empty,
// closable Mapping.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size := fi.Size()
	if size == 0 {
		return &Mapping{}, nil
	}

	if size < 0 {
		return nil, errors.New("mmap: negative file size")
	}

	data, unmap, err := osMap(f, int(size))
	if err != nil {
		return nil, err
	}

	return &Mapping{data: data, unmap: unmap}, nil
}

// Close unmaps the memory. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil
	}

	if m.unmap != nil && m.data != nil {
		return m.unmap(m.data)
	}

	return nil
}

// Bytes returns the mapped contents. The slice is valid until Close.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}

	return m.data
}

// Size returns the mapped size in bytes.
func (m *Mapping) Size() int64 {
	return int64(len(m.data))
}

// ReadAt implements the io.ReaderAt interface over the mapping.
func (m *Mapping) ReadAt(p []byte, off int64) (int, error) {
	data := m.Bytes()

	if off < 0 {
		return 0, errors.New("mmap: negative offset")
	}

	if off >= int64(len(data)) {
		return 0, io.EOF
	}

	n := copy(p, data[off:])
	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

// Advise passes an access hint to the kernel. Hints are advisory; failures
// to apply them are not reported.
func (m *Mapping) Advise(pattern AccessPattern) {
	data := m.Bytes()
	if len(data) == 0 {
		return
	}

	osAdvise(data, pattern)
}
