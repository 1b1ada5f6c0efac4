// Package testutil holds fakes and invariant checkers shared by ufs's test
// files.
package testutil

import (
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/mbrt/unixfs/backend"
)

// MemStorage is an in-memory backend.Storage, avoiding real file I/O in unit
// tests.
type MemStorage struct {
	data []byte
	pos  int64
}

// NewMemStorage returns a zeroed in-memory image of size bytes.
func NewMemStorage(size int64) *MemStorage {
	return &MemStorage{data: make([]byte, size)}
}

var _ backend.Storage = (*MemStorage)(nil)

func (m *MemStorage) Stat() (fs.FileInfo, error) {
	return memInfo{size: int64(len(m.data))}, nil
}

func (m *MemStorage) Read(b []byte) (int, error) {
	n, err := m.ReadAt(b, m.pos)
	m.pos += int64(n)
	return n, err
}

func (m *MemStorage) Close() error {
	return nil
}

func (m *MemStorage) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *MemStorage) WriteAt(p []byte, off int64) (int, error) {
	end := off + int64(len(p))
	if end > int64(len(m.data)) {
		return 0, io.ErrShortBuffer
	}
	return copy(m.data[off:end], p), nil
}

func (m *MemStorage) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		m.pos = offset
	case io.SeekCurrent:
		m.pos += offset
	case io.SeekEnd:
		m.pos = int64(len(m.data)) + offset
	}
	return m.pos, nil
}

func (m *MemStorage) Sys() (*os.File, error) {
	return nil, backend.ErrNotSuitable
}

func (m *MemStorage) Writable() (backend.WritableFile, error) {
	return m, nil
}

type memInfo struct {
	size int64
}

func (m memInfo) Name() string       { return "mem" }
func (m memInfo) Size() int64        { return m.size }
func (m memInfo) Mode() fs.FileMode  { return 0o600 }
func (m memInfo) ModTime() time.Time { return time.Time{} }
func (m memInfo) IsDir() bool        { return false }
func (m memInfo) Sys() any           { return nil }
