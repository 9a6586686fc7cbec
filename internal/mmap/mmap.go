// Package mmap provides read-only memory mapping of snapshot files.
package mmap

import (
	"fmt"
	"os"
)

// Mapping is a read-only memory-mapped file.
type Mapping struct {
	data  []byte
	unmap func([]byte) error
	f     *os.File
}

// Open maps the file at path for reading. An empty file maps to an empty
// (non-nil) Mapping.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	size := info.Size()
	if size == 0 {
		return &Mapping{f: f}, nil
	}
	if size != int64(int(size)) {
		_ = f.Close()
		return nil, fmt.Errorf("mmap: file %s too large", path)
	}

	data, unmap, err := osMap(f, int(size))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("mmap: map %s: %w", path, err)
	}

	return &Mapping{data: data, unmap: unmap, f: f}, nil
}

// Bytes returns the mapped contents. The slice is valid until Close.
func (m *Mapping) Bytes() []byte {
	return m.data
}

// Close unmaps the file and releases the descriptor.
func (m *Mapping) Close() error {
	var err error
	if m.data != nil && m.unmap != nil {
		err = m.unmap(m.data)
		m.data = nil
	}
	if m.f != nil {
		if cerr := m.f.Close(); err == nil {
			err = cerr
		}
		m.f = nil
	}
	return err
}
