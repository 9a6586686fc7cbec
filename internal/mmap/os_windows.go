//go:build windows

package mmap

import (
	"io"
	"os"
)

// Windows has no golang.org/x/sys/unix mmap; fall back to reading the
// whole file. Snapshot reads remain correct, just not zero-copy.
func osMap(f *os.File, size int) ([]byte, func([]byte) error, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, nil, err
	}
	return data, func([]byte) error { return nil }, nil
}
