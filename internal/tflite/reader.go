package tflite

import (
	"errors"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

var (
	ErrNotTFLite = errors.New("tflite: missing TFL3 file identifier")
	ErrCorrupt   = errors.New("tflite: corrupt model file")
)

// File is a read-only view of a model file.
type File struct {
	Data    []byte
	mmapped bool
}

// Open maps a model file read-only. If mmap is unavailable it falls back to
// reading the file into memory. The returned file must be closed.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := st.Size()
	if size64 < minSize || size64 > int64(int(^uint(0)>>1)) {
		return nil, ErrCorrupt
	}
	size := int(size64)

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		return &File{Data: data, mmapped: true}, nil
	}

	data, err = readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return &File{Data: data}, nil
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

// Close releases the mapping.
func (f *File) Close() error {
	if f == nil || f.Data == nil {
		return nil
	}
	var err error
	if f.mmapped {
		err = unix.Munmap(f.Data)
	}
	f.Data = nil
	f.mmapped = false
	return err
}

// Info decodes the model header of an open file.
func (f *File) Info() (Info, error) {
	if f == nil || f.Data == nil {
		return Info{}, ErrCorrupt
	}
	return Parse(f.Data)
}

// Inspect opens, decodes and closes the model at path.
func Inspect(path string) (Info, error) {
	f, err := Open(path)
	if err != nil {
		return Info{}, err
	}
	defer func() { _ = f.Close() }()
	return f.Info()
}
