// SPDX-License-Identifier: EPL-2.0

// Package memfile is an in-memory io.ReadWriteSeeker.
//
// go-audio's decoders need an io.ReadSeeker and its encoders an
// io.WriteSeeker; File serves both for data that never touches disk.
package memfile

import (
	"errors"
	"fmt"
	"io"
)

var ErrNegativeOffset = errors.New("memfile: negative position")

// File is a growable byte slice with a cursor.
type File struct {
	data   []byte
	offset int64
}

// New wraps data for reading. The slice is not copied.
func New(data []byte) *File {
	return &File{data: data}
}

// Bytes returns the whole content regardless of the cursor.
func (f *File) Bytes() []byte { return f.data }

func (f *File) Len() int { return len(f.data) }

func (f *File) Read(p []byte) (int, error) {
	if f.offset >= int64(len(f.data)) {
		return 0, io.EOF
	}
	n := copy(p, f.data[f.offset:])
	f.offset += int64(n)
	return n, nil
}

func (f *File) Write(p []byte) (int, error) {
	end := f.offset + int64(len(p))
	if end > int64(len(f.data)) {
		if end > int64(cap(f.data)) {
			grown := make([]byte, end, max(end, int64(cap(f.data))*2))
			copy(grown, f.data)
			f.data = grown
		} else {
			f.data = f.data[:end]
		}
	}

	n := copy(f.data[f.offset:], p)
	f.offset += int64(n)
	return n, nil
}

func (f *File) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = f.offset + offset
	case io.SeekEnd:
		next = int64(len(f.data)) + offset
	default:
		return 0, fmt.Errorf("memfile: invalid whence %d", whence)
	}

	if next < 0 {
		return 0, ErrNegativeOffset
	}

	f.offset = next
	return next, nil
}

// ReadSeeker returns r itself when it can seek, otherwise buffers it fully.
func ReadSeeker(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("buffer input: %w", err)
	}
	return New(data), nil
}
