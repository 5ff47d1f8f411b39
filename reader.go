// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package omf80

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/go-kratos/kratos/v2/log"
)

// Options configures a File.
type Options struct {
	// Logger receives diagnostic messages. A nil Logger defaults the same
	// way LinkOptions/ImageOptions do.
	Logger log.Logger
}

func (o *Options) helper() *log.Helper {
	if o == nil || o.Logger == nil {
		return log.NewHelper(log.NewFilter(log.DefaultLogger, log.FilterLevel(log.LevelError)))
	}
	return log.NewHelper(o.Logger)
}

// File is a memory-mapped .obj or .lib input file.
type File struct {
	path string
	data mmap.MMap
	f    *os.File

	helper *log.Helper
}

// New maps path into memory and returns a File wrapping it. Call Close
// when done to release the mapping and the underlying file descriptor.
func New(path string, opts *Options) (*File, error) {
	helper := opts.helper()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("omf80: open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("omf80: stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		f.Close()
		return nil, fmt.Errorf("omf80: %s: %w", path, ErrBadInput)
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("omf80: mmap %s: %w", path, err)
	}

	helper.Debugf("reader: mapped %s (%d bytes)", path, len(data))
	return &File{path: path, data: data, f: f, helper: helper}, nil
}

// NewBytes wraps an in-memory buffer in a File without touching the
// filesystem, for callers that already hold the bytes (tests, embedded
// fixtures).
func NewBytes(name string, data []byte, opts *Options) (*File, error) {
	return &File{path: name, data: mmap.MMap(data), helper: opts.helper()}, nil
}

// Bytes returns the file's raw content.
func (file *File) Bytes() []byte {
	return []byte(file.data)
}

// Path returns the path the File was opened from.
func (file *File) Path() string {
	return file.path
}

// Records splits and decodes the file's content into an OMF-80 record
// sequence (frame.SplitFrames, record-by-record DecodeRecord).
func (file *File) Records() ([]Record, error) {
	return SplitFrames(file.Bytes())
}

// Close unmaps the file and closes the underlying descriptor, if any.
func (file *File) Close() error {
	if file.data != nil {
		_ = file.data.Unmap()
	}
	if file.f != nil {
		return file.f.Close()
	}
	return nil
}
