// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package omf80

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
)

// ImageOptions configures Adjust. A nil Logger defaults the same way
// LinkOptions does.
type ImageOptions struct {
	Logger log.Logger
}

func (o *ImageOptions) helper() *log.Helper {
	if o == nil || o.Logger == nil {
		return log.NewHelper(log.NewFilter(log.DefaultLogger, log.FilterLevel(log.LevelError)))
	}
	return log.NewHelper(o.Logger)
}

// Adjust fixes up a linked Module's CODE-segment patch sites to absolute
// addresses and sets the STACK segment's length, in place (spec.md §4.6).
// codeStart is the address CODE is loaded at; stackSize is the number of
// reserved, uninitialized STACK bytes placed immediately after CODE.
// ContentDef.Offset fields are left segment-relative, never adjusted.
func Adjust(module *Module, codeStart uint16, stackSize uint16, opts *ImageOptions) error {
	helper := opts.helper()

	codeDesc, ok := module.Segments[SegmentCode]
	var codeLength uint16
	if ok {
		codeLength = codeDesc.Length
	}
	dataStart := codeStart + codeLength + stackSize

	if module.Segments == nil {
		module.Segments = make(map[SegmentID]*SegmentDescriptor)
	}
	stackDesc, ok := module.Segments[SegmentStack]
	if !ok {
		stackDesc = &SegmentDescriptor{}
		module.Segments[SegmentStack] = stackDesc
	}
	stackDesc.Length = stackSize

	helper.Infof("adjust: code@0x%04x (len %d) stack=%d data@0x%04x",
		codeStart, codeLength, stackSize, dataStart)

	for _, cdef := range module.ContentDefinitions {
		if cdef.SegID != SegmentCode {
			continue
		}
		for _, key := range cdef.internalKeys() {
			offsets := cdef.Internal[key]
			var base uint16
			switch key.SegID {
			case SegmentCode:
				base = codeStart
			case SegmentData, SegmentStack:
				base = dataStart
			default:
				return fmt.Errorf("omf80: adjust: segment %s: %w", key.SegID, ErrUnknownSegment)
			}
			for _, site := range offsets {
				add16(cdef.Data, int(site-cdef.Offset), base)
			}
		}
	}
	return nil
}

// addAt splices src into dst at offset, zero-filling and growing dst as
// needed (spec.md §4.6, content definitions may be sparse and out of
// order).
func addAt(dst []byte, offset int, src []byte) []byte {
	end := offset + len(src)
	if len(dst) < end {
		grown := make([]byte, end)
		copy(grown, dst)
		dst = grown
	}
	copy(dst[offset:end], src)
	return dst
}

// ModuleToBin flattens an adjusted Module's CODE and DATA content into a
// single contiguous binary image (spec.md §4.6). If DATA is empty, the
// image is just CODE; otherwise it is CODE followed by a zeroed STACK
// buffer followed by DATA.
func ModuleToBin(module *Module) []byte {
	var code, data []byte

	for _, cdef := range module.ContentDefinitions {
		switch cdef.SegID {
		case SegmentCode:
			code = addAt(code, int(cdef.Offset), cdef.Data)
		case SegmentData:
			data = addAt(data, int(cdef.Offset), cdef.Data)
		}
	}

	if len(data) == 0 {
		return code
	}

	var stackLen uint16
	if desc, ok := module.Segments[SegmentStack]; ok {
		stackLen = desc.Length
	}
	stack := make([]byte, stackLen)

	out := make([]byte, 0, len(code)+len(stack)+len(data))
	out = append(out, code...)
	out = append(out, stack...)
	out = append(out, data...)
	return out
}
