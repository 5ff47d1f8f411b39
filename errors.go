// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package omf80

import "errors"

// Errors returned by the record codec, the frame layer, the module
// assembler, the linker, and the image builder. Contextual detail
// (offending offset, record type, symbol name) is attached with
// fmt.Errorf("...: %w", Err...) so callers can still errors.Is against
// these sentinels.
var (
	// ErrCorruptFrame is returned when a frame's checksum does not
	// balance to zero, or the frame is truncated before its declared
	// length.
	ErrCorruptFrame = errors.New("omf80: corrupt frame")

	// ErrUnknownRecordType is returned when a record's type byte does
	// not match any of the 17 supported record types.
	ErrUnknownRecordType = errors.New("omf80: unknown record type")

	// ErrBadString is returned when a length-prefixed ASCII string's
	// declared length exceeds the remaining payload.
	ErrBadString = errors.New("omf80: bad length-prefixed string")

	// ErrBadLibraryDictionary is returned when a LIBRARY DICTIONARY
	// record's module group is not terminated by a null byte.
	ErrBadLibraryDictionary = errors.New("omf80: library dictionary missing null terminator")

	// ErrUnresolvedExternal is returned when a linked module's external
	// reference cannot be satisfied by any public symbol in the link
	// set.
	ErrUnresolvedExternal = errors.New("omf80: unresolved external symbol")

	// ErrUnknownSegment is returned when a segment id outside the fixed
	// table (ABSOLUTE, CODE, DATA, STACK, MEMORY) is encountered during
	// rebase or adjust.
	ErrUnknownSegment = errors.New("omf80: unknown segment")

	// ErrBadInput is returned when the first record of a stream is
	// neither MODULE HEADER nor LIBRARY HEADER, or the stream lacks an
	// END OF FILE terminator.
	ErrBadInput = errors.New("omf80: input is neither a module nor a library")

	// ErrDuplicateMain is returned when more than one module in a link
	// set is marked main.
	ErrDuplicateMain = errors.New("omf80: more than one main module")

	// ErrInvalidSegmentMap is returned when a module's content
	// references a segment with no corresponding segment descriptor.
	ErrInvalidSegmentMap = errors.New("omf80: content references undeclared segment")
)
