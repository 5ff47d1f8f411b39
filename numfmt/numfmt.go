// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package numfmt parses the decimal/hex address and size literals taken
// by the image-linker and image-converter command-line flags (--code,
// --stack). It is the Go equivalent of the original omf80 toolchain's
// mkbin.py/linkbin.py read_int helper: thin, standalone, plumbing
// (spec.md §1's Non-goals).
package numfmt

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse interprets s as a decimal integer, a "0x"-prefixed hex integer,
// or an "h"-suffixed hex integer (case-insensitive), matching the
// original tool's read_int. An empty string parses as 0, matching
// read_int(None) == 0.
func Parse(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	switch {
	case strings.HasSuffix(strings.ToLower(s), "h"):
		v, err := strconv.ParseUint(s[:len(s)-1], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("numfmt: %q is not a valid h-suffixed hex literal: %w", s, err)
		}
		return v, nil
	case len(s) > 1 && strings.EqualFold(s[0:2], "0x"):
		v, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("numfmt: %q is not a valid 0x-prefixed hex literal: %w", s, err)
		}
		return v, nil
	default:
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("numfmt: %q is not a valid decimal literal: %w", s, err)
		}
		return v, nil
	}
}

// ParseUint16 is Parse, restricted to the uint16 range: a value above
// 0xffff is an error (addresses and sizes in the OMF-80 model never
// exceed 16 bits).
func ParseUint16(s string) (uint16, error) {
	v, err := Parse(s)
	if err != nil {
		return 0, err
	}
	if v > 0xffff {
		return 0, fmt.Errorf("numfmt: %q exceeds 16 bits", s)
	}
	return uint16(v), nil
}
