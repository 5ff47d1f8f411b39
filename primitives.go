// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package omf80

import "encoding/binary"

// MaxNameLength is the largest length a str8-encoded ASCII name may carry
// on the wire (the length prefix is a single byte).
const MaxNameLength = 0xff

// readUint16 decodes a little-endian 16-bit unsigned integer starting at
// data[0]. The caller must ensure len(data) >= 2.
func readUint16(data []byte) uint16 {
	return binary.LittleEndian.Uint16(data)
}

// putUint16 appends the little-endian encoding of v to buf.
func putUint16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

// readStr8 decodes a length-prefixed ASCII string (one length byte followed
// by that many ASCII bytes) starting at data[0]. It returns the decoded
// string and the number of bytes consumed (1 + length).
func readStr8(data []byte) (string, int, error) {
	if len(data) < 1 {
		return "", 0, ErrBadString
	}
	n := int(data[0])
	if len(data) < 1+n {
		return "", 0, ErrBadString
	}
	return string(data[1 : 1+n]), 1 + n, nil
}

// writeStr8 appends the length-prefixed ASCII encoding of s to buf.
func writeStr8(buf []byte, s string) []byte {
	if len(s) > MaxNameLength {
		s = s[:MaxNameLength]
	}
	buf = append(buf, byte(len(s)))
	return append(buf, s...)
}

// checksum returns the byte such that the arithmetic sum of every byte in
// data, plus the returned byte, is 0 mod 256.
func checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return byte(-int(sum) & 0xff)
}

// checksumOK reports whether the arithmetic sum of every byte of frame is
// 0 mod 256.
func checksumOK(frame []byte) bool {
	var sum byte
	for _, b := range frame {
		sum += b
	}
	return sum == 0
}
