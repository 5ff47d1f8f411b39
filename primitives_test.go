// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package omf80

import "testing"

func TestReadWriteUint16(t *testing.T) {
	tests := []struct {
		in  uint16
		out []byte
	}{
		{0x0000, []byte{0x00, 0x00}},
		{0x00ff, []byte{0xff, 0x00}},
		{0xff00, []byte{0x00, 0xff}},
		{0x1234, []byte{0x34, 0x12}},
	}

	for _, tt := range tests {
		buf := putUint16(nil, tt.in)
		if string(buf) != string(tt.out) {
			t.Fatalf("putUint16(%#04x) = % x, want % x", tt.in, buf, tt.out)
		}
		got := readUint16(buf)
		if got != tt.in {
			t.Fatalf("readUint16(% x) = %#04x, want %#04x", buf, got, tt.in)
		}
	}
}

func TestStr8RoundTrip(t *testing.T) {
	tests := []string{"", "A", "MAIN", "a_fairly_long_symbol_name_123"}

	for _, s := range tests {
		buf := writeStr8(nil, s)
		got, n, err := readStr8(buf)
		if err != nil {
			t.Fatalf("readStr8(writeStr8(%q)) failed: %v", s, err)
		}
		if got != s {
			t.Fatalf("readStr8(writeStr8(%q)) = %q", s, got)
		}
		if n != len(buf) {
			t.Fatalf("readStr8(writeStr8(%q)) consumed %d bytes, want %d", s, n, len(buf))
		}
	}
}

func TestReadStr8Truncated(t *testing.T) {
	if _, _, err := readStr8([]byte{5, 'a', 'b'}); err != ErrBadString {
		t.Fatalf("readStr8 on truncated buffer = %v, want ErrBadString", err)
	}
	if _, _, err := readStr8(nil); err != ErrBadString {
		t.Fatalf("readStr8(nil) = %v, want ErrBadString", err)
	}
}

func TestChecksumBalances(t *testing.T) {
	frame := []byte{0x02, 0x05, 0x00, 'M', 'A', 'I', 'N'}
	frame = append(frame, checksum(frame))
	if !checksumOK(frame) {
		t.Fatalf("checksum(% x) did not balance the frame to zero", frame)
	}
}

func TestChecksumDetectsCorruption(t *testing.T) {
	frame := []byte{0x02, 0x05, 0x00, 'M', 'A', 'I', 'N'}
	frame = append(frame, checksum(frame))
	frame[3] ^= 0xff
	if checksumOK(frame) {
		t.Fatalf("checksumOK did not detect corruption in %x", frame)
	}
}
