// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package numfmt

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in  string
		out uint64
	}{
		{"", 0},
		{"0", 0},
		{"100", 100},
		{"0x100", 256},
		{"0X1A", 26},
		{"100h", 256},
		{"1Ah", 26},
		{"1AH", 26},
	}

	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tt.in, err)
		}
		if got != tt.out {
			t.Fatalf("Parse(%q) = %d, want %d", tt.in, got, tt.out)
		}
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, in := range []string{"xyz", "0xzz", "zzh"} {
		if _, err := Parse(in); err == nil {
			t.Fatalf("Parse(%q) succeeded, want an error", in)
		}
	}
}

func TestParseUint16RejectsOverflow(t *testing.T) {
	if _, err := ParseUint16("0x10000"); err == nil {
		t.Fatalf("ParseUint16(\"0x10000\") succeeded, want an error")
	}
	got, err := ParseUint16("0xffff")
	if err != nil {
		t.Fatalf("ParseUint16(\"0xffff\") failed: %v", err)
	}
	if got != 0xffff {
		t.Fatalf("ParseUint16(\"0xffff\") = %#04x, want 0xffff", got)
	}
}
