// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package omf80

import (
	"errors"
	"reflect"
	"testing"
)

func TestRecordRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
	}{
		{"module header", ModuleHeaderRecord{
			Name: "MAIN",
			Segments: []SegmentDesc{
				{SegmentID: SegmentCode, Length: 0x10, Alignment: 0},
				{SegmentID: SegmentData, Length: 0x04, Alignment: 0},
			},
		}},
		{"module end", ModuleEndRecord{ModTyp: 1, SegID: SegmentCode, Offset: 0}},
		{"content", ContentRecord{SegID: SegmentCode, Offset: 0, Data: []byte{0xc3, 0x00, 0x00}}},
		{"line numbers", LineNumbersRecord{
			SegID:       SegmentCode,
			LineNumbers: []LineNumberEntry{{Offset: 0, Line: 10}, {Offset: 3, Line: 11}},
		}},
		{"end of file", EndOfFileRecord{}},
		{"module ancestor", ModuleAncestorRecord{ModuleName: "MAIN"}},
		{"local symbols", LocalSymbolsRecord{
			SegID:   SegmentCode,
			Symbols: []NamedOffset{{Offset: 0, Name: "LOOP"}, {Offset: 5, Name: "DONE"}},
		}},
		{"public declaration", PublicDeclarationRecord{
			SegID:       SegmentCode,
			PublicNames: []NamedOffset{{Offset: 0, Name: "START"}},
		}},
		{"external names", ExternalNamesRecord{Names: []string{"PUTCHAR", "GETCHAR"}}},
		{"external references", ExternalReferencesRecord{
			Width:      WidthBoth,
			References: []ExternalReference{{NameIndex: 0, Offset: 1}, {NameIndex: 1, Offset: 4}},
		}},
		{"relocation", RelocationRecord{Width: WidthBoth, Offsets: []uint16{1, 4, 9}}},
		{"intersegment references", IntersegmentReferencesRecord{
			SegID: SegmentData, Width: WidthBoth, Offsets: []uint16{2, 6},
		}},
		{"library module locations", LibraryModuleLocationsRecord{
			Locations: []LibraryLocation{{Block: 0, Byte: 10}, {Block: 1, Byte: 0}},
		}},
		{"library module names", LibraryModuleNamesRecord{ModuleNames: []string{"STRLIB", "MATHLIB"}}},
		{"library dictionary", LibraryDictionaryRecord{Groups: [][]string{{"PUTCHAR"}, {"STRLEN", "STRCPY"}}}},
		{"library header", LibraryHeaderRecord{ModuleCount: 2, Block: 0, Byte: 0}},
		{"named common definitions", NamedCommonDefinitionsRecord{
			SegID:       SegmentUnnamedCommon,
			CommonNames: []CommonName{{SegID: SegmentUnnamedCommon, CommonName: "BUFFERS"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := EncodeRecord(tt.rec)
			if err != nil {
				t.Fatalf("EncodeRecord(%v) failed: %v", tt.rec, err)
			}
			if !checksumOK(frame) {
				t.Fatalf("EncodeRecord(%v) produced a frame that does not checksum to zero: % x", tt.rec, frame)
			}

			got, err := DecodeRecord(frame)
			if err != nil {
				t.Fatalf("DecodeRecord(% x) failed: %v", frame, err)
			}
			if !reflect.DeepEqual(got, tt.rec) {
				t.Fatalf("DecodeRecord(EncodeRecord(%v)) = %v, want %v", tt.rec, got, tt.rec)
			}

			frame2, err := EncodeRecord(got)
			if err != nil {
				t.Fatalf("re-encoding decoded record failed: %v", err)
			}
			if string(frame2) != string(frame) {
				t.Fatalf("re-encoded frame differs: % x vs % x", frame2, frame)
			}
		})
	}
}

func TestDecodeRecordRejectsBadChecksum(t *testing.T) {
	frame, err := EncodeRecord(ModuleAncestorRecord{ModuleName: "MAIN"})
	if err != nil {
		t.Fatalf("EncodeRecord failed: %v", err)
	}
	frame[len(frame)-1] ^= 0xff
	if _, err := DecodeRecord(frame); err == nil {
		t.Fatalf("DecodeRecord accepted a frame with a bad checksum")
	}
}

func TestDecodeRecordRejectsLengthMismatch(t *testing.T) {
	frame, err := EncodeRecord(ModuleAncestorRecord{ModuleName: "MAIN"})
	if err != nil {
		t.Fatalf("EncodeRecord failed: %v", err)
	}
	truncated := frame[:len(frame)-2]
	if _, err := DecodeRecord(truncated); err == nil {
		t.Fatalf("DecodeRecord accepted a truncated frame")
	}
}

func TestDecodeRecordRejectsUnknownType(t *testing.T) {
	frame := []byte{0x7f, 0x01, 0x00}
	frame = append(frame, checksum(frame))
	if _, err := DecodeRecord(frame); !errors.Is(err, ErrUnknownRecordType) {
		t.Fatalf("DecodeRecord on unknown type = %v, want ErrUnknownRecordType", err)
	}
}

func TestDecodeLibraryDictionaryRejectsUnterminatedGroup(t *testing.T) {
	var buf []byte
	buf = writeStr8(buf, "PUTCHAR")
	// missing trailing null terminator
	if _, err := decodeLibraryDictionary(buf); !errors.Is(err, ErrBadLibraryDictionary) {
		t.Fatalf("decodeLibraryDictionary on unterminated group = %v, want ErrBadLibraryDictionary", err)
	}
}
