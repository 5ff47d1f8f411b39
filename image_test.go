// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package omf80

import "testing"

func TestAdjustPatchesCodeSiteAndSetsStackLength(t *testing.T) {
	module := NewModule("MAIN")
	module.IsMain = true
	module.Segments[SegmentCode] = &SegmentDescriptor{Length: 4}
	module.Segments[SegmentData] = &SegmentDescriptor{Length: 2}

	cdef := &ContentDef{SegID: SegmentCode, Offset: 0, Data: []byte{0xc3, 0x00, 0x00, 0xc9}}
	cdef.addInternal(SegmentData, WidthBoth, 1)
	module.ContentDefinitions = append(module.ContentDefinitions, cdef)

	if err := Adjust(module, 0x0100, 0x0020, nil); err != nil {
		t.Fatalf("Adjust failed: %v", err)
	}

	if got := module.Segments[SegmentStack].Length; got != 0x0020 {
		t.Fatalf("STACK length = %#04x, want 0x0020", got)
	}

	// dataStart = codeStart(0x100) + codeLength(4) + stackSize(0x20) = 0x124
	want := uint16(0x0124)
	got := readUint16(cdef.Data[1:3])
	if got != want {
		t.Fatalf("patched DATA-referencing site = %#04x, want %#04x", got, want)
	}
	if cdef.Offset != 0 {
		t.Fatalf("Adjust must not touch ContentDef.Offset, got %d", cdef.Offset)
	}
}

func TestAdjustRejectsUnknownSegment(t *testing.T) {
	module := NewModule("BAD")
	module.Segments[SegmentCode] = &SegmentDescriptor{Length: 2}
	cdef := &ContentDef{SegID: SegmentCode, Offset: 0, Data: []byte{0x00, 0x00}}
	cdef.addInternal(SegmentReserved, WidthBoth, 0)
	module.ContentDefinitions = append(module.ContentDefinitions, cdef)

	if err := Adjust(module, 0, 0, nil); err == nil {
		t.Fatalf("Adjust accepted a patch site targeting an unrebaseable segment")
	}
}

func TestModuleToBinCodeOnly(t *testing.T) {
	module := NewModule("MAIN")
	module.Segments[SegmentCode] = &SegmentDescriptor{Length: 2}
	module.ContentDefinitions = append(module.ContentDefinitions,
		&ContentDef{SegID: SegmentCode, Offset: 0, Data: []byte{0x3e, 0xc9}})

	bin := ModuleToBin(module)
	if string(bin) != string([]byte{0x3e, 0xc9}) {
		t.Fatalf("ModuleToBin (code only) = % x, want 3e c9", bin)
	}
}

func TestModuleToBinWithStackGapAndData(t *testing.T) {
	module := NewModule("MAIN")
	module.Segments[SegmentCode] = &SegmentDescriptor{Length: 2}
	module.Segments[SegmentStack] = &SegmentDescriptor{Length: 3}
	module.ContentDefinitions = append(module.ContentDefinitions,
		&ContentDef{SegID: SegmentCode, Offset: 0, Data: []byte{0x3e, 0xc9}},
		&ContentDef{SegID: SegmentData, Offset: 0, Data: []byte{0x41, 0x42}},
	)

	bin := ModuleToBin(module)
	want := []byte{0x3e, 0xc9, 0x00, 0x00, 0x00, 0x41, 0x42}
	if string(bin) != string(want) {
		t.Fatalf("ModuleToBin = % x, want % x", bin, want)
	}
}

func TestModuleToBinSplatsSparseContentWithZeroFill(t *testing.T) {
	module := NewModule("MAIN")
	module.Segments[SegmentCode] = &SegmentDescriptor{Length: 8}
	module.ContentDefinitions = append(module.ContentDefinitions,
		&ContentDef{SegID: SegmentCode, Offset: 5, Data: []byte{0xaa, 0xbb}},
		&ContentDef{SegID: SegmentCode, Offset: 0, Data: []byte{0x11}},
	)

	bin := ModuleToBin(module)
	want := []byte{0x11, 0x00, 0x00, 0x00, 0x00, 0xaa, 0xbb}
	if string(bin) != string(want) {
		t.Fatalf("ModuleToBin (sparse, out of order) = % x, want % x", bin, want)
	}
}
