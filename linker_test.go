// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package omf80

import (
	"errors"
	"testing"
)

func callerModule() *Module {
	mod := NewModule("CALLER")
	mod.IsMain = true
	mod.Segments[SegmentCode] = &SegmentDescriptor{Length: 4}
	mod.ExternalNames = []string{"GREET"}
	cdef := &ContentDef{SegID: SegmentCode, Offset: 0, Data: []byte{0xcd, 0x00, 0x00, 0xc9}}
	cdef.External = map[Width][]ExternalSite{WidthBoth: {{Name: "GREET", Offset: 1}}}
	mod.ContentDefinitions = append(mod.ContentDefinitions, cdef)
	return mod
}

func greetModule() *Module {
	mod := NewModule("GREETER")
	mod.Segments[SegmentCode] = &SegmentDescriptor{Length: 3}
	mod.PublicDeclarations[SegmentCode] = []NamedOffset{{Offset: 0, Name: "GREET"}}
	mod.ContentDefinitions = append(mod.ContentDefinitions, &ContentDef{SegID: SegmentCode, Offset: 0, Data: []byte{0x3e, 0x41, 0xc9}})
	return mod
}

func TestLinkResolvesExternalAgainstDirectModule(t *testing.T) {
	combined, err := Link([]any{callerModule(), greetModule()}, nil)
	if err != nil {
		t.Fatalf("Link failed: %v", err)
	}
	if combined.Name != "CALLER" || !combined.IsMain {
		t.Fatalf("combined module is not CALLER/main: %+v", combined)
	}
	if got := combined.Segments[SegmentCode].Length; got != 7 {
		t.Fatalf("combined CODE length = %d, want 7 (4+3)", got)
	}

	// GREET is folded in right after CALLER, so its entry point rebases to
	// offset 4. CALLER's call-site patch should now read 0x0004.
	cdef := combined.ContentDefinitions[0]
	if got := readUint16(cdef.Data[1:3]); got != 4 {
		t.Fatalf("patched call site = %#04x, want 0x0004", got)
	}
}

func TestLinkPullsLibraryModuleOnDemand(t *testing.T) {
	lib := &Library{
		Modules:    []*Module{greetModule()},
		Dictionary: map[string]int{"GREET": 0},
	}

	combined, err := Link([]any{callerModule(), lib}, nil)
	if err != nil {
		t.Fatalf("Link failed: %v", err)
	}
	if got := combined.Segments[SegmentCode].Length; got != 7 {
		t.Fatalf("combined CODE length = %d, want 7", got)
	}
}

func TestLinkDoesNotPullUnneededLibraryModules(t *testing.T) {
	unrelated := NewModule("UNRELATED")
	unrelated.Segments[SegmentCode] = &SegmentDescriptor{Length: 100}
	unrelated.PublicDeclarations[SegmentCode] = []NamedOffset{{Offset: 0, Name: "UNUSED"}}
	unrelated.ContentDefinitions = append(unrelated.ContentDefinitions,
		&ContentDef{SegID: SegmentCode, Offset: 0, Data: make([]byte, 100)})

	lib := &Library{
		Modules:    []*Module{greetModule(), unrelated},
		Dictionary: map[string]int{"GREET": 0, "UNUSED": 1},
	}

	combined, err := Link([]any{callerModule(), lib}, nil)
	if err != nil {
		t.Fatalf("Link failed: %v", err)
	}
	if got := combined.Segments[SegmentCode].Length; got != 7 {
		t.Fatalf("combined CODE length = %d, want 7 (UNRELATED should not be pulled in)", got)
	}
}

func TestLinkRejectsUnresolvedExternal(t *testing.T) {
	_, err := Link([]any{callerModule()}, nil)
	if !errors.Is(err, ErrUnresolvedExternal) {
		t.Fatalf("Link with a missing GREET definition = %v, want ErrUnresolvedExternal", err)
	}
}

func TestLinkRejectsDuplicateMain(t *testing.T) {
	second := NewModule("SECOND")
	second.IsMain = true
	second.Segments[SegmentCode] = &SegmentDescriptor{Length: 1}
	second.ContentDefinitions = append(second.ContentDefinitions, &ContentDef{SegID: SegmentCode, Data: []byte{0xc9}})

	_, err := Link([]any{callerModule(), greetModule(), second}, nil)
	if !errors.Is(err, ErrDuplicateMain) {
		t.Fatalf("Link with two main modules = %v, want ErrDuplicateMain", err)
	}
}

func TestLinkRebasesDataAcrossModules(t *testing.T) {
	a := NewModule("A")
	a.Segments[SegmentData] = &SegmentDescriptor{Length: 4}
	a.ContentDefinitions = append(a.ContentDefinitions, &ContentDef{SegID: SegmentData, Offset: 0, Data: []byte{1, 2, 3, 4}})

	b := NewModule("B")
	b.Segments[SegmentData] = &SegmentDescriptor{Length: 2}
	b.ContentDefinitions = append(b.ContentDefinitions, &ContentDef{SegID: SegmentData, Offset: 0, Data: []byte{5, 6}})

	combined, err := Link([]any{a, b}, nil)
	if err != nil {
		t.Fatalf("Link failed: %v", err)
	}
	if got := combined.Segments[SegmentData].Length; got != 6 {
		t.Fatalf("combined DATA length = %d, want 6", got)
	}
	if combined.ContentDefinitions[1].Offset != 4 {
		t.Fatalf("B's content was not rebased past A's DATA: offset=%d, want 4", combined.ContentDefinitions[1].Offset)
	}
}
