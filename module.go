// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package omf80

// SegmentID identifies one of the fixed OMF-80 segments (spec.md §3.1).
type SegmentID byte

// The fixed segment ids and their roles.
const (
	SegmentAbsolute      SegmentID = 0
	SegmentCode          SegmentID = 1
	SegmentData          SegmentID = 2
	SegmentStack         SegmentID = 3
	SegmentMemory        SegmentID = 4
	SegmentReserved      SegmentID = 5
	SegmentUnnamedCommon SegmentID = 255
)

func (s SegmentID) String() string {
	switch s {
	case SegmentAbsolute:
		return "ABSOLUTE"
	case SegmentCode:
		return "CODE"
	case SegmentData:
		return "DATA"
	case SegmentStack:
		return "STACK"
	case SegmentMemory:
		return "MEMORY"
	case SegmentReserved:
		return "RESERVED"
	case SegmentUnnamedCommon:
		return "UNNAMED_COMMON"
	default:
		return "UNKNOWN"
	}
}

// SegmentDescriptor is a segment's length and alignment, as carried in a
// MODULE HEADER record and in Module.Segments (spec.md §3.1).
type SegmentDescriptor struct {
	Length    uint16
	Alignment uint8
}

// internalKey is the composite key of Module.ContentDef.Internal: the
// segment a patch site's address refers to, and which bytes of the
// 16-bit word to touch.
type internalKey struct {
	SegID SegmentID
	Width Width
}

// ExternalSite is one external-reference patch site: a public symbol name
// and the offset (within the owning segment) of the 16-bit word to patch.
type ExternalSite struct {
	Name   string
	Offset uint16
}

// ContentDef is one contiguous byte blob placed at a segment offset,
// together with its relocation sites (spec.md §3.3).
type ContentDef struct {
	SegID  SegmentID
	Offset uint16
	Data   []byte

	// Internal maps (target segment, patch width) -> ordered absolute
	// offsets (within the containing segment) of 16-bit addresses that
	// must be patched when the target segment is rebased.
	Internal map[internalKey][]uint16

	// External maps patch width -> ordered {name, offset} sites to be
	// patched with a resolved public symbol's address.
	External map[Width][]ExternalSite
}

// InternalOffsets returns the patch-site offsets recorded for (segID,
// width), or nil if there are none.
func (c *ContentDef) InternalOffsets(segID SegmentID, width Width) []uint16 {
	if c.Internal == nil {
		return nil
	}
	return c.Internal[internalKey{segID, width}]
}

// addInternal appends offset to the internal patch list for (segID, width).
func (c *ContentDef) addInternal(segID SegmentID, width Width, offset uint16) {
	if c.Internal == nil {
		c.Internal = make(map[internalKey][]uint16)
	}
	k := internalKey{segID, width}
	c.Internal[k] = append(c.Internal[k], offset)
}

// internalKeys returns the (segID, width) keys of c.Internal in a stable
// order (by segment id, then width), so record emission is deterministic.
func (c *ContentDef) internalKeys() []internalKey {
	keys := make([]internalKey, 0, len(c.Internal))
	for k := range c.Internal {
		keys = append(keys, k)
	}
	sortInternalKeys(keys)
	return keys
}

func sortInternalKeys(keys []internalKey) {
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0; j-- {
			a, b := keys[j-1], keys[j]
			if a.SegID < b.SegID || (a.SegID == b.SegID && a.Width <= b.Width) {
				break
			}
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
}

// externalWidths returns the Width keys of c.External in ascending order.
func (c *ContentDef) externalWidths() []Width {
	widths := make([]Width, 0, len(c.External))
	for w := range c.External {
		widths = append(widths, w)
	}
	for i := 1; i < len(widths); i++ {
		for j := i; j > 0 && widths[j-1] > widths[j]; j-- {
			widths[j-1], widths[j] = widths[j], widths[j-1]
		}
	}
	return widths
}

// LineNumber is one {offset, line} pair within a DebugBlock.
type LineNumber struct {
	Offset uint16
	Line   uint16
}

// LocalSymbol is one {offset, name} pair within a DebugBlock.
type LocalSymbol struct {
	Offset uint16
	Name   string
}

// DebugBlock is one ancestor's worth of line-number and local-symbol
// debug info (spec.md §3.4). All per-segment lists are sorted by
// ascending offset.
type DebugBlock struct {
	AncestorName string
	LocalSymbols map[SegmentID][]LocalSymbol
	LineNumbers  map[SegmentID][]LineNumber
}

// CommonDecl is one {seg_id, common_name} pair, as carried on
// Module.CommonNames (spec.md §3.2).
type CommonDecl struct {
	SegID      SegmentID
	CommonName string
}

// Module is the central OMF-80 entity (spec.md §3.2).
type Module struct {
	Name   string
	IsMain bool

	Segments map[SegmentID]*SegmentDescriptor

	CommonNames []CommonDecl

	// ExternalNames is the ordered sequence of imported symbol names;
	// position is the external-name index used on the wire.
	ExternalNames []string

	// PublicDeclarations maps segment id to its exported symbols,
	// ordered by ascending offset.
	PublicDeclarations map[SegmentID][]NamedOffset

	ContentDefinitions []*ContentDef

	DebugInfo []*DebugBlock
}

// NewModule returns an empty, ready-to-populate Module.
func NewModule(name string) *Module {
	return &Module{
		Name:               name,
		Segments:           make(map[SegmentID]*SegmentDescriptor),
		PublicDeclarations: make(map[SegmentID][]NamedOffset),
	}
}

// sortedSegmentIDs returns the keys of a SegmentID-keyed map in ascending
// order, for deterministic record emission.
func sortedSegmentIDs[V any](m map[SegmentID]V) []SegmentID {
	ids := make([]SegmentID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}

func sortNamedOffsets(entries []NamedOffset) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j-1].Offset > entries[j].Offset; j-- {
			entries[j-1], entries[j] = entries[j], entries[j-1]
		}
	}
}

func sortLocalSymbols(entries []LocalSymbol) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j-1].Offset > entries[j].Offset; j-- {
			entries[j-1], entries[j] = entries[j], entries[j-1]
		}
	}
}

func sortLineNumbers(entries []LineNumber) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j-1].Offset > entries[j].Offset; j-- {
			entries[j-1], entries[j] = entries[j], entries[j-1]
		}
	}
}

func sortExternalSites(entries []ExternalSite) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j-1].Offset > entries[j].Offset; j-- {
			entries[j-1], entries[j] = entries[j], entries[j-1]
		}
	}
}

// Library is a read-only collection of Modules plus a name->module-index
// dictionary used for on-demand inclusion during linking (spec.md §3.5).
type Library struct {
	Modules    []*Module
	Dictionary map[string]int
}
