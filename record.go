// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package omf80

// RecordType identifies one of the 17 OMF-80 record variants on the wire.
type RecordType byte

// The 17 supported OMF-80 record types (spec.md §6.1).
const (
	RecordModuleHeader           RecordType = 0x02
	RecordModuleEnd              RecordType = 0x04
	RecordContent                RecordType = 0x06
	RecordLineNumbers            RecordType = 0x08
	RecordEndOfFile              RecordType = 0x0e
	RecordModuleAncestor         RecordType = 0x10
	RecordLocalSymbols           RecordType = 0x12
	RecordPublicDeclaration      RecordType = 0x16
	RecordExternalNames          RecordType = 0x18
	RecordExternalReferences     RecordType = 0x20
	RecordRelocation             RecordType = 0x22
	RecordIntersegmentReferences RecordType = 0x24
	RecordLibraryModuleLocations RecordType = 0x26
	RecordLibraryModuleNames     RecordType = 0x28
	RecordLibraryDictionary      RecordType = 0x2a
	RecordLibraryHeader          RecordType = 0x2c
	RecordNamedCommonDefinitions RecordType = 0x2e
)

// String names a record type the way the original print.py/record_to_string
// did, for use by the dump front-end and in error messages.
func (t RecordType) String() string {
	switch t {
	case RecordModuleHeader:
		return "MODULE HEADER"
	case RecordModuleEnd:
		return "MODULE END"
	case RecordContent:
		return "CONTENT"
	case RecordLineNumbers:
		return "LINE NUMBERS"
	case RecordEndOfFile:
		return "END OF FILE"
	case RecordModuleAncestor:
		return "MODULE ANCESTOR"
	case RecordLocalSymbols:
		return "LOCAL SYMBOLS"
	case RecordPublicDeclaration:
		return "PUBLIC DECLARATION"
	case RecordExternalNames:
		return "EXTERNAL NAMES"
	case RecordExternalReferences:
		return "EXTERNAL REFERENCES"
	case RecordRelocation:
		return "RELOCATION"
	case RecordIntersegmentReferences:
		return "INTERSEGMENT REFERENCES"
	case RecordLibraryModuleLocations:
		return "LIBRARY MODULE LOCATIONS"
	case RecordLibraryModuleNames:
		return "LIBRARY MODULE NAMES"
	case RecordLibraryDictionary:
		return "LIBRARY DICTIONARY"
	case RecordLibraryHeader:
		return "LIBRARY HEADER"
	case RecordNamedCommonDefinitions:
		return "NAMED COMMON DEFINITIONS"
	default:
		return "UNKNOWN"
	}
}

// Width selects which bytes of a 16-bit patch site a relocation or
// external reference touches: the low byte, the high byte, or both. The
// source format's reference implementation never actually consults this
// field when patching (see SPEC_FULL.md §11) — it is retained here purely
// for wire round-trip fidelity.
type Width byte

// Width values, per spec.md §3.3.
const (
	WidthLow  Width = 1
	WidthHigh Width = 2
	WidthBoth Width = 3
)

// Record is implemented by every one of the 17 record structs. Type
// reports which of the RecordXxx constants the value encodes as.
type Record interface {
	Type() RecordType
}

// SegmentDesc describes one segment as carried in a MODULE HEADER record.
type SegmentDesc struct {
	SegmentID SegmentID
	Length    uint16
	Alignment uint8
}

// ModuleHeaderRecord is record type 0x02.
type ModuleHeaderRecord struct {
	Name     string
	Segments []SegmentDesc
}

func (ModuleHeaderRecord) Type() RecordType { return RecordModuleHeader }

// ModuleEndRecord is record type 0x04. ModTyp is 1 for a main module, 0
// otherwise. SegID/Offset are accepted on decode but unused (spec.md
// §4.3); OptionalInfo is always empty on encode (SPEC_FULL.md §11).
type ModuleEndRecord struct {
	ModTyp       byte
	SegID        SegmentID
	Offset       uint16
	OptionalInfo []byte
}

func (ModuleEndRecord) Type() RecordType { return RecordModuleEnd }

// ContentRecord is record type 0x06.
type ContentRecord struct {
	SegID  SegmentID
	Offset uint16
	Data   []byte
}

func (ContentRecord) Type() RecordType { return RecordContent }

// LineNumberEntry is one {offset, line} pair in a LINE NUMBERS record.
type LineNumberEntry struct {
	Offset uint16
	Line   uint16
}

// LineNumbersRecord is record type 0x08.
type LineNumbersRecord struct {
	SegID       SegmentID
	LineNumbers []LineNumberEntry
}

func (LineNumbersRecord) Type() RecordType { return RecordLineNumbers }

// EndOfFileRecord is record type 0x0e. It carries no payload.
type EndOfFileRecord struct{}

func (EndOfFileRecord) Type() RecordType { return RecordEndOfFile }

// ModuleAncestorRecord is record type 0x10.
type ModuleAncestorRecord struct {
	ModuleName string
}

func (ModuleAncestorRecord) Type() RecordType { return RecordModuleAncestor }

// NamedOffset is an {offset, name} pair, the shape shared by LOCAL
// SYMBOLS and PUBLIC DECLARATION entries.
type NamedOffset struct {
	Offset uint16
	Name   string
}

// LocalSymbolsRecord is record type 0x12.
type LocalSymbolsRecord struct {
	SegID   SegmentID
	Symbols []NamedOffset
}

func (LocalSymbolsRecord) Type() RecordType { return RecordLocalSymbols }

// PublicDeclarationRecord is record type 0x16.
type PublicDeclarationRecord struct {
	SegID       SegmentID
	PublicNames []NamedOffset
}

func (PublicDeclarationRecord) Type() RecordType { return RecordPublicDeclaration }

// ExternalNamesRecord is record type 0x18. Position in Names is the
// external-name index referenced by EXTERNAL REFERENCES records.
type ExternalNamesRecord struct {
	Names []string
}

func (ExternalNamesRecord) Type() RecordType { return RecordExternalNames }

// ExternalReference is one {name index, offset} site in an EXTERNAL
// REFERENCES record.
type ExternalReference struct {
	NameIndex uint16
	Offset    uint16
}

// ExternalReferencesRecord is record type 0x20.
type ExternalReferencesRecord struct {
	Width      Width
	References []ExternalReference
}

func (ExternalReferencesRecord) Type() RecordType { return RecordExternalReferences }

// RelocationRecord is record type 0x22. Its target segment is implicit:
// the ContentDef it attaches to (spec.md §4.3).
type RelocationRecord struct {
	Width   Width
	Offsets []uint16
}

func (RelocationRecord) Type() RecordType { return RecordRelocation }

// IntersegmentReferencesRecord is record type 0x24.
type IntersegmentReferencesRecord struct {
	SegID   SegmentID
	Width   Width
	Offsets []uint16
}

func (IntersegmentReferencesRecord) Type() RecordType { return RecordIntersegmentReferences }

// LibraryLocation is one {block, byte} pair in a LIBRARY MODULE LOCATIONS
// record.
type LibraryLocation struct {
	Block uint16
	Byte  uint16
}

// LibraryModuleLocationsRecord is record type 0x26. Discarded on read
// (spec.md §4.4); never emitted.
type LibraryModuleLocationsRecord struct {
	Locations []LibraryLocation
}

func (LibraryModuleLocationsRecord) Type() RecordType { return RecordLibraryModuleLocations }

// LibraryModuleNamesRecord is record type 0x28. Discarded on read; never
// emitted.
type LibraryModuleNamesRecord struct {
	ModuleNames []string
}

func (LibraryModuleNamesRecord) Type() RecordType { return RecordLibraryModuleNames }

// LibraryDictionaryRecord is record type 0x2a: groups of public names,
// each group terminated by a null byte, group index == module index.
type LibraryDictionaryRecord struct {
	Groups [][]string
}

func (LibraryDictionaryRecord) Type() RecordType { return RecordLibraryDictionary }

// LibraryHeaderRecord is record type 0x2c. Discarded on read; never
// emitted.
type LibraryHeaderRecord struct {
	ModuleCount uint16
	Block       uint16
	Byte        uint16
}

func (LibraryHeaderRecord) Type() RecordType { return RecordLibraryHeader }

// CommonName is one {seg_id, common_name} pair.
type CommonName struct {
	SegID      SegmentID
	CommonName string
}

// NamedCommonDefinitionsRecord is record type 0x2e.
type NamedCommonDefinitionsRecord struct {
	SegID       SegmentID
	CommonNames []CommonName
}

func (NamedCommonDefinitionsRecord) Type() RecordType { return RecordNamedCommonDefinitions }
