// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package omf80

import "fmt"

// EncodeRecord renders r as a complete frame: type byte, little-endian
// length, payload, and a checksum byte chosen so the frame's bytes sum to
// zero mod 256 (spec.md §4.1).
func EncodeRecord(r Record) ([]byte, error) {
	payload, err := encodePayload(r)
	if err != nil {
		return nil, err
	}

	frame := make([]byte, 0, 3+len(payload))
	frame = append(frame, byte(r.Type()))
	frame = putUint16(frame, uint16(len(payload)+1))
	frame = append(frame, payload...)
	frame = append(frame, checksum(frame))
	return frame, nil
}

func encodePayload(r Record) ([]byte, error) {
	var buf []byte
	switch rec := r.(type) {
	case ModuleHeaderRecord:
		buf = writeStr8(buf, rec.Name)
		buf = append(buf, 0, 0)
		for _, seg := range rec.Segments {
			buf = append(buf, byte(seg.SegmentID))
			buf = putUint16(buf, seg.Length)
			buf = append(buf, seg.Alignment)
		}
	case ModuleEndRecord:
		buf = append(buf, rec.ModTyp, byte(rec.SegID))
		buf = putUint16(buf, rec.Offset)
		// optional_info is always written empty: SPEC_FULL.md §11.
	case ContentRecord:
		buf = append(buf, byte(rec.SegID))
		buf = putUint16(buf, rec.Offset)
		buf = append(buf, rec.Data...)
	case LineNumbersRecord:
		buf = append(buf, byte(rec.SegID))
		for _, ln := range rec.LineNumbers {
			buf = putUint16(buf, ln.Offset)
			buf = putUint16(buf, ln.Line)
		}
	case EndOfFileRecord:
		// no payload
	case ModuleAncestorRecord:
		buf = writeStr8(buf, rec.ModuleName)
	case LocalSymbolsRecord:
		buf = append(buf, byte(rec.SegID))
		for _, sym := range rec.Symbols {
			buf = putUint16(buf, sym.Offset)
			buf = writeStr8(buf, sym.Name)
			buf = append(buf, 0)
		}
	case PublicDeclarationRecord:
		buf = append(buf, byte(rec.SegID))
		for _, pub := range rec.PublicNames {
			buf = putUint16(buf, pub.Offset)
			buf = writeStr8(buf, pub.Name)
			buf = append(buf, 0)
		}
	case ExternalNamesRecord:
		for _, name := range rec.Names {
			buf = writeStr8(buf, name)
			buf = append(buf, 0)
		}
	case ExternalReferencesRecord:
		buf = append(buf, byte(rec.Width))
		for _, ref := range rec.References {
			buf = putUint16(buf, ref.NameIndex)
			buf = putUint16(buf, ref.Offset)
		}
	case RelocationRecord:
		buf = append(buf, byte(rec.Width))
		for _, off := range rec.Offsets {
			buf = putUint16(buf, off)
		}
	case IntersegmentReferencesRecord:
		buf = append(buf, byte(rec.SegID), byte(rec.Width))
		for _, off := range rec.Offsets {
			buf = putUint16(buf, off)
		}
	case LibraryModuleLocationsRecord:
		for _, loc := range rec.Locations {
			buf = putUint16(buf, loc.Block)
			buf = putUint16(buf, loc.Byte)
		}
	case LibraryModuleNamesRecord:
		for _, name := range rec.ModuleNames {
			buf = writeStr8(buf, name)
		}
	case LibraryDictionaryRecord:
		for _, group := range rec.Groups {
			for _, name := range group {
				buf = writeStr8(buf, name)
			}
			buf = append(buf, 0)
		}
	case LibraryHeaderRecord:
		buf = putUint16(buf, rec.ModuleCount)
		buf = putUint16(buf, rec.Block)
		buf = putUint16(buf, rec.Byte)
	case NamedCommonDefinitionsRecord:
		buf = append(buf, byte(rec.SegID))
		for _, cn := range rec.CommonNames {
			buf = append(buf, byte(cn.SegID))
			buf = writeStr8(buf, cn.CommonName)
		}
	default:
		return nil, fmt.Errorf("omf80: unsupported record variant %T", r)
	}
	return buf, nil
}

// DecodeRecord decodes one complete frame (type, length, payload,
// checksum) and returns the typed Record it represents. It checks the
// frame's length and checksum before decoding the payload.
func DecodeRecord(frame []byte) (Record, error) {
	if len(frame) < 4 {
		return nil, fmt.Errorf("omf80: frame too short (%d bytes): %w", len(frame), ErrCorruptFrame)
	}
	declaredLen := int(readUint16(frame[1:3]))
	if len(frame) != 3+declaredLen {
		return nil, fmt.Errorf("omf80: frame length mismatch (declared %d, have %d bytes): %w",
			declaredLen, len(frame)-3, ErrCorruptFrame)
	}
	if !checksumOK(frame) {
		return nil, fmt.Errorf("omf80: checksum mismatch: %w", ErrCorruptFrame)
	}

	typ := RecordType(frame[0])
	payload := frame[3 : len(frame)-1]
	return decodePayload(typ, payload)
}

func decodePayload(typ RecordType, data []byte) (Record, error) {
	switch typ {
	case RecordModuleHeader:
		return decodeModuleHeader(data)
	case RecordModuleEnd:
		return decodeModuleEnd(data)
	case RecordContent:
		return decodeContent(data)
	case RecordLineNumbers:
		return decodeLineNumbers(data)
	case RecordEndOfFile:
		return EndOfFileRecord{}, nil
	case RecordModuleAncestor:
		name, _, err := readStr8(data)
		if err != nil {
			return nil, err
		}
		return ModuleAncestorRecord{ModuleName: name}, nil
	case RecordLocalSymbols:
		return decodeLocalSymbols(data)
	case RecordPublicDeclaration:
		return decodePublicDeclaration(data)
	case RecordExternalNames:
		return decodeExternalNames(data)
	case RecordExternalReferences:
		return decodeExternalReferences(data)
	case RecordRelocation:
		return decodeRelocation(data)
	case RecordIntersegmentReferences:
		return decodeIntersegmentReferences(data)
	case RecordLibraryModuleLocations:
		return decodeLibraryModuleLocations(data)
	case RecordLibraryModuleNames:
		return decodeLibraryModuleNames(data)
	case RecordLibraryDictionary:
		return decodeLibraryDictionary(data)
	case RecordLibraryHeader:
		return decodeLibraryHeader(data)
	case RecordNamedCommonDefinitions:
		return decodeNamedCommonDefinitions(data)
	default:
		return nil, fmt.Errorf("omf80: record type 0x%02x: %w", byte(typ), ErrUnknownRecordType)
	}
}

func decodeModuleHeader(data []byte) (Record, error) {
	name, n, err := readStr8(data)
	if err != nil {
		return nil, err
	}
	i := n + 2 // two zero bytes follow the name (spec.md §4.1 quirk)
	var segs []SegmentDesc
	for i < len(data) {
		if i+4 > len(data) {
			return nil, fmt.Errorf("omf80: truncated segment descriptor: %w", ErrCorruptFrame)
		}
		segs = append(segs, SegmentDesc{
			SegmentID: SegmentID(data[i]),
			Length:    readUint16(data[i+1:]),
			Alignment: data[i+3],
		})
		i += 4
	}
	return ModuleHeaderRecord{Name: name, Segments: segs}, nil
}

func decodeModuleEnd(data []byte) (Record, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("omf80: truncated MODULE END: %w", ErrCorruptFrame)
	}
	return ModuleEndRecord{
		ModTyp: data[0],
		SegID:  SegmentID(data[1]),
		Offset: readUint16(data[2:]),
		// optional_info is read as always-empty: SPEC_FULL.md §11.
	}, nil
}

func decodeContent(data []byte) (Record, error) {
	if len(data) < 3 {
		return nil, fmt.Errorf("omf80: truncated CONTENT: %w", ErrCorruptFrame)
	}
	buf := make([]byte, len(data)-3)
	copy(buf, data[3:])
	return ContentRecord{
		SegID:  SegmentID(data[0]),
		Offset: readUint16(data[1:]),
		Data:   buf,
	}, nil
}

func decodeLineNumbers(data []byte) (Record, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("omf80: truncated LINE NUMBERS: %w", ErrCorruptFrame)
	}
	segID := SegmentID(data[0])
	var entries []LineNumberEntry
	i := 1
	for i < len(data) {
		if i+4 > len(data) {
			return nil, fmt.Errorf("omf80: truncated line number entry: %w", ErrCorruptFrame)
		}
		entries = append(entries, LineNumberEntry{Offset: readUint16(data[i:]), Line: readUint16(data[i+2:])})
		i += 4
	}
	return LineNumbersRecord{SegID: segID, LineNumbers: entries}, nil
}

func decodeLocalSymbols(data []byte) (Record, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("omf80: truncated LOCAL SYMBOLS: %w", ErrCorruptFrame)
	}
	segID := SegmentID(data[0])
	var syms []NamedOffset
	i := 1
	for i < len(data) {
		if i+2 > len(data) {
			return nil, fmt.Errorf("omf80: truncated local symbol: %w", ErrCorruptFrame)
		}
		offset := readUint16(data[i:])
		name, n, err := readStr8(data[i+2:])
		if err != nil {
			return nil, err
		}
		syms = append(syms, NamedOffset{Offset: offset, Name: name})
		i += 2 + n + 1 // +1 for the trailing null byte
	}
	return LocalSymbolsRecord{SegID: segID, Symbols: syms}, nil
}

func decodePublicDeclaration(data []byte) (Record, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("omf80: truncated PUBLIC DECLARATION: %w", ErrCorruptFrame)
	}
	segID := SegmentID(data[0])
	var pubs []NamedOffset
	i := 1
	for i < len(data) {
		if i+2 > len(data) {
			return nil, fmt.Errorf("omf80: truncated public declaration: %w", ErrCorruptFrame)
		}
		offset := readUint16(data[i:])
		name, n, err := readStr8(data[i+2:])
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, NamedOffset{Offset: offset, Name: name})
		i += 2 + n + 1
	}
	return PublicDeclarationRecord{SegID: segID, PublicNames: pubs}, nil
}

func decodeExternalNames(data []byte) (Record, error) {
	var names []string
	i := 0
	for i < len(data) {
		name, n, err := readStr8(data[i:])
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		i += n + 1
	}
	return ExternalNamesRecord{Names: names}, nil
}

func decodeExternalReferences(data []byte) (Record, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("omf80: truncated EXTERNAL REFERENCES: %w", ErrCorruptFrame)
	}
	width := Width(data[0])
	var refs []ExternalReference
	i := 1
	for i < len(data) {
		if i+4 > len(data) {
			return nil, fmt.Errorf("omf80: truncated external reference: %w", ErrCorruptFrame)
		}
		refs = append(refs, ExternalReference{NameIndex: readUint16(data[i:]), Offset: readUint16(data[i+2:])})
		i += 4
	}
	return ExternalReferencesRecord{Width: width, References: refs}, nil
}

func decodeRelocation(data []byte) (Record, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("omf80: truncated RELOCATION: %w", ErrCorruptFrame)
	}
	width := Width(data[0])
	var offsets []uint16
	i := 1
	for i < len(data) {
		if i+2 > len(data) {
			return nil, fmt.Errorf("omf80: truncated relocation offset: %w", ErrCorruptFrame)
		}
		offsets = append(offsets, readUint16(data[i:]))
		i += 2
	}
	return RelocationRecord{Width: width, Offsets: offsets}, nil
}

func decodeIntersegmentReferences(data []byte) (Record, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("omf80: truncated INTERSEGMENT REFERENCES: %w", ErrCorruptFrame)
	}
	segID := SegmentID(data[0])
	width := Width(data[1])
	var offsets []uint16
	i := 2
	for i < len(data) {
		if i+2 > len(data) {
			return nil, fmt.Errorf("omf80: truncated intersegment offset: %w", ErrCorruptFrame)
		}
		offsets = append(offsets, readUint16(data[i:]))
		i += 2
	}
	return IntersegmentReferencesRecord{SegID: segID, Width: width, Offsets: offsets}, nil
}

func decodeLibraryModuleLocations(data []byte) (Record, error) {
	var locs []LibraryLocation
	i := 0
	for i < len(data) {
		if i+4 > len(data) {
			return nil, fmt.Errorf("omf80: truncated library location: %w", ErrCorruptFrame)
		}
		locs = append(locs, LibraryLocation{Block: readUint16(data[i:]), Byte: readUint16(data[i+2:])})
		i += 4
	}
	return LibraryModuleLocationsRecord{Locations: locs}, nil
}

func decodeLibraryModuleNames(data []byte) (Record, error) {
	var names []string
	i := 0
	for i < len(data) {
		name, n, err := readStr8(data[i:])
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		i += n
	}
	return LibraryModuleNamesRecord{ModuleNames: names}, nil
}

func decodeLibraryDictionary(data []byte) (Record, error) {
	var groups [][]string
	i := 0
	for i < len(data) {
		var group []string
		for {
			if i >= len(data) {
				return nil, fmt.Errorf("omf80: dictionary group: %w", ErrBadLibraryDictionary)
			}
			if data[i] == 0 {
				i++
				break
			}
			name, n, err := readStr8(data[i:])
			if err != nil {
				return nil, err
			}
			group = append(group, name)
			i += n
		}
		groups = append(groups, group)
	}
	return LibraryDictionaryRecord{Groups: groups}, nil
}

func decodeLibraryHeader(data []byte) (Record, error) {
	if len(data) < 6 {
		return nil, fmt.Errorf("omf80: truncated LIBRARY HEADER: %w", ErrCorruptFrame)
	}
	return LibraryHeaderRecord{
		ModuleCount: readUint16(data[0:]),
		Block:       readUint16(data[2:]),
		Byte:        readUint16(data[4:]),
	}, nil
}

func decodeNamedCommonDefinitions(data []byte) (Record, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("omf80: truncated NAMED COMMON DEFINITIONS: %w", ErrCorruptFrame)
	}
	segID := SegmentID(data[0])
	var cns []CommonName
	i := 1
	for i < len(data) {
		cnSeg := SegmentID(data[i])
		name, n, err := readStr8(data[i+1:])
		if err != nil {
			return nil, err
		}
		cns = append(cns, CommonName{SegID: cnSeg, CommonName: name})
		i += 1 + n
	}
	return NamedCommonDefinitionsRecord{SegID: segID, CommonNames: cns}, nil
}
