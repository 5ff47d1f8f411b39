// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package omf80

import "fmt"

// IsModule reports whether records begins with a MODULE HEADER record.
func IsModule(records []Record) bool {
	return len(records) > 0 && records[0].Type() == RecordModuleHeader
}

// IsLibrary reports whether records begins with a LIBRARY HEADER record.
func IsLibrary(records []Record) bool {
	return len(records) > 0 && records[0].Type() == RecordLibraryHeader
}

// RecordsToModule folds a record sequence starting with MODULE HEADER and
// ending with MODULE END into a Module (spec.md §4.3).
func RecordsToModule(records []Record) (*Module, error) {
	if len(records) == 0 || records[0].Type() != RecordModuleHeader {
		return nil, fmt.Errorf("omf80: first record is not MODULE HEADER: %w", ErrBadInput)
	}
	if records[len(records)-1].Type() != RecordModuleEnd {
		return nil, fmt.Errorf("omf80: last record is not MODULE END: %w", ErrBadInput)
	}

	module := &Module{
		Segments:           make(map[SegmentID]*SegmentDescriptor),
		PublicDeclarations: make(map[SegmentID][]NamedOffset),
	}
	var current *ContentDef

	for _, rec := range records {
		switch r := rec.(type) {
		case ModuleHeaderRecord:
			module.Name = r.Name
			for _, seg := range r.Segments {
				desc := SegmentDescriptor{Length: seg.Length, Alignment: seg.Alignment}
				module.Segments[seg.SegmentID] = &desc
			}

		case ModuleEndRecord:
			module.IsMain = r.ModTyp == 1

		case NamedCommonDefinitionsRecord:
			for _, cn := range r.CommonNames {
				module.CommonNames = append(module.CommonNames, CommonDecl{SegID: cn.SegID, CommonName: cn.CommonName})
			}

		case ExternalNamesRecord:
			module.ExternalNames = append(module.ExternalNames, r.Names...)

		case PublicDeclarationRecord:
			list := module.PublicDeclarations[r.SegID]
			list = append(list, r.PublicNames...)
			sortNamedOffsets(list)
			module.PublicDeclarations[r.SegID] = list

		case ModuleAncestorRecord:
			module.DebugInfo = append(module.DebugInfo, &DebugBlock{AncestorName: r.ModuleName})

		case LocalSymbolsRecord:
			block := currentDebugBlock(module)
			if block.LocalSymbols == nil {
				block.LocalSymbols = make(map[SegmentID][]LocalSymbol)
			}
			list := block.LocalSymbols[r.SegID]
			for _, sym := range r.Symbols {
				list = append(list, LocalSymbol{Offset: sym.Offset, Name: sym.Name})
			}
			sortLocalSymbols(list)
			block.LocalSymbols[r.SegID] = list

		case LineNumbersRecord:
			block := currentDebugBlock(module)
			if block.LineNumbers == nil {
				block.LineNumbers = make(map[SegmentID][]LineNumber)
			}
			list := block.LineNumbers[r.SegID]
			for _, ln := range r.LineNumbers {
				list = append(list, LineNumber{Offset: ln.Offset, Line: ln.Line})
			}
			sortLineNumbers(list)
			block.LineNumbers[r.SegID] = list

		case ContentRecord:
			current = &ContentDef{SegID: r.SegID, Offset: r.Offset, Data: r.Data}
			module.ContentDefinitions = append(module.ContentDefinitions, current)

		case RelocationRecord:
			if current == nil {
				return nil, fmt.Errorf("omf80: RELOCATION record with no open CONTENT: %w", ErrBadInput)
			}
			for _, off := range r.Offsets {
				current.addInternal(current.SegID, r.Width, off)
			}

		case IntersegmentReferencesRecord:
			if current == nil {
				return nil, fmt.Errorf("omf80: INTERSEGMENT REFERENCES record with no open CONTENT: %w", ErrBadInput)
			}
			for _, off := range r.Offsets {
				current.addInternal(r.SegID, r.Width, off)
			}

		case ExternalReferencesRecord:
			if current == nil {
				return nil, fmt.Errorf("omf80: EXTERNAL REFERENCES record with no open CONTENT: %w", ErrBadInput)
			}
			if current.External == nil {
				current.External = make(map[Width][]ExternalSite)
			}
			for _, ref := range r.References {
				if int(ref.NameIndex) >= len(module.ExternalNames) {
					return nil, fmt.Errorf("omf80: external name index %d out of range", ref.NameIndex)
				}
				name := module.ExternalNames[ref.NameIndex]
				current.External[r.Width] = append(current.External[r.Width], ExternalSite{Name: name, Offset: ref.Offset})
			}
			sortExternalSites(current.External[r.Width])

		case EndOfFileRecord:
			// ignored here; a trailing one fails the MODULE END check above,
			// so callers remove it with StripEOF first.

		default:
			return nil, fmt.Errorf("omf80: unexpected record type %s while assembling module", rec.Type())
		}
	}
	return module, nil
}

// currentDebugBlock returns the most recently opened DebugBlock, creating
// an implicit empty one if none has been opened yet (spec.md §4.3).
func currentDebugBlock(module *Module) *DebugBlock {
	if len(module.DebugInfo) == 0 {
		module.DebugInfo = append(module.DebugInfo, &DebugBlock{})
	}
	return module.DebugInfo[len(module.DebugInfo)-1]
}

// ModuleToRecords is the inverse of RecordsToModule (spec.md §4.3).
func ModuleToRecords(module *Module) []Record {
	var records []Record

	segIDs := sortedSegmentIDs(module.Segments)
	segs := make([]SegmentDesc, 0, len(segIDs))
	for _, id := range segIDs {
		d := module.Segments[id]
		segs = append(segs, SegmentDesc{SegmentID: id, Length: d.Length, Alignment: d.Alignment})
	}
	records = append(records, ModuleHeaderRecord{Name: module.Name, Segments: segs})

	if len(module.CommonNames) > 0 {
		bySeg := make(map[SegmentID][]CommonName)
		var segOrder []SegmentID
		for _, cn := range module.CommonNames {
			if _, seen := bySeg[cn.SegID]; !seen {
				segOrder = append(segOrder, cn.SegID)
			}
			bySeg[cn.SegID] = append(bySeg[cn.SegID], CommonName{SegID: cn.SegID, CommonName: cn.CommonName})
		}
		for _, segID := range segOrder {
			records = append(records, NamedCommonDefinitionsRecord{SegID: segID, CommonNames: bySeg[segID]})
		}
	}

	if len(module.ExternalNames) > 0 {
		records = append(records, ExternalNamesRecord{Names: module.ExternalNames})
	}

	for _, segID := range sortedSegmentIDs(module.PublicDeclarations) {
		pubs := module.PublicDeclarations[segID]
		if len(pubs) == 0 {
			continue
		}
		records = append(records, PublicDeclarationRecord{SegID: segID, PublicNames: pubs})
	}

	for _, block := range module.DebugInfo {
		if block.AncestorName != "" {
			records = append(records, ModuleAncestorRecord{ModuleName: block.AncestorName})
		}
		for _, segID := range sortedSegmentIDs(block.LocalSymbols) {
			syms := block.LocalSymbols[segID]
			if len(syms) == 0 {
				continue
			}
			entries := make([]NamedOffset, 0, len(syms))
			for _, s := range syms {
				entries = append(entries, NamedOffset{Offset: s.Offset, Name: s.Name})
			}
			records = append(records, LocalSymbolsRecord{SegID: segID, Symbols: entries})
		}
		for _, segID := range sortedSegmentIDs(block.LineNumbers) {
			lns := block.LineNumbers[segID]
			if len(lns) == 0 {
				continue
			}
			entries := make([]LineNumberEntry, 0, len(lns))
			for _, l := range lns {
				entries = append(entries, LineNumberEntry{Offset: l.Offset, Line: l.Line})
			}
			records = append(records, LineNumbersRecord{SegID: segID, LineNumbers: entries})
		}
	}

	exIndex := make(map[string]uint16, len(module.ExternalNames))
	for i, name := range module.ExternalNames {
		exIndex[name] = uint16(i)
	}

	for _, cdef := range module.ContentDefinitions {
		records = append(records, ContentRecord{SegID: cdef.SegID, Offset: cdef.Offset, Data: cdef.Data})

		for _, key := range cdef.internalKeys() {
			offsets := cdef.Internal[key]
			if len(offsets) == 0 {
				continue
			}
			records = append(records, IntersegmentReferencesRecord{SegID: key.SegID, Width: key.Width, Offsets: offsets})
		}

		for _, width := range cdef.externalWidths() {
			sites := cdef.External[width]
			if len(sites) == 0 {
				continue
			}
			refs := make([]ExternalReference, 0, len(sites))
			for _, s := range sites {
				refs = append(refs, ExternalReference{NameIndex: exIndex[s.Name], Offset: s.Offset})
			}
			records = append(records, ExternalReferencesRecord{Width: width, References: refs})
		}
	}

	modTyp := byte(0)
	if module.IsMain {
		modTyp = 1
	}
	records = append(records, ModuleEndRecord{ModTyp: modTyp, SegID: SegmentCode, Offset: 0})

	return records
}

// RecordsToLibrary scans records for a LIBRARY DICTIONARY (building the
// name->module-index map) and the interleaved MODULE HEADER...MODULE END
// record runs (each folded into a Module). LIBRARY HEADER, LIBRARY MODULE
// NAMES, and LIBRARY MODULE LOCATIONS are not required to reconstruct the
// logical library and are discarded (spec.md §4.4).
func RecordsToLibrary(records []Record) (*Library, error) {
	lib := &Library{Dictionary: make(map[string]int)}
	var moduleRecords []Record

	for _, rec := range records {
		switch r := rec.(type) {
		case LibraryHeaderRecord, LibraryModuleNamesRecord, LibraryModuleLocationsRecord:
			// discarded: not needed to reconstruct the logical library.
		case LibraryDictionaryRecord:
			for i, group := range r.Groups {
				for _, name := range group {
					lib.Dictionary[name] = i
				}
			}
		default:
			if rec.Type() == RecordModuleHeader {
				moduleRecords = nil
			}
			moduleRecords = append(moduleRecords, rec)
			if rec.Type() == RecordModuleEnd {
				mod, err := RecordsToModule(moduleRecords)
				if err != nil {
					return nil, err
				}
				lib.Modules = append(lib.Modules, mod)
			}
		}
	}
	return lib, nil
}

// ReadRecords converts a record sequence (with any trailing END OF FILE
// already stripped) into either a *Module or a *Library.
func ReadRecords(records []Record) (any, error) {
	switch {
	case IsModule(records):
		return RecordsToModule(records)
	case IsLibrary(records):
		return RecordsToLibrary(records)
	default:
		return nil, ErrBadInput
	}
}
