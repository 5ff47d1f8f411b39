// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package omf80

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
)

// LinkOptions configures Link. A nil Logger defaults to a std logger
// filtered to LevelError, matching the reference architecture's own
// Options.Logger default (file.go's New/NewBytes).
type LinkOptions struct {
	Logger log.Logger
}

func (o *LinkOptions) helper() *log.Helper {
	if o == nil || o.Logger == nil {
		return log.NewHelper(log.NewFilter(log.DefaultLogger, log.FilterLevel(log.LevelError)))
	}
	return log.NewHelper(o.Logger)
}

// Link combines the given modules and libraries into a single Module
// (spec.md §4.5). Items are processed in order: a Module directly
// contributes its publics/externals to the running symbol sets; a
// Library is scanned once for any of its dictionary entries that satisfy
// a currently-unresolved external, and the corresponding library modules
// are folded in ascending index order. Libraries are not rescanned after
// later input items are processed (SPEC_FULL.md §11: one-pass only).
func Link(items []any, opts *LinkOptions) (*Module, error) {
	helper := opts.helper()

	var modules []*Module
	public := make(map[string]bool)
	extern := make(map[string]bool)

	addPublics := func(mod *Module) {
		for _, list := range mod.PublicDeclarations {
			for _, pd := range list {
				public[pd.Name] = true
			}
		}
		for name := range extern {
			if public[name] {
				delete(extern, name)
			}
		}
	}

	for _, item := range items {
		switch v := item.(type) {
		case *Module:
			for _, name := range v.ExternalNames {
				extern[name] = true
			}
			addPublics(v)
			modules = append(modules, v)
			helper.Debugf("link: included module %q (main=%v)", v.Name, v.IsMain)

		case *Library:
			needed := make(map[string]bool)
			for name := range extern {
				if _, ok := v.Dictionary[name]; ok {
					needed[name] = true
				}
			}
			indexSet := make(map[int]bool)
			for name := range needed {
				indexSet[v.Dictionary[name]] = true
			}
			indices := make([]int, 0, len(indexSet))
			for idx := range indexSet {
				indices = append(indices, idx)
			}
			for i := 1; i < len(indices); i++ {
				for j := i; j > 0 && indices[j-1] > indices[j]; j-- {
					indices[j-1], indices[j] = indices[j], indices[j-1]
				}
			}
			for _, idx := range indices {
				mod := v.Modules[idx]
				for _, name := range mod.ExternalNames {
					extern[name] = true
				}
				addPublics(mod)
				modules = append(modules, mod)
				helper.Debugf("link: pulled module %q from library (index %d)", mod.Name, idx)
			}

		default:
			return nil, fmt.Errorf("omf80: link item is neither *Module nor *Library (%T)", item)
		}
	}

	return linkModules(modules, helper)
}

// rebase returns the link-time base offset for seg_id, per the rebase
// rule in spec.md §4.5 step 3: ABSOLUTE and MEMORY are never rebased,
// CODE gets its own running cursor, and DATA/STACK share one (a module's
// STACK content is rebased by the same amount as its DATA content).
func rebase(segID SegmentID, codeOffset, dataOffset uint16) (uint16, error) {
	switch segID {
	case SegmentAbsolute:
		return 0, nil
	case SegmentCode:
		return codeOffset, nil
	case SegmentData, SegmentStack:
		return dataOffset, nil
	case SegmentMemory:
		return 0, nil
	default:
		return 0, fmt.Errorf("omf80: segment %s: %w", segID, ErrUnknownSegment)
	}
}

// add16 adds num to the little-endian 16-bit word at data[offset:offset+2],
// wrapping modulo 2^16 (spec.md §9, "little-endian wrap on patch").
func add16(data []byte, offset int, num uint16) {
	old := readUint16(data[offset : offset+2])
	sum := old + num
	data[offset] = byte(sum)
	data[offset+1] = byte(sum >> 8)
}

// linkModules implements spec.md §4.5 Phase B (module combination) and
// Phase C (external resolution).
func linkModules(modules []*Module, helper *log.Helper) (*Module, error) {
	combined := NewModule("")

	var codeOffset, dataOffset uint16
	pub := make(map[string]struct {
		SegID SegmentID
		Value uint16
	})

	mainCount := 0
	var mainNames []string
	for _, mod := range modules {
		if mod.IsMain {
			mainCount++
			mainNames = append(mainNames, mod.Name)
		}
	}
	if mainCount > 1 {
		return nil, fmt.Errorf("omf80: modules %v: %w", mainNames, ErrDuplicateMain)
	}

	for _, mod := range modules {
		helper.Infof("link: folding module %q (code@%d data@%d)", mod.Name, codeOffset, dataOffset)

		// 1. Segments.
		for _, segID := range sortedSegmentIDs(mod.Segments) {
			desc := mod.Segments[segID]
			cd, exists := combined.Segments[segID]
			if !exists {
				cd = &SegmentDescriptor{Alignment: desc.Alignment}
				combined.Segments[segID] = cd
			}
			cd.Length += desc.Length
		}

		// 2. Main / name.
		if mod.IsMain {
			combined.IsMain = true
			combined.Name = mod.Name
		}

		// 4. Public declarations.
		for _, segID := range sortedSegmentIDs(mod.PublicDeclarations) {
			base, err := rebase(segID, codeOffset, dataOffset)
			if err != nil {
				return nil, err
			}
			for _, p := range mod.PublicDeclarations[segID] {
				offset := p.Offset + base
				combined.PublicDeclarations[segID] = append(combined.PublicDeclarations[segID],
					NamedOffset{Name: p.Name, Offset: offset})
				pub[p.Name] = struct {
					SegID SegmentID
					Value uint16
				}{SegID: segID, Value: offset}
			}
		}

		// 5. Content definitions.
		for _, cdef0 := range mod.ContentDefinitions {
			if _, ok := mod.Segments[cdef0.SegID]; !ok {
				return nil, fmt.Errorf("omf80: content in segment %s: %w", cdef0.SegID, ErrInvalidSegmentMap)
			}
			base0, err := rebase(cdef0.SegID, codeOffset, dataOffset)
			if err != nil {
				return nil, err
			}

			data1 := make([]byte, len(cdef0.Data))
			copy(data1, cdef0.Data)

			cdef1 := &ContentDef{
				SegID:  cdef0.SegID,
				Offset: cdef0.Offset + base0,
				Data:   data1,
			}

			if cdef0.Internal != nil {
				for key, offsets0 := range cdef0.Internal {
					targetBase, err := rebase(key.SegID, codeOffset, dataOffset)
					if err != nil {
						return nil, err
					}
					for _, off0 := range offsets0 {
						cdef1.addInternal(key.SegID, key.Width, off0+base0)
						add16(data1, int(off0-cdef0.Offset), targetBase)
					}
				}
			}

			if cdef0.External != nil {
				for width, sites0 := range cdef0.External {
					for _, s := range sites0 {
						if cdef1.External == nil {
							cdef1.External = make(map[Width][]ExternalSite)
						}
						cdef1.External[width] = append(cdef1.External[width],
							ExternalSite{Name: s.Name, Offset: s.Offset + base0})
					}
				}
			}

			combined.ContentDefinitions = append(combined.ContentDefinitions, cdef1)
		}

		// 6. Debug info.
		for _, block0 := range mod.DebugInfo {
			block1 := &DebugBlock{AncestorName: mod.Name}
			if block0.LineNumbers != nil {
				block1.LineNumbers = make(map[SegmentID][]LineNumber)
				for segID, lns0 := range block0.LineNumbers {
					base, err := rebase(segID, codeOffset, dataOffset)
					if err != nil {
						return nil, err
					}
					for _, ln := range lns0 {
						block1.LineNumbers[segID] = append(block1.LineNumbers[segID],
							LineNumber{Line: ln.Line, Offset: ln.Offset + base})
					}
				}
			}
			if block0.LocalSymbols != nil {
				block1.LocalSymbols = make(map[SegmentID][]LocalSymbol)
				for segID, syms0 := range block0.LocalSymbols {
					base, err := rebase(segID, codeOffset, dataOffset)
					if err != nil {
						return nil, err
					}
					for _, sym := range syms0 {
						block1.LocalSymbols[segID] = append(block1.LocalSymbols[segID],
							LocalSymbol{Name: sym.Name, Offset: sym.Offset + base})
					}
				}
			}
			combined.DebugInfo = append(combined.DebugInfo, block1)
		}

		// 7. Advance cursors.
		if codeDesc, ok := mod.Segments[SegmentCode]; ok {
			codeOffset += codeDesc.Length
		}
		if dataDesc, ok := mod.Segments[SegmentData]; ok {
			dataOffset += dataDesc.Length
		}
	}

	// Drop combined segment descriptors with length 0.
	for segID, desc := range combined.Segments {
		if desc.Length == 0 {
			delete(combined.Segments, segID)
		}
	}

	// Phase C: external resolution.
	for _, cdef := range combined.ContentDefinitions {
		for _, width := range cdef.externalWidths() {
			for _, site := range cdef.External[width] {
				resolved, ok := pub[site.Name]
				if !ok {
					helper.Errorf("link: unresolved external %q", site.Name)
					return nil, fmt.Errorf("omf80: symbol %q: %w", site.Name, ErrUnresolvedExternal)
				}
				add16(cdef.Data, int(site.Offset-cdef.Offset), resolved.Value)
				if resolved.SegID != SegmentAbsolute {
					cdef.addInternal(resolved.SegID, width, site.Offset)
				}
			}
		}
		cdef.External = nil
	}

	return combined, nil
}
