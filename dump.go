// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package omf80

import (
	"fmt"
	"io"
)

// Dump renders records as a human-readable listing, one block per
// record, in the same field-by-field layout as the original
// print.py/record_to_string (SPEC_FULL.md §5.7).
func Dump(w io.Writer, records []Record) error {
	for _, rec := range records {
		if err := dumpOne(w, rec); err != nil {
			return err
		}
	}
	return nil
}

func dumpOne(w io.Writer, rec Record) error {
	switch r := rec.(type) {
	case ModuleHeaderRecord:
		fmt.Fprintf(w, "MODULE HEADER RECORD\n\tMODULE NAME = %q\n", r.Name)
		for _, seg := range r.Segments {
			fmt.Fprintf(w, "\tSEG ID = %02x, LENGTH = %d, ALN = %d\n", seg.SegmentID, seg.Length, seg.Alignment)
		}
	case ModuleEndRecord:
		fmt.Fprintf(w, "MODULE END RECORD\n\tMOD TYP = %d\n\tSEG ID = %d\n\tOFFSET = 0x%04x\n",
			r.ModTyp, r.SegID, r.Offset)
	case ContentRecord:
		fmt.Fprintf(w, "CONTENT RECORD\n\tSEG ID = %d\n\tOFFSET = 0x%04x\n", r.SegID, r.Offset)
		dumpBytes(w, r.Data)
	case LineNumbersRecord:
		fmt.Fprintf(w, "LINE NUMBERS RECORD\n\tSEG ID = %d\n", r.SegID)
		for _, ln := range r.LineNumbers {
			fmt.Fprintf(w, "\tOFFSET = 0x%04x, LINE NUMBER = %d\n", ln.Offset, ln.Line)
		}
	case EndOfFileRecord:
		fmt.Fprintln(w, "END OF FILE RECORD")
	case ModuleAncestorRecord:
		fmt.Fprintf(w, "MODULE ANCESTOR RECORD\n\tMODULE NAME = %q\n", r.ModuleName)
	case LocalSymbolsRecord:
		fmt.Fprintf(w, "LOCAL SYMBOLS RECORD\n\tSEG ID = %d\n", r.SegID)
		for _, s := range r.Symbols {
			fmt.Fprintf(w, "\tOFFSET = 0x%04x, SYMBOL NAME = %s\n", s.Offset, s.Name)
		}
	case PublicDeclarationRecord:
		fmt.Fprintf(w, "PUBLIC DECLARATION RECORD\n\tSEG ID = %d\n", r.SegID)
		for _, p := range r.PublicNames {
			fmt.Fprintf(w, "\tOFFSET = 0x%04x, PUBLIC NAME = %s\n", p.Offset, p.Name)
		}
	case ExternalNamesRecord:
		fmt.Fprintln(w, "EXTERNAL NAMES RECORD")
		for _, name := range r.Names {
			fmt.Fprintf(w, "\tEXTERNAL NAME = %s\n", name)
		}
	case ExternalReferencesRecord:
		fmt.Fprintf(w, "EXTERNAL REFERENCES RECORD\n\tLO HI BOTH = %d\n", r.Width)
		for _, ref := range r.References {
			fmt.Fprintf(w, "\tEXTERNAL_NAME_INDEX = 0x%04x, OFFSET = 0x%04x\n", ref.NameIndex, ref.Offset)
		}
	case RelocationRecord:
		fmt.Fprintf(w, "RELOCATION RECORD\n\tLO HI BOTH = %d\n", r.Width)
		for _, off := range r.Offsets {
			fmt.Fprintf(w, "\tOFFSET = 0x%04x\n", off)
		}
	case IntersegmentReferencesRecord:
		fmt.Fprintf(w, "INTER-SEGMENT REFERENCES RECORD\n\tSEG ID = %d\n\tLO HI BOTH = %d\n", r.SegID, r.Width)
		for _, off := range r.Offsets {
			fmt.Fprintf(w, "\tOFFSET = 0x%04x\n", off)
		}
	case NamedCommonDefinitionsRecord:
		fmt.Fprintln(w, "NAMED COMMON DEFINITIONS RECORD")
		for _, cn := range r.CommonNames {
			fmt.Fprintf(w, "\tSEG ID = %d, SYMBOL NAME = %s\n", cn.SegID, cn.CommonName)
		}
	case LibraryHeaderRecord:
		fmt.Fprintf(w, "LIBRARY HEADER RECORD\n\tMODULE COUNT = %d\n\tBLOCK NUMBER = %d\n\tBYTE NUMBER = %d\n",
			r.ModuleCount, r.Block, r.Byte)
	case LibraryModuleNamesRecord:
		fmt.Fprintln(w, "LIBRARY MODULE NAMES RECORD")
		for _, name := range r.ModuleNames {
			fmt.Fprintf(w, "\t%s\n", name)
		}
	case LibraryModuleLocationsRecord:
		fmt.Fprintln(w, "LIBRARY MODULE LOCATIONS RECORD")
		for _, loc := range r.Locations {
			fmt.Fprintf(w, "\tBLOCK NUMBER = %d, BYTE NUMBER = %d\n", loc.Block, loc.Byte)
		}
	case LibraryDictionaryRecord:
		fmt.Fprintln(w, "LIBRARY DICTIONARY RECORD")
		for _, group := range r.Groups {
			fmt.Fprintf(w, "\t%v\n", group)
		}
	default:
		return fmt.Errorf("omf80: dump: unsupported record variant %T", rec)
	}
	return nil
}

func dumpBytes(w io.Writer, data []byte) {
	fmt.Fprint(w, "\tDAT = ")
	for i, b := range data {
		fmt.Fprintf(w, "%02x ", b)
		if (i+1)%16 == 0 && i+1 != len(data) {
			fmt.Fprint(w, "\n\t      ")
		}
	}
	fmt.Fprintln(w)
}
