// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package omf80

import "fmt"

// SplitFrames consumes data sequentially, decoding one record per
// type+length+payload+checksum block, stopping either when the stream is
// exhausted or after an END OF FILE record has been decoded (spec.md
// §4.2).
func SplitFrames(data []byte) ([]Record, error) {
	var records []Record
	i := 0
	for i < len(data) {
		if i+3 > len(data) {
			return nil, fmt.Errorf("omf80: truncated frame header at offset %d: %w", i, ErrCorruptFrame)
		}
		length := int(readUint16(data[i+1 : i+3]))
		end := i + 3 + length
		if end > len(data) {
			return nil, fmt.Errorf("omf80: truncated frame at offset %d: %w", i, ErrCorruptFrame)
		}
		rec, err := DecodeRecord(data[i:end])
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
		i = end
		if rec.Type() == RecordEndOfFile {
			break
		}
	}
	return records, nil
}

// JoinFrames is the inverse of SplitFrames: it encodes each record to its
// frame bytes and concatenates them in order.
func JoinFrames(records []Record) ([]byte, error) {
	var out []byte
	for _, rec := range records {
		frame, err := EncodeRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, frame...)
	}
	return out, nil
}

// StripEOF returns records with a single trailing END OF FILE record
// removed, if present. The module and library assemblers never need to
// see it (SPEC_FULL.md §5.3).
func StripEOF(records []Record) []Record {
	if len(records) > 0 {
		if _, ok := records[len(records)-1].(EndOfFileRecord); ok {
			return records[:len(records)-1]
		}
	}
	return records
}
