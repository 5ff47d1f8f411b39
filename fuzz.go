package omf80

// Fuzz exercises the frame splitter and record codec against arbitrary
// input, for use with github.com/dvyukov/go-fuzz.
func Fuzz(data []byte) int {
	records, err := SplitFrames(data)
	if err != nil {
		return 0
	}
	if len(records) == 0 {
		return 0
	}
	if _, err := ReadRecords(StripEOF(records)); err != nil {
		return 0
	}
	return 1
}
