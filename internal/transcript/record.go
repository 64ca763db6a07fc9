package transcript

import (
	"sort"
	"strconv"
)

// Record pairs a sentence id with its transcription text, plus optional
// per-row metadata when the source table carries those columns.
type Record struct {
	ID       string
	Text     string
	Speaker  string
	Duration float64 // seconds, 0 when the source has no duration column
}

// WAVFilename returns the recording filename for a speaker reading this
// sentence, e.g. "C_SPK01_17.wav".
func (r Record) WAVFilename(speakerID string) string {
	return speakerID + "_" + r.ID + ".wav"
}

// SortByID orders records by sentence id, comparing numerically when both
// ids are plain integers so "2" sorts before "10".
func SortByID(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, errA := strconv.Atoi(records[i].ID)
		b, errB := strconv.Atoi(records[j].ID)
		if errA == nil && errB == nil {
			return a < b
		}
		if (errA == nil) != (errB == nil) {
			return errA == nil
		}
		return records[i].ID < records[j].ID
	})
}
