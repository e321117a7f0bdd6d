package patscan

// Stats accumulates the outcome of one pipeline run.
type Stats struct {
	Selected   int // references inside the requested window
	Duplicates int // references dropped for repeating an earlier record key
	Skipped    int // references already satisfied by the prior dataset
	Fetched    int // references rendered successfully
	Failed     int // references degraded to stub records
	Attempts   int // render attempts across all references
	Dumps      int // claim-miss dumps written

	// Misses counts extraction misses per field.
	Misses map[string]int
}

// NewStats returns an empty Stats.
func NewStats() *Stats {
	return &Stats{Misses: make(map[string]int)}
}

// AddMisses counts the missed fields of one extraction.
func (s *Stats) AddMisses(fields []string) {
	for _, f := range fields {
		s.Misses[f]++
	}
}

// Progress reports the processing of one reference.
type Progress struct {
	Reference Reference
	Key       string
	Completed int
	Total     int
	Skipped   bool
	Error     error
}

// ProgressFunc is called as references are processed.
type ProgressFunc func(Progress)
