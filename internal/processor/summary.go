package processor

import "time"

// Failure records one failed operation on one record.
type Failure struct {
	Key string // record identity (entry URL)
	Op  string // "translate" or "download"
	Err string
}

// Summary reports what a run did. Failed counts records with at least one
// failed operation; Failures holds the individual causes.
type Summary struct {
	Total      int // records in the merged document
	Translated int
	Downloaded int
	Skipped    int // records that needed nothing
	Failed     int
	Failures   []Failure
	Elapsed    time.Duration
	DryRun     bool
}

// Clean reports whether the run finished without record failures.
func (s *Summary) Clean() bool {
	return s.Failed == 0
}
