package batch

// Stats tracks aggregate counters across a batch run.
type Stats struct {
	Total        int
	Current      int
	Renamed      int
	Unchanged    int // suggestion equals the current name
	NoSuggestion int
	Failed       int
}

// Processed returns how many files were handled, whatever the outcome.
func (s *Stats) Processed() int {
	return s.Renamed + s.Unchanged + s.NoSuggestion + s.Failed
}
