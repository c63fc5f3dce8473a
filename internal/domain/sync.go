package domain

import "time"

// SourceStats holds the outcome of reconciling one source's records.
type SourceStats struct {
	Total   int `json:"total"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Errors  int `json:"errors"`
}

// RunStats holds statistics about one orchestrated run.
type RunStats struct {
	RunID    string                  `json:"run_id"`
	Query    string                  `json:"query"`
	Sources  map[string]*SourceStats `json:"sources"`
	Duration time.Duration           `json:"duration"`
}

func (r *RunStats) Source(id string) *SourceStats {
	if r.Sources == nil {
		r.Sources = make(map[string]*SourceStats)
	}
	st, ok := r.Sources[id]
	if !ok {
		st = &SourceStats{}
		r.Sources[id] = st
	}
	return st
}

func (r *RunStats) Totals() SourceStats {
	var t SourceStats
	for _, st := range r.Sources {
		t.Total += st.Total
		t.Created += st.Created
		t.Updated += st.Updated
		t.Errors += st.Errors
	}
	return t
}
