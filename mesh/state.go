package mesh

import (
	"sync"
)

// LayoutSnapshot is a layout plus one sample assignment, kept for rendering
type LayoutSnapshot struct {
	Label     string     `json:"label"`
	Segments  []Segment  `json:"segments,omitempty"`
	Points    []Point    `json:"points"`
	Sample    Assignment `json:"sample,omitempty"`
	Colors    int        `json:"colors"`
	MinRadius float64    `json:"minRadius"`
}

// StateTracker holds the latest run results and layouts for HTTP endpoints
type StateTracker struct {
	mu      sync.RWMutex
	results map[string]*RunResult
	layouts map[string]*LayoutSnapshot
}

// NewStateTracker creates a new state tracker
func NewStateTracker() *StateTracker {
	return &StateTracker{
		results: make(map[string]*RunResult),
		layouts: make(map[string]*LayoutSnapshot),
	}
}

// UpdateResult stores the latest result for its label
func (st *StateTracker) UpdateResult(r *RunResult) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.results[r.Label] = r
}

// GetResult returns the latest result for a label
func (st *StateTracker) GetResult(label string) (*RunResult, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	r, ok := st.results[label]
	return r, ok
}

// GetResults returns all results ordered by label
func (st *StateTracker) GetResults() []*RunResult {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return SortedResults(st.results)
}

// HasResults returns true if at least one run has completed
func (st *StateTracker) HasResults() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.results) > 0
}

// UpdateLayout stores a layout snapshot
func (st *StateTracker) UpdateLayout(l *LayoutSnapshot) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.layouts[l.Label] = l
}

// GetLayout returns the layout snapshot for a label
func (st *StateTracker) GetLayout(label string) (*LayoutSnapshot, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	l, ok := st.layouts[label]
	return l, ok
}
