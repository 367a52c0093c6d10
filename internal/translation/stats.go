package translation

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/afero"

	"codeberg.org/snonux/slotrans/internal"
)

// TimeRecord is the latency of one backend call.
type TimeRecord struct {
	Text            string  `json:"text"`
	DurationSeconds float64 `json:"durationSeconds"`
}

// TimeStats collects per phrase translation latencies. Appends are safe for
// concurrent use. A nil *TimeStats discards everything.
type TimeStats struct {
	mu      sync.Mutex
	fs      afero.Fs
	path    string
	records []TimeRecord
}

// NewTimeStats creates a collector saved to path. An empty path keeps the
// records in memory only.
func NewTimeStats(fs afero.Fs, path string) *TimeStats {
	return &TimeStats{fs: fs, path: path}
}

// Add appends a record.
func (s *TimeStats) Add(text string, d time.Duration) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, TimeRecord{Text: text, DurationSeconds: d.Seconds()})
}

// Records returns a copy of the collected records in append order.
func (s *TimeStats) Records() []TimeRecord {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TimeRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Path returns the file the records are saved to.
func (s *TimeStats) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Save overwrites the stats file with all records of this run.
func (s *TimeStats) Save() error {
	if s == nil || s.path == "" {
		return nil
	}
	records := s.Records()
	if records == nil {
		records = []TimeRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling time stats: %w", err)
	}
	return internal.WriteFileAtomic(s.fs, s.path, data)
}
