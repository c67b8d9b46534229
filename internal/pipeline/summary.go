package pipeline

import (
	"errors"
	"fmt"

	"github.com/AnyUserName/imgsync/internal/profile"
)

// ErrEntriesFailed is returned by callers that turn a Summary with failures
// into a process exit status.
var ErrEntriesFailed = errors.New("one or more entries failed")

// Status is the outcome of one catalog entry.
type Status int

const (
	Planned Status = iota
	Processed
	Skipped
	Failed
)

func (s Status) String() string {
	switch s {
	case Planned:
		return "planned"
	case Processed:
		return "processed"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Record is the per-entry outcome of a run.
type Record struct {
	Key    string
	Source string       // catalog value before the run
	Path   string       // output path relative to the images root
	Size   profile.Size // target size
	Status Status
	Value  string // catalog value after the run
	Reason string // set when Status is Failed
	Bytes  int
	Hash   string
}

// Failure pairs a key with the reason it failed.
type Failure struct {
	Key    string
	Reason string
}

// Summary is the reported result of a run.
type Summary struct {
	DryRun    bool
	Processed int
	Skipped   int
	Failed    int
	Failures  []Failure
	Records   []Record
	Persisted bool // the catalog file was rewritten
}

// OK reports whether no entry failed.
func (s *Summary) OK() bool { return s.Failed == 0 }

// Total is the number of entries seen.
func (s *Summary) Total() int { return len(s.Records) }

func (s *Summary) record(r Record) {
	switch r.Status {
	case Processed:
		s.Processed++
	case Skipped:
		s.Skipped++
	case Failed:
		s.Failed++
		s.Failures = append(s.Failures, Failure{Key: r.Key, Reason: r.Reason})
	}
	s.Records = append(s.Records, r)
}
