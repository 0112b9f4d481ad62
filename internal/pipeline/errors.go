package pipeline

import (
	"encoding/json"
	"fmt"
)

// Stage names used in errors and logs.
const (
	StageCollect   = "collect"
	StageRelevance = "relevance"
	StageDedup     = "dedup"
	StageClassify  = "classify"
	StageSummarize = "summarize"
)

// StageError aborts a run: a batch-level provider call failed and no safe
// subset of posts exists.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// ItemError records one post dropped during classify or summarize. The run
// continues without it.
type ItemError struct {
	Index int
	URL   string
	Stage string
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d (%s) %s: %v", e.Index, e.URL, e.Stage, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// MarshalJSON renders the item error with its cause as a string.
func (e *ItemError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Index int    `json:"index"`
		URL   string `json:"url"`
		Stage string `json:"stage"`
		Error string `json:"error"`
	}{e.Index, e.URL, e.Stage, e.Err.Error()})
}

// PersistError means the repository rejected a write. The run fails even
// when a draft was computed.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// SourceFailure is a crawl that returned an error. It is reported, not
// propagated.
type SourceFailure struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}
