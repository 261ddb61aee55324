package dpp

import (
	"sort"

	"cf_buddy/internal/domain/model"
)

// ReferenceIndex maps a problem to the reference accounts known to have solved it.
// It is JSON-serialisable so it can be kept in the snapshot cache.
type ReferenceIndex struct {
	Solvers map[model.ProblemKey][]model.ReferenceSolverEntry `json:"solvers"`
	Loaded  []string                                          `json:"loaded"`
	Failed  []string                                          `json:"failed"`
}

func NewReferenceIndex() *ReferenceIndex {
	return &ReferenceIndex{Solvers: make(map[model.ProblemKey][]model.ReferenceSolverEntry)}
}

// Add records the accepted submissions of one reference account. Each
// (account, problem) pair is kept once, first occurrence wins.
func (ix *ReferenceIndex) Add(handle string, subs []model.Submission) {
	for _, s := range subs {
		if !s.Accepted() || s.Problem.ContestID == 0 || s.Problem.Index == "" {
			continue
		}
		key := s.Problem.Key()
		entries := ix.Solvers[key]
		if containsHandle(entries, handle) {
			continue
		}
		ix.Solvers[key] = append(entries, model.ReferenceSolverEntry{
			Handle:       handle,
			SubmissionID: s.ID,
			ContestID:    s.Problem.ContestID,
			ProblemIndex: s.Problem.Index,
		})
	}
	ix.Loaded = append(ix.Loaded, handle)
}

// MarkFailed records a reference account whose history could not be loaded.
func (ix *ReferenceIndex) MarkFailed(handle string) {
	ix.Failed = append(ix.Failed, handle)
}

func (ix *ReferenceIndex) SolversOf(k model.ProblemKey) []model.ReferenceSolverEntry {
	if ix == nil {
		return nil
	}
	return ix.Solvers[k]
}

func (ix *ReferenceIndex) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.Solvers)
}

// Degraded reports whether the index is missing data from at least one
// reference account, or holds nothing at all.
func (ix *ReferenceIndex) Degraded() bool {
	return ix == nil || len(ix.Failed) > 0 || len(ix.Solvers) == 0
}

// Normalize sorts the account lists so indexes built concurrently compare equal.
func (ix *ReferenceIndex) Normalize() {
	sort.Strings(ix.Loaded)
	sort.Strings(ix.Failed)
}

func containsHandle(entries []model.ReferenceSolverEntry, handle string) bool {
	for _, e := range entries {
		if e.Handle == handle {
			return true
		}
	}
	return false
}
