package model

import "time"

type Verdict string

const (
	VerdictOK                  Verdict = "OK"
	VerdictWrongAnswer         Verdict = "WRONG_ANSWER"
	VerdictTimeLimitExceeded   Verdict = "TIME_LIMIT_EXCEEDED"
	VerdictMemoryLimitExceeded Verdict = "MEMORY_LIMIT_EXCEEDED"
	VerdictRuntimeError        Verdict = "RUNTIME_ERROR"
	VerdictCompilationError    Verdict = "COMPILATION_ERROR"
	VerdictTesting             Verdict = "TESTING"
)

// Submission is one judged attempt from a user's history.
type Submission struct {
	ID        int64     `json:"id"`
	Problem   Problem   `json:"problem"`
	Verdict   Verdict   `json:"verdict"`
	CreatedAt time.Time `json:"created_at"`
}

func (s Submission) Accepted() bool {
	return s.Verdict == VerdictOK
}
