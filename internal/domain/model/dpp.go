package model

import "time"

// DateLayout is the calendar-day format used for daily records.
const DateLayout = "2006-01-02"

type RatingCount struct {
	Rating int `json:"rating"`
	Count  int `json:"count"`
}

type RatingRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type Level struct {
	Level              int           `json:"level"`
	Name               string        `json:"name"`
	Slug               string        `json:"slug"`
	RatingRange        RatingRange   `json:"rating_range"`
	MainDistribution   []RatingCount `json:"main_distribution"`
	WarmUpDistribution []RatingCount `json:"warm_up_distribution,omitempty"`
}

// Requested returns the total number of main and warm-up problems the level asks for.
func (l Level) Requested() (main, warmUp int) {
	for _, rc := range l.MainDistribution {
		main += rc.Count
	}
	for _, rc := range l.WarmUpDistribution {
		warmUp += rc.Count
	}
	return main, warmUp
}

type ReferenceSolverEntry struct {
	Handle       string `json:"handle"`
	SubmissionID int64  `json:"submission_id"`
	ContestID    int    `json:"contest_id"`
	ProblemIndex string `json:"problem_index"`
}

type ProblemWithSolvers struct {
	Problem
	SolvedByReference []ReferenceSolverEntry `json:"solved_by_reference"`
}

type GeneratedSet struct {
	MainProblems     []ProblemWithSolvers `json:"main_problems"`
	WarmUpProblems   []ProblemWithSolvers `json:"warm_up_problems"`
	Level            int                  `json:"level"`
	AlgorithmVersion string               `json:"algorithm_version"`
}

func (s GeneratedSet) Len() int {
	return len(s.MainProblems) + len(s.WarmUpProblems)
}

// DailyProblems flattens the set into unsolved record entries, main problems first.
func (s GeneratedSet) DailyProblems() []DailyProblem {
	out := make([]DailyProblem, 0, s.Len())
	for _, p := range s.MainProblems {
		out = append(out, DailyProblem{ProblemWithSolvers: p, Category: CategoryMain})
	}
	for _, p := range s.WarmUpProblems {
		out = append(out, DailyProblem{ProblemWithSolvers: p, Category: CategoryWarmUp})
	}
	return out
}

type Category string

const (
	CategoryMain   Category = "main"
	CategoryWarmUp Category = "warmup"
)

func (c Category) Valid() bool {
	return c == CategoryMain || c == CategoryWarmUp
}

type DailyProblem struct {
	ProblemWithSolvers
	Category Category `json:"category"`
	Solved   bool     `json:"solved"`
}

// DailyRecord is the persisted practice set of one user for one calendar day.
type DailyRecord struct {
	ID               string         `json:"id"`
	UserID           string         `json:"user_id"`
	Date             string         `json:"date"` // YYYY-MM-DD, user-local
	Handle           string         `json:"handle"`
	Level            int            `json:"level"`
	AlgorithmVersion string         `json:"algorithm_version"`
	Problems         []DailyProblem `json:"problems"`
	IsFullySolved    bool           `json:"is_fully_solved"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// MainProblems and WarmUpProblems split the record back into its categories.
func (r DailyRecord) MainProblems() []DailyProblem {
	return r.byCategory(CategoryMain)
}

func (r DailyRecord) WarmUpProblems() []DailyProblem {
	return r.byCategory(CategoryWarmUp)
}

func (r DailyRecord) byCategory(c Category) []DailyProblem {
	var out []DailyProblem
	for _, p := range r.Problems {
		if p.Category == c {
			out = append(out, p)
		}
	}
	return out
}

// AllSolved is the logical AND of every problem's solved flag.
// An empty list is vacuously solved.
func AllSolved(problems []DailyProblem) bool {
	for _, p := range problems {
		if !p.Solved {
			return false
		}
	}
	return true
}

type CalendarEntry struct {
	Date          string `json:"date"`
	IsFullySolved bool   `json:"is_fully_solved"`
}
