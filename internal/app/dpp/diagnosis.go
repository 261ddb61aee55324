package dpp

import (
	"fmt"

	"cf_buddy/internal/domain/model"
)

type Outcome string

const (
	OutcomeComplete            Outcome = "complete"
	OutcomeShortfall           Outcome = "shortfall"
	OutcomeNoMatches           Outcome = "no_matches"
	OutcomeReferenceIncomplete Outcome = "reference_incomplete"
)

const (
	msgNoMatches           = "Could not find problems matching the criteria (rating, solved by a reference account, unsolved by you). Try a different level or check back later."
	msgReferenceIncomplete = "Reference-solver data could not be fully loaded, so fewer problems qualified. Try again in a few minutes."
)

type Shortfall struct {
	Category  model.Category `json:"category"`
	Rating    int            `json:"rating"`
	Requested int            `json:"requested"`
	Picked    int            `json:"picked"`
}

// Diagnosis explains a generated set to the user. Partial and empty sets
// are reported here rather than returned as errors.
type Diagnosis struct {
	Outcome    Outcome     `json:"outcome"`
	Message    string      `json:"message,omitempty"`
	Requested  int         `json:"requested"`
	Picked     int         `json:"picked"`
	Shortfalls []Shortfall `json:"shortfalls,omitempty"`
}

func Diagnose(level model.Level, set model.GeneratedSet, refs *ReferenceIndex) Diagnosis {
	d := Diagnosis{Picked: set.Len()}
	d.Shortfalls = append(d.Shortfalls, shortfalls(model.CategoryMain, level.MainDistribution, set.MainProblems)...)
	d.Shortfalls = append(d.Shortfalls, shortfalls(model.CategoryWarmUp, level.WarmUpDistribution, set.WarmUpProblems)...)
	main, warmUp := level.Requested()
	d.Requested = main + warmUp

	switch {
	case len(d.Shortfalls) == 0:
		d.Outcome = OutcomeComplete
	case refs.Degraded():
		d.Outcome = OutcomeReferenceIncomplete
		d.Message = msgReferenceIncomplete
	case d.Picked == 0:
		d.Outcome = OutcomeNoMatches
		d.Message = msgNoMatches
	default:
		d.Outcome = OutcomeShortfall
		d.Message = fmt.Sprintf("Only %d of %d problems matched the criteria for %s.", d.Picked, d.Requested, level.Name)
	}
	return d
}

func shortfalls(cat model.Category, dist []model.RatingCount, picks []model.ProblemWithSolvers) []Shortfall {
	got := make(map[int]int)
	for _, p := range picks {
		if p.Rating != nil {
			got[*p.Rating]++
		}
	}
	var out []Shortfall
	for _, b := range dist {
		if got[b.Rating] < b.Count {
			out = append(out, Shortfall{Category: cat, Rating: b.Rating, Requested: b.Count, Picked: got[b.Rating]})
		}
	}
	return out
}
