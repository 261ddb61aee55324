package dpp

import "cf_buddy/internal/domain/model"

type StaleReason string

const (
	Fresh                   StaleReason = ""
	StaleVersionMismatch    StaleReason = "version_mismatch"
	StaleMissingSolverField StaleReason = "missing_reference_solvers"
)

// Guard decides whether a previously generated set can still be trusted.
// A stale set is never repaired; callers must ask for regeneration.
type Guard struct {
	Version string
}

func NewGuard() Guard {
	return Guard{Version: AlgorithmVersion}
}

func (g Guard) CheckSet(set model.GeneratedSet) StaleReason {
	var first *model.ProblemWithSolvers
	switch {
	case len(set.MainProblems) > 0:
		first = &set.MainProblems[0]
	case len(set.WarmUpProblems) > 0:
		first = &set.WarmUpProblems[0]
	}
	return g.check(set.AlgorithmVersion, first)
}

func (g Guard) CheckRecord(rec model.DailyRecord) StaleReason {
	var first *model.ProblemWithSolvers
	if main := rec.MainProblems(); len(main) > 0 {
		first = &main[0].ProblemWithSolvers
	} else if warm := rec.WarmUpProblems(); len(warm) > 0 {
		first = &warm[0].ProblemWithSolvers
	}
	return g.check(rec.AlgorithmVersion, first)
}

func (g Guard) check(version string, first *model.ProblemWithSolvers) StaleReason {
	if version != g.Version {
		return StaleVersionMismatch
	}
	if first != nil && len(first.SolvedByReference) == 0 {
		return StaleMissingSolverField
	}
	return Fresh
}
