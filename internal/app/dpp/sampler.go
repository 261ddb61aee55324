package dpp

import (
	"math/rand/v2"

	"cf_buddy/internal/domain/model"
)

// Input bundles everything the sampler reads. None of it is mutated.
type Input struct {
	Level      model.Level
	Corpus     []model.Problem
	Solved     SolvedKeys
	References *ReferenceIndex
}

// Generate draws a practice set for the level. Each (rating, count) bucket
// receives min(count, eligible candidates) problems; a problem is eligible
// when its rating matches, at least one reference account solved it, the
// user has not solved it, and it was not already picked for this set.
// Main buckets are filled before warm-up buckets and both share one picked
// set. Short or empty results are valid.
func Generate(rng *rand.Rand, in Input) model.GeneratedSet {
	byRating := groupByRating(in.Corpus)
	picked := make(map[model.ProblemKey]struct{})

	set := model.GeneratedSet{
		MainProblems:     []model.ProblemWithSolvers{},
		WarmUpProblems:   []model.ProblemWithSolvers{},
		Level:            in.Level.Level,
		AlgorithmVersion: AlgorithmVersion,
	}
	for _, bucket := range in.Level.MainDistribution {
		set.MainProblems = append(set.MainProblems, pickBucket(rng, bucket, byRating, in, picked)...)
	}
	for _, bucket := range in.Level.WarmUpDistribution {
		set.WarmUpProblems = append(set.WarmUpProblems, pickBucket(rng, bucket, byRating, in, picked)...)
	}
	return set
}

func pickBucket(rng *rand.Rand, bucket model.RatingCount, byRating map[int][]model.Problem, in Input, picked map[model.ProblemKey]struct{}) []model.ProblemWithSolvers {
	if bucket.Count <= 0 {
		return nil
	}
	var candidates []model.ProblemWithSolvers
	for _, p := range byRating[bucket.Rating] {
		key := p.Key()
		if _, done := picked[key]; done || in.Solved.Has(key) {
			continue
		}
		solvers := in.References.SolversOf(key)
		if len(solvers) == 0 {
			continue
		}
		candidates = append(candidates, model.ProblemWithSolvers{Problem: p, SolvedByReference: solvers})
	}

	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	out := make([]model.ProblemWithSolvers, 0, min(bucket.Count, len(candidates)))
	for _, c := range candidates {
		if len(out) == bucket.Count {
			break
		}
		// the corpus may list a problem twice
		if _, done := picked[c.Key()]; done {
			continue
		}
		picked[c.Key()] = struct{}{}
		out = append(out, c)
	}
	return out
}

func groupByRating(corpus []model.Problem) map[int][]model.Problem {
	groups := make(map[int][]model.Problem)
	for _, p := range corpus {
		if p.Rating == nil || p.ContestID == 0 || p.Index == "" {
			continue
		}
		groups[*p.Rating] = append(groups[*p.Rating], p)
	}
	return groups
}

// NewRand returns a randomly seeded source for production use.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
