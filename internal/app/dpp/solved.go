package dpp

import "cf_buddy/internal/domain/model"

// SolvedKeys is the set of problems a user has at least one accepted submission for.
type SolvedKeys map[model.ProblemKey]struct{}

func SolvedFrom(subs []model.Submission) SolvedKeys {
	keys := make(SolvedKeys)
	for _, s := range subs {
		if !s.Accepted() || s.Problem.ContestID == 0 || s.Problem.Index == "" {
			continue
		}
		keys[s.Problem.Key()] = struct{}{}
	}
	return keys
}

func (s SolvedKeys) Has(k model.ProblemKey) bool {
	_, ok := s[k]
	return ok
}
