package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ProblemKey identifies a problem by contest and index, e.g. "1850-A".
type ProblemKey struct {
	ContestID int
	Index     string
}

func (k ProblemKey) String() string {
	return fmt.Sprintf("%d-%s", k.ContestID, k.Index)
}

func (k ProblemKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ProblemKey) UnmarshalText(text []byte) error {
	parsed, err := ParseProblemKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseProblemKey parses the "contestId-index" form produced by String.
func ParseProblemKey(s string) (ProblemKey, error) {
	contest, index, ok := strings.Cut(s, "-")
	if !ok || index == "" {
		return ProblemKey{}, fmt.Errorf("malformed problem key %q", s)
	}
	id, err := strconv.Atoi(contest)
	if err != nil || id <= 0 {
		return ProblemKey{}, fmt.Errorf("malformed contest id in problem key %q", s)
	}
	return ProblemKey{ContestID: id, Index: index}, nil
}

type Problem struct {
	ContestID int      `json:"contest_id"`
	Index     string   `json:"index"`
	Name      string   `json:"name"`
	Rating    *int     `json:"rating,omitempty"` // nil for unrated problems
	Tags      []string `json:"tags"`
}

func (p Problem) Key() ProblemKey {
	return ProblemKey{ContestID: p.ContestID, Index: p.Index}
}

// HasRating reports whether the problem carries exactly the given rating.
func (p Problem) HasRating(rating int) bool {
	return p.Rating != nil && *p.Rating == rating
}

func (p Problem) URL() string {
	return fmt.Sprintf("https://codeforces.com/problemset/problem/%d/%s", p.ContestID, p.Index)
}
