package dpp

import (
	"fmt"
	"strconv"
	"strings"

	"cf_buddy/internal/common"
	"cf_buddy/internal/domain/model"

	"github.com/gosimple/slug"
)

// AlgorithmVersion is stamped on every generated set. Bump it whenever the
// sampling rules change so previously stored sets are detected as stale.
const AlgorithmVersion = "1.2"

func rc(rating, count int) model.RatingCount {
	return model.RatingCount{Rating: rating, Count: count}
}

func each(count int, ratings ...int) []model.RatingCount {
	out := make([]model.RatingCount, 0, len(ratings))
	for _, r := range ratings {
		out = append(out, rc(r, count))
	}
	return out
}

func newLevel(n int, title string, lo, hi int, main, warmUp []model.RatingCount) model.Level {
	name := fmt.Sprintf("Level %d %s", n, title)
	return model.Level{
		Level:              n,
		Name:               name,
		Slug:               slug.Make(name),
		RatingRange:        model.RatingRange{Min: lo, Max: hi},
		MainDistribution:   main,
		WarmUpDistribution: warmUp,
	}
}

var catalog = []model.Level{
	newLevel(1, "Newbie", 800, 1100,
		[]model.RatingCount{rc(800, 3), rc(900, 3), rc(1000, 2), rc(1100, 2)}, nil),
	newLevel(2, "Pupil", 1200, 1300,
		[]model.RatingCount{rc(1200, 4), rc(1300, 3)}, each(1, 900, 1000, 1100)),
	newLevel(3, "Specialist", 1400, 1500,
		[]model.RatingCount{rc(1400, 4), rc(1500, 3)}, each(1, 1100, 1200, 1300)),
	newLevel(4, "Expert", 1600, 1700,
		[]model.RatingCount{rc(1600, 4), rc(1700, 3)}, each(1, 1300, 1400, 1500)),
	newLevel(5, "Candidate Master", 1800, 1900,
		[]model.RatingCount{rc(1800, 4), rc(1900, 3)}, each(1, 1500, 1600, 1700)),
	newLevel(6, "Master", 2000, 2100,
		[]model.RatingCount{rc(2000, 4), rc(2100, 3)}, each(1, 1700, 1800, 1900)),
	newLevel(7, "International Master", 2200, 2300,
		[]model.RatingCount{rc(2200, 4), rc(2300, 3)}, each(1, 1900, 2000, 2100)),
	newLevel(8, "Grandmaster", 2400, 2500,
		[]model.RatingCount{rc(2400, 4), rc(2500, 3)}, each(1, 2100, 2200, 2300)),
	newLevel(9, "International Grandmaster", 2600, 2800,
		[]model.RatingCount{rc(2600, 3), rc(2700, 2), rc(2800, 2)}, each(1, 2300, 2400, 2500)),
	newLevel(10, "Legendary Grandmaster", 2900, 3500,
		each(1, 2900, 3000, 3100, 3200, 3300, 3400, 3500), each(1, 2600, 2700, 2800)),
}

// Levels returns a copy of the level catalog ordered by level number.
func Levels() []model.Level {
	out := make([]model.Level, len(catalog))
	copy(out, catalog)
	return out
}

func LevelByNumber(n int) (model.Level, error) {
	for _, l := range catalog {
		if l.Level == n {
			return l, nil
		}
	}
	return model.Level{}, fmt.Errorf("level %d: %w", n, common.ErrNotFound)
}

// LookupLevel resolves a level from its number ("3") or its slug ("level-3-specialist").
func LookupLevel(ref string) (model.Level, error) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil {
		return LevelByNumber(n)
	}
	s := slug.Make(ref)
	for _, l := range catalog {
		if l.Slug == s {
			return l, nil
		}
	}
	return model.Level{}, fmt.Errorf("level %q: %w", ref, common.ErrNotFound)
}
