package analytics

import (
	"sort"
	"time"

	"cf_buddy/internal/domain/model"
)

const defaultRating = 1500

type RatingPoint struct {
	Time   time.Time `json:"time"`
	Rating int       `json:"rating"`
	Label  string    `json:"label"`
}

// RatingHistory turns contest rating changes into a chart series. It adds a
// leading point before the first contest and a "Before:" point whenever a
// change does not start where the previous one ended.
func RatingHistory(changes []model.RatingChange, now time.Time) []RatingPoint {
	if len(changes) == 0 {
		return []RatingPoint{{Time: now.AddDate(-1, 0, 0), Rating: defaultRating, Label: "Initial Rating"}}
	}

	points := make([]RatingPoint, 0, len(changes)+2)
	first := changes[0]
	switch first.OldRating {
	case 0:
		points = append(points, RatingPoint{Time: first.UpdatedAt.Add(-time.Hour), Rating: defaultRating, Label: "Initial Rating (Estimated)"})
	case defaultRating:
		points = append(points, before(first))
	default:
		points = append(points, RatingPoint{Time: first.UpdatedAt.Add(-time.Hour), Rating: first.OldRating, Label: "Assumed Previous Rating"})
	}

	for i, c := range changes {
		if i > 0 && changes[i-1].NewRating != c.OldRating {
			points = append(points, before(c))
		}
		points = append(points, RatingPoint{Time: c.UpdatedAt, Rating: c.NewRating, Label: c.ContestName})
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points
}

func before(c model.RatingChange) RatingPoint {
	return RatingPoint{Time: c.UpdatedAt.Add(-time.Second), Rating: c.OldRating, Label: "Before: " + c.ContestName}
}
