package analytics

import (
	"testing"
	"time"

	"cf_buddy/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)

func change(name string, oldRating, newRating int, at time.Time) model.RatingChange {
	return model.RatingChange{ContestName: name, OldRating: oldRating, NewRating: newRating, UpdatedAt: at}
}

func labels(points []RatingPoint) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.Label
	}
	return out
}

func TestRatingHistory_Empty(t *testing.T) {
	points := RatingHistory(nil, t0)
	require.Len(t, points, 1)
	assert.Equal(t, 1500, points[0].Rating)
	assert.Equal(t, t0.AddDate(-1, 0, 0), points[0].Time)
}

func TestRatingHistory_NewAccount(t *testing.T) {
	points := RatingHistory([]model.RatingChange{
		change("Round 1", 0, 1400, t0),
		change("Round 2", 1400, 1480, t0.Add(48*time.Hour)),
	}, t0)

	assert.Equal(t, []string{"Initial Rating (Estimated)", "Round 1", "Round 2"}, labels(points))
	assert.Equal(t, 1500, points[0].Rating)
	assert.Equal(t, t0.Add(-time.Hour), points[0].Time)
}

func TestRatingHistory_DiscontinuityAddsBeforePoint(t *testing.T) {
	points := RatingHistory([]model.RatingChange{
		change("Round 1", 1500, 1600, t0),
		change("Round 2", 1550, 1650, t0.Add(24*time.Hour)),
		change("Round 3", 1650, 1700, t0.Add(48*time.Hour)),
	}, t0)

	assert.Equal(t, []string{"Before: Round 1", "Round 1", "Before: Round 2", "Round 2", "Round 3"}, labels(points))
	assert.Equal(t, 1550, points[2].Rating)
	assert.Equal(t, t0.Add(24*time.Hour-time.Second), points[2].Time)
}

func TestRatingHistory_AssumedPrevious(t *testing.T) {
	points := RatingHistory([]model.RatingChange{change("Round 9", 1900, 1950, t0)}, t0)
	assert.Equal(t, []string{"Assumed Previous Rating", "Round 9"}, labels(points))
	assert.Equal(t, 1900, points[0].Rating)
}
