package service

import (
	"context"
	"testing"
	"time"

	"cf_buddy/internal/common"
	"cf_buddy/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsSummary(t *testing.T) {
	up := newFakeUpstream()
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	up.subs["alice"] = []model.Submission{
		{ID: 1, Problem: problem(1, "A", 800), Verdict: model.VerdictOK, CreatedAt: now},
		{ID: 2, Problem: problem(2, "A", 900), Verdict: model.VerdictOK, CreatedAt: now.Add(-24 * time.Hour)},
	}
	up.ratings = []model.RatingChange{{ContestName: "Round 1", OldRating: 0, NewRating: 1300, UpdatedAt: now.AddDate(0, -1, 0)}}

	svc := NewAnalyticsService(up, up, time.UTC)
	svc.now = func() time.Time { return now }

	s, err := svc.Summary(context.Background(), "alice", "")
	require.NoError(t, err)
	assert.Equal(t, "alice", s.Handle)
	assert.Equal(t, 2, s.SolvedAllTime)
	assert.Equal(t, 2, s.CurrentStreak)
	assert.True(t, s.RatingHistoryAvailable)
	assert.Len(t, s.RatingHistory, 2)
}

func TestAnalyticsSummary_RatingHistoryOptional(t *testing.T) {
	up := newFakeUpstream()
	up.ratingsE = common.ErrUpstreamTimeout

	s, err := NewAnalyticsService(up, up, nil).Summary(context.Background(), "alice", "")
	require.NoError(t, err)
	assert.False(t, s.RatingHistoryAvailable)
	assert.Empty(t, s.RatingHistory)
}

func TestAnalyticsSummary_SubmissionsRequired(t *testing.T) {
	up := newFakeUpstream()
	up.subsE["ghost"] = common.ErrNotFound

	_, err := NewAnalyticsService(up, up, nil).Summary(context.Background(), "ghost", "")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = NewAnalyticsService(up, up, nil).Summary(context.Background(), " ", "")
	assert.ErrorIs(t, err, common.ErrValidation)
}
