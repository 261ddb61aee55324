package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cf_buddy/internal/app/analytics"
	"cf_buddy/internal/common"
	"cf_buddy/internal/domain/model"
	"cf_buddy/internal/platform/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AnalyticsService struct {
	submissions SubmissionSource
	ratings     RatingSource
	defaultLoc  *time.Location
	now         func() time.Time
}

func NewAnalyticsService(submissions SubmissionSource, ratings RatingSource, defaultLoc *time.Location) *AnalyticsService {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &AnalyticsService{submissions: submissions, ratings: ratings, defaultLoc: defaultLoc, now: time.Now}
}

// Summary builds the analytics overview for handle. Rating history is
// optional; submission history is not.
func (s *AnalyticsService) Summary(ctx context.Context, handle, tz string) (*analytics.Summary, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, common.Errorf("handle is required: %w", common.ErrValidation)
	}
	loc := s.defaultLoc
	if tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return nil, common.Errorf("unknown timezone %q: %w", tz, common.ErrValidation)
		}
		loc = l
	}

	var (
		subs    []model.Submission
		changes []model.RatingChange
		ratesOK bool
		g       errgroup.Group
	)
	g.Go(func() error {
		var err error
		subs, err = s.submissions.Submissions(ctx, handle)
		if err != nil {
			return fmt.Errorf("loading submissions of %s: %w", handle, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		changes, err = s.ratings.RatingHistory(ctx, handle)
		if err != nil {
			logger.Log.Warn("rating history unavailable", zap.String("handle", handle), zap.Error(err))
			return nil
		}
		ratesOK = true
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.now()
	summary := analytics.Summarize(subs, now, loc)
	summary.Handle = handle
	summary.RatingHistoryAvailable = ratesOK
	if ratesOK {
		summary.RatingHistory = analytics.RatingHistory(changes, now)
	} else {
		summary.RatingHistory = []analytics.RatingPoint{}
	}
	return &summary, nil
}
