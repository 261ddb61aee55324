package service

import (
	"context"
	"errors"
	"fmt"

	"cf_buddy/internal/app/dpp"
	"cf_buddy/internal/common"
	"cf_buddy/internal/domain/model"
	"cf_buddy/internal/platform/cache"
	"cf_buddy/internal/platform/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ReferenceService builds and caches the reference-solver index.
type ReferenceService struct {
	source      SubmissionSource
	handles     []string
	concurrency int
	snapshot    *cache.Snapshot[*dpp.ReferenceIndex]
}

func NewReferenceService(source SubmissionSource, handles []string, concurrency int, cfg cache.SnapshotConfig) *ReferenceService {
	if concurrency <= 0 {
		concurrency = 1
	}
	if cfg.Name == "" {
		cfg.Name = "reference-index"
	}
	s := &ReferenceService{source: source, handles: handles, concurrency: concurrency}
	s.snapshot = cache.NewSnapshot(cfg, s.build)
	return s
}

func (s *ReferenceService) Index(ctx context.Context) (*dpp.ReferenceIndex, cache.Meta, error) {
	return s.snapshot.Get(ctx)
}

// build fetches every reference account in parallel. One account failing
// only drops that account; the build fails when none could be loaded.
func (s *ReferenceService) build(ctx context.Context) (*dpp.ReferenceIndex, error) {
	if len(s.handles) == 0 {
		return nil, fmt.Errorf("reference index: no accounts configured: %w", common.ErrValidation)
	}
	histories := make([][]model.Submission, len(s.handles))
	errs := make([]error, len(s.handles))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, handle := range s.handles {
		g.Go(func() error {
			subs, err := s.source.Submissions(ctx, handle)
			if err != nil {
				logger.Log.Warn("reference account fetch failed",
					zap.String("handle", handle), zap.Bool("retryable", common.IsRetryable(err)), zap.Error(err))
				errs[i] = err
				return nil
			}
			histories[i] = subs
			return nil
		})
	}
	_ = g.Wait()

	ix := dpp.NewReferenceIndex()
	for i, handle := range s.handles {
		if errs[i] != nil {
			ix.MarkFailed(handle)
			continue
		}
		ix.Add(handle, histories[i])
	}
	ix.Normalize()

	if len(ix.Loaded) == 0 {
		return nil, fmt.Errorf("reference index: no account could be loaded: %w", errors.Join(errs...))
	}
	logger.Log.Info("reference index built",
		zap.Int("problems", ix.Len()), zap.Strings("loaded", ix.Loaded), zap.Strings("failed", ix.Failed))
	return ix, nil
}
