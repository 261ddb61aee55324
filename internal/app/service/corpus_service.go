package service

import (
	"context"
	"fmt"

	"cf_buddy/internal/common"
	"cf_buddy/internal/domain/model"
	"cf_buddy/internal/platform/cache"
)

// CorpusService owns the problem-set snapshot.
type CorpusService struct {
	snapshot *cache.Snapshot[[]model.Problem]
}

func NewCorpusService(source ProblemSource, cfg cache.SnapshotConfig) *CorpusService {
	if cfg.Name == "" {
		cfg.Name = "corpus"
	}
	return &CorpusService{snapshot: cache.NewSnapshot(cfg, source.Problems)}
}

// Corpus returns the cached problem set. With no copy available at all it
// fails with ErrDataLoading.
func (s *CorpusService) Corpus(ctx context.Context) ([]model.Problem, cache.Meta, error) {
	problems, meta, err := s.snapshot.Get(ctx)
	if err != nil {
		return nil, meta, fmt.Errorf("%w: %v", common.ErrDataLoading, err)
	}
	return problems, meta, nil
}
