package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"cf_buddy/internal/app/dpp"
	"cf_buddy/internal/common"
	"cf_buddy/internal/domain/model"
	"cf_buddy/internal/domain/repository"
	"cf_buddy/internal/platform/cache"
	"cf_buddy/internal/platform/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type CorpusProvider interface {
	Corpus(ctx context.Context) ([]model.Problem, cache.Meta, error)
}

type ReferenceProvider interface {
	Index(ctx context.Context) (*dpp.ReferenceIndex, cache.Meta, error)
}

type DPPService struct {
	records     repository.DailyRecordRepository
	corpus      CorpusProvider
	references  ReferenceProvider
	submissions SubmissionSource
	guard       dpp.Guard
	defaultLoc  *time.Location
	now         func() time.Time
	newRand     func() *rand.Rand
}

func NewDPPService(
	records repository.DailyRecordRepository,
	corpus CorpusProvider,
	references ReferenceProvider,
	submissions SubmissionSource,
	defaultLoc *time.Location,
) *DPPService {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &DPPService{
		records:     records,
		corpus:      corpus,
		references:  references,
		submissions: submissions,
		guard:       dpp.NewGuard(),
		defaultLoc:  defaultLoc,
		now:         time.Now,
		newRand:     dpp.NewRand,
	}
}

type GenerateRequest struct {
	UserID   string `json:"user_id"`
	Handle   string `json:"handle"`
	Level    int    `json:"level"`
	Date     string `json:"date,omitempty"`     // YYYY-MM-DD; defaults to today in Timezone
	Timezone string `json:"timezone,omitempty"` // IANA name, e.g. Asia/Kolkata
	Force    bool   `json:"force"`
}

type GenerateResult struct {
	Record      *RecordView    `json:"record,omitempty"`
	Generated   bool           `json:"generated"`
	Diagnosis   *dpp.Diagnosis `json:"diagnosis,omitempty"`
	CorpusStale bool           `json:"corpus_stale,omitempty"`
}

type UpsertRequest struct {
	UserID           string               `json:"user_id"`
	Handle           string               `json:"handle"`
	Date             string               `json:"date"`
	Level            int                  `json:"level"`
	AlgorithmVersion string               `json:"algorithm_version,omitempty"`
	Problems         []model.DailyProblem `json:"problems"`
}

// RecordView is a stored record together with the staleness verdict.
type RecordView struct {
	*model.DailyRecord
	Stale       bool            `json:"stale"`
	StaleReason dpp.StaleReason `json:"stale_reason,omitempty"`
}

func (s *DPPService) view(rec *model.DailyRecord) *RecordView {
	reason := s.guard.CheckRecord(*rec)
	return &RecordView{DailyRecord: rec, Stale: reason != dpp.Fresh, StaleReason: reason}
}

// GenerateDailySet samples a new set for the user's day and stores it.
// An existing fresh record for the same day and level is returned unchanged
// unless Force is set. Empty sets are reported but never stored.
func (s *DPPService) GenerateDailySet(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	req.UserID, req.Handle = strings.TrimSpace(req.UserID), strings.TrimSpace(req.Handle)
	if req.UserID == "" || req.Handle == "" {
		return nil, common.Errorf("user_id and handle are required: %w", common.ErrValidation)
	}
	level, err := dpp.LevelByNumber(req.Level)
	if err != nil {
		return nil, common.Errorf("unknown level %d: %w", req.Level, common.ErrValidation)
	}
	date, err := s.resolveDate(req.Date, req.Timezone)
	if err != nil {
		return nil, err
	}

	if !req.Force {
		existing, err := s.records.GetByDate(ctx, req.UserID, date)
		switch {
		case err == nil:
			v := s.view(existing)
			if !v.Stale && existing.Level == level.Level {
				return &GenerateResult{Record: v}, nil
			}
		case !errors.Is(err, common.ErrNotFound):
			return nil, err
		}
	}

	in, corpusMeta, err := s.loadInputs(ctx, req.Handle)
	if err != nil {
		return nil, err
	}
	in.Level = level

	set, err := s.sample(ctx, in)
	if err != nil {
		return nil, err
	}
	diag := dpp.Diagnose(level, set, in.References)
	result := &GenerateResult{Diagnosis: &diag, CorpusStale: corpusMeta.Stale}

	log := logger.Log.With(zap.String("user_id", req.UserID), zap.String("date", date), zap.Int("level", level.Level))
	if set.Len() == 0 {
		log.Info("daily set generation produced no problems", zap.String("outcome", string(diag.Outcome)))
		return result, nil
	}

	rec := &model.DailyRecord{
		UserID:           req.UserID,
		Date:             date,
		Handle:           req.Handle,
		Level:            level.Level,
		AlgorithmVersion: set.AlgorithmVersion,
		Problems:         set.DailyProblems(),
	}
	if err := s.records.Upsert(ctx, rec); err != nil {
		log.Error("storing daily set failed", zap.Error(err))
		return nil, err
	}
	log.Info("daily set generated",
		zap.Int("problems", set.Len()), zap.String("outcome", string(diag.Outcome)), zap.Bool("corpus_stale", corpusMeta.Stale))

	result.Record = s.view(rec)
	result.Generated = true
	return result, nil
}

// loadInputs fetches corpus, user history and reference index concurrently.
// The fetches do not cancel one another. A missing reference index degrades
// to an empty one; the other two are required.
func (s *DPPService) loadInputs(ctx context.Context, handle string) (dpp.Input, cache.Meta, error) {
	var (
		in         dpp.Input
		corpusMeta cache.Meta
		g          errgroup.Group
	)
	g.Go(func() error {
		corpus, meta, err := s.corpus.Corpus(ctx)
		in.Corpus, corpusMeta = corpus, meta
		return err
	})
	g.Go(func() error {
		subs, err := s.submissions.Submissions(ctx, handle)
		if err != nil {
			return fmt.Errorf("loading submissions of %s: %w", handle, err)
		}
		in.Solved = dpp.SolvedFrom(subs)
		return nil
	})
	g.Go(func() error {
		ix, _, err := s.references.Index(ctx)
		if err != nil {
			logger.Log.Warn("reference index unavailable, continuing without it", zap.Error(err))
			ix = dpp.NewReferenceIndex()
		}
		in.References = ix
		return nil
	})
	if err := g.Wait(); err != nil {
		return dpp.Input{}, cache.Meta{}, err
	}
	return in, corpusMeta, nil
}

// sample runs the sampler off the request goroutine.
func (s *DPPService) sample(ctx context.Context, in dpp.Input) (model.GeneratedSet, error) {
	done := make(chan model.GeneratedSet, 1)
	rng := s.newRand()
	go func() {
		done <- dpp.Generate(rng, in)
	}()
	select {
	case set := <-done:
		return set, nil
	case <-ctx.Done():
		return model.GeneratedSet{}, ctx.Err()
	}
}

// UpsertDailyRecord stores a caller-supplied set as the user's record for
// the day, replacing any existing problems and level.
func (s *DPPService) UpsertDailyRecord(ctx context.Context, req UpsertRequest) (*RecordView, error) {
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Handle) == "" {
		return nil, common.Errorf("user_id and handle are required: %w", common.ErrValidation)
	}
	if _, err := dpp.LevelByNumber(req.Level); err != nil {
		return nil, common.Errorf("unknown level %d: %w", req.Level, common.ErrValidation)
	}
	if _, err := time.Parse(model.DateLayout, req.Date); err != nil {
		return nil, common.Errorf("date %q must be YYYY-MM-DD: %w", req.Date, common.ErrValidation)
	}
	if err := validateProblems(req.Problems); err != nil {
		return nil, err
	}
	version := req.AlgorithmVersion
	if version == "" {
		version = dpp.AlgorithmVersion
	}

	rec := &model.DailyRecord{
		UserID:           req.UserID,
		Date:             req.Date,
		Handle:           req.Handle,
		Level:            req.Level,
		AlgorithmVersion: version,
		Problems:         req.Problems,
	}
	if err := s.records.Upsert(ctx, rec); err != nil {
		return nil, err
	}
	return s.view(rec), nil
}

func validateProblems(problems []model.DailyProblem) error {
	if len(problems) == 0 {
		return common.Errorf("problems must not be empty: %w", common.ErrValidation)
	}
	seen := make(map[model.ProblemKey]bool, len(problems))
	for _, p := range problems {
		if p.ContestID <= 0 || p.Index == "" {
			return common.Errorf("problem without contest_id/index: %w", common.ErrValidation)
		}
		if len(p.SolvedByReference) == 0 {
			return common.Errorf("problem %s has no reference solver: %w", p.Key(), common.ErrValidation)
		}
		if !p.Category.Valid() {
			return common.Errorf("problem %s has invalid category %q: %w", p.Key(), p.Category, common.ErrValidation)
		}
		if seen[p.Key()] {
			return common.Errorf("problem %s listed twice: %w", p.Key(), common.ErrValidation)
		}
		seen[p.Key()] = true
	}
	return nil
}

func (s *DPPService) GetDailyRecord(ctx context.Context, userID, date string) (*RecordView, error) {
	rec, err := s.records.GetByDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	return s.view(rec), nil
}

func (s *DPPService) GetCalendar(ctx context.Context, userID string) ([]model.CalendarEntry, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, common.Errorf("user_id is required: %w", common.ErrValidation)
	}
	return s.records.GetCalendar(ctx, userID)
}

// SyncSolvedState marks problems of the stored set that the user has since
// solved. Stale sets are refused so they get regenerated instead.
func (s *DPPService) SyncSolvedState(ctx context.Context, userID, date string) (*RecordView, error) {
	rec, err := s.records.GetByDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if reason := s.guard.CheckRecord(*rec); reason != dpp.Fresh {
		return nil, common.Errorf("record %s/%s (%s): %w", userID, date, reason, common.ErrStaleSet)
	}

	subs, err := s.submissions.Submissions(ctx, rec.Handle)
	if err != nil {
		return nil, fmt.Errorf("loading submissions of %s: %w", rec.Handle, err)
	}
	solved := dpp.SolvedFrom(subs)

	updated, err := s.records.MarkSolved(ctx, userID, date, solved.Has)
	if err != nil {
		return nil, err
	}
	return s.view(updated), nil
}

func (s *DPPService) resolveDate(date, tz string) (string, error) {
	if date != "" {
		if _, err := time.Parse(model.DateLayout, date); err != nil {
			return "", common.Errorf("date %q must be YYYY-MM-DD: %w", date, common.ErrValidation)
		}
		return date, nil
	}
	loc := s.defaultLoc
	if tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return "", common.Errorf("unknown timezone %q: %w", tz, common.ErrValidation)
		}
		loc = l
	}
	return s.now().In(loc).Format(model.DateLayout), nil
}
