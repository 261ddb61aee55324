package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cf_buddy/internal/app/dpp"
	"cf_buddy/internal/common"
	"cf_buddy/internal/domain/model"
	"cf_buddy/internal/platform/cache"
)

type memoryRecords struct {
	mu      sync.Mutex
	records map[string]model.DailyRecord
	upserts int
	nextID  int
}

func newMemoryRecords() *memoryRecords {
	return &memoryRecords{records: make(map[string]model.DailyRecord)}
}

func recordKey(userID, date string) string { return userID + "|" + date }

func (m *memoryRecords) Upsert(ctx context.Context, rec *model.DailyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	rec.IsFullySolved = model.AllSolved(rec.Problems)
	now := time.Now()
	if existing, ok := m.records[recordKey(rec.UserID, rec.Date)]; ok {
		rec.ID, rec.CreatedAt = existing.ID, existing.CreatedAt
	} else {
		m.nextID++
		rec.ID, rec.CreatedAt = fmt.Sprintf("rec-%d", m.nextID), now
	}
	rec.UpdatedAt = now
	m.records[recordKey(rec.UserID, rec.Date)] = *rec
	return nil
}

func (m *memoryRecords) GetByDate(ctx context.Context, userID, date string) (*model.DailyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[recordKey(userID, date)]
	if !ok {
		return nil, common.ErrNotFound
	}
	rec.Problems = append([]model.DailyProblem(nil), rec.Problems...)
	return &rec, nil
}

func (m *memoryRecords) GetCalendar(ctx context.Context, userID string) ([]model.CalendarEntry, error) {
	return nil, errors.New("not used")
}

func (m *memoryRecords) MarkSolved(ctx context.Context, userID, date string, isSolved func(model.ProblemKey) bool) (*model.DailyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[recordKey(userID, date)]
	if !ok {
		return nil, common.ErrNotFound
	}
	problems := append([]model.DailyProblem(nil), rec.Problems...)
	for i := range problems {
		if isSolved(problems[i].Key()) {
			problems[i].Solved = true
		}
	}
	rec.Problems = problems
	rec.IsFullySolved = model.AllSolved(problems)
	m.records[recordKey(userID, date)] = rec
	return &rec, nil
}

func (m *memoryRecords) put(rec model.DailyRecord) {
	m.mu.Lock()
	m.records[recordKey(rec.UserID, rec.Date)] = rec
	m.mu.Unlock()
}

type fakeUpstream struct {
	mu        sync.Mutex
	problems  []model.Problem
	problemsE error
	subs      map[string][]model.Submission
	subsE     map[string]error
	ratings   []model.RatingChange
	ratingsE  error
	calls     map[string]int
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{subs: map[string][]model.Submission{}, subsE: map[string]error{}, calls: map[string]int{}}
}

func (f *fakeUpstream) Problems(ctx context.Context) ([]model.Problem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["problems"]++
	return f.problems, f.problemsE
}

func (f *fakeUpstream) Submissions(ctx context.Context, handle string) ([]model.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["submissions:"+handle]++
	if err := f.subsE[handle]; err != nil {
		return nil, err
	}
	return f.subs[handle], nil
}

func (f *fakeUpstream) RatingHistory(ctx context.Context, handle string) ([]model.RatingChange, error) {
	return f.ratings, f.ratingsE
}

type staticReferences struct {
	ix  *dpp.ReferenceIndex
	err error
}

func (s staticReferences) Index(ctx context.Context) (*dpp.ReferenceIndex, cache.Meta, error) {
	return s.ix, cache.Meta{}, s.err
}

func ratingPtr(r int) *int { return &r }

func problem(contest int, index string, rating int) model.Problem {
	return model.Problem{ContestID: contest, Index: index, Name: "p", Rating: ratingPtr(rating), Tags: []string{}}
}

func accepted(id int64, p model.Problem) model.Submission {
	return model.Submission{ID: id, Problem: p, Verdict: model.VerdictOK, CreatedAt: time.Now()}
}

func acceptedAll(problems []model.Problem) []model.Submission {
	out := make([]model.Submission, 0, len(problems))
	for i, p := range problems {
		out = append(out, accepted(int64(i+1), p))
	}
	return out
}

// pupilCorpus has enough reference-solved problems to fill level 2 completely.
func pupilCorpus() []model.Problem {
	var out []model.Problem
	for c := 1; c <= 10; c++ {
		for i, r := range []int{900, 1000, 1100, 1200, 1300} {
			out = append(out, problem(c, string(rune('A'+i)), r))
		}
	}
	return out
}
