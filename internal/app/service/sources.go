package service

import (
	"context"

	"cf_buddy/internal/domain/model"
)

// Upstream collaborators. *codeforces.Client satisfies all three.

type ProblemSource interface {
	Problems(ctx context.Context) ([]model.Problem, error)
}

type SubmissionSource interface {
	Submissions(ctx context.Context, handle string) ([]model.Submission, error)
}

type RatingSource interface {
	RatingHistory(ctx context.Context, handle string) ([]model.RatingChange, error)
}
