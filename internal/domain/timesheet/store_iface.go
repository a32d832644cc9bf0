package timesheet

import (
	"context"
	"time"
)

type StoreAPI interface {
	InTx(ctx context.Context, fn func(StoreAPI) error) error

	Insert(ctx context.Context, sub Submission) (Submission, error)
	Get(ctx context.Context, tenantID, submissionID string) (Submission, error)
	GetForUpdate(ctx context.Context, tenantID, submissionID string) (Submission, error)
	Review(ctx context.Context, tenantID, submissionID, status, reviewerID, comments string) error
	LatestForWeek(ctx context.Context, tenantID, userID string, weekStart time.Time) (Submission, error)
	HasAwaitingForWeek(ctx context.Context, tenantID, userID string, weekStart time.Time) (bool, error)
	HasRejectedForWeek(ctx context.Context, tenantID, userID string, weekStart time.Time) (bool, error)
	ListAwaiting(ctx context.Context, tenantID string, limit, offset int) ([]Submission, int, error)
	ListForUser(ctx context.Context, tenantID, userID string, limit, offset int) ([]Submission, int, error)
}
