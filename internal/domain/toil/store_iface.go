package toil

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"practicehub/internal/domain/timesheet"
)

// AccrualStore covers everything the engine touches inside one approval or
// expiry transaction: the submission row, the contracted-hours lookup, the
// accrual ledger and the TOIL balance.
type AccrualStore interface {
	InTx(ctx context.Context, fn func(AccrualStore) error) error

	SubmissionForUpdate(ctx context.Context, tenantID, submissionID string) (timesheet.Submission, error)
	MarkSubmissionApproved(ctx context.Context, tenantID, submissionID, reviewerID, comments string) error
	ContractedHoursForWeek(ctx context.Context, tenantID, userID string, weekStart time.Time) (decimal.Decimal, error)

	InsertAccrual(ctx context.Context, rec Accrual) (Accrual, error)
	AddToilBalance(ctx context.Context, tenantID, userID string, year int, hours, defaultEntitlement decimal.Decimal) error

	ExpireAccruals(ctx context.Context, tenantID string, asOf time.Time) ([]Accrual, error)
	DeductExpiredToil(ctx context.Context, tenantID, userID string, year int, hours decimal.Decimal) error

	ToilBalance(ctx context.Context, tenantID, userID string, year int) (decimal.Decimal, error)
	ListAccruals(ctx context.Context, tenantID, userID string, limit, offset int) ([]Accrual, int, error)
	ExpiringBetween(ctx context.Context, tenantID, userID string, from, to time.Time) ([]Accrual, error)
}
