package leave

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StoreAPI is the persistence surface the service works against. InTx runs
// the callback against a transaction-scoped store; every method called on
// that store sees and joins the same transaction.
type StoreAPI interface {
	InTx(ctx context.Context, fn func(StoreAPI) error) error

	InsertRequest(ctx context.Context, req Request) (Request, error)
	GetRequest(ctx context.Context, tenantID, requestID string) (Request, error)
	GetRequestForUpdate(ctx context.Context, tenantID, requestID string) (Request, error)
	ReviewRequest(ctx context.Context, tenantID, requestID, status, reviewerID, comments string) error
	CancelRequest(ctx context.Context, tenantID, requestID string) error
	HasOverlappingRequest(ctx context.Context, tenantID, userID string, start, end time.Time) (bool, error)
	ListRequests(ctx context.Context, tenantID, userID string, filter RequestFilter, limit, offset int) ([]Request, int, error)
	ListRequestsForUsers(ctx context.Context, tenantID string, userIDs []string, filter RequestFilter, limit, offset int) ([]Request, int, error)
	CalendarEntries(ctx context.Context, tenantID string, from, to time.Time) ([]CalendarEntry, error)

	GetOrCreateBalance(ctx context.Context, tenantID, userID string, year int, defaultEntitlement decimal.Decimal) (Balance, error)
	GetBalanceForUpdate(ctx context.Context, tenantID, userID string, year int, defaultEntitlement decimal.Decimal) (Balance, error)
	AddDaysUsed(ctx context.Context, tenantID, userID string, year int, days decimal.Decimal) error
	AddSickDaysUsed(ctx context.Context, tenantID, userID string, year int, days decimal.Decimal) error
	DeductToil(ctx context.Context, tenantID, userID string, year int, hours decimal.Decimal) error
	RestoreToil(ctx context.Context, tenantID, userID string, year int, hours decimal.Decimal) error

	SetEntitlement(ctx context.Context, tenantID, userID string, year int, days, defaultEntitlement decimal.Decimal) (Balance, error)
	SetCarryover(ctx context.Context, tenantID, userID string, year int, days, defaultEntitlement decimal.Decimal) (Balance, error)
	ListBalancesForYear(ctx context.Context, tenantID string, year int) ([]Balance, error)
}
