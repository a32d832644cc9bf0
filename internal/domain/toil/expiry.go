package toil

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MarkExpired flags every accrual past its expiry date and removes the
// expired hours from each affected balance. The whole sweep for a tenant is
// one transaction.
func (e *Engine) MarkExpired(ctx context.Context, tenantID string, now time.Time) (ExpirySummary, error) {
	summary := ExpirySummary{HoursRemoved: decimal.Zero}
	err := e.Store.InTx(ctx, func(store AccrualStore) error {
		expired, err := store.ExpireAccruals(ctx, tenantID, now)
		if err != nil {
			return err
		}

		perUser := map[string]decimal.Decimal{}
		for _, rec := range expired {
			perUser[rec.UserID] = perUser[rec.UserID].Add(rec.HoursAccrued)
		}

		for userID, hours := range perUser {
			if err := store.DeductExpiredToil(ctx, tenantID, userID, now.Year(), hours); err != nil {
				return err
			}
			summary.HoursRemoved = summary.HoursRemoved.Add(hours)
		}
		summary.EntriesExpired = len(expired)
		summary.UsersAffected = len(perUser)
		return nil
	})
	if err != nil {
		return ExpirySummary{}, err
	}
	return summary, nil
}

// ExpiringSoon lists unexpired accruals whose expiry date falls inside the
// warning window.
func (e *Engine) ExpiringSoon(ctx context.Context, tenantID, userID string, now time.Time, windowDays int) ([]Accrual, error) {
	return e.Store.ExpiringBetween(ctx, tenantID, userID, now, now.AddDate(0, 0, windowDays))
}
