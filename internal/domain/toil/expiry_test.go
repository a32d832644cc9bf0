package toil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func expiringAccrual(id, userID, hours string, expiry time.Time) Accrual {
	return Accrual{
		ID:           id,
		TenantID:     "t1",
		UserID:       userID,
		WeekEnding:   expiry.AddDate(0, -6, 0),
		HoursAccrued: decimal.RequireFromString(hours),
		ExpiryDate:   &expiry,
	}
}

func TestMarkExpiredSweepsPastDueAccruals(t *testing.T) {
	now := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	store := newFakeAccrualStore()
	store.accruals = []Accrual{
		expiringAccrual("acc-1", "u1", "7.5", now.AddDate(0, 0, -10)),
		expiringAccrual("acc-2", "u1", "3", now.AddDate(0, 0, -1)),
		expiringAccrual("acc-3", "u2", "5", now.AddDate(0, 0, -2)),
		expiringAccrual("acc-4", "u2", "4", now.AddDate(0, 0, 30)), // still live
	}
	store.toil[toilKey("u1", 2026)] = decimal.RequireFromString("10.5")
	store.toil[toilKey("u2", 2026)] = decimal.NewFromInt(9)
	engine := newTestEngine(store)

	summary, err := engine.MarkExpired(context.Background(), "t1", now)
	require.NoError(t, err)
	require.Equal(t, 3, summary.EntriesExpired)
	require.Equal(t, 2, summary.UsersAffected)
	require.True(t, summary.HoursRemoved.Equal(decimal.RequireFromString("15.5")))

	require.True(t, store.toil[toilKey("u1", 2026)].IsZero())
	require.True(t, store.toil[toilKey("u2", 2026)].Equal(decimal.NewFromInt(4)))

	// A second sweep finds nothing: expired entries are not re-counted.
	summary, err = engine.MarkExpired(context.Background(), "t1", now)
	require.NoError(t, err)
	require.Equal(t, 0, summary.EntriesExpired)
	require.True(t, summary.HoursRemoved.IsZero())
}

func TestMarkExpiredClampsBalanceAtZero(t *testing.T) {
	// The user already spent some TOIL, so the balance is smaller than the
	// expiring hours. The deduction clamps rather than going negative.
	now := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	store := newFakeAccrualStore()
	store.accruals = []Accrual{
		expiringAccrual("acc-1", "u1", "7.5", now.AddDate(0, 0, -1)),
	}
	store.toil[toilKey("u1", 2026)] = decimal.NewFromInt(3)
	engine := newTestEngine(store)

	summary, err := engine.MarkExpired(context.Background(), "t1", now)
	require.NoError(t, err)
	require.Equal(t, 1, summary.EntriesExpired)
	require.True(t, store.toil[toilKey("u1", 2026)].IsZero())
}

func TestExpiringSoonWindow(t *testing.T) {
	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	store := newFakeAccrualStore()
	store.accruals = []Accrual{
		expiringAccrual("acc-1", "u1", "5", now.AddDate(0, 0, 10)),
		expiringAccrual("acc-2", "u1", "5", now.AddDate(0, 0, 45)),
		expiringAccrual("acc-3", "u1", "5", now.AddDate(0, 0, -5)),
	}
	engine := newTestEngine(store)

	soon, err := engine.ExpiringSoon(context.Background(), "t1", "u1", now, 30)
	require.NoError(t, err)
	require.Len(t, soon, 1)
	require.Equal(t, "acc-1", soon[0].ID)
}
