package capacity

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidHours = errors.New("weekly hours must be between 0 and 168")

var maxWeeklyHours = decimal.NewFromInt(168)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) SetCapacity(ctx context.Context, tenantID, userID string, weeklyHours decimal.Decimal, effectiveFrom time.Time) (Record, error) {
	if weeklyHours.IsNegative() || weeklyHours.GreaterThan(maxWeeklyHours) {
		return Record{}, ErrInvalidHours
	}
	return s.Store.Upsert(ctx, tenantID, userID, weeklyHours, effectiveFrom)
}

func (s *Service) EffectiveForWeek(ctx context.Context, tenantID, userID string, weekStart time.Time) (Record, error) {
	return s.Store.EffectiveForWeek(ctx, tenantID, userID, weekStart)
}

func (s *Service) History(ctx context.Context, tenantID, userID string) ([]Record, error) {
	return s.Store.ListForUser(ctx, tenantID, userID)
}
