package capacity

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNoCapacityRecord means no contracted-hours row covers the requested
// week. Callers must treat this as a hard failure, never as zero hours.
var ErrNoCapacityRecord = errors.New("no capacity record found for user")

type Record struct {
	ID            string          `json:"id"`
	TenantID      string          `json:"tenantId"`
	UserID        string          `json:"userId"`
	WeeklyHours   decimal.Decimal `json:"weeklyHours"`
	EffectiveFrom time.Time       `json:"effectiveFrom"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}
