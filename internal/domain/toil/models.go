package toil

import (
	"time"

	"github.com/shopspring/decimal"
)

// Accrual is one earned-TOIL ledger entry. HoursAccrued is the overtime for
// the week: logged hours minus contracted hours.
type Accrual struct {
	ID              string          `json:"id"`
	TenantID        string          `json:"tenantId"`
	UserID          string          `json:"userId"`
	TimesheetID     *string         `json:"timesheetId,omitempty"`
	WeekEnding      time.Time       `json:"weekEnding"`
	HoursAccrued    decimal.Decimal `json:"hoursAccrued"`
	LoggedHours     decimal.Decimal `json:"loggedHours"`
	ContractedHours decimal.Decimal `json:"contractedHours"`
	AccrualDate     time.Time       `json:"accrualDate"`
	ExpiryDate      *time.Time      `json:"expiryDate,omitempty"`
	Expired         bool            `json:"expired"`
}

type BalanceSummary struct {
	Year         int             `json:"year"`
	BalanceHours decimal.Decimal `json:"balanceHours"`
	BalanceDays  decimal.Decimal `json:"balanceDays"`
}

type ExpirySummary struct {
	EntriesExpired int             `json:"entriesExpired"`
	HoursRemoved   decimal.Decimal `json:"hoursRemoved"`
	UsersAffected  int             `json:"usersAffected"`
}

type BulkFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

type BulkResult struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
	Accrued   int           `json:"accrued"`
}
