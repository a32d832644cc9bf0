package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TypeAnnual = "annual"
	TypeSick   = "sick"
	TypeToil   = "toil"
	TypeUnpaid = "unpaid"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

func ValidType(leaveType string) bool {
	switch leaveType {
	case TypeAnnual, TypeSick, TypeToil, TypeUnpaid:
		return true
	}
	return false
}

// RequestFilter narrows request listings. Zero values mean no filtering.
type RequestFilter struct {
	Year   int
	Status string
	From   time.Time
	To     time.Time
}

type Request struct {
	ID               string          `json:"id"`
	TenantID         string          `json:"tenantId"`
	UserID           string          `json:"userId"`
	LeaveType        string          `json:"leaveType"`
	StartDate        time.Time       `json:"startDate"`
	EndDate          time.Time       `json:"endDate"`
	DaysCount        decimal.Decimal `json:"daysCount"`
	Status           string          `json:"status"`
	Reason           *string         `json:"reason,omitempty"`
	ReviewedBy       *string         `json:"reviewedBy,omitempty"`
	ReviewedAt       *time.Time      `json:"reviewedAt,omitempty"`
	ReviewerComments *string         `json:"reviewerComments,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// Balance is the per-user per-year ledger row. ToilBalance is held in hours;
// the day fields are held in days.
type Balance struct {
	ID                string          `json:"id"`
	TenantID          string          `json:"tenantId"`
	UserID            string          `json:"userId"`
	Year              int             `json:"year"`
	AnnualEntitlement decimal.Decimal `json:"annualEntitlement"`
	DaysUsed          decimal.Decimal `json:"daysUsed"`
	SickDaysUsed      decimal.Decimal `json:"sickDaysUsed"`
	ToilBalance       decimal.Decimal `json:"toilBalance"`
	ToilUsed          decimal.Decimal `json:"toilUsed"`
	CarriedOver       decimal.Decimal `json:"carriedOver"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// AnnualRemaining is entitlement plus carryover minus days taken.
func (b Balance) AnnualRemaining() decimal.Decimal {
	return b.AnnualEntitlement.Add(b.CarriedOver).Sub(b.DaysUsed)
}

type CalendarEntry struct {
	RequestID string          `json:"requestId"`
	UserID    string          `json:"userId"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	LeaveType string          `json:"leaveType"`
	StartDate time.Time       `json:"startDate"`
	EndDate   time.Time       `json:"endDate"`
	DaysCount decimal.Decimal `json:"daysCount"`
	Status    string          `json:"status"`
}

type CarryoverSummary struct {
	FromYear       int `json:"fromYear"`
	ToYear         int `json:"toYear"`
	UsersProcessed int `json:"usersProcessed"`
}
