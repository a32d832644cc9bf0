package timesheet

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending     = "pending"
	StatusApproved    = "approved"
	StatusRejected    = "rejected"
	StatusResubmitted = "resubmitted"
)

// Awaiting reports whether a submission is still waiting for review.
func Awaiting(status string) bool {
	return status == StatusPending || status == StatusResubmitted
}

type Submission struct {
	ID               string          `json:"id"`
	TenantID         string          `json:"tenantId"`
	UserID           string          `json:"userId"`
	WeekStartDate    time.Time       `json:"weekStartDate"`
	WeekEndDate      time.Time       `json:"weekEndDate"`
	TotalHours       decimal.Decimal `json:"totalHours"`
	Status           string          `json:"status"`
	Notes            *string         `json:"notes,omitempty"`
	ReviewedBy       *string         `json:"reviewedBy,omitempty"`
	ReviewedAt       *time.Time      `json:"reviewedAt,omitempty"`
	ReviewerComments *string         `json:"reviewerComments,omitempty"`
	SubmittedAt      time.Time       `json:"submittedAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}
