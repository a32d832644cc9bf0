package toil

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"practicehub/internal/domain/timesheet"
)

// Engine owns the overtime-to-TOIL workflow: timesheet approval with its
// accrual, balance reads and the expiry sweep.
type Engine struct {
	Store              AccrualStore
	StandardDayHours   decimal.Decimal
	DefaultEntitlement decimal.Decimal
	ExpiryMonths       int
}

func NewEngine(store AccrualStore, standardDayHours, defaultEntitlement decimal.Decimal, expiryMonths int) *Engine {
	return &Engine{
		Store:              store,
		StandardDayHours:   standardDayHours,
		DefaultEntitlement: defaultEntitlement,
		ExpiryMonths:       expiryMonths,
	}
}

// Overtime is logged hours minus contracted hours. Negative means the week
// was under contract and earns nothing.
func Overtime(totalHours, contractedHours decimal.Decimal) decimal.Decimal {
	return totalHours.Sub(contractedHours)
}

type ApprovalResult struct {
	Submission timesheet.Submission `json:"submission"`
	Accrual    *Accrual             `json:"accrual,omitempty"`
}

// ApproveTimesheet approves a submission and accrues any overtime as TOIL.
// The status change, the accrual row and the balance increment commit in one
// transaction; a missing capacity record aborts the approval entirely.
func (e *Engine) ApproveTimesheet(ctx context.Context, tenantID, submissionID, reviewerID, comments string, now time.Time) (ApprovalResult, error) {
	var result ApprovalResult
	err := e.Store.InTx(ctx, func(store AccrualStore) error {
		sub, err := store.SubmissionForUpdate(ctx, tenantID, submissionID)
		if err != nil {
			return err
		}
		if !timesheet.Awaiting(sub.Status) {
			return timesheet.ErrInvalidState
		}

		if err := store.MarkSubmissionApproved(ctx, tenantID, submissionID, reviewerID, comments); err != nil {
			return err
		}

		contracted, err := store.ContractedHoursForWeek(ctx, tenantID, sub.UserID, sub.WeekStartDate)
		if err != nil {
			return err
		}

		sub.Status = timesheet.StatusApproved
		sub.ReviewedBy = &reviewerID
		reviewedAt := now
		sub.ReviewedAt = &reviewedAt
		if comments != "" {
			sub.ReviewerComments = &comments
		}
		result.Submission = sub

		overtime := Overtime(sub.TotalHours, contracted)
		if !overtime.IsPositive() {
			return nil
		}

		expiry := sub.WeekEndDate.AddDate(0, e.ExpiryMonths, 0)
		rec, err := store.InsertAccrual(ctx, Accrual{
			TenantID:        tenantID,
			UserID:          sub.UserID,
			TimesheetID:     &sub.ID,
			WeekEnding:      sub.WeekEndDate,
			HoursAccrued:    overtime,
			LoggedHours:     sub.TotalHours,
			ContractedHours: contracted,
			ExpiryDate:      &expiry,
		})
		if err != nil {
			return err
		}
		result.Accrual = &rec

		return store.AddToilBalance(ctx, tenantID, sub.UserID, now.Year(), overtime, e.DefaultEntitlement)
	})
	if err != nil {
		return ApprovalResult{}, err
	}
	return result, nil
}

// BulkApprove runs each approval in its own transaction: one failed item
// reports its reason and the rest proceed.
func (e *Engine) BulkApprove(ctx context.Context, tenantID string, submissionIDs []string, reviewerID, comments string, now time.Time) BulkResult {
	result := BulkResult{Succeeded: []string{}, Failed: []BulkFailure{}}
	for _, id := range submissionIDs {
		approved, err := e.ApproveTimesheet(ctx, tenantID, id, reviewerID, comments, now)
		if err != nil {
			result.Failed = append(result.Failed, BulkFailure{ID: id, Reason: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
		if approved.Accrual != nil {
			result.Accrued++
		}
	}
	return result
}

func (e *Engine) Balance(ctx context.Context, tenantID, userID string, year int) (BalanceSummary, error) {
	hours, err := e.Store.ToilBalance(ctx, tenantID, userID, year)
	if err != nil {
		return BalanceSummary{}, err
	}
	return BalanceSummary{
		Year:         year,
		BalanceHours: hours,
		BalanceDays:  hours.DivRound(e.StandardDayHours, 2),
	}, nil
}

func (e *Engine) History(ctx context.Context, tenantID, userID string, limit, offset int) ([]Accrual, int, error) {
	return e.Store.ListAccruals(ctx, tenantID, userID, limit, offset)
}
