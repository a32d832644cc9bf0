package timesheet

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Service struct {
	Store          StoreAPI
	MinWeeklyHours decimal.Decimal
}

func NewService(store StoreAPI, minWeeklyHours decimal.Decimal) *Service {
	return &Service{Store: store, MinWeeklyHours: minWeeklyHours}
}

type SubmitInput struct {
	WeekStartDate time.Time
	TotalHours    decimal.Decimal
	Notes         string
}

// Submit records a weekly timesheet. A week already awaiting review cannot
// be submitted twice; a week that was rejected comes back as resubmitted.
func (s *Service) Submit(ctx context.Context, tenantID, userID string, input SubmitInput) (Submission, error) {
	weekStart := dateOnly(input.WeekStartDate)
	if weekStart.Weekday() != time.Monday {
		return Submission{}, ErrInvalidWeek
	}
	if input.TotalHours.LessThan(s.MinWeeklyHours) {
		return Submission{}, &MinHoursError{Minimum: s.MinWeeklyHours, Got: input.TotalHours}
	}

	var created Submission
	err := s.Store.InTx(ctx, func(store StoreAPI) error {
		awaiting, err := store.HasAwaitingForWeek(ctx, tenantID, userID, weekStart)
		if err != nil {
			return err
		}
		if awaiting {
			return ErrDuplicatePending
		}

		status := StatusPending
		rejected, err := store.HasRejectedForWeek(ctx, tenantID, userID, weekStart)
		if err != nil {
			return err
		}
		if rejected {
			status = StatusResubmitted
		}

		var notes *string
		if input.Notes != "" {
			notes = &input.Notes
		}
		created, err = store.Insert(ctx, Submission{
			TenantID:      tenantID,
			UserID:        userID,
			WeekStartDate: weekStart,
			WeekEndDate:   weekStart.AddDate(0, 0, 6),
			TotalHours:    input.TotalHours,
			Status:        status,
			Notes:         notes,
		})
		return err
	})
	return created, err
}

func (s *Service) Reject(ctx context.Context, tenantID, submissionID, reviewerID, comments string) (Submission, error) {
	var rejected Submission
	err := s.Store.InTx(ctx, func(store StoreAPI) error {
		sub, err := store.GetForUpdate(ctx, tenantID, submissionID)
		if err != nil {
			return err
		}
		if !Awaiting(sub.Status) {
			return ErrInvalidState
		}
		if err := store.Review(ctx, tenantID, submissionID, StatusRejected, reviewerID, comments); err != nil {
			return err
		}
		rejected, err = store.Get(ctx, tenantID, submissionID)
		return err
	})
	return rejected, err
}

type BulkFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

type BulkResult struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// BulkReject processes each id independently; one failure never rolls back
// the others.
func (s *Service) BulkReject(ctx context.Context, tenantID string, submissionIDs []string, reviewerID, comments string) BulkResult {
	result := BulkResult{Succeeded: []string{}, Failed: []BulkFailure{}}
	for _, id := range submissionIDs {
		if _, err := s.Reject(ctx, tenantID, id, reviewerID, comments); err != nil {
			result.Failed = append(result.Failed, BulkFailure{ID: id, Reason: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	return result
}

// Status returns the latest submission for a week.
func (s *Service) Status(ctx context.Context, tenantID, userID string, weekStart time.Time) (Submission, error) {
	return s.Store.LatestForWeek(ctx, tenantID, userID, dateOnly(weekStart))
}

func (s *Service) Get(ctx context.Context, tenantID, submissionID string) (Submission, error) {
	return s.Store.Get(ctx, tenantID, submissionID)
}

func (s *Service) PendingReview(ctx context.Context, tenantID string, limit, offset int) ([]Submission, int, error) {
	return s.Store.ListAwaiting(ctx, tenantID, limit, offset)
}

func (s *Service) History(ctx context.Context, tenantID, userID string, limit, offset int) ([]Submission, int, error) {
	return s.Store.ListForUser(ctx, tenantID, userID, limit, offset)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
