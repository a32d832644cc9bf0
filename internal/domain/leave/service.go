package leave

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Service struct {
	Store StoreAPI

	// StandardDayHours converts between leave days and TOIL hours.
	StandardDayHours   decimal.Decimal
	DefaultEntitlement decimal.Decimal
	MaxCarryover       decimal.Decimal
}

func NewService(store StoreAPI, standardDayHours, defaultEntitlement, maxCarryover decimal.Decimal) *Service {
	return &Service{
		Store:              store,
		StandardDayHours:   standardDayHours,
		DefaultEntitlement: defaultEntitlement,
		MaxCarryover:       maxCarryover,
	}
}

type RequestInput struct {
	LeaveType string
	StartDate time.Time
	EndDate   time.Time
	Reason    string
}

// CreateRequest validates and persists a pending leave request. Balance
// sufficiency is checked here and checked again under lock at approval.
func (s *Service) CreateRequest(ctx context.Context, tenantID, userID string, input RequestInput, now time.Time) (Request, error) {
	if !ValidType(input.LeaveType) {
		return Request{}, ErrInvalidType
	}

	start := dateOnly(input.StartDate)
	end := dateOnly(input.EndDate)
	today := dateOnly(now)
	if start.Before(today) {
		return Request{}, ErrPastStartDate
	}
	if end.Before(start) {
		return Request{}, ErrEndBeforeStart
	}

	workingDays := CalculateWorkingDays(start, end)
	if workingDays < 1 {
		return Request{}, ErrNoWorkingDays
	}
	days := decimal.NewFromInt(int64(workingDays))

	var created Request
	err := s.Store.InTx(ctx, func(store StoreAPI) error {
		overlap, err := store.HasOverlappingRequest(ctx, tenantID, userID, start, end)
		if err != nil {
			return err
		}
		if overlap {
			return ErrOverlap
		}

		balance, err := store.GetOrCreateBalance(ctx, tenantID, userID, now.Year(), s.DefaultEntitlement)
		if err != nil {
			return err
		}
		if err := s.checkSufficiency(balance, input.LeaveType, days); err != nil {
			return err
		}

		var reason *string
		if input.Reason != "" {
			reason = &input.Reason
		}
		created, err = store.InsertRequest(ctx, Request{
			TenantID:  tenantID,
			UserID:    userID,
			LeaveType: input.LeaveType,
			StartDate: start,
			EndDate:   end,
			DaysCount: days,
			Status:    StatusPending,
			Reason:    reason,
		})
		return err
	})
	return created, err
}

// checkSufficiency gates annual and TOIL requests against the balance row.
// Sick and unpaid leave are not balance-limited.
func (s *Service) checkSufficiency(balance Balance, leaveType string, days decimal.Decimal) error {
	switch leaveType {
	case TypeAnnual:
		available := balance.AnnualRemaining()
		if days.GreaterThan(available) {
			return &InsufficientAnnualError{AvailableDays: available, RequestedDays: days}
		}
	case TypeToil:
		if !balance.ToilBalance.IsPositive() {
			return ErrNoToilBalance
		}
		hours := days.Mul(s.StandardDayHours)
		if hours.GreaterThan(balance.ToilBalance) {
			return &InsufficientToilError{
				AvailableHours: balance.ToilBalance,
				RequestedHours: hours,
				AvailableDays:  balance.ToilBalance.DivRound(s.StandardDayHours, 2),
				RequestedDays:  days,
			}
		}
	}
	return nil
}

// Approve moves a pending request to approved and applies the balance
// deduction in the same transaction, re-checking sufficiency under the row
// lock.
func (s *Service) Approve(ctx context.Context, tenantID, requestID, reviewerID, comments string, now time.Time) (Request, error) {
	var approved Request
	err := s.Store.InTx(ctx, func(store StoreAPI) error {
		req, err := store.GetRequestForUpdate(ctx, tenantID, requestID)
		if err != nil {
			return err
		}
		if req.Status != StatusPending {
			return ErrInvalidState
		}

		year := now.Year()
		switch req.LeaveType {
		case TypeAnnual:
			balance, err := store.GetBalanceForUpdate(ctx, tenantID, req.UserID, year, s.DefaultEntitlement)
			if err != nil {
				return err
			}
			if err := s.checkSufficiency(balance, req.LeaveType, req.DaysCount); err != nil {
				return err
			}
			if err := store.AddDaysUsed(ctx, tenantID, req.UserID, year, req.DaysCount); err != nil {
				return err
			}
		case TypeToil:
			balance, err := store.GetBalanceForUpdate(ctx, tenantID, req.UserID, year, s.DefaultEntitlement)
			if err != nil {
				return err
			}
			if err := s.checkSufficiency(balance, req.LeaveType, req.DaysCount); err != nil {
				return err
			}
			hours := req.DaysCount.Mul(s.StandardDayHours)
			if err := store.DeductToil(ctx, tenantID, req.UserID, year, hours); err != nil {
				return err
			}
		case TypeSick:
			if _, err := store.GetBalanceForUpdate(ctx, tenantID, req.UserID, year, s.DefaultEntitlement); err != nil {
				return err
			}
			if err := store.AddSickDaysUsed(ctx, tenantID, req.UserID, year, req.DaysCount); err != nil {
				return err
			}
		}

		if err := store.ReviewRequest(ctx, tenantID, requestID, StatusApproved, reviewerID, comments); err != nil {
			return err
		}
		approved, err = store.GetRequest(ctx, tenantID, requestID)
		return err
	})
	return approved, err
}

// Reject never touches the balance.
func (s *Service) Reject(ctx context.Context, tenantID, requestID, reviewerID, comments string) (Request, error) {
	var rejected Request
	err := s.Store.InTx(ctx, func(store StoreAPI) error {
		req, err := store.GetRequestForUpdate(ctx, tenantID, requestID)
		if err != nil {
			return err
		}
		if req.Status != StatusPending {
			return ErrInvalidState
		}
		if err := store.ReviewRequest(ctx, tenantID, requestID, StatusRejected, reviewerID, comments); err != nil {
			return err
		}
		rejected, err = store.GetRequest(ctx, tenantID, requestID)
		return err
	})
	return rejected, err
}

// Cancel is allowed for the requester or an admin. Cancelling an approved
// request restores exactly what approval deducted; cancelling a pending one
// is a pure status change.
func (s *Service) Cancel(ctx context.Context, tenantID, requestID, actorID string, actorIsAdmin bool, now time.Time) (Request, error) {
	var cancelled Request
	err := s.Store.InTx(ctx, func(store StoreAPI) error {
		req, err := store.GetRequestForUpdate(ctx, tenantID, requestID)
		if err != nil {
			return err
		}
		if req.UserID != actorID && !actorIsAdmin {
			return ErrNotOwner
		}

		switch req.Status {
		case StatusPending:
			// no balance effect
		case StatusApproved:
			year := now.Year()
			if _, err := store.GetBalanceForUpdate(ctx, tenantID, req.UserID, year, s.DefaultEntitlement); err != nil {
				return err
			}
			switch req.LeaveType {
			case TypeAnnual:
				if err := store.AddDaysUsed(ctx, tenantID, req.UserID, year, req.DaysCount.Neg()); err != nil {
					return err
				}
			case TypeToil:
				hours := req.DaysCount.Mul(s.StandardDayHours)
				if err := store.RestoreToil(ctx, tenantID, req.UserID, year, hours); err != nil {
					return err
				}
			case TypeSick:
				if err := store.AddSickDaysUsed(ctx, tenantID, req.UserID, year, req.DaysCount.Neg()); err != nil {
					return err
				}
			}
		default:
			return ErrInvalidState
		}

		if err := store.CancelRequest(ctx, tenantID, requestID); err != nil {
			return err
		}
		cancelled, err = store.GetRequest(ctx, tenantID, requestID)
		return err
	})
	return cancelled, err
}

func (s *Service) Get(ctx context.Context, tenantID, requestID string) (Request, error) {
	return s.Store.GetRequest(ctx, tenantID, requestID)
}

func (s *Service) Balance(ctx context.Context, tenantID, userID string, year int) (Balance, error) {
	return s.Store.GetOrCreateBalance(ctx, tenantID, userID, year, s.DefaultEntitlement)
}

func (s *Service) History(ctx context.Context, tenantID, userID string, filter RequestFilter, limit, offset int) ([]Request, int, error) {
	return s.Store.ListRequests(ctx, tenantID, userID, filter, limit, offset)
}

func (s *Service) TeamRequests(ctx context.Context, tenantID string, userIDs []string, filter RequestFilter, limit, offset int) ([]Request, int, error) {
	return s.Store.ListRequestsForUsers(ctx, tenantID, userIDs, filter, limit, offset)
}

func (s *Service) BalancesForYear(ctx context.Context, tenantID string, year int) ([]Balance, error) {
	return s.Store.ListBalancesForYear(ctx, tenantID, year)
}

func (s *Service) Calendar(ctx context.Context, tenantID string, from, to time.Time) ([]CalendarEntry, error) {
	return s.Store.CalendarEntries(ctx, tenantID, dateOnly(from), dateOnly(to))
}

func (s *Service) UpdateEntitlement(ctx context.Context, tenantID, userID string, year int, days decimal.Decimal) (Balance, error) {
	if days.IsNegative() {
		return Balance{}, ErrInvalidEntitlement
	}
	return s.Store.SetEntitlement(ctx, tenantID, userID, year, days, s.DefaultEntitlement)
}

func (s *Service) SetCarryover(ctx context.Context, tenantID, userID string, year int, days decimal.Decimal) (Balance, error) {
	if days.IsNegative() || days.GreaterThan(s.MaxCarryover) {
		return Balance{}, ErrInvalidCarryover
	}
	return s.Store.SetCarryover(ctx, tenantID, userID, year, days, s.DefaultEntitlement)
}

// RunCarryover rolls unused annual entitlement from fromYear into the next
// year, capped at MaxCarryover days per user.
func (s *Service) RunCarryover(ctx context.Context, tenantID string, fromYear int) (CarryoverSummary, error) {
	summary := CarryoverSummary{FromYear: fromYear, ToYear: fromYear + 1}
	err := s.Store.InTx(ctx, func(store StoreAPI) error {
		balances, err := store.ListBalancesForYear(ctx, tenantID, fromYear)
		if err != nil {
			return err
		}
		for _, balance := range balances {
			carry := balance.AnnualRemaining()
			if carry.IsNegative() {
				carry = decimal.Zero
			}
			if carry.GreaterThan(s.MaxCarryover) {
				carry = s.MaxCarryover
			}
			if _, err := store.SetCarryover(ctx, tenantID, balance.UserID, fromYear+1, carry, s.DefaultEntitlement); err != nil {
				return err
			}
			summary.UsersProcessed++
		}
		return nil
	})
	if err != nil {
		return CarryoverSummary{}, err
	}
	return summary, nil
}
