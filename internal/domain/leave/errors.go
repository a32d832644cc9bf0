package leave

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound       = errors.New("leave request not found")
	ErrInvalidState   = errors.New("request is not in a state that allows this action")
	ErrNotOwner       = errors.New("request belongs to another user")
	ErrPastStartDate  = errors.New("cannot request leave starting in the past")
	ErrEndBeforeStart = errors.New("end date must be on or after start date")
	ErrNoWorkingDays  = errors.New("selected range contains no working days")
	ErrOverlap        = errors.New("an overlapping leave request already exists")
	ErrInvalidType    = errors.New("unknown leave type")

	ErrInvalidEntitlement = errors.New("entitlement must not be negative")
	ErrInvalidCarryover   = errors.New("carryover days out of range")

	// ErrNoToilBalance is returned when a TOIL request is made with an empty
	// balance. The wording is part of the client contract.
	ErrNoToilBalance = errors.New("You have no TOIL balance available. TOIL is earned through approved overtime hours.")
)

// InsufficientToilError reports a TOIL request that exceeds the available
// balance. Hours and days are both included in the message.
type InsufficientToilError struct {
	AvailableHours decimal.Decimal
	RequestedHours decimal.Decimal
	AvailableDays  decimal.Decimal
	RequestedDays  decimal.Decimal
}

func (e *InsufficientToilError) Error() string {
	return fmt.Sprintf(
		"Insufficient TOIL balance. You have %s hours (%s days) available, but are requesting %s hours (%s days).",
		e.AvailableHours, e.AvailableDays, e.RequestedHours, e.RequestedDays)
}

type InsufficientAnnualError struct {
	AvailableDays decimal.Decimal
	RequestedDays decimal.Decimal
}

func (e *InsufficientAnnualError) Error() string {
	return fmt.Sprintf(
		"Insufficient annual leave balance. You have %s days available, but are requesting %s days.",
		e.AvailableDays, e.RequestedDays)
}
