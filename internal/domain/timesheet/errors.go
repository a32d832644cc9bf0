package timesheet

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound         = errors.New("timesheet submission not found")
	ErrInvalidState     = errors.New("submission is not awaiting review")
	ErrDuplicatePending = errors.New("a timesheet for this week is already awaiting approval")
	ErrInvalidWeek      = errors.New("week must start on a Monday and span seven days")
)

type MinHoursError struct {
	Minimum decimal.Decimal
	Got     decimal.Decimal
}

func (e *MinHoursError) Error() string {
	return fmt.Sprintf("total hours must be at least %s, got %s", e.Minimum, e.Got)
}
