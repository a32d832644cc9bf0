package capacity

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSetCapacityRejectsOutOfRangeHours(t *testing.T) {
	svc := NewService(nil)
	effective := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	if _, err := svc.SetCapacity(context.Background(), "t1", "u1", decimal.NewFromInt(-1), effective); err != ErrInvalidHours {
		t.Fatalf("expected ErrInvalidHours for negative hours, got %v", err)
	}
	if _, err := svc.SetCapacity(context.Background(), "t1", "u1", decimal.NewFromInt(169), effective); err != ErrInvalidHours {
		t.Fatalf("expected ErrInvalidHours for hours above a week, got %v", err)
	}
}
