package leave

import (
	"testing"
	"time"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestBankHolidays2025(t *testing.T) {
	want := []time.Time{
		day(2025, time.January, 1),
		day(2025, time.April, 18), // Good Friday
		day(2025, time.April, 21), // Easter Monday
		day(2025, time.May, 5),
		day(2025, time.May, 26),
		day(2025, time.August, 25),
		day(2025, time.December, 25),
		day(2025, time.December, 26),
	}

	got := map[time.Time]bool{}
	for _, d := range BankHolidays(2025) {
		got[d] = true
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d holidays, got %d", len(want), len(got))
	}
	for _, d := range want {
		if !got[d] {
			t.Errorf("missing holiday %s", d.Format("2006-01-02"))
		}
	}
}

func TestBankHolidaySubstitution(t *testing.T) {
	// Boxing Day 2026 is a Saturday; it moves to Monday 28 December.
	got := map[time.Time]bool{}
	for _, d := range BankHolidays(2026) {
		got[d] = true
	}
	if got[day(2026, time.December, 26)] {
		t.Error("Boxing Day 2026 should not be observed on the Saturday")
	}
	if !got[day(2026, time.December, 28)] {
		t.Error("Boxing Day 2026 should be observed on Monday 28 December")
	}

	// Christmas 2027 is a Saturday and Boxing Day a Sunday: both shift,
	// landing on Monday 27 and Tuesday 28.
	got = map[time.Time]bool{}
	for _, d := range BankHolidays(2027) {
		got[d] = true
	}
	if !got[day(2027, time.December, 27)] || !got[day(2027, time.December, 28)] {
		t.Error("Christmas and Boxing Day 2027 should be observed on 27 and 28 December")
	}
}

func TestCalculateWorkingDays(t *testing.T) {
	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"full week", day(2026, time.March, 2), day(2026, time.March, 6), 5},
		{"single day", day(2026, time.March, 4), day(2026, time.March, 4), 1},
		{"weekend only", day(2026, time.March, 7), day(2026, time.March, 8), 0},
		{"span includes weekend", day(2026, time.March, 6), day(2026, time.March, 9), 2},
		{"week with Good Friday", day(2025, time.April, 14), day(2025, time.April, 18), 4},
		{"end before start", day(2026, time.March, 6), day(2026, time.March, 2), 0},
	}
	for _, tc := range cases {
		if got := CalculateWorkingDays(tc.start, tc.end); got != tc.want {
			t.Errorf("%s: expected %d working days, got %d", tc.name, tc.want, got)
		}
	}
}
