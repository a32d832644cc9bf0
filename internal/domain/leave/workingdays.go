package leave

import "time"

// CalculateWorkingDays counts the days between start and end inclusive,
// excluding weekends and England & Wales bank holidays.
func CalculateWorkingDays(start, end time.Time) int {
	start = dateOnly(start)
	end = dateOnly(end)
	if end.Before(start) {
		return 0
	}

	holidays := map[time.Time]struct{}{}
	for year := start.Year(); year <= end.Year(); year++ {
		for _, day := range BankHolidays(year) {
			holidays[day] = struct{}{}
		}
	}

	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		if _, ok := holidays[d]; ok {
			continue
		}
		count++
	}
	return count
}

// BankHolidays returns the England & Wales bank holidays for a year:
// New Year's Day, Good Friday, Easter Monday, the early May and spring
// bank holidays, the summer bank holiday, Christmas Day and Boxing Day.
// Holidays falling on a weekend move to the next free weekday.
func BankHolidays(year int) []time.Time {
	easter := easterSunday(year)

	days := []time.Time{
		easter.AddDate(0, 0, -2), // Good Friday
		easter.AddDate(0, 0, 1),  // Easter Monday
		firstWeekdayOf(year, time.May, time.Monday),
		lastWeekdayOf(year, time.May, time.Monday),
		lastWeekdayOf(year, time.August, time.Monday),
	}

	taken := map[time.Time]struct{}{}
	for _, d := range days {
		taken[d] = struct{}{}
	}
	days = append(days, substituteDay(date(year, time.January, 1), taken))
	days = append(days, substituteDay(date(year, time.December, 25), taken))
	days = append(days, substituteDay(date(year, time.December, 26), taken))
	return days
}

// substituteDay shifts a weekend holiday to the next weekday not already
// taken by another holiday.
func substituteDay(d time.Time, taken map[time.Time]struct{}) time.Time {
	for {
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
			if _, ok := taken[d]; !ok {
				taken[d] = struct{}{}
				return d
			}
		}
		d = d.AddDate(0, 0, 1)
	}
}

// easterSunday uses the anonymous Gregorian computus.
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return date(year, time.Month(month), day)
}

func firstWeekdayOf(year int, month time.Month, weekday time.Weekday) time.Time {
	d := date(year, month, 1)
	for d.Weekday() != weekday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func lastWeekdayOf(year int, month time.Month, weekday time.Weekday) time.Time {
	d := date(year, month+1, 1).AddDate(0, 0, -1)
	for d.Weekday() != weekday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
