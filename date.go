package pops

import "time"

// Date is the calendar oracle the Scheduler builds its step list from:
// last-day-of-month, last-day-of-week (a 7-day step window, with the
// year's final short window folded into the one before it), leap-year-
// aware day counts, ordering, and increment by day, week, month or year.
// It is a thin, explicitly out-of-hard-scope collaborator
// per spec.md §1 — wrapping time.Time is the only reasonable choice here
// since none of the example repos carry a calendar library, and hand
// rolling Gregorian leap/month-length arithmetic on top of the standard
// library's already-correct implementation would just reinvent it less
// reliably.
type Date struct {
	t time.Time
}

// NewDate validates year/month/day and returns a Date at UTC midnight.
// Fails with a range condition on an invalid day-of-month (including
// non-leap Feb 29) or a month outside 1-12.
func NewDate(year, month, day int) (Date, error) {
	if month < 1 || month > 12 {
		return Date{}, newError(KindOutOfRange, "NewDate", "month %d out of range [1,12]", month)
	}
	if day < 1 || day > daysInMonth(year, month) {
		return Date{}, newError(KindOutOfRange, "NewDate", "day %d out of range for %04d-%02d", day, year, month)
	}
	return Date{t: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}, nil
}

func daysInMonth(year, month int) int {
	if month == 2 && IsLeapYear(year) {
		return 29
	}
	return [...]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}[month-1]
}

// IsLeapYear reports whether year is a Gregorian leap year.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// Year, Month and Day accessors (Month is 1-12).
func (d Date) Year() int  { return d.t.Year() }
func (d Date) Month() int { return int(d.t.Month()) }
func (d Date) Day() int   { return d.t.Day() }

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

// Equal reports whether d and other name the same calendar day.
func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

// AddDays returns the date n days later (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// IncreasedByDay returns the next calendar day.
func (d Date) IncreasedByDay() Date { return d.AddDays(1) }

// IncreasedByWeek returns the date 7 days later.
func (d Date) IncreasedByWeek() Date { return d.AddDays(7) }

// IncreasedByMonth returns the same day-of-month one month later, clamped
// to the last day of the target month if it is shorter.
func (d Date) IncreasedByMonth() Date {
	year, month := d.Year(), d.Month()+1
	if month > 12 {
		month = 1
		year++
	}
	day := d.Day()
	if max := daysInMonth(year, month); day > max {
		day = max
	}
	result, _ := NewDate(year, month, day)
	return result
}

// IncreasedByYear returns the same month/day one year later, clamped to
// Feb 28 when d is a Feb 29 falling on a non-leap target year.
func (d Date) IncreasedByYear() Date {
	year := d.Year() + 1
	day := d.Day()
	if max := daysInMonth(year, d.Month()); day > max {
		day = max
	}
	result, _ := NewDate(year, d.Month(), day)
	return result
}

// IsLastMonthOfYear reports whether d falls in December.
func (d Date) IsLastMonthOfYear() bool { return d.Month() == 12 }

// GetLastDayOfMonth returns the last calendar day of d's month.
func (d Date) GetLastDayOfMonth() Date {
	result, _ := NewDate(d.Year(), d.Month(), daysInMonth(d.Year(), d.Month()))
	return result
}

// GetLastDayOfWeek returns the last day of the 7-day step window that
// starts on d, normally d+6. A week whose window would leave fewer than
// two full weeks remaining in the calendar year instead extends through
// December 31, folding that short trailing remainder into the current
// week rather than starting a truncated final week. This is the rule
// _examples/original_source/test_date.cpp exercises directly: 2019-04-04
// (well over 14 days from year end) advances to 2019-04-10, 2019-12-17
// (exactly 14 days out) also advances normally to 2019-12-23, but
// 2019-12-18 (13 days out) extends straight through 2019-12-31.
func (d Date) GetLastDayOfWeek() Date {
	yearEnd, _ := NewDate(d.Year(), 12, 31)
	daysToYearEnd := int(yearEnd.t.Sub(d.t).Hours() / 24)
	if daysToYearEnd < 14 {
		return yearEnd
	}
	return d.AddDays(6)
}

// String renders d as "YYYY-MM-DD".
func (d Date) String() string { return d.t.Format("2006-01-02") }
