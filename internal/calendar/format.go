package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var weekdayLabels = [...]string{"周日", "周一", "周二", "周三", "周四", "周五", "周六"}

// WeekdayLabel returns the Chinese short weekday name of d (周日..周六).
func WeekdayLabel(d Date) string { return weekdayLabels[d.Weekday()] }

// FormatChinese renders d as "2025年9月13日 周六".
func FormatChinese(d Date) string {
	return fmt.Sprintf("%d年%d月%d日 %s", d.Year, int(d.Month), d.Day, WeekdayLabel(d))
}

// FormatShort renders d as "9月13日".
func FormatShort(d Date) string {
	return fmt.Sprintf("%d月%d日", int(d.Month), d.Day)
}

// IsToday reports whether d is the calendar day of now.
func IsToday(d Date, now time.Time) bool { return d.Equal(Today(now)) }

// IsTomorrow reports whether d is the day after now.
func IsTomorrow(d Date, now time.Time) bool { return d.Equal(Today(now).AddDays(1)) }

// RelativeLabel returns "今天", "明天", or "9月13日 周六" for any other day.
func RelativeLabel(d Date, now time.Time) string {
	switch {
	case IsToday(d, now):
		return "今天"
	case IsTomorrow(d, now):
		return "明天"
	default:
		return FormatShort(d) + " " + WeekdayLabel(d)
	}
}

// UpcomingDates returns n consecutive days starting with today.
func UpcomingDates(now time.Time, n int) []Date {
	if n <= 0 {
		return nil
	}
	out := make([]Date, 0, n)
	today := Today(now)
	for i := 0; i < n; i++ {
		out = append(out, today.AddDays(i))
	}
	return out
}

// IsTimePassed reports whether hh:mm on d has already passed at now.  Only the
// current day can have passed times; a time equal to now's minute counts as
// passed.  Malformed clock strings are treated as passed.
func IsTimePassed(d Date, clock string, now time.Time) bool {
	if !IsToday(d, now) {
		return false
	}
	hour, minute, ok := parseClock(clock)
	if !ok {
		return true
	}
	return hour < now.Hour() || (hour == now.Hour() && minute <= now.Minute())
}

func parseClock(s string) (int, int, bool) {
	h, m, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
