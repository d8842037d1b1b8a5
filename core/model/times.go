package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PlanTimeLayout is the absolute timestamp format of the problem files.
const PlanTimeLayout = "2006-01-02 15:04:05"

// ParsePlanTime parses an absolute "YYYY-MM-DD HH:MM:SS" timestamp.
func ParsePlanTime(s string) (time.Time, error) {
	return time.Parse(PlanTimeLayout, s)
}

// ParseTimeToken parses a time-window bound: either an absolute timestamp or
// a compact week token "v<YY><WW>" (e.g. "v2410" for week 10 of 2024). For
// week tokens, endOfWeek selects the seventh day of the week instead of the
// first; it is always computed as first day + 6 days.
func ParseTimeToken(s string, endOfWeek bool) (time.Time, error) {
	if strings.HasPrefix(s, "v") {
		return parseWeekToken(s, endOfWeek)
	}
	return ParsePlanTime(s)
}

func parseWeekToken(s string, endOfWeek bool) (time.Time, error) {
	if len(s) != 5 {
		return time.Time{}, fmt.Errorf("invalid week token %q", s)
	}
	yy, err := strconv.Atoi(s[1:3])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid week token %q: %w", s, err)
	}
	ww, err := strconv.Atoi(s[3:5])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid week token %q: %w", s, err)
	}
	if ww < 1 || ww > 53 {
		return time.Time{}, fmt.Errorf("week token %q: week %d out of range", s, ww)
	}
	day := firstDayOfWeek(2000+yy, ww)
	if endOfWeek {
		day = day.AddDate(0, 0, 6)
	}
	return day, nil
}

// firstDayOfWeek returns the Monday of the given ISO week. Week 1 is the
// week containing January 4.
func firstDayOfWeek(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	wd := int(jan4.Weekday())
	if wd == 0 {
		wd = 7
	}
	monday := jan4.AddDate(0, 0, -(wd - 1))
	return monday.AddDate(0, 0, (week-1)*7)
}
