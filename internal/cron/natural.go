package cron

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrNotRecognized is returned by ParseNatural when the phrase does not
// match any supported pattern.
var ErrNotRecognized = fmt.Errorf("not recognized")

var (
	reEveryDayAt     = regexp.MustCompile(`^every day at (\d{1,2})(?::(\d{2}))?$`)
	reWeekdaysAt     = regexp.MustCompile(`^weekdays at (\d{1,2})(?::(\d{2}))?$`)
	reWeekendsAt     = regexp.MustCompile(`^weekends at (\d{1,2})(?::(\d{2}))?$`)
	reEveryWeekOnAt  = regexp.MustCompile(`^every week on (\w+) at (\d{1,2})(?::(\d{2}))?$`)
	reEveryMonthOnAt = regexp.MustCompile(`^every month on the (\d{1,2})(?:st|nd|rd|th)? at (\d{1,2})(?::(\d{2}))?$`)
	reEveryNMinutes  = regexp.MustCompile(`^every (\d+) minutes?$`)
	reEveryNHours    = regexp.MustCompile(`^every (\d+) hours?$`)
	reTomorrowAt     = regexp.MustCompile(`^tomorrow at (\d{1,2})(?::(\d{2}))?$`)
	reTodayAt        = regexp.MustCompile(`^today at (\d{1,2})(?::(\d{2}))?$`)
	reInNMinutes     = regexp.MustCompile(`^in (\d+) minutes?$`)
	reInNHours       = regexp.MustCompile(`^in (\d+) hours?$`)
	reDateTime       = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}) (\d{2}):(\d{2})$`)
)

// ParseNatural resolves a natural-language schedule phrase into either a
// recurring cron expression or a concrete future instant, in the given
// timezone relative to now. Matching is case-insensitive and phrases are
// trimmed before matching. Returns ErrNotRecognized if nothing matches.
func ParseNatural(phrase string, now time.Time, loc *time.Location) (Schedule, error) {
	p := strings.ToLower(strings.TrimSpace(phrase))
	if loc == nil {
		loc = time.UTC
	}

	if m := reEveryDayAt.FindStringSubmatch(p); m != nil {
		h, mm, err := hourMinute(m[1], m[2])
		if err != nil {
			return Schedule{}, err
		}
		return Schedule{Kind: ScheduleCron, Expression: fmt.Sprintf("%d %d * * *", mm, h), Timezone: loc.String()}, nil
	}
	if m := reWeekdaysAt.FindStringSubmatch(p); m != nil {
		h, mm, err := hourMinute(m[1], m[2])
		if err != nil {
			return Schedule{}, err
		}
		return Schedule{Kind: ScheduleCron, Expression: fmt.Sprintf("%d %d * * 1-5", mm, h), Timezone: loc.String()}, nil
	}
	if m := reWeekendsAt.FindStringSubmatch(p); m != nil {
		h, mm, err := hourMinute(m[1], m[2])
		if err != nil {
			return Schedule{}, err
		}
		return Schedule{Kind: ScheduleCron, Expression: fmt.Sprintf("%d %d * * 0,6", mm, h), Timezone: loc.String()}, nil
	}
	if m := reEveryWeekOnAt.FindStringSubmatch(p); m != nil {
		dow, ok := longestWeekdayMatch(m[1])
		if !ok {
			return Schedule{}, ErrNotRecognized
		}
		h, mm, err := hourMinute(m[2], m[3])
		if err != nil {
			return Schedule{}, err
		}
		return Schedule{Kind: ScheduleCron, Expression: fmt.Sprintf("%d %d * * %d", mm, h, dow), Timezone: loc.String()}, nil
	}
	if m := reEveryMonthOnAt.FindStringSubmatch(p); m != nil {
		day, err := strconv.Atoi(m[1])
		if err != nil || day < 1 || day > 31 {
			return Schedule{}, ErrNotRecognized
		}
		h, mm, err := hourMinute(m[2], m[3])
		if err != nil {
			return Schedule{}, err
		}
		return Schedule{Kind: ScheduleCron, Expression: fmt.Sprintf("%d %d %d * *", mm, h, day), Timezone: loc.String()}, nil
	}
	if m := reEveryNMinutes.FindStringSubmatch(p); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return Schedule{}, ErrNotRecognized
		}
		return everySchedule(now, time.Duration(n)*time.Minute), nil
	}
	if m := reEveryNHours.FindStringSubmatch(p); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return Schedule{}, ErrNotRecognized
		}
		return everySchedule(now, time.Duration(n)*time.Hour), nil
	}
	if m := reTomorrowAt.FindStringSubmatch(p); m != nil {
		h, mm, err := hourMinute(m[1], m[2])
		if err != nil {
			return Schedule{}, err
		}
		at := localInstant(now, loc, h, mm).AddDate(0, 0, 1)
		return Schedule{Kind: ScheduleAt, At: &at, Timezone: loc.String()}, nil
	}
	if m := reTodayAt.FindStringSubmatch(p); m != nil {
		h, mm, err := hourMinute(m[1], m[2])
		if err != nil {
			return Schedule{}, err
		}
		at := localInstant(now, loc, h, mm)
		return Schedule{Kind: ScheduleAt, At: &at, Timezone: loc.String()}, nil
	}
	if m := reInNMinutes.FindStringSubmatch(p); m != nil {
		n, _ := strconv.Atoi(m[1])
		at := now.Add(time.Duration(n) * time.Minute)
		return Schedule{Kind: ScheduleAt, At: &at, Timezone: loc.String()}, nil
	}
	if m := reInNHours.FindStringSubmatch(p); m != nil {
		n, _ := strconv.Atoi(m[1])
		at := now.Add(time.Duration(n) * time.Hour)
		return Schedule{Kind: ScheduleAt, At: &at, Timezone: loc.String()}, nil
	}
	if m := reDateTime.FindStringSubmatch(p); m != nil {
		h, _ := strconv.Atoi(m[2])
		mm, _ := strconv.Atoi(m[3])
		datePart, err := time.ParseInLocation("2006-01-02", m[1], loc)
		if err != nil {
			return Schedule{}, ErrNotRecognized
		}
		at := time.Date(datePart.Year(), datePart.Month(), datePart.Day(), h, mm, 0, 0, loc)
		return Schedule{Kind: ScheduleAt, At: &at, Timezone: loc.String()}, nil
	}

	// None of the English patterns matched; try the Korean phrase set
	// (original phrase, not lowercased, since Hangul has no case).
	if sched, err := parseNaturalKR(strings.TrimSpace(phrase), now, loc); err == nil {
		return sched, nil
	}

	return Schedule{}, ErrNotRecognized
}

// everySchedule builds a ScheduleEvery recurring every d, anchored at now so
// the first fire is exactly one interval out.
func everySchedule(now time.Time, d time.Duration) Schedule {
	start := now.UnixMilli()
	return Schedule{Kind: ScheduleEvery, IntervalMs: d.Milliseconds(), StartMs: &start}
}

func hourMinute(hStr, mStr string) (int, int, error) {
	h, err := strconv.Atoi(hStr)
	if err != nil || h < 0 || h > 23 {
		return 0, 0, ErrNotRecognized
	}
	m := 0
	if mStr != "" {
		m, err = strconv.Atoi(mStr)
		if err != nil || m < 0 || m > 59 {
			return 0, 0, ErrNotRecognized
		}
	}
	return h, m, nil
}

// longestWeekdayMatch checks name against weekday tokens in descending
// length order so "tue"/"tuesday" both resolve unambiguously, per the
// Korean-disambiguation decision generalized to English weekday aliases.
func longestWeekdayMatch(name string) (int, bool) {
	full := map[string]int{
		"sunday": 0, "monday": 1, "tuesday": 2, "wednesday": 3,
		"thursday": 4, "friday": 5, "saturday": 6,
	}
	if n, ok := full[name]; ok {
		return n, true
	}
	if n, ok := weekdayNames[name]; ok {
		return n, true
	}
	return 0, false
}

// localInstant builds a concrete instant for h:mm today in loc, relative to
// now (also converted into loc for the date components). Formatting now
// into the target zone's own components, rather than converting a UTC
// wall-clock, sidesteps DST ambiguity for the common case of "today"/
// "tomorrow" phrases.
func localInstant(now time.Time, loc *time.Location, h, m int) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), h, m, 0, 0, loc)
}
