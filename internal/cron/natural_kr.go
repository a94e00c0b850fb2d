package cron

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Korean weekday tokens, longest (full "X요일" form) first. Every full token
// ends in "일", so a naive substring search for a single-character token
// like "일" would also match inside "월요일" or "토요일". Checking the
// 3-rune tokens before falling back to the 1-rune short forms avoids that
// collision.
var krWeekdayFull = []struct {
	token string
	day   int
}{
	{"일요일", 0},
	{"월요일", 1},
	{"화요일", 2},
	{"수요일", 3},
	{"목요일", 4},
	{"금요일", 5},
	{"토요일", 6},
}

var krWeekdayShort = []struct {
	token string
	day   int
}{
	{"월", 1}, {"화", 2}, {"수", 3}, {"목", 4}, {"금", 5}, {"토", 6}, {"일", 0},
}

var (
	reKrEveryDayAt  = regexp.MustCompile(`^매일\s*(오전|오후)?\s*(\d{1,2})시(?:\s*(\d{1,2})분)?$`)
	reKrWeekdaysAt  = regexp.MustCompile(`^평일\s*(오전|오후)?\s*(\d{1,2})시(?:\s*(\d{1,2})분)?$`)
	reKrWeekendsAt  = regexp.MustCompile(`^주말\s*(오전|오후)?\s*(\d{1,2})시(?:\s*(\d{1,2})분)?$`)
	reKrWeeklyOnAt  = regexp.MustCompile(`^매주\s*(\S+?)\s*(오전|오후)?\s*(\d{1,2})시(?:\s*(\d{1,2})분)?$`)
	reKrEveryNMin   = regexp.MustCompile(`^(\d+)분마다$`)
	reKrEveryNHours = regexp.MustCompile(`^(\d+)시간마다$`)
)

// parseNaturalKR resolves a Korean natural-language schedule phrase. It is
// tried by ParseNatural as a fallback after the English patterns miss, so a
// bare phrase like "매일" (day only, no time) correctly falls through to
// ErrNotRecognized rather than guessing a time.
func parseNaturalKR(p string, now time.Time, loc *time.Location) (Schedule, error) {
	if m := reKrWeeklyOnAt.FindStringSubmatch(p); m != nil {
		dow, ok := longestWeekdayMatchKR(m[1])
		if !ok {
			return Schedule{}, ErrNotRecognized
		}
		h, mm, err := krHourMinute(m[2], m[3], m[4])
		if err != nil {
			return Schedule{}, err
		}
		return cronSchedule(mm, h, "*", "*", strconv.Itoa(dow), loc), nil
	}
	if m := reKrEveryDayAt.FindStringSubmatch(p); m != nil {
		h, mm, err := krHourMinute(m[1], m[2], m[3])
		if err != nil {
			return Schedule{}, err
		}
		return cronSchedule(mm, h, "*", "*", "*", loc), nil
	}
	if m := reKrWeekdaysAt.FindStringSubmatch(p); m != nil {
		h, mm, err := krHourMinute(m[1], m[2], m[3])
		if err != nil {
			return Schedule{}, err
		}
		return cronSchedule(mm, h, "*", "*", "1-5", loc), nil
	}
	if m := reKrWeekendsAt.FindStringSubmatch(p); m != nil {
		h, mm, err := krHourMinute(m[1], m[2], m[3])
		if err != nil {
			return Schedule{}, err
		}
		return cronSchedule(mm, h, "*", "*", "0,6", loc), nil
	}
	if m := reKrEveryNMin.FindStringSubmatch(p); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return Schedule{}, ErrNotRecognized
		}
		return everySchedule(now, time.Duration(n)*time.Minute), nil
	}
	if m := reKrEveryNHours.FindStringSubmatch(p); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return Schedule{}, ErrNotRecognized
		}
		return everySchedule(now, time.Duration(n)*time.Hour), nil
	}
	return Schedule{}, ErrNotRecognized
}

func cronSchedule(minute, hour int, dom, month, dow string, loc *time.Location) Schedule {
	expr := strconv.Itoa(minute) + " " + strconv.Itoa(hour) + " " + dom + " " + month + " " + dow
	return Schedule{Kind: ScheduleCron, Expression: expr, Timezone: loc.String()}
}

// krHourMinute resolves an hour/minute pair under an optional 오전 (AM) /
// 오후 (PM) marker. Korean clock phrases give the hour in 12-hour form when
// a marker is present ("오후 3시" == 15:00, "오전 3시" == 03:00); bare "시"
// without a marker is treated as already in 24-hour form.
func krHourMinute(ampm, hStr, mStr string) (int, int, error) {
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
	switch ampm {
	case "오후":
		if h < 12 {
			h += 12
		}
	case "오전":
		if h == 12 {
			h = 0
		}
	}
	if h > 23 {
		return 0, 0, ErrNotRecognized
	}
	return h, m, nil
}

// longestWeekdayMatchKR checks phrase against the full "X요일" tokens before
// the single-character short forms, so "일요일" is never misread as "월요일"
// or "토요일" via a stray substring hit on the shared "일" suffix.
func longestWeekdayMatchKR(phrase string) (int, bool) {
	for _, w := range krWeekdayFull {
		if strings.Contains(phrase, w.token) {
			return w.day, true
		}
	}
	for _, w := range krWeekdayShort {
		if strings.Contains(phrase, w.token) {
			return w.day, true
		}
	}
	return 0, false
}
