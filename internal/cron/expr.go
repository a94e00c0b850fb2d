package cron

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adhocore/gronx"
)

var weekdayNames = map[string]int{
	"sun": 0, "mon": 1, "tue": 2, "wed": 3, "thu": 4, "fri": 5, "sat": 6,
}

var fieldRanges = [5][2]int{
	{0, 59}, // minute
	{0, 23}, // hour
	{1, 31}, // day of month
	{1, 12}, // month
	{0, 6},  // day of week
}

// ValidateExpression checks a 5-field cron expression against the documented
// grammar: each field is "*", a single value, a comma list, a range "a-b",
// or a step "*/n" or "a-b/n". Day-of-week additionally accepts 3-letter
// English names. Returns a normalized expression (weekday names resolved to
// numbers) suitable for gronx matching, or an error if the expression does
// not parse or a value falls outside its field's range.
func ValidateExpression(expr string) (string, error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return "", fmt.Errorf("cron expression must have 5 fields, got %d", len(fields))
	}
	norm := make([]string, 5)
	for i, f := range fields {
		n, err := validateField(f, fieldRanges[i][0], fieldRanges[i][1], i == 4)
		if err != nil {
			return "", fmt.Errorf("field %d (%q): %w", i, f, err)
		}
		norm[i] = n
	}
	return strings.Join(norm, " "), nil
}

func validateField(f string, lo, hi int, isDow bool) (string, error) {
	if f == "*" {
		return f, nil
	}
	parts := strings.Split(f, ",")
	normParts := make([]string, len(parts))
	for i, p := range parts {
		n, err := validateFieldItem(p, lo, hi, isDow)
		if err != nil {
			return "", err
		}
		normParts[i] = n
	}
	return strings.Join(normParts, ","), nil
}

func validateFieldItem(item string, lo, hi int, isDow bool) (string, error) {
	base, step, hasStep := strings.Cut(item, "/")
	if hasStep {
		n, err := strconv.Atoi(step)
		if err != nil || n <= 0 {
			return "", fmt.Errorf("invalid step %q", step)
		}
	}
	if base == "*" {
		if hasStep {
			return "*/" + step, nil
		}
		return "*", nil
	}
	if lowStr, highStr, isRange := strings.Cut(base, "-"); isRange {
		lowN, err := resolveValue(lowStr, lo, hi, isDow)
		if err != nil {
			return "", err
		}
		highN, err := resolveValue(highStr, lo, hi, isDow)
		if err != nil {
			return "", err
		}
		if lowN > highN {
			return "", fmt.Errorf("range %q is backwards", base)
		}
		out := fmt.Sprintf("%d-%d", lowN, highN)
		if hasStep {
			out += "/" + step
		}
		return out, nil
	}
	n, err := resolveValue(base, lo, hi, isDow)
	if err != nil {
		return "", err
	}
	out := strconv.Itoa(n)
	if hasStep {
		out += "/" + step
	}
	return out, nil
}

func resolveValue(s string, lo, hi int, isDow bool) (int, error) {
	if isDow {
		if n, ok := weekdayNames[strings.ToLower(s)]; ok {
			return n, nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("value %d out of range [%d,%d]", n, lo, hi)
	}
	return n, nil
}

// ErrNoUpcomingRun is returned by NextRun when no matching instant is found
// within the one-year search bound.
var ErrNoUpcomingRun = fmt.Errorf("no upcoming run found within search bound")

// NextRun walks forward minute by minute (bounded to 1 year) in the target
// timezone from after, returning the first instant that satisfies the
// 5-field expression and is strictly after `after`. Matching is delegated to
// gronx; grammar validation and timezone handling are ours.
func NextRun(expr, timezone string, after time.Time) (time.Time, error) {
	normExpr, err := ValidateExpression(expr)
	if err != nil {
		return time.Time{}, err
	}
	loc := time.UTC
	if timezone != "" {
		if l, err := time.LoadLocation(timezone); err == nil {
			loc = l
		}
	}

	g := gronx.New()
	cursor := after.In(loc).Truncate(time.Minute).Add(time.Minute)
	limit := cursor.AddDate(1, 0, 0)
	for t := cursor; t.Before(limit); t = t.Add(time.Minute) {
		due, err := g.IsDue(normExpr, t)
		if err != nil {
			return time.Time{}, err
		}
		if due {
			return t, nil
		}
	}
	return time.Time{}, ErrNoUpcomingRun
}
