package cron

import (
	"testing"
	"time"
)

func TestValidateExpression(t *testing.T) {
	cases := []struct {
		expr    string
		wantErr bool
	}{
		{"0 9 * * *", false},
		{"*/15 * * * *", false},
		{"0 9 * * mon-fri", false},
		{"0 9 * * fri", false},
		{"60 9 * * *", true},
		{"0 9 * *", true},
		{"0 9 * * 8", true},
	}
	for _, c := range cases {
		_, err := ValidateExpression(c.expr)
		if (err != nil) != c.wantErr {
			t.Errorf("ValidateExpression(%q) err=%v, wantErr=%v", c.expr, err, c.wantErr)
		}
	}
}

func TestNextRunDaily(t *testing.T) {
	after := time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC)
	next, err := NextRun("0 9 * * *", "UTC", after)
	if err != nil {
		t.Fatalf("NextRun: %v", err)
	}
	want := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("NextRun = %v, want %v", next, want)
	}
}

func TestNextRunWeekday(t *testing.T) {
	// 2026-01-03 is a Saturday.
	after := time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)
	next, err := NextRun("0 9 * * 1-5", "UTC", after)
	if err != nil {
		t.Fatalf("NextRun: %v", err)
	}
	want := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("NextRun = %v, want %v", next, want)
	}
}
