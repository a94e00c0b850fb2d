package cron

import (
	"testing"
	"time"
)

func TestParseNaturalEveryDay(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sched, err := ParseNatural("every day at 9:30", now, time.UTC)
	if err != nil {
		t.Fatalf("ParseNatural: %v", err)
	}
	if sched.Kind != ScheduleCron || sched.Expression != "30 9 * * *" {
		t.Errorf("got %+v", sched)
	}
}

func TestParseNaturalInMinutes(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sched, err := ParseNatural("in 10 minutes", now, time.UTC)
	if err != nil {
		t.Fatalf("ParseNatural: %v", err)
	}
	if sched.Kind != ScheduleAt || sched.At == nil {
		t.Fatalf("got %+v", sched)
	}
	want := now.Add(10 * time.Minute)
	if !sched.At.Equal(want) {
		t.Errorf("At = %v, want %v", sched.At, want)
	}
}

func TestParseNaturalNotRecognized(t *testing.T) {
	_, err := ParseNatural("whenever the mood strikes", time.Now(), time.UTC)
	if err != ErrNotRecognized {
		t.Errorf("got err=%v, want ErrNotRecognized", err)
	}
}

func TestParseNaturalKoreanEveryDayAt(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sched, err := ParseNatural("매일 오후 3시", now, time.UTC)
	if err != nil {
		t.Fatalf("ParseNatural: %v", err)
	}
	if sched.Kind != ScheduleCron || sched.Expression != "0 15 * * *" {
		t.Errorf("got %+v", sched)
	}
}

func TestParseNaturalKoreanWeekdaysAt(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sched, err := ParseNatural("평일 오후 6시", now, time.UTC)
	if err != nil {
		t.Fatalf("ParseNatural: %v", err)
	}
	if sched.Kind != ScheduleCron || sched.Expression != "0 18 * * 1-5" {
		t.Errorf("got %+v", sched)
	}
}

func TestParseNaturalKoreanBareDayNotRecognized(t *testing.T) {
	_, err := ParseNatural("매일", time.Now(), time.UTC)
	if err != ErrNotRecognized {
		t.Errorf("got err=%v, want ErrNotRecognized", err)
	}
}

func TestParseNaturalKoreanWeeklyOnWeekdayDisambiguatesSundayFromMonday(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sun, err := ParseNatural("매주 일요일 오전 9시", now, time.UTC)
	if err != nil {
		t.Fatalf("ParseNatural: %v", err)
	}
	if sun.Expression != "0 9 * * 0" {
		t.Errorf("got %+v, want Sunday (0)", sun)
	}

	mon, err := ParseNatural("매주 월요일 오전 9시", now, time.UTC)
	if err != nil {
		t.Fatalf("ParseNatural: %v", err)
	}
	if mon.Expression != "0 9 * * 1" {
		t.Errorf("got %+v, want Monday (1)", mon)
	}
}

func TestParseNaturalEveryNMinutesProducesEverySchedule(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sched, err := ParseNatural("every 15 minutes", now, time.UTC)
	if err != nil {
		t.Fatalf("ParseNatural: %v", err)
	}
	if sched.Kind != ScheduleEvery || sched.IntervalMs != (15*time.Minute).Milliseconds() {
		t.Errorf("got %+v", sched)
	}
	if sched.StartMs == nil || *sched.StartMs != now.UnixMilli() {
		t.Errorf("expected StartMs anchored at now, got %+v", sched)
	}
}
