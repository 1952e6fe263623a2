package scheduler

import (
	"testing"
	"time"
)

func TestNextFireTimeSameDayBeforeFirstHour(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 3, 5, 6, 0, 0, 0, loc)

	got := nextFireTime(now, []int{7, 19}, loc)
	want := time.Date(2026, 3, 5, 7, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNextFireTimeSameDayBetweenHours(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 3, 5, 12, 0, 0, 0, loc)

	got := nextFireTime(now, []int{7, 19}, loc)
	want := time.Date(2026, 3, 5, 19, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNextFireTimeRollsOverToNextDay(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 3, 5, 20, 0, 0, 0, loc)

	got := nextFireTime(now, []int{7, 19}, loc)
	want := time.Date(2026, 3, 6, 7, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNextFireTimeAtExactHourRollsOverRatherThanFiringTwice(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 3, 5, 7, 0, 0, 0, loc)

	got := nextFireTime(now, []int{7, 19}, loc)
	want := time.Date(2026, 3, 5, 19, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNextFireTimeSurvivesRestartAtAnyHour(t *testing.T) {
	loc := time.UTC
	restart := time.Date(2026, 3, 5, 3, 0, 0, 0, loc)

	got := nextFireTime(restart, []int{7, 19}, loc)
	want := time.Date(2026, 3, 5, 7, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("a 3am restart should still anchor to the configured hour, expected %v, got %v", want, got)
	}
}
