package model

import (
	"testing"
	"time"
)

func TestCountersRollover(t *testing.T) {
	c := Counters{Total: 9, Today: 5, LastResetDate: "2026-02-08"}

	next, changed := c.Rollover("2026-02-09")
	if !changed {
		t.Fatal("expected rollover on new date")
	}
	if next.Today != 0 || next.Total != 9 || next.LastResetDate != "2026-02-09" {
		t.Fatalf("unexpected rolled counters: %+v", next)
	}

	again, changed := next.Rollover("2026-02-09")
	if changed {
		t.Fatal("expected rollover to be idempotent on same date")
	}
	if again != next {
		t.Fatalf("expected unchanged counters, got %+v", again)
	}
}

func TestDateKeyUsesLocation(t *testing.T) {
	at := time.Date(2026, 2, 9, 23, 30, 0, 0, time.UTC)
	if got := DateKey(at, time.UTC); got != "2026-02-09" {
		t.Fatalf("utc date = %q", got)
	}
	east := time.FixedZone("UTC+2", 2*60*60)
	if got := DateKey(at, east); got != "2026-02-10" {
		t.Fatalf("east date = %q", got)
	}
}

func TestPhaseNextAndLabel(t *testing.T) {
	if PhaseFocus.Next() != PhaseBreak || PhaseBreak.Next() != PhaseFocus {
		t.Fatal("unexpected phase cycle")
	}
	if PhaseFocus.Label() != "Focus" || PhaseBreak.Label() != "Break" {
		t.Fatalf("unexpected labels %q %q", PhaseFocus.Label(), PhaseBreak.Label())
	}
}
