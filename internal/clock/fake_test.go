package clock

import (
	"testing"
	"time"
)

func TestFakeTickerFiresOnAdvance(t *testing.T) {
	start := time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC)
	clk := NewFake(start)
	ticker := clk.NewTicker(time.Second)

	select {
	case <-ticker.C():
		t.Fatal("ticker fired before advance")
	default:
	}

	clk.Advance(time.Second)
	select {
	case at := <-ticker.C():
		if !at.Equal(start.Add(time.Second)) {
			t.Fatalf("unexpected tick time: %s", at)
		}
	default:
		t.Fatal("expected tick after advance")
	}
	if !clk.Now().Equal(start.Add(time.Second)) {
		t.Fatalf("unexpected now: %s", clk.Now())
	}
}

func TestFakeTickerStopAndReset(t *testing.T) {
	clk := NewFake(time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC))
	ticker := clk.NewTicker(time.Second)
	if clk.Active() != 1 {
		t.Fatalf("expected 1 active ticker, got %d", clk.Active())
	}

	ticker.Stop()
	clk.Advance(5 * time.Second)
	select {
	case <-ticker.C():
		t.Fatal("stopped ticker fired")
	default:
	}
	if clk.Active() != 0 {
		t.Fatalf("expected 0 active tickers, got %d", clk.Active())
	}

	ticker.Reset(2 * time.Second)
	clk.Advance(time.Second)
	select {
	case <-ticker.C():
		t.Fatal("reset ticker fired early")
	default:
	}
	clk.Advance(time.Second)
	select {
	case <-ticker.C():
	default:
		t.Fatal("expected reset ticker to fire")
	}
}
