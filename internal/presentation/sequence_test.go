package presentation

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRunPlaysEveryFrame(t *testing.T) {
	var frames []int
	s := New(5, time.Millisecond, func(frame, total int) {
		if total != 5 {
			t.Fatalf("expected total 5, got %d", total)
		}
		frames = append(frames, frame)
	})

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(frames) != 5 || frames[0] != 1 || frames[4] != 5 {
		t.Fatalf("expected frames 1..5, got %v", frames)
	}
}

func TestRunWithoutFramesFinishesImmediately(t *testing.T) {
	called := false
	s := New(0, time.Hour, func(int, int) { called = true })

	start := time.Now()
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("expected immediate return")
	}
	if called {
		t.Fatalf("expected no frame callbacks")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s := New(1000, time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected Run to return after cancel")
	}
}

func TestDuration(t *testing.T) {
	if got := New(4, 250*time.Millisecond, nil).Duration(); got != time.Second {
		t.Fatalf("expected 1s, got %v", got)
	}
	if got := New(0, time.Second, nil).Duration(); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestZeroIntervalPlaysSynchronously(t *testing.T) {
	count := 0
	s := New(3, 0, func(int, int) { count++ })
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 frames, got %d", count)
	}
}
