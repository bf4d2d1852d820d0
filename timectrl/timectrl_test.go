package timectrl

import (
	"context"
	"testing"
	"time"
)

func TestTimeControllerSetTime(t *testing.T) {
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, time.Second, RealTime)

	newNow := start.Add(42 * time.Second)
	tc.SetTime(newNow)

	if got := tc.Now(); !got.Equal(newNow) {
		t.Fatalf("Now() = %v, want %v", got, newNow)
	}
}

func TestTimeControllerStepIsDeterministic(t *testing.T) {
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, time.Second, Accelerated)

	var seen []time.Time
	tc.AddListener(func(simTime time.Time) {
		seen = append(seen, simTime)
	})

	for i := 0; i < 3; i++ {
		tc.Step()
	}

	if got := tc.Now(); !got.Equal(start.Add(3 * time.Second)) {
		t.Fatalf("Now() = %v, want start+3s", got)
	}
	if len(seen) != 3 {
		t.Fatalf("listener fired %d times, want 3", len(seen))
	}
	for i, ts := range seen {
		want := start.Add(time.Duration(i+1) * time.Second)
		if !ts.Equal(want) {
			t.Fatalf("tick %d fired at %v, want %v", i, ts, want)
		}
	}
}

func TestTimeControllerRunAccelerated(t *testing.T) {
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, 5*time.Millisecond, Accelerated)

	done := tc.Run(context.Background(), 15*time.Millisecond)
	<-done

	expected := start.Add(15 * time.Millisecond)
	if got := tc.Now(); !got.Equal(expected) {
		t.Fatalf("Now() = %v, want %v", got, expected)
	}
}

func TestTimeControllerRunCancel(t *testing.T) {
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, 50*time.Millisecond, RealTime)

	ctx, cancel := context.WithCancel(context.Background())
	done := tc.Run(ctx, 0) // unbounded
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop after cancellation")
	}
}
