package circuit

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(config Config) (*Breaker, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	b := NewBreaker("stripe", config, zap.NewNop())
	b.now = clock.Now
	return b, clock
}

func TestNewBreaker(t *testing.T) {
	breaker := NewBreaker("test", DefaultConfig(), nil)

	if breaker.State() != StateClosed {
		t.Errorf("Expected initial state CLOSED, got %s", breaker.State().String())
	}
	if breaker.IsOpen() {
		t.Error("Expected breaker to not be open initially")
	}
}

func TestBreaker_OpensAtThreshold(t *testing.T) {
	breaker, _ := newTestBreaker(Config{Threshold: 3, Timeout: time.Second})

	for i := 0; i < 2; i++ {
		breaker.Record(errors.New("provider down"))
	}
	if breaker.State() != StateClosed {
		t.Fatalf("Expected CLOSED below threshold, got %s", breaker.State())
	}

	breaker.Record(errors.New("provider down"))
	if breaker.State() != StateOpen {
		t.Fatalf("Expected OPEN at threshold, got %s", breaker.State())
	}
	if err := breaker.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Expected ErrCircuitOpen, got %v", err)
	}
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	breaker, _ := newTestBreaker(Config{Threshold: 2, Timeout: time.Second})

	breaker.Record(errors.New("boom"))
	breaker.Record(nil)
	breaker.Record(errors.New("boom"))

	if breaker.State() != StateClosed {
		t.Errorf("Expected CLOSED, failures are not consecutive; got %s", breaker.State())
	}
}

func TestBreaker_HalfOpenRecovery(t *testing.T) {
	tests := []struct {
		name     string
		results  []error
		expected State
	}{
		{"successes close", []error{nil, nil}, StateClosed},
		{"failure reopens", []error{errors.New("still down")}, StateOpen},
		{"one success stays half open", []error{nil}, StateHalfOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			breaker, clock := newTestBreaker(Config{
				Threshold:        1,
				Timeout:          time.Minute,
				SuccessThreshold: 2,
				MaxHalfOpen:      1,
			})
			breaker.Record(errors.New("down"))
			clock.Advance(time.Minute)

			for _, result := range tt.results {
				if err := breaker.Allow(); err != nil {
					t.Fatalf("Allow() in half-open: %v", err)
				}
				breaker.Record(result)
				if breaker.State() == StateOpen {
					break
				}
			}

			if got := breaker.State(); got != tt.expected {
				t.Errorf("state = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestBreaker_HalfOpenLimitsProbes(t *testing.T) {
	breaker, clock := newTestBreaker(Config{Threshold: 1, Timeout: time.Second, MaxHalfOpen: 1})
	breaker.Record(errors.New("down"))
	clock.Advance(time.Second)

	if err := breaker.Allow(); err != nil {
		t.Fatalf("first probe rejected: %v", err)
	}
	if err := breaker.Allow(); !errors.Is(err, ErrTooManyRequests) {
		t.Errorf("Expected ErrTooManyRequests, got %v", err)
	}
}

func TestBreaker_DoAppliesCallTimeout(t *testing.T) {
	breaker, _ := newTestBreaker(Config{Threshold: 1, Timeout: time.Hour, CallTimeout: 10 * time.Millisecond})

	err := breaker.Do(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected deadline exceeded, got %v", err)
	}
	if breaker.State() != StateOpen {
		t.Errorf("provider timeout should count as a failure, state %s", breaker.State())
	}
}

func TestBreaker_DoIgnoresCallerCancellation(t *testing.T) {
	breaker, _ := newTestBreaker(Config{Threshold: 1, Timeout: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := breaker.Do(ctx, func(ctx context.Context) error { return ctx.Err() })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if breaker.State() != StateClosed {
		t.Errorf("caller cancellation must not trip the breaker, state %s", breaker.State())
	}
}

func TestBreaker_Reset(t *testing.T) {
	breaker, _ := newTestBreaker(Config{Threshold: 1, Timeout: time.Hour})
	breaker.Record(errors.New("error"))

	if breaker.State() != StateOpen {
		t.Fatal("Expected state OPEN")
	}

	breaker.Reset()

	if breaker.State() != StateClosed {
		t.Errorf("Expected state CLOSED after reset, got %s", breaker.State().String())
	}
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry(DefaultConfig(), nil)

	stripe := registry.GetOrCreate("stripe")
	email := registry.GetOrCreate("email")

	if stripe != registry.GetOrCreate("stripe") {
		t.Error("Expected same breaker instance for same name")
	}
	if stripe == email {
		t.Error("Expected different breakers for different names")
	}

	stats := registry.Stats()
	if len(stats) != 2 {
		t.Fatalf("Expected 2 breakers in stats, got %d", len(stats))
	}
	if stats[0].Name != "email" || stats[1].Name != "stripe" {
		t.Errorf("Expected stats sorted by name, got %s, %s", stats[0].Name, stats[1].Name)
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateClosed, "CLOSED"},
		{StateOpen, "OPEN"},
		{StateHalfOpen, "HALF_OPEN"},
		{State(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("State(%d).String() = %s, want %s", tt.state, got, tt.expected)
		}
	}
}
