package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedRandom(v float64) func() float64 {
	return func() float64 { return v }
}

func TestSimulatedLoginOutcome(t *testing.T) {
	ctx := context.Background()
	ok := NewSimulatedBackend(discardLogger(), WithDelay(0), WithRandom(fixedRandom(0.31)))
	if err := ok.Login(ctx, Credentials{}); err != nil {
		t.Errorf("draw above failure rate should succeed, got %v", err)
	}
	bad := NewSimulatedBackend(discardLogger(), WithDelay(0), WithRandom(fixedRandom(0.29)))
	if err := bad.Login(ctx, Credentials{}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSimulatedSignupOutcome(t *testing.T) {
	ctx := context.Background()
	ok := NewSimulatedBackend(discardLogger(), WithDelay(0), WithRandom(fixedRandom(0.21)))
	if err := ok.Signup(ctx, Registration{Email: "a@b.co"}); err != nil {
		t.Errorf("draw above failure rate should succeed, got %v", err)
	}
	bad := NewSimulatedBackend(discardLogger(), WithDelay(0), WithRandom(fixedRandom(0.1)))
	if err := bad.Signup(ctx, Registration{}); !errors.Is(err, ErrRegistrationFailed) {
		t.Errorf("expected ErrRegistrationFailed, got %v", err)
	}
}

func TestSimulatedSuccessRates(t *testing.T) {
	b := NewSimulatedBackend(discardLogger(), WithDelay(0), WithSuccessRates(1, 0), WithRandom(fixedRandom(0.5)))
	if err := b.Login(context.Background(), Credentials{}); err != nil {
		t.Errorf("login rate 1 should always succeed: %v", err)
	}
	if err := b.Signup(context.Background(), Registration{}); err == nil {
		t.Error("signup rate 0 should always fail")
	}
}

func TestSimulatedBackendWaitsForDelay(t *testing.T) {
	b := NewSimulatedBackend(discardLogger(), WithDelay(30*time.Millisecond), WithRandom(fixedRandom(0.99)))
	start := time.Now()
	if err := b.Login(context.Background(), Credentials{}); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("returned after %v, before the delay", elapsed)
	}
}

func TestSimulatedBackendHonoursContext(t *testing.T) {
	b := NewSimulatedBackend(discardLogger(), WithDelay(time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := b.Signup(ctx, Registration{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestPlaceholderEncoder(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	enc := NewPlaceholderEncoder(0, func() time.Time { return at })

	got, err := enc.Encode(context.Background(), "Abcdefg1")
	if err != nil {
		t.Fatal(err)
	}
	raw, err := base64.StdEncoding.DecodeString(got)
	if err != nil {
		t.Fatalf("output is not base64: %v", err)
	}
	if want := "Abcdefg1_hashed_1700000000123"; string(raw) != want {
		t.Errorf("decoded %q, want %q", raw, want)
	}
}
