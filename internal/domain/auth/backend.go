// internal/domain/auth/backend.go
package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"time"
)

const (
	DefaultBackendDelay      = 2 * time.Second
	DefaultHashDelay         = 500 * time.Millisecond
	DefaultLoginSuccessRate  = 0.7
	DefaultSignupSuccessRate = 0.8
)

var (
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrRegistrationFailed = errors.New("Registration failed. Please try again.")
)

// SimulatedBackend stands in for a real authentication server: every call
// waits a fixed delay and then succeeds with a fixed probability.
type SimulatedBackend struct {
	delay             time.Duration
	loginSuccessRate  float64
	signupSuccessRate float64
	random            func() float64
	log               *slog.Logger
}

type SimulatedOption func(*SimulatedBackend)

func WithDelay(d time.Duration) SimulatedOption {
	return func(b *SimulatedBackend) { b.delay = d }
}

func WithSuccessRates(login, signup float64) SimulatedOption {
	return func(b *SimulatedBackend) {
		b.loginSuccessRate = login
		b.signupSuccessRate = signup
	}
}

// WithRandom replaces the random source; it must return values in [0, 1).
func WithRandom(fn func() float64) SimulatedOption {
	return func(b *SimulatedBackend) { b.random = fn }
}

func NewSimulatedBackend(log *slog.Logger, opts ...SimulatedOption) *SimulatedBackend {
	b := &SimulatedBackend{
		delay:             DefaultBackendDelay,
		loginSuccessRate:  DefaultLoginSuccessRate,
		signupSuccessRate: DefaultSignupSuccessRate,
		random:            rand.Float64,
		log:               log,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *SimulatedBackend) Login(ctx context.Context, _ Credentials) error {
	if err := wait(ctx, b.delay); err != nil {
		return err
	}
	if b.random() > 1-b.loginSuccessRate {
		return nil
	}
	return ErrInvalidCredentials
}

func (b *SimulatedBackend) Signup(ctx context.Context, reg Registration) error {
	if err := wait(ctx, b.delay); err != nil {
		return err
	}
	if b.random() > 1-b.signupSuccessRate {
		b.log.Info("user registered",
			"display_name", reg.DisplayName,
			"email", reg.Email,
			"password_hash", reg.PasswordHash)
		return nil
	}
	return ErrRegistrationFailed
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// PlaceholderEncoder produces a reversible stand-in for a password hash. It
// is not a security mechanism: the output is base64 of the password plus a
// timestamp.
type PlaceholderEncoder struct {
	delay time.Duration
	now   func() time.Time
}

func NewPlaceholderEncoder(delay time.Duration, now func() time.Time) *PlaceholderEncoder {
	if now == nil {
		now = time.Now
	}
	return &PlaceholderEncoder{delay: delay, now: now}
}

func (e *PlaceholderEncoder) Encode(ctx context.Context, password string) (string, error) {
	if err := wait(ctx, e.delay); err != nil {
		return "", err
	}
	raw := password + "_hashed_" + strconv.FormatInt(e.now().UnixMilli(), 10)
	return base64.StdEncoding.EncodeToString([]byte(raw)), nil
}
