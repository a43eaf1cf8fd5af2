// internal/domain/auth/interfaces.go
package auth

import "context"

type Validator interface {
	Validate(interface{}) error
}

// EmailRegistry is the set of addresses already registered.
type EmailRegistry interface {
	Contains(ctx context.Context, email string) (bool, error)
	Add(ctx context.Context, email string) error
}

// PreferenceStore persists the remember-me choice per client.
type PreferenceStore interface {
	Save(ctx context.Context, clientID string, pref RememberMePreference) error
	// Load returns nil when nothing is remembered.
	Load(ctx context.Context, clientID string) (*RememberMePreference, error)
	Clear(ctx context.Context, clientID string) error
}

// Backend is the remote side of a form submission. Both calls block until
// the remote answers or ctx is done.
type Backend interface {
	Login(ctx context.Context, creds Credentials) error
	Signup(ctx context.Context, reg Registration) error
}

type PasswordEncoder interface {
	Encode(ctx context.Context, password string) (string, error)
}
