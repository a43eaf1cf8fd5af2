// internal/repository/registry.go
package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"formauth-server/internal/domain/auth"
)

var (
	ErrDatabaseError = fmt.Errorf("database error")
	ErrInvalidEmail  = fmt.Errorf("invalid email")
)

// SeedEmails are registered on every fresh registry.
var SeedEmails = []string{"test@example.com", "user@demo.com", "admin@test.com"}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(auth.TrimInput(email))
	if email == "" {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// MemoryRegistry keeps registered emails for the life of the process.
type MemoryRegistry struct {
	mu     sync.RWMutex
	emails []string
}

func NewMemoryRegistry(seed ...string) *MemoryRegistry {
	r := &MemoryRegistry{}
	for _, e := range seed {
		if e, err := normalizeEmail(e); err == nil {
			r.emails = append(r.emails, e)
		}
	}
	return r
}

func (r *MemoryRegistry) Contains(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !auth.IsEmailUnique(email, r.emails), nil
}

func (r *MemoryRegistry) Add(_ context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if auth.IsEmailUnique(email, r.emails) {
		r.emails = append(r.emails, email)
	}
	return nil
}
