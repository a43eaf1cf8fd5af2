// internal/domain/auth/flow.go
package auth

import (
	"sync"

	"formauth-server/internal/domain/form"
)

type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// pending reports whether a submission in this state still owns the form.
func (s State) pending() bool {
	return s == StateValidating || s == StateSubmitting
}

// submissions tracks the flow state of each client's forms and rejects a
// second submit while one is still running.
type submissions struct {
	mu     sync.Mutex
	states map[string]State
}

func newSubmissions() *submissions {
	return &submissions{states: make(map[string]State)}
}

func submissionKey(clientID string, kind form.Kind) string {
	return clientID + ":" + string(kind)
}

// begin moves key to Validating unless a submission is already in flight.
func (s *submissions) begin(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.states[key].pending() {
		return false
	}
	s.states[key] = StateValidating
	return true
}

func (s *submissions) set(key string, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st == StateIdle {
		delete(s.states, key)
		return
	}
	s.states[key] = st
}

func (s *submissions) get(key string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[key]; ok {
		return st
	}
	return StateIdle
}
