// internal/domain/form/form.go
package form

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

type Kind string

const (
	Login  Kind = "login"
	Signup Kind = "signup"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Login, Signup:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown form %q", s)
}

const (
	FieldDisplayName     = "displayName"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldRememberMe      = "rememberMe"
	FieldAgreeTerms      = "agreeToTerms"
)

type InputType string

const (
	InputText     InputType = "text"
	InputEmail    InputType = "email"
	InputPassword InputType = "password"
	InputCheckbox InputType = "checkbox"
)

// DefaultSuccessRevert is how long a signup field keeps its success mark.
const DefaultSuccessRevert = 2 * time.Second

var ErrUnknownField = errors.New("unknown field")

type field struct {
	name      string
	kind      InputType
	current   InputType
	value     string
	checked   bool
	errMsg    string
	isError   bool
	isSuccess bool
	animated  bool
	revert    *time.Timer
}

// Form holds the presentation state of one rendered form. All methods are
// safe for concurrent use.
type Form struct {
	mu            sync.Mutex
	kind          Kind
	fields        []*field
	focused       string
	button        Button
	successRevert time.Duration
	onChange      func()
}

type Option func(*Form)

// WithSuccessRevert overrides how long success marks last. Zero disables
// success marks entirely.
func WithSuccessRevert(d time.Duration) Option {
	return func(f *Form) { f.successRevert = d }
}

// WithOnChange registers a hook invoked after timer-driven state changes,
// which happen outside of any caller's request.
func WithOnChange(fn func()) Option {
	return func(f *Form) { f.onChange = fn }
}

// NewLogin builds the login layout: email, password, remember-me.
func NewLogin(opts ...Option) *Form {
	f := newForm(Login, []*field{
		{name: FieldEmail, kind: InputEmail},
		{name: FieldPassword, kind: InputPassword},
		{name: FieldRememberMe, kind: InputCheckbox},
	})
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewSignup builds the signup layout in validation order.
func NewSignup(opts ...Option) *Form {
	f := newForm(Signup, []*field{
		{name: FieldDisplayName, kind: InputText},
		{name: FieldEmail, kind: InputEmail},
		{name: FieldPassword, kind: InputPassword},
		{name: FieldConfirmPassword, kind: InputPassword},
		{name: FieldAgreeTerms, kind: InputCheckbox},
	})
	f.successRevert = DefaultSuccessRevert
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// New builds the layout for kind.
func New(kind Kind, opts ...Option) *Form {
	if kind == Signup {
		return NewSignup(opts...)
	}
	return NewLogin(opts...)
}

func newForm(kind Kind, fields []*field) *Form {
	for _, fd := range fields {
		fd.current = fd.kind
	}
	return &Form{kind: kind, fields: fields}
}

func (f *Form) Kind() Kind {
	return f.kind
}

func (f *Form) lookup(name string) (*field, error) {
	for _, fd := range f.fields {
		if fd.name == name {
			return fd, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
}

func (f *Form) SetValue(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fd, err := f.lookup(name)
	if err != nil {
		return err
	}
	if fd.kind == InputCheckbox {
		fd.checked = value == "true" || value == "on"
		return nil
	}
	fd.value = value
	return nil
}

func (f *Form) SetChecked(name string, checked bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fd, err := f.lookup(name)
	if err != nil {
		return err
	}
	fd.checked = checked
	return nil
}

// Value returns the raw value of a field, or "" for unknown names.
func (f *Form) Value(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	fd, err := f.lookup(name)
	if err != nil {
		return ""
	}
	return fd.value
}

func (f *Form) Checked(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	fd, err := f.lookup(name)
	if err != nil {
		return false
	}
	return fd.checked
}

func (f *Form) SetError(name, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fd, err := f.lookup(name)
	if err != nil {
		return err
	}
	fd.isError = true
	fd.errMsg = message
	return nil
}

func (f *Form) ClearError(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fd, err := f.lookup(name)
	if err != nil {
		return err
	}
	fd.isError = false
	fd.errMsg = ""
	return nil
}

// ClearErrors resets the error state of every field.
func (f *Form) ClearErrors() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fd := range f.fields {
		fd.isError = false
		fd.errMsg = ""
	}
}

func (f *Form) HasError(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	fd, err := f.lookup(name)
	if err != nil {
		return false
	}
	return fd.isError
}

// SetSuccess marks a field as successfully validated. The mark is removed
// again after the configured revert delay; re-marking restarts the delay.
func (f *Form) SetSuccess(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fd, err := f.lookup(name)
	if err != nil {
		return err
	}
	if f.successRevert <= 0 {
		return nil
	}
	if fd.revert != nil {
		fd.revert.Stop()
	}
	fd.isSuccess = true
	var t *time.Timer
	t = time.AfterFunc(f.successRevert, func() {
		f.mu.Lock()
		if fd.revert != t {
			f.mu.Unlock()
			return
		}
		fd.isSuccess = false
		fd.revert = nil
		hook := f.onChange
		f.mu.Unlock()
		if hook != nil {
			hook()
		}
	})
	fd.revert = t
	return nil
}

// Stop cancels pending success reverts.
func (f *Form) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fd := range f.fields {
		if fd.revert != nil {
			fd.revert.Stop()
			fd.revert = nil
		}
	}
}
