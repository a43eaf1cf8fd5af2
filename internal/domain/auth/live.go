// internal/domain/auth/live.go
package auth

import (
	"context"

	"formauth-server/internal/domain/form"
)

// passwordProblem returns the inline message for a non-empty password, or
// "" when it is acceptable.
func passwordProblem(p string) string {
	if !hasPasswordLength(p) {
		return MsgPasswordShort
	}
	if !IsValidPassword(p) {
		return MsgPasswordWeak
	}
	return ""
}

// Blur applies the rules that run when the user leaves a field.
func (s *AuthService) Blur(ctx context.Context, f *form.Form, field string) error {
	f.Blur(field)
	if f.Kind() == form.Signup {
		return s.signupBlur(ctx, f, field)
	}
	loginBlur(f, field)
	return nil
}

func loginBlur(f *form.Form, field string) {
	switch field {
	case form.FieldEmail:
		email := TrimInput(f.Value(field))
		if email != "" && !IsValidEmail(email) {
			_ = f.SetError(field, MsgEmailInvalid)
		} else {
			_ = f.ClearError(field)
		}
	case form.FieldPassword:
		p := f.Value(field)
		if msg := passwordProblem(p); p != "" && msg != "" {
			_ = f.SetError(field, msg)
		} else {
			_ = f.ClearError(field)
		}
	}
}

func (s *AuthService) signupBlur(ctx context.Context, f *form.Form, field string) error {
	var msg string
	switch field {
	case form.FieldDisplayName:
		name := TrimInput(f.Value(field))
		if name == "" {
			return nil
		}
		if !IsValidDisplayName(name) {
			msg = MsgDisplayNameInvalid
		}
	case form.FieldEmail:
		email := TrimInput(f.Value(field))
		if email == "" {
			return nil
		}
		if !IsValidEmail(email) {
			msg = MsgEmailInvalid
		} else {
			taken, err := s.registry.Contains(ctx, email)
			if err != nil {
				return err
			}
			if taken {
				msg = MsgEmailTaken
			}
		}
	case form.FieldPassword:
		p := f.Value(field)
		if p == "" {
			return nil
		}
		msg = passwordProblem(p)
	case form.FieldConfirmPassword:
		c := f.Value(field)
		if c == "" {
			return nil
		}
		if !PasswordsMatch(f.Value(form.FieldPassword), c) {
			msg = MsgPasswordMismatch
		}
	default:
		return nil
	}
	if msg != "" {
		return f.SetError(field, msg)
	}
	if err := f.ClearError(field); err != nil {
		return err
	}
	return f.SetSuccess(field)
}

// Input records a new value and applies the as-you-type rules: a field in
// error is cleared, and on signup the confirmation is re-checked against
// the password.
func (s *AuthService) Input(f *form.Form, field, value string) error {
	if err := f.SetValue(field, value); err != nil {
		return err
	}
	if f.HasError(field) {
		_ = f.ClearError(field)
	}
	if f.Kind() != form.Signup {
		return nil
	}
	switch field {
	case form.FieldPassword:
		confirm := f.Value(form.FieldConfirmPassword)
		if confirm == "" {
			return nil
		}
		if !PasswordsMatch(value, confirm) {
			return f.SetError(form.FieldConfirmPassword, MsgPasswordMismatch)
		}
		return f.ClearError(form.FieldConfirmPassword)
	case form.FieldConfirmPassword:
		if value == "" {
			return nil
		}
		if !PasswordsMatch(f.Value(form.FieldPassword), value) {
			return f.SetError(field, MsgPasswordMismatch)
		}
		_ = f.ClearError(field)
		return f.SetSuccess(field)
	}
	return nil
}
