// internal/domain/auth/validator.go
package auth

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/go-playground/validator/v10"

	"formauth-server/internal/domain/form"
	apperrors "formauth-server/pkg/errors"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	passwordSymbols   = "@$!%*?&"
	minPasswordLength = 8
)

// isSpace matches the whitespace set browsers use for \s and trim().
func isSpace(r rune) bool {
	if r == '\u0085' {
		return false
	}
	return r == '\uFEFF' || unicode.IsSpace(r)
}

// TrimInput strips surrounding whitespace from a text input value.
func TrimInput(s string) string {
	return strings.TrimFunc(s, isSpace)
}

// inputLength counts UTF-16 code units, the unit browsers report as an
// input value's length.
func inputLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func hasPasswordLength(s string) bool {
	return inputLength(s) >= minPasswordLength
}

func isASCIILetter(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}

// IsValidEmail checks the shape local@domain.tld with no whitespace and a
// single @. Nothing about the domain itself is verified.
func IsValidEmail(s string) bool {
	if strings.ContainsFunc(s, isSpace) {
		return false
	}
	return emailPattern.MatchString(s)
}

// IsValidPassword requires at least 8 characters drawn from letters, digits
// and @$!%*?&, including one lowercase letter, one uppercase letter and one
// digit. Any other character rejects the whole password.
func IsValidPassword(s string) bool {
	var lower, upper, digit bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			lower = true
		case 'A' <= r && r <= 'Z':
			upper = true
		case '0' <= r && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
		default:
			return false
		}
	}
	return hasPasswordLength(s) && lower && upper && digit
}

// IsValidDisplayName checks the trimmed name is 2-30 letters and spaces.
func IsValidDisplayName(s string) bool {
	s = TrimInput(s)
	n := 0
	for _, r := range s {
		if !isASCIILetter(r) && !isSpace(r) {
			return false
		}
		n++
	}
	return n >= 2 && n <= 30
}

func PasswordsMatch(p, c string) bool {
	return p == c
}

// IsEmailUnique reports whether email is absent from registry, ignoring case.
func IsEmailUnique(email string, registry []string) bool {
	for _, existing := range registry {
		if strings.EqualFold(existing, email) {
			return false
		}
	}
	return true
}

var messages = map[string]map[string]string{
	form.FieldDisplayName: {
		"required":    MsgDisplayNameRequired,
		"displayname": MsgDisplayNameInvalid,
	},
	form.FieldEmail: {
		"required":  MsgEmailRequired,
		"formemail": MsgEmailInvalid,
	},
	form.FieldPassword: {
		"required":       MsgPasswordRequired,
		"passwordlength": MsgPasswordShort,
		"strongpassword": MsgPasswordWeak,
	},
	form.FieldConfirmPassword: {
		"required": MsgConfirmRequired,
		"eqfield":  MsgPasswordMismatch,
	},
	form.FieldAgreeTerms: {
		"required": MsgTermsRequired,
	},
}

type ValidatorWrapper struct {
	validate *validator.Validate
}

// NewValidator registers the form rules on v and reports field errors by
// their JSON names.
func NewValidator(v *validator.Validate) Validator {
	v.RegisterTagNameFunc(jsonFieldName)
	mustRegister(v, "formemail", IsValidEmail)
	mustRegister(v, "passwordlength", hasPasswordLength)
	mustRegister(v, "strongpassword", IsValidPassword)
	mustRegister(v, "displayname", IsValidDisplayName)
	return &ValidatorWrapper{
		validate: v,
	}
}

func mustRegister(v *validator.Validate, tag string, rule func(string) bool) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return rule(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}

// Validate returns nil or a *errors.ValidationError listing every failing
// field in declaration order. The terms checkbox is reported as an alert.
func (v *ValidatorWrapper) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := apperrors.NewValidationError()
	for _, fe := range fieldErrs {
		msg, ok := messages[fe.Field()][fe.Tag()]
		if !ok {
			msg = fe.Error()
		}
		if fe.Field() == form.FieldAgreeTerms {
			out.Alert = msg
			continue
		}
		out.Add(fe.Field(), msg)
	}
	return out
}
