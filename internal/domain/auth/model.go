// internal/domain/auth/model.go
package auth

import "formauth-server/internal/domain/form"

type LoginRequest struct {
	Email      string `json:"email" validate:"required,formemail"`
	Password   string `json:"password" validate:"required,passwordlength,strongpassword"`
	RememberMe bool   `json:"rememberMe"`
}

// Normalize trims the email the way the form reads it. Passwords are taken verbatim.
func (r *LoginRequest) Normalize() {
	r.Email = TrimInput(r.Email)
}

type SignupRequest struct {
	DisplayName     string `json:"displayName" validate:"required,displayname"`
	Email           string `json:"email" validate:"required,formemail"`
	Password        string `json:"password" validate:"required,passwordlength,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	AgreeToTerms    bool   `json:"agreeToTerms" validate:"required"`
}

func (r *SignupRequest) Normalize() {
	r.DisplayName = TrimInput(r.DisplayName)
	r.Email = TrimInput(r.Email)
}

// Credentials is what the login backend receives.
type Credentials struct {
	Email    string
	Password string
}

// Registration is what the signup backend receives.
type Registration struct {
	DisplayName  string `json:"displayName"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
}

type RememberMePreference struct {
	Email string `json:"email"`
}

// FollowUp is shown by the client DelayMS milliseconds after a success.
type FollowUp struct {
	DelayMS  int64  `json:"delayMs"`
	Notice   string `json:"notice"`
	Redirect string `json:"redirect,omitempty"`
}

// Outcome is the result of one submission attempt.
type Outcome struct {
	State    State         `json:"state"`
	Form     form.Snapshot `json:"form"`
	Alert    string        `json:"alert,omitempty"`
	FollowUp *FollowUp     `json:"followUp,omitempty"`
}

type PreferenceResponse struct {
	Remembered bool   `json:"remembered"`
	Email      string `json:"email,omitempty"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type NoticeResponse struct {
	Notice string `json:"notice"`
}

const (
	MsgDisplayNameRequired = "Display name is required"
	MsgDisplayNameInvalid  = "Display name must be 2-30 characters and contain only letters and spaces"
	MsgEmailRequired       = "Email is required"
	MsgEmailInvalid        = "Please enter a valid email address"
	MsgEmailTaken          = "This email is already registered. Please use a different email."
	MsgPasswordRequired    = "Password is required"
	MsgPasswordShort       = "Password must be at least 8 characters long"
	MsgPasswordWeak        = "Password must contain at least one uppercase letter, one lowercase letter, and one number"
	MsgConfirmRequired     = "Please confirm your password"
	MsgPasswordMismatch    = "Passwords do not match"
	MsgTermsRequired       = "Please agree to the Terms and Conditions to continue"

	MsgLoginFailedEmail    = "Invalid email or password"
	MsgLoginFailedPassword = "Please check your credentials"
	MsgRegistrationFailed  = "Registration failed: "

	MsgLoginSucceeded  = "Login successful! Redirecting to dashboard..."
	MsgSignupSucceeded = "Account created successfully! Redirecting to login page..."
	MsgResetSent       = "Password reset link sent to "
	MsgPending         = "submission already in progress"
)
