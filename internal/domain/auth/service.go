// internal/domain/auth/service.go
package auth

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"formauth-server/internal/domain/form"
	apperrors "formauth-server/pkg/errors"
)

const (
	DefaultFollowUpDelay = 1500 * time.Millisecond
	DefaultLoginPath     = "/login"
)

type Options struct {
	// FollowUpDelay is how long the success indicator shows before the notice.
	FollowUpDelay time.Duration
	// LoginPath is where a successful signup sends the user.
	LoginPath string
}

type AuthService struct {
	registry  EmailRegistry
	prefs     PreferenceStore
	backend   Backend
	encoder   PasswordEncoder
	validator Validator
	log       *slog.Logger
	opts      Options
	subs      *submissions
}

func NewAuthService(reg EmailRegistry, ps PreferenceStore, b Backend, enc PasswordEncoder, v Validator, log *slog.Logger, opts Options) *AuthService {
	if opts.FollowUpDelay == 0 {
		opts.FollowUpDelay = DefaultFollowUpDelay
	}
	if opts.LoginPath == "" {
		opts.LoginPath = DefaultLoginPath
	}
	return &AuthService{
		registry:  reg,
		prefs:     ps,
		backend:   b,
		encoder:   enc,
		validator: v,
		log:       log,
		opts:      opts,
		subs:      newSubmissions(),
	}
}

// Login runs the login submission flow against f. A rejected validation
// returns the outcome together with a *errors.ValidationError; a failed
// backend call returns it with a *errors.AuthenticationError.
func (s *AuthService) Login(ctx context.Context, clientID string, f *form.Form, req *LoginRequest) (*Outcome, error) {
	key := submissionKey(clientID, form.Login)
	if !s.subs.begin(key) {
		return nil, apperrors.NewConflictError(MsgPending)
	}
	final := StateIdle
	defer func() { s.subs.set(key, final) }()

	_ = f.SetValue(form.FieldEmail, req.Email)
	_ = f.SetValue(form.FieldPassword, req.Password)
	_ = f.SetChecked(form.FieldRememberMe, req.RememberMe)
	req.Normalize()

	f.ClearErrors()
	verr, err := s.check(req)
	if err != nil {
		return nil, err
	}
	if !verr.Empty() {
		applyErrors(f, verr)
		return &Outcome{State: StateIdle, Form: f.Snapshot()}, verr
	}

	s.subs.set(key, StateSubmitting)
	f.BeginSubmit()
	if err := s.backend.Login(ctx, Credentials{Email: req.Email, Password: req.Password}); err != nil {
		f.SubmitFailed()
		_ = f.SetError(form.FieldEmail, MsgLoginFailedEmail)
		_ = f.SetError(form.FieldPassword, MsgLoginFailedPassword)
		final = StateFailed
		s.log.Warn("login rejected", "client_id", clientID, "error", err)
		return &Outcome{State: final, Form: f.Snapshot()}, apperrors.NewAuthenticationError(err.Error())
	}

	f.SubmitSucceeded()
	s.rememberChoice(ctx, clientID, req)
	final = StateSucceeded
	s.log.Info("login succeeded", "client_id", clientID, "remember_me", req.RememberMe)
	return &Outcome{
		State: final,
		Form:  f.Snapshot(),
		FollowUp: &FollowUp{
			DelayMS: s.opts.FollowUpDelay.Milliseconds(),
			Notice:  MsgLoginSucceeded,
		},
	}, nil
}

// rememberChoice persists or forgets the email. Failures are logged only;
// the login itself already succeeded.
func (s *AuthService) rememberChoice(ctx context.Context, clientID string, req *LoginRequest) {
	var err error
	if req.RememberMe {
		err = s.prefs.Save(ctx, clientID, RememberMePreference{Email: req.Email})
	} else {
		err = s.prefs.Clear(ctx, clientID)
	}
	if err != nil {
		s.log.Error("remember-me update failed", "client_id", clientID, "error", err)
	}
}

// Signup runs the signup submission flow against f. Validation problems
// come back as *errors.ValidationError, backend failures as
// *errors.SubmissionError; both alongside an outcome for rendering.
func (s *AuthService) Signup(ctx context.Context, clientID string, f *form.Form, req *SignupRequest) (*Outcome, error) {
	key := submissionKey(clientID, form.Signup)
	if !s.subs.begin(key) {
		return nil, apperrors.NewConflictError(MsgPending)
	}
	final := StateIdle
	defer func() { s.subs.set(key, final) }()

	_ = f.SetValue(form.FieldDisplayName, req.DisplayName)
	_ = f.SetValue(form.FieldEmail, req.Email)
	_ = f.SetValue(form.FieldPassword, req.Password)
	_ = f.SetValue(form.FieldConfirmPassword, req.ConfirmPassword)
	_ = f.SetChecked(form.FieldAgreeTerms, req.AgreeToTerms)
	req.Normalize()

	f.ClearErrors()
	verr, err := s.check(req)
	if err != nil {
		return nil, err
	}
	if _, bad := verr.Message(form.FieldEmail); !bad {
		taken, err := s.registry.Contains(ctx, req.Email)
		if err != nil {
			s.log.Error("registry lookup failed", "error", err)
			return nil, apperrors.NewInternalError()
		}
		if taken {
			verr.Add(form.FieldEmail, MsgEmailTaken)
		}
	}
	if !verr.Empty() {
		sortFieldErrors(verr, signupOrder)
		applyErrors(f, verr)
		return &Outcome{State: StateIdle, Form: f.Snapshot(), Alert: verr.Alert}, verr
	}

	s.subs.set(key, StateSubmitting)
	f.BeginSubmit()
	fail := func(err error) (*Outcome, error) {
		f.SubmitFailed()
		final = StateFailed
		s.log.Warn("signup rejected", "client_id", clientID, "error", err)
		return &Outcome{
			State: final,
			Form:  f.Snapshot(),
			Alert: MsgRegistrationFailed + err.Error(),
		}, apperrors.NewSubmissionError(err.Error())
	}

	hash, err := s.encoder.Encode(ctx, req.Password)
	if err != nil {
		return fail(err)
	}
	reg := Registration{DisplayName: req.DisplayName, Email: req.Email, PasswordHash: hash}
	if err := s.backend.Signup(ctx, reg); err != nil {
		return fail(err)
	}

	f.SubmitSucceeded()
	if err := s.registry.Add(ctx, strings.ToLower(req.Email)); err != nil {
		s.log.Error("registry update failed", "email", req.Email, "error", err)
	}
	final = StateSucceeded
	return &Outcome{
		State: final,
		Form:  f.Snapshot(),
		FollowUp: &FollowUp{
			DelayMS:  s.opts.FollowUpDelay.Milliseconds(),
			Notice:   MsgSignupSucceeded,
			Redirect: s.opts.LoginPath,
		},
	}, nil
}

// check runs the struct rules. The returned ValidationError is never nil
// when err is nil.
func (s *AuthService) check(req interface{}) (*apperrors.ValidationError, error) {
	err := s.validator.Validate(req)
	if err == nil {
		return apperrors.NewValidationError(), nil
	}
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		return verr, nil
	}
	s.log.Error("validator misconfigured", "error", err)
	return nil, apperrors.NewInternalError()
}

var signupOrder = []string{
	form.FieldDisplayName,
	form.FieldEmail,
	form.FieldPassword,
	form.FieldConfirmPassword,
}

func sortFieldErrors(verr *apperrors.ValidationError, order []string) {
	slices.SortStableFunc(verr.Fields, func(a, b apperrors.FieldError) int {
		return slices.Index(order, a.Field) - slices.Index(order, b.Field)
	})
}

func applyErrors(f *form.Form, verr *apperrors.ValidationError) {
	for _, fe := range verr.Fields {
		_ = f.SetError(fe.Field, fe.Message)
	}
}

// Preference reads the remembered email for a login form being opened.
func (s *AuthService) Preference(ctx context.Context, clientID string) (*PreferenceResponse, error) {
	pref, err := s.prefs.Load(ctx, clientID)
	if err != nil {
		s.log.Error("remember-me lookup failed", "client_id", clientID, "error", err)
		return nil, apperrors.NewInternalError()
	}
	if pref == nil {
		return &PreferenceResponse{}, nil
	}
	return &PreferenceResponse{Remembered: true, Email: pref.Email}, nil
}

// Prefill copies a remembered preference into a fresh login form.
func (s *AuthService) Prefill(ctx context.Context, clientID string, f *form.Form) error {
	if f.Kind() != form.Login {
		return nil
	}
	pref, err := s.Preference(ctx, clientID)
	if err != nil {
		return err
	}
	if pref.Remembered {
		_ = f.SetValue(form.FieldEmail, pref.Email)
		_ = f.SetChecked(form.FieldRememberMe, true)
	}
	return nil
}

// ForgotPassword answers a reset request. An empty email is a cancelled
// prompt and yields nil, nil.
func (s *AuthService) ForgotPassword(req *ForgotPasswordRequest) (*NoticeResponse, error) {
	if req.Email == "" {
		return nil, nil
	}
	if !IsValidEmail(req.Email) {
		return nil, apperrors.NewValidationError(apperrors.FieldError{Field: form.FieldEmail, Message: MsgEmailInvalid})
	}
	return &NoticeResponse{Notice: MsgResetSent + req.Email}, nil
}

// State reports where the client's latest submission of kind stands.
func (s *AuthService) State(clientID string, kind form.Kind) State {
	return s.subs.get(submissionKey(clientID, kind))
}
