package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/you/dairyshell/domain"
	"github.com/you/dairyshell/internal/infrastructure/logging"
)

const (
	// MinPasswordLength is the shortest password accepted at sign-up
	MinPasswordLength = 8
	// VerificationCodeLength is the length of emailed verification codes
	VerificationCodeLength = 6
)

// AuthServiceImpl implements domain.AuthService
type AuthServiceImpl struct {
	api      domain.MarketplaceAPI
	session  domain.SessionService
	notifier domain.NotificationService
	log      *logrus.Entry
}

// NewAuthService creates a new auth service
func NewAuthService(
	api domain.MarketplaceAPI,
	session domain.SessionService,
	notifier domain.NotificationService,
	log logrus.FieldLogger,
) domain.AuthService {
	return &AuthServiceImpl{
		api:      api,
		session:  session,
		notifier: notifier,
		log:      logging.Component(log, "auth"),
	}
}

// SignIn implements domain.AuthService
func (s *AuthServiceImpl) SignIn(ctx context.Context, identifier, password string) (*domain.User, error) {
	if strings.TrimSpace(identifier) == "" {
		return nil, s.fail("Login failed", domain.ErrIdentifierRequired)
	}
	if password == "" {
		return nil, s.fail("Login failed", domain.ErrPasswordRequired)
	}

	result, err := s.api.Login(ctx, identifier, password)
	if err != nil {
		return nil, s.fail("Login failed", loginError(err))
	}
	if result == nil || !result.Success {
		msg := "Login failed. Please try again."
		if result != nil && result.Message != "" {
			msg = result.Message
		}
		return nil, s.fail("Login failed", fmt.Errorf("%w: %s", domain.ErrLoginRejected, msg))
	}

	if result.User != nil && !domain.IdentityOf(result.User).IsValid() {
		// starting the session would only force a logout
		return nil, s.fail("Login failed", domain.ErrUnsupportedAccount)
	}

	if err := s.session.Login(ctx, result.User, result.Token); err != nil {
		// the API answered success without a usable user or token
		return nil, s.fail("Login failed", fmt.Errorf("%w: %v", domain.ErrLoginRejected, err))
	}

	s.log.WithField("user_id", result.User.ID).Info("User signed in")
	return result.User.Clone(), nil
}

// loginError maps an API failure to a domain error, keeping the server message
func loginError(err error) error {
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	var sentinel error
	switch apiErr.StatusCode {
	case http.StatusUnauthorized:
		sentinel = domain.ErrInvalidCredentials
	case http.StatusNotFound:
		sentinel = domain.ErrUserNotFound
	default:
		sentinel = domain.ErrLoginRejected
	}
	if apiErr.Message == "" {
		return fmt.Errorf("%w: %v", sentinel, apiErr)
	}
	return &messageError{msg: apiErr.Message, err: fmt.Errorf("%w: %v", sentinel, apiErr)}
}

// Register implements domain.AuthService
func (s *AuthServiceImpl) Register(ctx context.Context, reg domain.Registration) (string, error) {
	reg = NormalizeRegistration(reg)
	if err := ValidateRegistration(reg); err != nil {
		return "", s.fail("Registration failed", err)
	}

	msg, err := s.api.Register(ctx, &reg)
	if err != nil {
		return "", s.fail("Registration failed", apiFailure(err, "Please check your information"))
	}

	s.log.WithField("email", reg.Email).Info("Registration submitted")
	s.notifier.Success("Verification code sent!", msg)
	return msg, nil
}

// VerifyEmail implements domain.AuthService
func (s *AuthServiceImpl) VerifyEmail(ctx context.Context, email, code string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	code = strings.TrimSpace(code)
	if email == "" {
		return "", s.fail("Verification failed", &messageError{msg: "Email is required", err: domain.ErrFieldRequired})
	}
	if code == "" {
		return "", s.fail("Verification failed", domain.ErrCodeRequired)
	}
	if len([]rune(code)) != VerificationCodeLength {
		return "", s.fail("Verification failed", domain.ErrInvalidCode)
	}

	msg, err := s.api.VerifyEmail(ctx, email, code)
	if err != nil {
		return "", s.fail("Verification failed", apiFailure(err, "Invalid verification code"))
	}

	s.log.WithField("email", email).Info("Email verified")
	s.notifier.Success("Email verified!", msg)
	return msg, nil
}

// SignOut implements domain.AuthService
func (s *AuthServiceImpl) SignOut(ctx context.Context) {
	s.session.Logout(ctx)
	s.log.Info("User signed out")
}

// fail shows the error as a toast and returns it
func (s *AuthServiceImpl) fail(title string, err error) error {
	s.notifier.Error(title, UserMessage(err))
	s.log.WithError(err).Warn(title)
	return err
}

// apiFailure keeps the server message or falls back to def
func apiFailure(err error, def string) error {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message == "" {
			return &messageError{msg: def, err: apiErr}
		}
		return &messageError{msg: apiErr.Message, err: apiErr}
	}
	return err
}

// messageError carries the text shown to the user alongside the cause
type messageError struct {
	msg string
	err error
}

func (e *messageError) Error() string { return e.msg }
func (e *messageError) Unwrap() error { return e.err }

// UserMessage returns the text a toast should show for err
func UserMessage(err error) string {
	var m *messageError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &m):
		return m.msg
	case errors.Is(err, domain.ErrNetwork):
		return "Network error. Please check your internet connection"
	case errors.Is(err, domain.ErrIdentifierRequired):
		return "Please enter email, username or phone number"
	case errors.Is(err, domain.ErrPasswordRequired):
		return "Please enter your password"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, domain.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, domain.ErrInvalidEmail):
		return "Please enter a valid email"
	case errors.Is(err, domain.ErrPasswordTooShort):
		return "Password must be at least 8 characters"
	case errors.Is(err, domain.ErrUnsupportedAccount):
		return "This account type is not supported"
	case errors.Is(err, domain.ErrCodeRequired):
		return "Please enter the verification code"
	case errors.Is(err, domain.ErrInvalidCode):
		return "Please enter the 6-digit code"
	default:
		return err.Error()
	}
}

// NormalizeRegistration trims the form, lowercases the login names and
// keeps only digits in phone numbers
func NormalizeRegistration(reg domain.Registration) domain.Registration {
	reg.FirstName = strings.TrimSpace(reg.FirstName)
	reg.LastName = strings.TrimSpace(reg.LastName)
	reg.UserName = strings.ToLower(strings.TrimSpace(reg.UserName))
	reg.Email = strings.ToLower(strings.TrimSpace(reg.Email))
	reg.PhoneNumber = digitsOnly(reg.PhoneNumber)
	reg.WhatsappNumber = digitsOnly(reg.WhatsappNumber)
	reg.Address = strings.TrimSpace(reg.Address)
	reg.City = strings.TrimSpace(reg.City)
	reg.UserField = strings.ToLower(strings.TrimSpace(reg.UserField))
	return reg
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateRegistration checks a normalized registration form
func ValidateRegistration(reg domain.Registration) error {
	if reg.UserField != domain.UserFieldBuyer && reg.UserField != domain.UserFieldSeller {
		return domain.ErrInvalidUserField
	}

	required := []struct {
		label string
		value string
	}{
		{"First Name", reg.FirstName},
		{"Last Name", reg.LastName},
		{"Username", reg.UserName},
		{"Email", reg.Email},
		{"Phone", reg.PhoneNumber},
		{"WhatsApp", reg.WhatsappNumber},
		{"Address", reg.Address},
		{"Password", reg.Password},
	}
	for _, f := range required {
		if f.value == "" {
			return &messageError{msg: f.label + " is required", err: domain.ErrFieldRequired}
		}
	}

	if !strings.Contains(reg.Email, "@") {
		return domain.ErrInvalidEmail
	}
	if len(reg.Password) < MinPasswordLength {
		return domain.ErrPasswordTooShort
	}
	return nil
}
