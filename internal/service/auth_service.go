package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"momskitchen/internal/api"
	"momskitchen/internal/models"
	"momskitchen/internal/security"
	"momskitchen/internal/session"
	"momskitchen/internal/validation"
)

// AuthService handles the OTP login, signup and logout flows
type AuthService struct {
	client   *api.Client
	sessions *session.Store
	limiter  *security.RateLimiter
	role     string
	log      logrus.FieldLogger
}

// NewAuthService creates a new auth service. resendInterval throttles OTP requests
// per phone number; zero disables throttling.
func NewAuthService(client *api.Client, sessions *session.Store, role string, resendInterval time.Duration, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		client:   client,
		sessions: sessions,
		limiter:  security.NewRateLimiter(resendInterval, 1),
		role:     role,
		log:      log.WithField("component", "auth"),
	}
}

// SendOTP asks the backend to text a login code to phone
func (s *AuthService) SendOTP(ctx context.Context, phone string) error {
	phone = normalizePhone(phone)
	if err := validation.ValidatePhone(phone); err != nil {
		return err
	}

	if ok, wait := s.limiter.Allow(phone); !ok {
		return &ThrottleError{Wait: wait}
	}

	if err := s.client.Auth().SendOTP(ctx, phone); err != nil {
		// Let the customer retry straight away after a failed send
		s.limiter.Forget(phone)
		return userError(err, "Failed to send OTP")
	}

	s.log.WithField("phone", maskPhone(phone)).Info("OTP sent")
	return nil
}

// VerifyOTP exchanges the code for credentials and starts a session.
// The returned profile's IsActive is false for customers who still have to
// set their preferences.
func (s *AuthService) VerifyOTP(ctx context.Context, phone, code string) (*models.UserProfile, error) {
	phone = normalizePhone(phone)
	code = strings.TrimSpace(code)
	if err := validation.ValidatePhone(phone); err != nil {
		return nil, err
	}
	if err := validation.ValidateOTP(code); err != nil {
		return nil, err
	}

	result, err := s.client.Auth().Login(ctx, phone, code)
	if err != nil {
		return nil, userError(err, "Failed to verify OTP")
	}

	user := result.User
	s.sessions.Login(ctx, result.AccessToken, result.RefreshToken, &user)
	s.limiter.Forget(phone)

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "active": user.IsActive}).Info("Logged in")
	return &user, nil
}

// Signup registers a new customer. The customer logs in with an OTP afterwards.
func (s *AuthService) Signup(ctx context.Context, name, phone string) error {
	name = strings.TrimSpace(name)
	phone = normalizePhone(phone)
	if err := validation.ValidateName(name); err != nil {
		return err
	}
	if err := validation.ValidatePhone(phone); err != nil {
		return err
	}

	req := api.SignupRequest{Name: name, PhoneNumber: phone, Role: s.role}
	if err := s.client.Auth().Signup(ctx, req); err != nil {
		return userError(err, "Failed to sign up")
	}
	return nil
}

// Logout ends the session. The backend call is best effort; local credentials are
// always dropped.
func (s *AuthService) Logout(ctx context.Context) {
	if s.sessions.AccessToken() != "" {
		if err := s.client.Auth().Logout(ctx); err != nil {
			s.log.WithError(err).Warn("Backend logout failed")
		}
	}
	s.sessions.Logout(ctx)
}

// CurrentUser returns the logged in customer, or nil
func (s *AuthService) CurrentUser() *models.UserProfile {
	snap := s.sessions.Snapshot()
	if !snap.IsAuthenticated() {
		return nil
	}
	return snap.User
}

func normalizePhone(phone string) string {
	return strings.ReplaceAll(strings.TrimSpace(phone), " ", "")
}

func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
