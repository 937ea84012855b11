package api

import (
	"context"
	"net/http"

	"momskitchen/internal/models"
)

// LoginResult is the data envelope of a successful OTP verification
type LoginResult struct {
	AccessToken  string             `json:"accessToken"`
	RefreshToken string             `json:"refreshToken"`
	User         models.UserProfile `json:"user"`
}

// SignupRequest is the body of POST /api/auth/signup
type SignupRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role"`
}

// AuthAPI covers /api/auth
type AuthAPI struct {
	c *Client
}

func (c *Client) Auth() *AuthAPI { return &AuthAPI{c: c} }

// SendOTP asks the backend to text a one-time code to phone
func (a *AuthAPI) SendOTP(ctx context.Context, phone string) error {
	_, err := a.c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/auth/send-otp",
		Body:   map[string]string{"phone_number": phone},
	})
	return err
}

// Login verifies the code and returns the new credentials
func (a *AuthAPI) Login(ctx context.Context, phone, otp string) (*LoginResult, error) {
	resp, err := a.c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/auth/login",
		Body:   map[string]string{"phone_number": phone, "otp": otp},
	})
	if err != nil {
		return nil, err
	}

	var result LoginResult
	if err := resp.Decode("data", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (a *AuthAPI) Signup(ctx context.Context, req SignupRequest) error {
	_, err := a.c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/auth/signup", Body: req})
	return err
}

func (a *AuthAPI) Logout(ctx context.Context) error {
	_, err := a.c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/auth/logout"})
	return err
}
