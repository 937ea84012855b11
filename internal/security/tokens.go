package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// TokenClaims are the parts of an access token the client cares about
type TokenClaims struct {
	Subject   string
	ExpiresAt time.Time
}

// InspectAccessToken reads the claims of a JWT without verifying its signature.
// The client cannot verify backend tokens; the result is only a hint for display
// and for deciding whether a token has obviously lapsed.
func InspectAccessToken(raw string) (TokenClaims, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return TokenClaims{}, fmt.Errorf("failed to parse access token: %w", err)
	}

	tc := TokenClaims{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		tc.ExpiresAt = claims.ExpiresAt.Time
	}
	return tc, nil
}

// OAuthToken wraps an access token as a bearer oauth2.Token. Expiry is filled in
// when the token is a JWT carrying exp; opaque tokens never expire client-side.
func OAuthToken(access string) *oauth2.Token {
	if access == "" {
		return nil
	}
	tok := &oauth2.Token{AccessToken: access, TokenType: "Bearer"}
	if claims, err := InspectAccessToken(access); err == nil {
		tok.Expiry = claims.ExpiresAt
	}
	return tok
}
