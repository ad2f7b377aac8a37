package credentials

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	apperrors "github.com/far7tna/portal/internal/errors"
)

// Claims is the informational view of an access token. Nothing here is verified.
type Claims struct {
	Subject   string
	Email     string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

type accessClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwtlib.RegisteredClaims
}

// AccessClaims decodes the token payload without checking its signature.
func AccessClaims(token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperrors.Wrapf(apperrors.ErrMalformedToken, "empty token")
	}

	var raw accessClaims
	if _, _, err := jwtlib.NewParser().ParseUnverified(token, &raw); err != nil {
		return Claims{}, apperrors.Wrapf(apperrors.ErrMalformedToken, "parse access token: %v", err)
	}

	claims := Claims{
		Subject: raw.Subject,
		Email:   raw.Email,
		Role:    ParseRole(raw.Role),
	}
	if raw.IssuedAt != nil {
		claims.IssuedAt = raw.IssuedAt.Time
	}
	if raw.ExpiresAt != nil {
		claims.ExpiresAt = raw.ExpiresAt.Time
	}
	return claims, nil
}
