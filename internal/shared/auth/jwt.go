package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
	ErrForbidden    = errors.New("insufficient role")
)

// Claims are the fields an editor token carries.
type Claims struct {
	SessionID string   `json:"sid"`
	Roles     []string `json:"roles"`
	Role      string   `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// HasRole matches role case-insensitively against both the roles list and the single role claim.
func (c *Claims) HasRole(role string) bool {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return true
	}
	if strings.EqualFold(c.Role, role) {
		return true
	}
	return slices.ContainsFunc(c.Roles, func(r string) bool { return strings.EqualFold(strings.TrimSpace(r), role) })
}

type TokenValidator interface {
	Validate(token string) (*Claims, error)
}

type JWTValidator struct {
	secret    []byte
	publicKey *rsa.PublicKey
	now       func() time.Time
}

// NewJWTValidator accepts RS256 tokens when publicKeyPEM parses and HS256 tokens signed
// with secret otherwise.
func NewJWTValidator(secret, publicKeyPEM string) (*JWTValidator, error) {
	v := &JWTValidator{
		secret: []byte(strings.TrimSpace(secret)),
		now:    time.Now,
	}
	if strings.TrimSpace(publicKeyPEM) != "" {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse jwt public key: %w", err)
		}
		v.publicKey = key
	}
	return v, nil
}

// Configured reports whether any verification key is set.
func (v *JWTValidator) Configured() bool {
	return v.publicKey != nil || len(v.secret) > 0
}

func (v *JWTValidator) keyFor(t *jwt.Token) (any, error) {
	if v.publicKey != nil {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v, expected RS256", t.Header["alg"])
		}
		return v.publicKey, nil
	}
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return v.secret, nil
}

func (v *JWTValidator) Validate(token string) (*Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}
	if !v.Configured() {
		return nil, fmt.Errorf("%w: jwt key not configured", ErrInvalidToken)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, v.keyFor,
		jwt.WithLeeway(5*time.Second),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if claims.SessionID == "" {
		claims.SessionID = firstNonEmpty(claims.ID, fmt.Sprintf("%s:%d", claims.Subject, claims.ExpiresAt.Unix()))
	}
	return claims, nil
}

// Authorize validates token and requires role.
func Authorize(v TokenValidator, token, role string) (*Claims, error) {
	claims, err := v.Validate(token)
	if err != nil {
		return nil, err
	}
	if !claims.HasRole(role) {
		return claims, fmt.Errorf("%w: %q required", ErrForbidden, role)
	}
	return claims, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
