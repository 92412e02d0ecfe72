// Package auth implements the PIN-for-token exchange used by the HTTP
// surface. A caller proves the shared team PIN once and receives a signed
// bearer token; every later request only needs the yes/no validity check.
package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidPIN   = errors.New("invalid pin")
	ErrInvalidToken = errors.New("invalid token")
)

type Config struct {
	PIN      string        `split_words:"true" required:"true"`
	Secret   string        `split_words:"true" required:"true"`
	TokenTTL time.Duration `split_words:"true" default:"12h"`
}

type Service struct {
	pin    string
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(cfg Config) (*Service, error) {
	pin := strings.TrimSpace(cfg.PIN)
	if pin == "" {
		return nil, errors.New("auth pin is required")
	}
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("auth secret is required")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Service{
		pin:    pin,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// IssueToken exchanges the shared PIN for a signed session token.
func (s *Service) IssueToken(pin string) (string, error) {
	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(pin)), []byte(s.pin)) != 1 {
		return "", ErrInvalidPIN
	}

	now := s.now()
	claims := jwt.MapClaims{
		"sub": "team",
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken reports whether the presented bearer token is valid and
// unexpired. The token content carries no identity beyond the shared team
// session.
func (s *Service) ValidateToken(tokenStr string) error {
	token, err := jwt.Parse(strings.TrimSpace(tokenStr), func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return ErrInvalidToken
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

// ExtractBearer pulls the token out of an Authorization header value.
// Returns "" when the header is absent or not a bearer scheme.
func ExtractBearer(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
