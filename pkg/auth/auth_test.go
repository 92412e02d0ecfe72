package auth

import (
	"errors"
	"testing"
	"time"
)

func newTestService(t *testing.T, ttl time.Duration) *Service {
	t.Helper()
	s, err := NewService(Config{PIN: "2468", Secret: "unit-test-secret", TokenTTL: ttl})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestIssueAndValidate(t *testing.T) {
	t.Parallel()

	s := newTestService(t, time.Hour)
	token, err := s.IssueToken("2468")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.ValidateToken(token); err != nil {
		t.Fatalf("fresh token rejected: %v", err)
	}
}

func TestIssueTokenWrongPIN(t *testing.T) {
	t.Parallel()

	s := newTestService(t, time.Hour)
	if _, err := s.IssueToken("0000"); !errors.Is(err, ErrInvalidPIN) {
		t.Fatalf("err = %v, want ErrInvalidPIN", err)
	}
}

func TestValidateTokenExpired(t *testing.T) {
	t.Parallel()

	s := newTestService(t, time.Minute)
	token, err := s.IssueToken("2468")
	if err != nil {
		t.Fatal(err)
	}

	// Move the clock past expiry.
	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if err := s.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token accepted: %v", err)
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	t.Parallel()

	s := newTestService(t, time.Hour)
	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if err := s.ValidateToken(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ValidateToken(%q) = %v, want ErrInvalidToken", tok, err)
		}
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	t.Parallel()

	s := newTestService(t, time.Hour)
	other, err := NewService(Config{PIN: "2468", Secret: "some-other-secret"})
	if err != nil {
		t.Fatal(err)
	}
	token, err := other.IssueToken("2468")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("cross-signed token accepted: %v", err)
	}
}

func TestNewServiceValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewService(Config{Secret: "x"}); err == nil {
		t.Error("missing pin accepted")
	}
	if _, err := NewService(Config{PIN: "1"}); err == nil {
		t.Error("missing secret accepted")
	}
}

func TestExtractBearer(t *testing.T) {
	t.Parallel()

	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"", ""},
		{"Bearer", ""},
	}
	for _, tc := range cases {
		if got := ExtractBearer(tc.header); got != tc.want {
			t.Errorf("ExtractBearer(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}
