package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := NewService("test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestNewServiceRequiresSecret(t *testing.T) {
	if _, err := NewService("", 0); !errors.Is(err, ErrEmptySecret) {
		t.Errorf("err = %v, want ErrEmptySecret", err)
	}
}

func TestIssueAndValidate(t *testing.T) {
	s := newTestService(t)

	tok, err := s.NewSession()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(tok.Subject, "session-") {
		t.Errorf("subject = %q", tok.Subject)
	}

	subject, err := s.ValidateToken(tok.Token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if subject != tok.Subject {
		t.Errorf("subject = %q, want %q", subject, tok.Subject)
	}
}

func TestValidateRejects(t *testing.T) {
	s := newTestService(t)
	other, _ := NewService("other-secret", time.Hour)
	foreign, _ := other.IssueToken("x")

	expired := newTestService(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _ := expired.IssueToken("x")

	unsigned, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   "x",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign.Token,
		"expired":      old.Token,
		"alg none":     unsigned,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := s.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("err = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	s := newTestService(t)
	tok, _ := s.IssueToken("alice")

	var seen string
	h := s.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{"bearer", "Bearer " + tok.Token, "", http.StatusNoContent},
		{"query", "", "?token=" + tok.Token, http.StatusNoContent},
		{"missing", "", "", http.StatusUnauthorized},
		{"basic", "Basic abc", "", http.StatusUnauthorized},
		{"bad token", "Bearer nope", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest("GET", "/api/state"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusNoContent && seen != "alice" {
				t.Errorf("subject = %q, want alice", seen)
			}
		})
	}
}

func TestRefresh(t *testing.T) {
	s := newTestService(t)
	tok, _ := s.IssueToken("alice")

	req := httptest.NewRequest("POST", "/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	s.Middleware(http.HandlerFunc(s.Refresh)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"subject":"alice"`) {
		t.Errorf("refresh = %d %s", rec.Code, rec.Body.String())
	}
}
