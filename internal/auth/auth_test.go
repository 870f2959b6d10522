package auth

import (
	"testing"
	"time"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := NewService("access-secret", "refresh-secret")
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return s
}

func TestNewService_RequiresSecrets(t *testing.T) {
	if _, err := NewService("", "refresh"); err == nil {
		t.Error("expected error with empty access secret")
	}
	if _, err := NewService("access", ""); err == nil {
		t.Error("expected error with empty refresh secret")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	s := newTestService(t)

	hash, err := s.HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "hunter2hunter2" {
		t.Fatal("password stored in plain text")
	}

	if !s.VerifyPassword("hunter2hunter2", hash) {
		t.Error("correct password rejected")
	}
	if s.VerifyPassword("wrong", hash) {
		t.Error("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	s := newTestService(t)

	pair, err := s.GenerateTokens("user-123")
	if err != nil {
		t.Fatalf("GenerateTokens failed: %v", err)
	}

	userID, err := s.VerifyAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccessToken failed: %v", err)
	}
	if userID != "user-123" {
		t.Errorf("userID = %q, want user-123", userID)
	}

	userID, err = s.VerifyRefreshToken(pair.RefreshToken)
	if err != nil {
		t.Fatalf("VerifyRefreshToken failed: %v", err)
	}
	if userID != "user-123" {
		t.Errorf("refresh userID = %q, want user-123", userID)
	}
}

// Access and refresh tokens are signed with different secrets and must not
// be interchangeable.
func TestTokensNotInterchangeable(t *testing.T) {
	s := newTestService(t)

	pair, err := s.GenerateTokens("user-123")
	if err != nil {
		t.Fatalf("GenerateTokens failed: %v", err)
	}

	if _, err := s.VerifyAccessToken(pair.RefreshToken); err != ErrInvalidToken {
		t.Errorf("refresh token accepted as access token: %v", err)
	}
	if _, err := s.VerifyRefreshToken(pair.AccessToken); err != ErrInvalidToken {
		t.Errorf("access token accepted as refresh token: %v", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	s := newTestService(t)

	issued := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	s.nowFunc = func() time.Time { return issued }
	pair, err := s.GenerateTokens("user-123")
	if err != nil {
		t.Fatalf("GenerateTokens failed: %v", err)
	}

	// One hour later the 15 minute access token is gone.
	s.nowFunc = func() time.Time { return issued.Add(time.Hour) }
	if _, err := s.VerifyAccessToken(pair.AccessToken); err != ErrInvalidToken {
		t.Errorf("expired access token accepted: %v", err)
	}

	// The 7 day refresh token is still good.
	if _, err := s.VerifyRefreshToken(pair.RefreshToken); err != nil {
		t.Errorf("refresh token rejected early: %v", err)
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	s := newTestService(t)

	if _, err := s.VerifyAccessToken("not-a-token"); err != ErrInvalidToken {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}
