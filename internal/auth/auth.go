// Package auth issues and verifies the API's JWT token pairs and hashes
// account passwords. Token mechanics are delegated to golang-jwt and bcrypt.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
	bcryptCost      = 12
)

// ErrInvalidToken covers malformed, mis-signed and expired tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenPair is an access token plus the refresh token that renews it.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Service signs and verifies tokens. Access and refresh tokens use separate
// secrets so a leaked access secret cannot mint refresh tokens.
type Service struct {
	secret        []byte
	refreshSecret []byte
	nowFunc       func() time.Time
}

// NewService creates the auth service. Both secrets must be non-empty.
func NewService(secret, refreshSecret string) (*Service, error) {
	if secret == "" || refreshSecret == "" {
		return nil, errors.New("JWT secrets not configured")
	}
	return &Service{
		secret:        []byte(secret),
		refreshSecret: []byte(refreshSecret),
		nowFunc:       time.Now,
	}, nil
}

// HashPassword hashes a password with bcrypt.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether the password matches the stored hash.
func (s *Service) VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateTokens issues a fresh access/refresh pair for the user.
func (s *Service) GenerateTokens(userID string) (TokenPair, error) {
	access, err := s.sign(userID, s.secret, accessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(userID, s.refreshSecret, refreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccessToken returns the user id carried by a valid access token.
func (s *Service) VerifyAccessToken(token string) (string, error) {
	return s.verify(token, s.secret)
}

// VerifyRefreshToken returns the user id carried by a valid refresh token.
func (s *Service) VerifyRefreshToken(token string) (string, error) {
	return s.verify(token, s.refreshSecret)
}

func (s *Service) sign(userID string, secret []byte, ttl time.Duration) (string, error) {
	now := s.nowFunc()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return token, nil
}

func (s *Service) verify(tokenString string, secret []byte) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.nowFunc),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
