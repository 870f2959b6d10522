package api

import (
	"errors"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"

	"maple-tracker/internal/store"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// POST /api/auth/register
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if s.authService == nil {
		writeError(w, http.StatusServiceUnavailable, "Authentication not configured")
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	switch {
	case req.Username == "":
		writeError(w, http.StatusBadRequest, "username is required")
		return
	case req.Email == "" || !strings.Contains(req.Email, "@"):
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	case len(req.Password) < 8:
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	if _, err := s.store.GetUserByEmail(r.Context(), req.Email); err == nil {
		writeError(w, http.StatusConflict, "Email already registered")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		s.logger.Error().Err(err).Msg("Checking existing user failed")
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	hash, err := s.authService.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Hashing password failed")
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	user, err := s.store.CreateUser(r.Context(), req.Username, req.Email, hash)
	if err != nil {
		s.logger.Error().Err(err).Str("email", req.Email).Msg("Creating user failed")
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	tokens, err := s.authService.GenerateTokens(user.ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Issuing tokens failed")
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	s.logger.Info().Str("userID", user.ID).Msg("User registered")
	writeJSON(w, http.StatusCreated, map[string]any{
		"user":   userResponse{ID: user.ID, Username: user.Username, Email: user.Email},
		"tokens": tokens,
	})
}

// POST /api/auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.authService == nil {
		writeError(w, http.StatusServiceUnavailable, "Authentication not configured")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		s.logger.Error().Err(err).Msg("Looking up user failed")
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	if !s.authService.VerifyPassword(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	tokens, err := s.authService.GenerateTokens(user.ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Issuing tokens failed")
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":   userResponse{ID: user.ID, Username: user.Username, Email: user.Email},
		"tokens": tokens,
	})
}

// POST /api/auth/refresh
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.authService == nil {
		writeError(w, http.StatusServiceUnavailable, "Authentication not configured")
		return
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refreshToken is required")
		return
	}

	userID, err := s.authService.VerifyRefreshToken(req.RefreshToken)
	if err != nil {
		writeError(w, http.StatusForbidden, "Invalid or expired refresh token")
		return
	}

	// The account may have been deleted since the token was issued.
	if _, err := s.store.GetUser(r.Context(), userID); err != nil {
		writeError(w, http.StatusForbidden, "Invalid or expired refresh token")
		return
	}

	tokens, err := s.authService.GenerateTokens(userID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Issuing tokens failed")
		writeError(w, http.StatusInternalServerError, "Token refresh failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"tokens": tokens})
}
