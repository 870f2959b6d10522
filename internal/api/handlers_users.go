package api

import (
	"net/http"
)

// GET /api/users
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListDiscordUsers(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Listing users failed")
		writeError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}

	out := make([]discordUserResponse, 0, len(users))
	for i := range users {
		out = append(out, toDiscordUserResponse(&users[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /api/users/{id}
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r)
	if !ok {
		return
	}

	user, err := s.store.GetDiscordUser(r.Context(), id)
	if err != nil {
		s.storeError(w, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, toDiscordUserResponse(user))
}

// GET /api/users/{id}/characters
func (s *Server) handleUserCharacters(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r)
	if !ok {
		return
	}

	if _, err := s.store.GetDiscordUser(r.Context(), id); err != nil {
		s.storeError(w, err, "User not found")
		return
	}

	characters, err := s.store.ListCharactersByOwner(r.Context(), id)
	if err != nil {
		s.logger.Error().Err(err).Str("userID", id).Msg("Listing user characters failed")
		writeError(w, http.StatusInternalServerError, "Failed to list characters")
		return
	}
	writeJSON(w, http.StatusOK, toCharacterResponses(characters))
}
