package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"maple-tracker/internal/store"
)

// pathUUID pulls the {id} path parameter and rejects anything that is not a
// UUID before it reaches the database.
func pathUUID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return "", false
	}
	return id, true
}

// storeError maps store.ErrNotFound to 404 and everything else to 500.
func (s *Server) storeError(w http.ResponseWriter, err error, notFoundMsg string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, notFoundMsg)
		return
	}
	s.logger.Error().Err(err).Msg("Store query failed")
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

type characterRequest struct {
	Name          string  `json:"name"`
	Level         int     `json:"level"`
	Job           string  `json:"job"`
	World         string  `json:"world"`
	DiscordUserID *string `json:"discordUserId"`
}

func (cr *characterRequest) validate() string {
	cr.Name = strings.TrimSpace(cr.Name)
	cr.Job = strings.TrimSpace(cr.Job)
	cr.World = strings.TrimSpace(cr.World)
	switch {
	case cr.Name == "":
		return "name is required"
	case cr.Level < 1:
		return "level must be at least 1"
	case cr.Job == "":
		return "job is required"
	case cr.World == "":
		return "world is required"
	}
	if cr.DiscordUserID != nil {
		if _, err := uuid.Parse(*cr.DiscordUserID); err != nil {
			return "discordUserId must be a UUID"
		}
	}
	return ""
}

// GET /api/characters?user=<discord user id>
func (s *Server) handleListCharacters(w http.ResponseWriter, r *http.Request) {
	var characters []store.Character
	var err error
	if owner := r.URL.Query().Get("user"); owner != "" {
		if _, parseErr := uuid.Parse(owner); parseErr != nil {
			writeError(w, http.StatusBadRequest, "user must be a UUID")
			return
		}
		characters, err = s.store.ListCharactersByOwner(r.Context(), owner)
	} else {
		characters, err = s.store.ListCharacters(r.Context())
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Listing characters failed")
		writeError(w, http.StatusInternalServerError, "Failed to list characters")
		return
	}
	writeJSON(w, http.StatusOK, toCharacterResponses(characters))
}

// GET /api/characters/{id}
func (s *Server) handleGetCharacter(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r)
	if !ok {
		return
	}

	character, err := s.store.GetCharacter(r.Context(), id)
	if err != nil {
		s.storeError(w, err, "Character not found")
		return
	}
	writeJSON(w, http.StatusOK, toCharacterResponse(character))
}

// POST /api/characters
func (s *Server) handleCreateCharacter(w http.ResponseWriter, r *http.Request) {
	var req characterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	created, err := s.store.CreateCharacter(r.Context(), &store.Character{
		Name:          req.Name,
		Level:         req.Level,
		Job:           req.Job,
		World:         req.World,
		DiscordUserID: req.DiscordUserID,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("name", req.Name).Msg("Creating character failed")
		writeError(w, http.StatusInternalServerError, "Failed to create character")
		return
	}

	s.logger.Info().Str("name", created.Name).Str("id", created.ID).Msg("Character registered")
	writeJSON(w, http.StatusCreated, toCharacterResponse(created))
}

// PUT /api/characters/{id}
func (s *Server) handleUpdateCharacter(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r)
	if !ok {
		return
	}

	var req characterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := s.store.UpdateCharacter(r.Context(), id, req.Name, req.Job, req.World, req.Level)
	if err != nil {
		s.storeError(w, err, "Character not found")
		return
	}
	writeJSON(w, http.StatusOK, toCharacterResponse(updated))
}

// DELETE /api/characters/{id}
func (s *Server) handleDeleteCharacter(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteCharacter(r.Context(), id); err != nil {
		s.storeError(w, err, "Character not found")
		return
	}

	s.logger.Info().Str("id", id).Str("userID", requestUserID(r)).Msg("Character deleted")
	w.WriteHeader(http.StatusNoContent)
}
