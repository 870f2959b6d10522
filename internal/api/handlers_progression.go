package api

import (
	"errors"
	"net/http"
	"strconv"

	"maple-tracker/internal/store"
)

const (
	defaultHistoryDays = 30
	maxHistoryDays     = 365
)

// GET /api/characters/{id}/progression?days=N
func (s *Server) handleProgressionHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r)
	if !ok {
		return
	}

	days := defaultHistoryDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxHistoryDays {
			writeError(w, http.StatusBadRequest, "days must be between 1 and 365")
			return
		}
		days = parsed
	}

	if _, err := s.store.GetCharacter(r.Context(), id); err != nil {
		s.storeError(w, err, "Character not found")
		return
	}

	entries, err := s.queries.History(r.Context(), id, days)
	if err != nil {
		s.logger.Error().Err(err).Str("characterID", id).Msg("Fetching progression history failed")
		writeError(w, http.StatusInternalServerError, "Failed to fetch progression history")
		return
	}
	writeJSON(w, http.StatusOK, toProgressionResponses(entries))
}

// GET /api/characters/{id}/progression/stats
func (s *Server) handleProgressionStats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r)
	if !ok {
		return
	}

	stats, err := s.queries.Stats(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Character not found")
			return
		}
		s.logger.Error().Err(err).Str("characterID", id).Msg("Computing progression stats failed")
		writeError(w, http.StatusInternalServerError, "Failed to compute progression stats")
		return
	}
	writeJSON(w, http.StatusOK, toStatsResponse(stats))
}

// POST /api/progression/update
func (s *Server) handleTriggerUpdate(w http.ResponseWriter, r *http.Request) {
	summary, err := s.trigger.TriggerNow(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Manual update pass failed")
		writeError(w, http.StatusInternalServerError, "Update pass failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"charactersChecked": summary.CharactersChecked,
		"recordsFetched":    summary.RecordsFetched,
		"snapshotsUpdated":  summary.SnapshotsUpdated,
		"failures":          summary.Failures,
		"durationSeconds":   summary.Duration.Seconds(),
	})
}
