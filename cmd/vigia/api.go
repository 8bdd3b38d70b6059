// cmd/vigia/api.go
package main

import (
	"context"
	"encoding/json"
	"net/http"

	"vigia/internal/common/database"
	apperrors "vigia/internal/common/errors"
	"vigia/internal/common/logger"
	"vigia/internal/models"
	"vigia/internal/pipeline"
	"vigia/internal/pipeline/match"
	"vigia/internal/pipeline/prefs"
	"vigia/internal/store"
)

func newListingStore(pg *database.PostgresClient) store.ListingStore {
	return store.NewPostgresListingStore(pg.DB)
}

func newPreferenceStore(pg *database.PostgresClient) store.PreferenceStore {
	return store.NewPostgresPreferenceStore(pg.DB)
}

func newNotificationStore(pg *database.PostgresClient) store.NotificationStore {
	return store.NewPostgresNotificationStore(pg.DB)
}

type api struct {
	pipeline *pipeline.Pipeline
	prefs    *prefs.Service
	searcher *match.Searcher
	logger   logger.Logger
}

func newAPI(pipe *pipeline.Pipeline, prefService *prefs.Service, searcher *match.Searcher, log logger.Logger) *api {
	return &api{
		pipeline: pipe,
		prefs:    prefService,
		searcher: searcher,
		logger:   log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// triggerCycle starts a full cycle in the background. A cycle already in
// progress makes the new request a no-op, which is still a 202.
func (a *api) triggerCycle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	go a.pipeline.RunCycle(context.Background())

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "cycle triggered",
	})
}

type savePreferencesRequest struct {
	UserID  string          `json:"userId"`
	Filters json.RawMessage `json:"filters"`
}

func (a *api) savePreferences(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req savePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	saved, err := a.prefs.Save(r.Context(), req.UserID, req.Filters)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrCodePreferenceValidationFailed) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		a.logger.Error("preference save failed", map[string]interface{}{
			"userId": req.UserID,
			"error":  err.Error(),
		})
		writeError(w, http.StatusInternalServerError, "could not save preferences")
		return
	}

	writeJSON(w, http.StatusOK, saved)
}

type searchResponse struct {
	Listing      *models.Listing      `json:"listing"`
	MatchedRules []models.MatchedRule `json:"matchedRules"`
}

// searchListings runs an ad-hoc filter document against the stored listings
// without persisting it.
func (a *api) searchListings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var criteria models.UserPreferences
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	results, err := a.searcher.Search(r.Context(), &criteria)
	if err != nil {
		a.logger.Error("listing search failed", map[string]interface{}{
			"error": err.Error(),
		})
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	out := make([]searchResponse, 0, len(results))
	for _, res := range results {
		out = append(out, searchResponse{
			Listing:      res.Listing,
			MatchedRules: res.MatchedRules,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}
