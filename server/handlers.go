package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/siherrmann/recipegraph/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultSimilarLimit = 10

type searchRequest struct {
	Query string `json:"query"`
	Limit *int   `json:"limit,omitempty"`
}

type thinking struct {
	Reasoning          string   `json:"reasoning"`
	RoutingExplanation []string `json:"routing_explanation"`
}

type searchResponse struct {
	ID              uuid.UUID            `json:"id"`
	Query           string               `json:"query"`
	ParsedIntent    *model.Intent        `json:"parsed_intent"`
	Results         []*model.FusedResult `json:"results"`
	SourceBreakdown map[model.Source]int `json:"source_breakdown"`
	Thinking        thinking             `json:"thinking"`
}

type previewResponse struct {
	ID       int64   `json:"id"`
	ImageURL *string `json:"image_url"`
}

func newSearchResponse(outcome *model.SearchOutcome) *searchResponse {
	response := &searchResponse{
		ID:              outcome.ID,
		Query:           outcome.Query,
		ParsedIntent:    outcome.Intent,
		Results:         outcome.Results,
		SourceBreakdown: outcome.SourceBreakdown,
		Thinking:        thinking{RoutingExplanation: outcome.Explanation},
	}
	if response.Results == nil {
		response.Results = []*model.FusedResult{}
	}
	if outcome.Intent != nil {
		response.Thinking.Reasoning = outcome.Intent.Reasoning
	}
	return response
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Recipe search API is running"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query, limit, ok := s.decodeSearch(w, r)
	if !ok {
		return
	}

	intent, err := s.searcher.ExtractIntent(r.Context(), query)
	if err != nil {
		s.respondFailure(w, "extract intent", err)
		return
	}

	outcome, err := s.searcher.SearchWithIntent(r.Context(), query, intent, limit)
	if err != nil {
		s.respondFailure(w, "search", err)
		return
	}

	s.respondJSON(w, http.StatusOK, newSearchResponse(outcome))
}

func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := s.recipeID(w, r)
	if !ok {
		return
	}

	recipe, err := s.searcher.GetRecipe(r.Context(), id)
	if err != nil {
		s.respondFailure(w, "get recipe", err)
		return
	}
	s.respondJSON(w, http.StatusOK, recipe)
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	id, ok := s.recipeID(w, r)
	if !ok {
		return
	}

	limit := defaultSimilarLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}

	results, err := s.searcher.SimilarRecipes(r.Context(), id, limit)
	if err != nil {
		s.respondFailure(w, "similar recipes", err)
		return
	}
	if results == nil {
		results = []*model.FusedResult{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"id": id, "results": results})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	id, ok := s.recipeID(w, r)
	if !ok {
		return
	}

	image, err := s.searcher.PreviewImage(r.Context(), id)
	if err != nil {
		s.respondFailure(w, "preview image", err)
		return
	}

	response := previewResponse{ID: id}
	if image != "" {
		response.ImageURL = &image
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) decodeSearch(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	var request searchRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return "", 0, false
	}
	if strings.TrimSpace(request.Query) == "" {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return "", 0, false
	}

	limit := s.config.DefaultLimit
	if request.Limit != nil {
		limit = *request.Limit
	}
	return request.Query, limit, true
}

func (s *Server) recipeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "recipe id must be an integer")
		return 0, false
	}
	return id, true
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrRetrievalUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondFailure(w http.ResponseWriter, operation string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", slog.String("operation", operation), slog.String("error", err.Error()))
	} else {
		s.logger.Debug("Request rejected", slog.String("operation", operation), slog.String("error", err.Error()))
	}
	s.respondError(w, status, errorMessage(status, err))
}

func errorMessage(status int, err error) string {
	switch status {
	case http.StatusNotFound:
		return "recipe not found"
	case http.StatusServiceUnavailable:
		return "search backends unavailable"
	case http.StatusBadRequest:
		return err.Error()
	default:
		return fmt.Sprintf("internal error: %v", err)
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
