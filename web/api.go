// ABOUTME: JSON API handlers for catalog listings, recipe detail, user creation, and cache invalidation.
// ABOUTME: Reads go straight to the catalog; the page cache is only touched by explicit invalidation.
package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2389-research/nutria/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxJSONBody bounds request bodies accepted by the API.
const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// apiError maps catalog sentinel errors to HTTP status codes.
func (s *Server) apiError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not found")
	case errors.Is(err, catalog.ErrConflict):
		writeJSONError(w, http.StatusConflict, "already exists")
	case errors.Is(err, catalog.ErrInvalid):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("api request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}

// handleHealth reports liveness and database reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAPITags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.catalog.ListTags(r.Context())
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (s *Server) handleAPIIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := s.catalog.ListIngredients(r.Context())
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ingredients)
}

func (s *Server) handleAPIRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := s.catalog.ListRecipes(r.Context())
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (s *Server) handleAPIRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "recipeID"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid recipe id")
		return
	}
	recipe, err := s.catalog.GetRecipe(r.Context(), id)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// createUserRequest is the body of POST /api/users.
type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleAPICreateUser(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, err := s.catalog.CreateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	s.logger.Info("user created", zap.String("user_id", user.ID.String()))
	writeJSON(w, http.StatusCreated, user)
}

// handleAPIInvalidateCache drops page cache entries under ?prefix= (all
// entries when absent).
func (s *Server) handleAPIInvalidateCache(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	removed := s.Queries().Invalidate(prefix)
	s.logger.Info("page cache invalidated", zap.String("prefix", prefix), zap.Int("removed", removed))
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}
