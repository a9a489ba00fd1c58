// Package web exposes the engine's inbound contract as a JSON HTTP API.
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/finbarsheehy/memodeck/internal/domain"
	"github.com/finbarsheehy/memodeck/internal/engine"
	"github.com/finbarsheehy/memodeck/internal/errs"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	engine     *engine.Engine
	router     *http.ServeMux
	logger     *zap.Logger
	sessionMax int
}

// NewServer creates and configures a new server. sessionMax bounds
// /session responses; zero means unbounded.
func NewServer(eng *engine.Engine, sessionMax int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		engine:     eng,
		router:     http.NewServeMux(),
		logger:     logger,
		sessionMax: sessionMax,
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	s.router.HandleFunc("POST /cards", s.handleCreateCard())
	s.router.HandleFunc("GET /cards", s.handleListCards())
	s.router.HandleFunc("GET /cards/{id}", s.handleGetCard())
	s.router.HandleFunc("GET /due", s.handleDueCards())
	s.router.HandleFunc("GET /session", s.handleSession())
	s.router.HandleFunc("POST /review", s.handleReview())
	s.router.HandleFunc("GET /stats", s.handleStats())
}

type createCardRequest struct {
	Front string   `json:"front"`
	Back  string   `json:"back"`
	Tags  []string `json:"tags"`
	Type  string   `json:"type"`
}

func (s *Server) handleCreateCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCardRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		card, err := s.engine.CreateCard(r.Context(), req.Front, req.Back, domain.Options{
			Tags: req.Tags,
			Type: req.Type,
		})
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, card)
	}
}

func (s *Server) handleListCards() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, s.engine.Cards())
	}
}

func (s *Server) handleGetCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		card, err := s.engine.Card(r.PathValue("id"))
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, card)
	}
}

func (s *Server) handleDueCards() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		due := s.engine.DueCards(time.Now())
		if due == nil {
			due = []domain.Card{}
		}
		s.writeJSON(w, http.StatusOK, due)
	}
}

func (s *Server) handleSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		maxSize := s.sessionMax
		if raw := r.URL.Query().Get("max"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				s.writeError(w, http.StatusBadRequest, "invalid max parameter")
				return
			}
			maxSize = n
		}
		cards := s.engine.BuildSession(time.Now(), maxSize)
		if cards == nil {
			cards = []domain.Card{}
		}
		s.writeJSON(w, http.StatusOK, cards)
	}
}

type reviewRequest struct {
	CardID string `json:"card_id"`
	Rating int    `json:"rating"`
}

type reviewResponse struct {
	Card  domain.Card `json:"card"`
	Stage string      `json:"stage"`
}

func (s *Server) handleReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		card, event, err := s.engine.Review(r.Context(), req.CardID, domain.Rating(req.Rating), time.Now())
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, reviewResponse{Card: card, Stage: event.Stage.String()})
	}
}

func (s *Server) handleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, s.engine.Stats(time.Now()))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps sentinel errors to status codes. Anything
// unrecognized is a persistence or internal failure.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrValidation), errors.Is(err, errs.ErrInvalidRating):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrDuplicateID):
		s.writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}
