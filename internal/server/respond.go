package server

import (
	"encoding/json"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rotisserie/eris"

	"github.com/kpauljoseph/ankiforge/internal/anki"
	"github.com/kpauljoseph/ankiforge/internal/workflow"
)

const (
	codeValidation      = "VALIDATION_ERROR"
	codeAIError         = "AI_ERROR"
	codeAnkiError       = "ANKI_ERROR"
	codeAnkiUnavailable = "ANKI_UNAVAILABLE"
)

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorBody{
		Code:      code,
		Message:   message,
		RequestID: chimiddleware.GetReqID(r.Context()),
	}})
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, message string) {
	s.writeError(w, r, http.StatusBadRequest, codeValidation, message)
}

// ankiFailure maps an AnkiConnect error onto 503 when Anki cannot be reached
// and 502 for everything Anki itself reported.
func (s *Server) ankiFailure(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Info("AnkiConnect request failed: %v", err)
	if eris.Is(err, anki.ErrUnreachable) || eris.Is(err, anki.ErrNotConnected) {
		s.writeError(w, r, http.StatusServiceUnavailable, codeAnkiUnavailable, err.Error())
		return
	}
	s.writeError(w, r, http.StatusBadGateway, codeAnkiError, err.Error())
}

func (s *Server) generateFailure(w http.ResponseWriter, r *http.Request, err error) {
	if eris.Is(err, workflow.ErrEmptyInput) {
		s.badRequest(w, r, err.Error())
		return
	}
	s.logger.Info("Card generation failed: %v", err)
	s.writeError(w, r, http.StatusBadGateway, codeAIError, err.Error())
}
