package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/interview-coach/internal/ingest"
	"github.com/jonathan/interview-coach/internal/server/middleware"
	"github.com/jonathan/interview-coach/internal/session"
)

// CreateSessionRequest starts a new mock interview. JobURL is optional; when
// set, the posting is fetched and its text seeds the interview context.
type CreateSessionRequest struct {
	Company   string `json:"company" validate:"required"`
	RoleLevel string `json:"role_level" validate:"required"`
	JobURL    string `json:"job_url,omitempty" validate:"omitempty,url"`
}

// SubmitTurnRequest carries one interview answer.
type SubmitTurnRequest struct {
	Answer string `json:"answer"`
}

// CloseSessionRequest picks the terminal status for an early close.
type CloseSessionRequest struct {
	Status session.Status `json:"status" validate:"required,oneof=completed abandoned"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	jobContext := ""
	if req.JobURL != "" {
		jobContext, err = ingest.JobContext(r.Context(), req.JobURL, s.ingestOpts)
		if err != nil {
			// The posting is an enrichment, not a precondition.
			log.Printf("job posting ingest failed for %s: %v", req.JobURL, err)
			jobContext = ""
		}
	}

	sess, err := s.controller.StartSession(r.Context(), userID, req.Company, req.RoleLevel, jobContext)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusCreated, sess)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	sessions, err := s.store.ListByUser(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if sessions == nil {
		sessions = []*session.Session{}
	}
	s.jsonResponse(w, http.StatusOK, sessions)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.ownedSession(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, sess)
}

// handleSubmitTurn streams one turn as SSE: zero or more delta events with
// the model's text fragments, then exactly one done event with the committed
// outcome, or one error event.
func (s *Server) handleSubmitTurn(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.ownedSession(w, r)
	if !ok {
		return
	}

	var req SubmitTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	outcome, err := s.controller.SubmitTurn(r.Context(), sess.ID, req.Answer, sse.WriteDelta)
	if err != nil {
		sse.WriteError(err.Error())
		return
	}
	_ = sse.WriteEvent("done", outcome)
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.ownedSession(w, r)
	if !ok {
		return
	}

	var req CloseSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	closed, err := s.controller.CloseSession(r.Context(), sess.ID, req.Status)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, closed)
}

func (s *Server) handleSessionReport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.ownedSession(w, r)
	if !ok {
		return
	}

	rep, err := s.reports.Generate(r.Context(), sess.ID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, rep)
}

// ownedSession resolves the {id} path value to a session owned by the
// authenticated user. A foreign session reads as not found.
func (s *Server) ownedSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid session ID")
		return nil, false
	}

	sess, err := s.store.Load(r.Context(), id)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return nil, false
	}
	if sess.UserID != userID {
		s.errorResponse(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return sess, true
}
