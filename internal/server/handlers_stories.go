package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/interview-coach/internal/server/middleware"
	"github.com/jonathan/interview-coach/internal/stories"
)

// StoryStore is the story-bank persistence surface.
type StoryStore interface {
	CreateStory(ctx context.Context, s *stories.Story) (uuid.UUID, error)
	GetStory(ctx context.Context, id uuid.UUID) (*stories.Story, error)
	ListStories(ctx context.Context, userID uuid.UUID) ([]stories.Story, error)
	UpdateStory(ctx context.Context, s *stories.Story) error
	DeleteStory(ctx context.Context, id uuid.UUID) error
}

// StoryRequest is the create/update payload for a STAR story.
type StoryRequest struct {
	Title     string   `json:"title" validate:"required"`
	Situation string   `json:"situation"`
	Task      string   `json:"task"`
	Action    string   `json:"action"`
	Result    string   `json:"result"`
	Tags      []string `json:"tags"`
}

func (s *Server) handleCreateStory(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req StoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	story := &stories.Story{
		UserID:    userID,
		Title:     req.Title,
		Situation: req.Situation,
		Task:      req.Task,
		Action:    req.Action,
		Result:    req.Result,
		Tags:      req.Tags,
	}
	if _, err := s.stories.CreateStory(r.Context(), story); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusCreated, story)
}

func (s *Server) handleListStories(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	list, err := s.stories.ListStories(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if list == nil {
		list = []stories.Story{}
	}
	s.jsonResponse(w, http.StatusOK, list)
}

func (s *Server) handleGetStory(w http.ResponseWriter, r *http.Request) {
	story, ok := s.ownedStory(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, story)
}

func (s *Server) handleUpdateStory(w http.ResponseWriter, r *http.Request) {
	story, ok := s.ownedStory(w, r)
	if !ok {
		return
	}

	var req StoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	story.Title = req.Title
	story.Situation = req.Situation
	story.Task = req.Task
	story.Action = req.Action
	story.Result = req.Result
	story.Tags = req.Tags
	if err := s.stories.UpdateStory(r.Context(), story); err != nil {
		if strings.Contains(err.Error(), "not found") {
			s.errorResponse(w, http.StatusNotFound, "Story not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, story)
}

func (s *Server) handleDeleteStory(w http.ResponseWriter, r *http.Request) {
	story, ok := s.ownedStory(w, r)
	if !ok {
		return
	}

	if err := s.stories.DeleteStory(r.Context(), story.ID); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ownedStory resolves the {id} path value to a story owned by the
// authenticated user. A foreign story reads as not found.
func (s *Server) ownedStory(w http.ResponseWriter, r *http.Request) (*stories.Story, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid story ID")
		return nil, false
	}

	story, err := s.stories.GetStory(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return nil, false
	}
	if story == nil || story.UserID != userID {
		s.errorResponse(w, http.StatusNotFound, "Story not found")
		return nil, false
	}
	return story, true
}
