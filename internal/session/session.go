package session

import (
	"time"

	"github.com/google/uuid"
)

// Status is the session lifecycle state. Transitions are monotonic: once a
// session is completed or abandoned it accepts no further turns.
type Status string

// Session lifecycle states.
const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusAbandoned  Status = "abandoned"
)

// DefaultMaxQuestions is the number of interviewer questions asked before the
// interview is forced to complete.
const DefaultMaxQuestions = 5

// Session is one mock-interview instance, exclusively owned by one user.
// Company, RoleLevel and JobContext are fixed at creation. Messages is the
// append-only transcript. Version is an optimistic-concurrency counter
// maintained by the store.
type Session struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	Company      string     `json:"company"`
	RoleLevel    string     `json:"role_level"`
	JobContext   string     `json:"job_context,omitempty"`
	Status       Status     `json:"status"`
	Messages     []Message  `json:"messages"`
	TotalTurns   int        `json:"total_turns"`
	MaxQuestions int        `json:"max_questions"`
	OverallScore *int       `json:"overall_score,omitempty"`
	FinalSummary string     `json:"final_summary,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Version      int64      `json:"version"`
}

// New creates an in-progress session seeded with the opening interviewer
// question (question index 1).
func New(userID uuid.UUID, company, roleLevel, openingQuestion string, maxQuestions int, now time.Time) *Session {
	if maxQuestions <= 0 {
		maxQuestions = DefaultMaxQuestions
	}
	return &Session{
		ID:           uuid.New(),
		UserID:       userID,
		Company:      company,
		RoleLevel:    roleLevel,
		Status:       StatusInProgress,
		Messages:     []Message{NewQuestion(openingQuestion, 1, now)},
		MaxQuestions: maxQuestions,
		StartedAt:    now,
	}
}

// QuestionCount returns how many interviewer questions have been posed.
// The closing summary message carries no question index and is not counted.
func (s *Session) QuestionCount() int {
	n := 0
	for _, m := range s.Messages {
		if m.Role == RoleInterviewer && m.QuestionIndex != nil {
			n++
		}
	}
	return n
}

// FeedbackMessages returns the feedback messages in transcript order.
func (s *Session) FeedbackMessages() []Message {
	var out []Message
	for _, m := range s.Messages {
		if m.Role == RoleFeedback {
			out = append(out, m)
		}
	}
	return out
}

// CanSubmitTurn reports whether the session accepts another turn.
func (s *Session) CanSubmitTurn() error {
	if s.Status != StatusInProgress {
		return &InvalidStateError{SessionID: s.ID, Status: s.Status}
	}
	return nil
}

// TurnCommit is the full result of one successful turn: the user answer, the
// feedback evaluating it, and either the next question or the closing summary
// message. Final marks the transition to completed.
type TurnCommit struct {
	Answer       Message
	Feedback     Message
	Next         Message
	Final        bool
	OverallScore *int
	FinalSummary string
	At           time.Time
}

// ApplyTurn appends the turn's message triple, increments the turn counter,
// and applies the completion transition on the final turn. The caller is
// expected to persist the session with a single store Save afterwards.
func (s *Session) ApplyTurn(tc TurnCommit) error {
	if err := s.CanSubmitTurn(); err != nil {
		return err
	}
	s.Messages = append(s.Messages, tc.Answer, tc.Feedback, tc.Next)
	s.TotalTurns++
	if tc.Final {
		at := tc.At
		s.Status = StatusCompleted
		s.CompletedAt = &at
		s.OverallScore = tc.OverallScore
		s.FinalSummary = tc.FinalSummary
	}
	return nil
}

// Close terminates the session without a model call. Only completed and
// abandoned are valid targets, and only from in_progress.
func (s *Session) Close(target Status, at time.Time) error {
	if target != StatusCompleted && target != StatusAbandoned {
		return &InvalidStateError{SessionID: s.ID, Status: target}
	}
	if s.Status != StatusInProgress {
		return &InvalidStateError{SessionID: s.ID, Status: s.Status}
	}
	s.Status = target
	s.CompletedAt = &at
	return nil
}

// Clone returns a deep copy, so a caller can build a candidate next state
// without mutating the original until a store Save succeeds.
func (s *Session) Clone() *Session {
	out := *s
	out.Messages = make([]Message, len(s.Messages))
	for i, m := range s.Messages {
		out.Messages[i] = m.clone()
	}
	if s.OverallScore != nil {
		score := *s.OverallScore
		out.OverallScore = &score
	}
	if s.CompletedAt != nil {
		at := *s.CompletedAt
		out.CompletedAt = &at
	}
	return &out
}
