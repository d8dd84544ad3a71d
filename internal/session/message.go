// Package session provides the mock-interview session domain model:
// the ordered conversation transcript, the session lifecycle state machine,
// and the persistence contract for session stores.
package session

import (
	"fmt"
	"time"
)

// Role identifies who produced a transcript message.
type Role string

// Message roles. A feedback message is the coach's structured evaluation of
// the user answer immediately preceding it.
const (
	RoleInterviewer Role = "interviewer"
	RoleUser        Role = "user"
	RoleFeedback    Role = "feedback"
)

// Feedback is the structured payload carried by feedback messages.
type Feedback struct {
	Score        int      `json:"score"` // 1-10
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// Message is one entry in a session transcript. QuestionIndex is set only on
// interviewer messages that pose a new question; Feedback is set only on
// feedback messages. Use the constructors below so the role/payload pairing
// stays valid.
type Message struct {
	Role          Role      `json:"role"`
	Content       string    `json:"content"`
	Timestamp     time.Time `json:"timestamp"`
	QuestionIndex *int      `json:"question_index,omitempty"`
	Feedback      *Feedback `json:"feedback,omitempty"`
}

// NewQuestion builds an interviewer message that poses question number index.
func NewQuestion(content string, index int, at time.Time) Message {
	return Message{
		Role:          RoleInterviewer,
		Content:       content,
		Timestamp:     at,
		QuestionIndex: &index,
	}
}

// NewClosing builds the interviewer message that ends the interview with a
// summary. It carries no question index.
func NewClosing(content string, at time.Time) Message {
	return Message{
		Role:      RoleInterviewer,
		Content:   content,
		Timestamp: at,
	}
}

// NewAnswer builds a user answer message.
func NewAnswer(content string, at time.Time) Message {
	return Message{
		Role:      RoleUser,
		Content:   content,
		Timestamp: at,
	}
}

// NewFeedback builds a feedback message evaluating the preceding user answer.
func NewFeedback(content string, fb Feedback, at time.Time) Message {
	return Message{
		Role:      RoleFeedback,
		Content:   content,
		Timestamp: at,
		Feedback:  &fb,
	}
}

// Validate checks that the message carries only the payload its role allows.
func (m Message) Validate() error {
	switch m.Role {
	case RoleInterviewer:
		if m.Feedback != nil {
			return fmt.Errorf("interviewer message cannot carry feedback data")
		}
	case RoleUser:
		if m.Feedback != nil || m.QuestionIndex != nil {
			return fmt.Errorf("user message cannot carry feedback data or a question index")
		}
	case RoleFeedback:
		if m.Feedback == nil {
			return fmt.Errorf("feedback message requires feedback data")
		}
		if m.QuestionIndex != nil {
			return fmt.Errorf("feedback message cannot carry a question index")
		}
		if m.Feedback.Score < 1 || m.Feedback.Score > 10 {
			return fmt.Errorf("feedback score out of range: %d (must be 1-10)", m.Feedback.Score)
		}
	default:
		return fmt.Errorf("unknown message role: %q", m.Role)
	}
	return nil
}

// clone returns a deep copy of the message.
func (m Message) clone() Message {
	out := m
	if m.QuestionIndex != nil {
		idx := *m.QuestionIndex
		out.QuestionIndex = &idx
	}
	if m.Feedback != nil {
		fb := Feedback{
			Score:        m.Feedback.Score,
			Strengths:    append([]string(nil), m.Feedback.Strengths...),
			Improvements: append([]string(nil), m.Feedback.Improvements...),
		}
		out.Feedback = &fb
	}
	return out
}
