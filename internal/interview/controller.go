// Package interview drives the mock-interview conversation: session creation,
// the streaming turn cycle (answer, feedback, next question), and early
// termination. It is the only component that mutates session state from live
// user interaction.
package interview

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/prompts"
	"github.com/jonathan/interview-coach/internal/protocol"
	"github.com/jonathan/interview-coach/internal/session"
)

// MinAnswerLength is the minimum trimmed answer length accepted for a turn.
const MinAnswerLength = 5

// Controller orchestrates interview turns against a session store and a
// generation client.
type Controller struct {
	store        session.Store
	llm          llm.Client
	maxQuestions int
	now          func() time.Time

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewController creates a turn controller. maxQuestions bounds new sessions;
// zero means session.DefaultMaxQuestions.
func NewController(store session.Store, client llm.Client, maxQuestions int) *Controller {
	if maxQuestions <= 0 {
		maxQuestions = session.DefaultMaxQuestions
	}
	return &Controller{
		store:        store,
		llm:          client,
		maxQuestions: maxQuestions,
		now:          time.Now,
		locks:        make(map[uuid.UUID]*sync.Mutex),
	}
}

// StartSession creates an in-progress session seeded with the opening
// question. No model call is made; the opening question is templated.
func (c *Controller) StartSession(ctx context.Context, userID uuid.UUID, company, roleLevel, jobContext string) (*session.Session, error) {
	opening := prompts.Format(prompts.MustGet("interview.json", "opening-question"), map[string]string{
		"Company":   company,
		"RoleLevel": roleLevel,
	})

	s := session.New(userID, company, roleLevel, opening, c.maxQuestions, c.now().UTC())
	s.JobContext = jobContext
	if err := c.store.Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// TurnOutcome is the committed result of one turn.
type TurnOutcome struct {
	SessionID     uuid.UUID        `json:"session_id"`
	FeedbackText  string           `json:"feedback_text"`
	Feedback      session.Feedback `json:"feedback"`
	NextQuestion  string           `json:"next_question,omitempty"`
	QuestionIndex int              `json:"question_index,omitempty"`
	IsComplete    bool             `json:"is_complete"`
	OverallScore  *int             `json:"overall_score,omitempty"`
	FinalSummary  string           `json:"final_summary,omitempty"`
	TotalTurns    int              `json:"total_turns"`
}

// SubmitTurn runs one question/answer cycle: it validates the answer, streams
// the model's response (forwarding each fragment to onDelta in arrival
// order), parses the reassembled text, and commits the user answer, the
// feedback, and the next (or closing) interviewer message as one store Save.
//
// A failed or cancelled stream leaves the session exactly as it was; the
// session is only mutated by the single Save at the end. Turns for one
// session are serialized by a per-session lock; a concurrent commit from
// another process surfaces as session.ErrConflict from the store.
func (c *Controller) SubmitTurn(ctx context.Context, sessionID uuid.UUID, answer string, onDelta func(string)) (*TurnOutcome, error) {
	trimmed := strings.TrimSpace(answer)
	if len(trimmed) < MinAnswerLength {
		return nil, &InvalidInputError{Reason: "answer must be at least 5 characters"}
	}

	lock := c.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	s, err := c.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.CanSubmitTurn(); err != nil {
		return nil, err
	}

	final := s.QuestionCount() >= s.MaxQuestions
	system := c.turnSystemPrompt(s, final)

	full, err := c.llm.StreamChat(ctx, system, replayHistory(s), trimmed, llm.TierStandard, onDelta)
	if err != nil {
		return nil, &UpstreamError{Cause: err}
	}

	res := protocol.ParseTurnResponse(full, final)
	now := c.now().UTC()

	tc := session.TurnCommit{
		Answer: session.NewAnswer(trimmed, now),
		Feedback: session.NewFeedback(res.Feedback.Text, session.Feedback{
			Score:        res.Feedback.Score,
			Strengths:    res.Feedback.Strengths,
			Improvements: res.Feedback.Improvements,
		}, now),
		At: now,
	}

	outcome := &TurnOutcome{
		SessionID:    s.ID,
		FeedbackText: res.Feedback.Text,
		Feedback:     *tc.Feedback.Feedback,
	}

	if res.IsComplete() || final {
		summary := ""
		var overall *int
		if res.Completion != nil {
			summary = res.Completion.Summary
			overall = res.Completion.OverallScore
		} else if res.Question != nil {
			// The model ignored the closing instruction on the final turn;
			// its text still closes the interview.
			summary = res.Question.Text
		}
		tc.Next = session.NewClosing(summary, now)
		tc.Final = true
		tc.OverallScore = overall
		tc.FinalSummary = summary
		outcome.IsComplete = true
		outcome.OverallScore = overall
		outcome.FinalSummary = summary
	} else {
		index := res.Question.Index
		if index <= 0 {
			index = s.QuestionCount() + 1
		}
		tc.Next = session.NewQuestion(res.Question.Text, index, now)
		outcome.NextQuestion = res.Question.Text
		outcome.QuestionIndex = index
	}

	next := s.Clone()
	if err := next.ApplyTurn(tc); err != nil {
		return nil, err
	}
	if err := c.store.Save(ctx, next); err != nil {
		return nil, err
	}

	outcome.TotalTurns = next.TotalTurns
	return outcome, nil
}

// CloseSession force-closes an in-progress session as completed or abandoned
// without a model call.
func (c *Controller) CloseSession(ctx context.Context, sessionID uuid.UUID, target session.Status) (*session.Session, error) {
	lock := c.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	s, err := c.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.Close(target, c.now().UTC()); err != nil {
		return nil, err
	}
	if err := c.store.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// turnSystemPrompt selects the NEXT_QUESTION or INTERVIEW_COMPLETE framing.
func (c *Controller) turnSystemPrompt(s *session.Session, final bool) string {
	key := "turn-system-question"
	if final {
		key = "turn-system-complete"
	}
	jobContext := s.JobContext
	if jobContext == "" {
		jobContext = "(no additional context provided)"
	}
	return prompts.Format(prompts.MustGet("interview.json", key), map[string]string{
		"Company":   s.Company,
		"RoleLevel": s.RoleLevel,
		"JobContext": jobContext,
		"NextIndex": strconv.Itoa(s.QuestionCount() + 1),
	})
}

// replayHistory rebuilds the chat history: interviewer messages as prior
// model turns, user messages as prior user turns. Feedback messages are
// coach-side commentary and are not replayed.
func replayHistory(s *session.Session) []llm.Turn {
	var history []llm.Turn
	for _, m := range s.Messages {
		switch m.Role {
		case session.RoleInterviewer:
			history = append(history, llm.Turn{Role: llm.RoleModel, Text: m.Content})
		case session.RoleUser:
			history = append(history, llm.Turn{Role: llm.RoleUser, Text: m.Content})
		}
	}
	return history
}

// sessionLock returns the mutex serializing turns for one session.
func (c *Controller) sessionLock(id uuid.UUID) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	lock, ok := c.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[id] = lock
	}
	return lock
}
