// Package report turns a completed interview session into a structured
// performance report with a single JSON-mode model call.
package report

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/sync/singleflight"

	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/prompts"
	"github.com/jonathan/interview-coach/internal/session"
)

//go:embed report.schema.json
var reportSchema string

// DefaultAverageScore is used when a session has no feedback messages and no
// stored overall score to fall back on.
const DefaultAverageScore = 50

// Report is the synthesized post-interview report. SessionID and AverageScore
// are computed locally; the remaining fields come from the model reply.
type Report struct {
	SessionID         uuid.UUID        `json:"session_id"`
	AverageScore      float64          `json:"average_score"`
	ExecutiveSummary  string           `json:"executive_summary"`
	Themes            []string         `json:"themes"`
	Recommendations   []string         `json:"recommendations"`
	QuestionBreakdown []QuestionReview `json:"question_breakdown"`
}

// QuestionReview is the model's read on one question/answer pair.
type QuestionReview struct {
	Question string `json:"question"`
	Score    int    `json:"score"`
	Notes    string `json:"notes"`
}

// Synthesizer generates reports from stored sessions. It never writes to the
// store, so any failure is retryable.
type Synthesizer struct {
	store session.Store
	llm   llm.Client
	group singleflight.Group
}

func NewSynthesizer(store session.Store, client llm.Client) *Synthesizer {
	return &Synthesizer{store: store, llm: client}
}

// Generate produces a report for a completed session. Concurrent calls for
// the same session share one in-flight model call.
func (s *Synthesizer) Generate(ctx context.Context, sessionID uuid.UUID) (*Report, error) {
	v, err, _ := s.group.Do(sessionID.String(), func() (interface{}, error) {
		return s.generate(ctx, sessionID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Report), nil
}

func (s *Synthesizer) generate(ctx context.Context, sessionID uuid.UUID) (*Report, error) {
	sess, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != session.StatusCompleted {
		return nil, &session.InvalidStateError{SessionID: sess.ID, Status: sess.Status}
	}

	avg := averageScore(sess)
	prompt := prompts.Format(prompts.MustGet("report.json", "generate-report"), map[string]string{
		"RoleLevel":    sess.RoleLevel,
		"Company":      sess.Company,
		"AverageScore": fmt.Sprintf("%.1f", avg),
		"Transcript":   Transcript(sess),
	})

	raw, err := s.llm.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, fmt.Errorf("report generation failed: %w", err)
	}

	cleaned := llm.CleanJSONBlock(raw)
	if err := validateReply(cleaned); err != nil {
		return nil, &ParseError{Raw: raw, Cause: err}
	}

	var r Report
	if err := json.Unmarshal([]byte(cleaned), &r); err != nil {
		return nil, &ParseError{Raw: raw, Cause: err}
	}
	r.SessionID = sess.ID
	r.AverageScore = avg
	return &r, nil
}

// averageScore averages the per-answer feedback scores. Sessions with no
// feedback fall back to the stored overall score, then to the default.
func averageScore(s *session.Session) float64 {
	feedback := s.FeedbackMessages()
	if len(feedback) == 0 {
		if s.OverallScore != nil {
			return float64(*s.OverallScore)
		}
		return DefaultAverageScore
	}
	sum := 0
	for _, m := range feedback {
		sum += m.Feedback.Score
	}
	return float64(sum) / float64(len(feedback))
}

// Transcript renders the paired question/answer/feedback log, capped at the
// session's question allowance, as the prompt input.
func Transcript(s *session.Session) string {
	var sb strings.Builder
	questions := 0
	for i := 0; i < len(s.Messages); i++ {
		m := s.Messages[i]
		switch m.Role {
		case session.RoleInterviewer:
			if m.QuestionIndex == nil {
				continue
			}
			if questions >= s.MaxQuestions {
				return strings.TrimRight(sb.String(), "\n")
			}
			questions++
			fmt.Fprintf(&sb, "Q%d: %s\n", *m.QuestionIndex, m.Content)
		case session.RoleUser:
			fmt.Fprintf(&sb, "Answer: %s\n", m.Content)
		case session.RoleFeedback:
			score := ""
			if m.Feedback != nil {
				score = fmt.Sprintf(" (score %d/10)", m.Feedback.Score)
			}
			fmt.Fprintf(&sb, "Feedback%s: %s\n\n", score, m.Content)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// validateReply checks the cleaned reply against the embedded report schema.
func validateReply(doc string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(reportSchema),
		gojsonschema.NewStringLoader(doc),
	)
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}
