package report

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-coach/internal/db"
	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/session"
)

type jsonLLM struct {
	mu      sync.Mutex
	reply   string
	err     error
	calls   int
	started chan struct{} // closed on first call, when set
	release chan struct{} // call blocks until closed, when set
}

func (f *jsonLLM) GenerateJSON(context.Context, string, llm.ModelTier) (string, error) {
	f.mu.Lock()
	f.calls++
	first := f.calls == 1
	f.mu.Unlock()

	if first && f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	return f.reply, f.err
}

func (f *jsonLLM) GenerateContent(context.Context, string, llm.ModelTier) (string, error) {
	return "", errors.New("not implemented")
}

func (f *jsonLLM) StreamChat(context.Context, string, []llm.Turn, string, llm.ModelTier, func(string)) (string, error) {
	return "", errors.New("not implemented")
}

func (f *jsonLLM) Close() error { return nil }

const validReply = "```json\n" + `{
  "executive_summary": "A confident, well-structured performance.",
  "themes": ["clear structure", "thin on metrics"],
  "recommendations": ["quantify outcomes", "tighten openings"],
  "question_breakdown": [
    {"question": "Tell me about a conflict.", "score": 7, "notes": "Good framing."}
  ]
}` + "\n```"

func completedSession(t *testing.T, store session.Store, turns int) *session.Session {
	t.Helper()
	now := time.Now().UTC()
	s := session.New(uuid.New(), "Acme Corp", "senior", "Tell me about yourself.", session.DefaultMaxQuestions, now)
	require.NoError(t, store.Create(context.Background(), s))

	for i := 0; i < turns; i++ {
		final := i == turns-1
		tc := session.TurnCommit{
			Answer: session.NewAnswer("An answer.", now),
			Feedback: session.NewFeedback("Feedback.", session.Feedback{
				Score:        6 + i%2,
				Strengths:    []string{"clarity"},
				Improvements: []string{"pacing"},
			}, now),
			At: now,
		}
		if final {
			overall := 72
			tc.Next = session.NewClosing("Wrap-up.", now)
			tc.Final = true
			tc.OverallScore = &overall
			tc.FinalSummary = "Wrap-up."
		} else {
			tc.Next = session.NewQuestion("Next question?", i+2, now)
		}
		require.NoError(t, s.ApplyTurn(tc))
	}
	require.NoError(t, store.Save(context.Background(), s))
	return s
}

func TestGenerateReturnsTypedReport(t *testing.T) {
	store := db.NewMemoryStore()
	s := completedSession(t, store, 5)
	client := &jsonLLM{reply: validReply}
	syn := NewSynthesizer(store, client)

	r, err := syn.Generate(context.Background(), s.ID)
	require.NoError(t, err)

	assert.Equal(t, s.ID, r.SessionID)
	assert.InDelta(t, 6.4, r.AverageScore, 0.01) // scores 6,7,6,7,6
	assert.Equal(t, "A confident, well-structured performance.", r.ExecutiveSummary)
	assert.Len(t, r.Themes, 2)
	assert.Len(t, r.Recommendations, 2)
	require.Len(t, r.QuestionBreakdown, 1)
	assert.Equal(t, 7, r.QuestionBreakdown[0].Score)
}

func TestGenerateRejectsInProgressSession(t *testing.T) {
	store := db.NewMemoryStore()
	s := session.New(uuid.New(), "Acme Corp", "senior", "Opening?", session.DefaultMaxQuestions, time.Now().UTC())
	require.NoError(t, store.Create(context.Background(), s))
	syn := NewSynthesizer(store, &jsonLLM{reply: validReply})

	_, err := syn.Generate(context.Background(), s.ID)

	var invalid *session.InvalidStateError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, session.StatusInProgress, invalid.Status)
}

func TestGenerateUnknownSession(t *testing.T) {
	syn := NewSynthesizer(db.NewMemoryStore(), &jsonLLM{reply: validReply})
	_, err := syn.Generate(context.Background(), uuid.New())
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestGenerateMalformedReply(t *testing.T) {
	store := db.NewMemoryStore()
	s := completedSession(t, store, 5)
	syn := NewSynthesizer(store, &jsonLLM{reply: "Sorry, here is your report: great job!"})

	_, err := syn.Generate(context.Background(), s.ID)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Raw, "great job")
}

func TestGenerateSchemaViolation(t *testing.T) {
	store := db.NewMemoryStore()
	s := completedSession(t, store, 5)
	// Well-formed JSON, but score is out of range and a required key is gone.
	reply := `{"themes": [], "recommendations": [], "question_breakdown": [{"question": "Q", "score": 0, "notes": ""}]}`
	syn := NewSynthesizer(store, &jsonLLM{reply: reply})

	_, err := syn.Generate(context.Background(), s.ID)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.NotEmpty(t, ve.Errors)
}

func TestGenerateCoalescesConcurrentRequests(t *testing.T) {
	store := db.NewMemoryStore()
	s := completedSession(t, store, 5)
	client := &jsonLLM{
		reply:   validReply,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	syn := NewSynthesizer(store, client)

	results := make(chan error, 2)
	go func() {
		_, err := syn.Generate(context.Background(), s.ID)
		results <- err
	}()
	<-client.started
	go func() {
		_, err := syn.Generate(context.Background(), s.ID)
		results <- err
	}()
	time.Sleep(50 * time.Millisecond)
	close(client.release)

	require.NoError(t, <-results)
	require.NoError(t, <-results)
	assert.Equal(t, 1, client.calls)
}

func TestAverageScoreFallbacks(t *testing.T) {
	now := time.Now().UTC()
	overall := 72

	base := session.New(uuid.New(), "Acme", "mid", "Q1?", session.DefaultMaxQuestions, now)

	withOverall := base.Clone()
	withOverall.OverallScore = &overall

	tests := []struct {
		name string
		sess *session.Session
		want float64
	}{
		{"no feedback, stored overall", withOverall, 72},
		{"no feedback, no overall", base, DefaultAverageScore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, averageScore(tt.sess))
		})
	}
}

func TestTranscriptCapsAtQuestionAllowance(t *testing.T) {
	now := time.Now().UTC()
	s := session.New(uuid.New(), "Acme", "mid", "Question one?", 2, now)
	for i := 0; i < 3; i++ {
		tc := session.TurnCommit{
			Answer:   session.NewAnswer("My answer.", now),
			Feedback: session.NewFeedback("Notes.", session.Feedback{Score: 5}, now),
			Next:     session.NewQuestion("Another question?", i+2, now),
			At:       now,
		}
		require.NoError(t, s.ApplyTurn(tc))
	}

	got := Transcript(s)
	assert.Contains(t, got, "Q1: Question one?")
	assert.Contains(t, got, "Q2: Another question?")
	assert.Contains(t, got, "Answer: My answer.")
	assert.Contains(t, got, "score 5/10")
	assert.NotContains(t, got, "Q3:", "questions past the allowance are dropped")
	assert.Equal(t, 2, strings.Count(got, "\nFeedback"), "the capped question keeps its pair")
}
