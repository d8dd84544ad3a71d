package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTurnResponseNextQuestion(t *testing.T) {
	text := "---FEEDBACK---\nGood job.\nFEEDBACK_SCORE: 8\nSTRENGTHS: clarity, brevity\nIMPROVEMENTS: pacing\n---NEXT_QUESTION---\nTell me about a conflict.\nQUESTION_INDEX: 2"

	res := ParseTurnResponse(text, false)

	assert.Equal(t, 8, res.Feedback.Score)
	assert.Equal(t, []string{"clarity", "brevity"}, res.Feedback.Strengths)
	assert.Equal(t, []string{"pacing"}, res.Feedback.Improvements)
	assert.Equal(t, "Good job.", res.Feedback.Text)
	require.NotNil(t, res.Question)
	assert.Nil(t, res.Completion)
	assert.False(t, res.IsComplete())
	assert.Equal(t, "Tell me about a conflict.", res.Question.Text)
	assert.Equal(t, 2, res.Question.Index)
}

func TestParseTurnResponseComplete(t *testing.T) {
	text := "---FEEDBACK---\nSolid close.\nFEEDBACK_SCORE: 9\nSTRENGTHS: depth\nIMPROVEMENTS: brevity\n---INTERVIEW_COMPLETE---\nYou showed strong ownership throughout.\nOVERALL_SCORE: 84"

	res := ParseTurnResponse(text, true)

	require.NotNil(t, res.Completion)
	assert.Nil(t, res.Question)
	assert.True(t, res.IsComplete())
	assert.Equal(t, "You showed strong ownership throughout.", res.Completion.Summary)
	require.NotNil(t, res.Completion.OverallScore)
	assert.Equal(t, 84, *res.Completion.OverallScore)
}

func TestParseTurnResponseDefaults(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		expectComplete bool
		check          func(*testing.T, TurnResult)
	}{
		{
			name: "missing score defaults to 5",
			text: "---FEEDBACK---\nNice answer.\nSTRENGTHS: focus\n---NEXT_QUESTION---\nNext one.\nQUESTION_INDEX: 3",
			check: func(t *testing.T, res TurnResult) {
				assert.Equal(t, DefaultScore, res.Feedback.Score)
				assert.Equal(t, "Nice answer.", res.Feedback.Text)
			},
		},
		{
			name: "unparsable score defaults to 5",
			text: "---FEEDBACK---\nFEEDBACK_SCORE: excellent\n---NEXT_QUESTION---\nQ.\nQUESTION_INDEX: 2",
			check: func(t *testing.T, res TurnResult) {
				assert.Equal(t, DefaultScore, res.Feedback.Score)
			},
		},
		{
			name: "score clamped into 1-10",
			text: "---FEEDBACK---\nFEEDBACK_SCORE: 37\n---NEXT_QUESTION---\nQ.\nQUESTION_INDEX: 2",
			check: func(t *testing.T, res TurnResult) {
				assert.Equal(t, 10, res.Feedback.Score)
			},
		},
		{
			name: "empty list entries dropped",
			text: "---FEEDBACK---\nFEEDBACK_SCORE: 6\nSTRENGTHS: , clarity, ,\nIMPROVEMENTS:\n---NEXT_QUESTION---\nQ.\nQUESTION_INDEX: 2",
			check: func(t *testing.T, res TurnResult) {
				assert.Equal(t, []string{"clarity"}, res.Feedback.Strengths)
				assert.Empty(t, res.Feedback.Improvements)
			},
		},
		{
			name: "fully unparsable text yields question defaults",
			text: "The model rambled with no structure at all.",
			check: func(t *testing.T, res TurnResult) {
				assert.Equal(t, DefaultScore, res.Feedback.Score)
				assert.Empty(t, res.Feedback.Text)
				assert.Empty(t, res.Feedback.Strengths)
				require.NotNil(t, res.Question)
				assert.Empty(t, res.Question.Text)
				assert.Zero(t, res.Question.Index)
			},
		},
		{
			name:           "fully unparsable closing turn yields empty summary and nil score",
			text:           "No protocol here either.",
			expectComplete: true,
			check: func(t *testing.T, res TurnResult) {
				require.NotNil(t, res.Completion)
				assert.Empty(t, res.Completion.Summary)
				assert.Nil(t, res.Completion.OverallScore)
			},
		},
		{
			name:           "complete without overall score keeps nil",
			text:           "---FEEDBACK---\nFEEDBACK_SCORE: 7\n---INTERVIEW_COMPLETE---\nGood interview.",
			expectComplete: true,
			check: func(t *testing.T, res TurnResult) {
				require.NotNil(t, res.Completion)
				assert.Equal(t, "Good interview.", res.Completion.Summary)
				assert.Nil(t, res.Completion.OverallScore)
			},
		},
		{
			name: "question index missing stays zero",
			text: "---FEEDBACK---\nFEEDBACK_SCORE: 7\n---NEXT_QUESTION---\nDescribe a failure.",
			check: func(t *testing.T, res TurnResult) {
				require.NotNil(t, res.Question)
				assert.Equal(t, "Describe a failure.", res.Question.Text)
				assert.Zero(t, res.Question.Index)
			},
		},
		{
			name:           "complete header overrides question expectation",
			text:           "---FEEDBACK---\nFEEDBACK_SCORE: 7\n---INTERVIEW_COMPLETE---\nDone.\nOVERALL_SCORE: 70",
			expectComplete: false,
			check: func(t *testing.T, res TurnResult) {
				assert.True(t, res.IsComplete())
			},
		},
		{
			name:           "overall score clamped into 0-100",
			text:           "---FEEDBACK---\nFEEDBACK_SCORE: 7\n---INTERVIEW_COMPLETE---\nDone.\nOVERALL_SCORE: 140",
			expectComplete: true,
			check: func(t *testing.T, res TurnResult) {
				require.NotNil(t, res.Completion.OverallScore)
				assert.Equal(t, 100, *res.Completion.OverallScore)
			},
		},
		{
			name: "multi-line feedback body survives label stripping",
			text: "---FEEDBACK---\nFirst line.\nFEEDBACK_SCORE: 6\nSecond line.\nSTRENGTHS: calm\n---NEXT_QUESTION---\nQ.\nQUESTION_INDEX: 2",
			check: func(t *testing.T, res TurnResult) {
				assert.Equal(t, "First line.\nSecond line.", res.Feedback.Text)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseTurnResponse(tt.text, tt.expectComplete)
			tt.check(t, res)
		})
	}
}

func TestParseTurnResponseExactlyOneBranch(t *testing.T) {
	for _, expectComplete := range []bool{false, true} {
		res := ParseTurnResponse("", expectComplete)
		hasQuestion := res.Question != nil
		hasCompletion := res.Completion != nil
		assert.NotEqual(t, hasQuestion, hasCompletion)
	}
}
