package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetKnownPrompts(t *testing.T) {
	tests := []struct {
		filename string
		key      string
		contains string
	}{
		{"interview.json", "opening-question", "{{.Company}}"},
		{"interview.json", "turn-system-question", "---NEXT_QUESTION---"},
		{"interview.json", "turn-system-complete", "---INTERVIEW_COMPLETE---"},
		{"report.json", "generate-report", "question_breakdown"},
	}
	for _, tt := range tests {
		t.Run(tt.filename+"/"+tt.key, func(t *testing.T) {
			prompt, err := Get(tt.filename, tt.key)
			require.NoError(t, err)
			assert.Contains(t, prompt, tt.contains)
		})
	}
}

func TestGetMissingKey(t *testing.T) {
	_, err := Get("interview.json", "no-such-prompt")
	assert.Error(t, err)
}

func TestGetMissingFile(t *testing.T) {
	_, err := Get("missing.json", "any")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	out := Format("Hello {{.Name}}, welcome to {{.Company}}.", map[string]string{
		"Name":    "Sam",
		"Company": "Acme",
	})
	assert.Equal(t, "Hello Sam, welcome to Acme.", out)
}

func TestFormatLeavesUnknownPlaceholders(t *testing.T) {
	out := Format("{{.Known}} and {{.Unknown}}", map[string]string{"Known": "x"})
	assert.True(t, strings.Contains(out, "{{.Unknown}}"))
}

func TestMustGetPanicsOnMissing(t *testing.T) {
	assert.Panics(t, func() { MustGet("interview.json", "nope") })
}
