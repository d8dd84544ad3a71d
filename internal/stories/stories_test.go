package stories

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrengthScore(t *testing.T) {
	sparse := "Led a team."                       // below sparse threshold
	moderate := strings.Repeat("detail ", 10)     // between thresholds
	rich := strings.Repeat("thorough detail ", 20) // at or above solid threshold

	tests := []struct {
		name  string
		story Story
		want  int
	}{
		{
			name:  "empty story scores zero",
			story: Story{},
			want:  0,
		},
		{
			name: "all sparse sections get half credit each",
			story: Story{
				Situation: sparse,
				Task:      sparse,
				Action:    sparse,
				Result:    sparse,
			},
			want: 4 * (sectionMax / 2),
		},
		{
			name: "moderate sections score near the ceiling",
			story: Story{
				Situation: moderate,
				Task:      moderate,
				Action:    moderate,
				Result:    moderate,
			},
			want: 4 * (sectionMax - 4),
		},
		{
			name: "rich sections hit the per-section ceiling",
			story: Story{
				Situation: rich,
				Task:      rich,
				Action:    rich,
				Result:    rich,
			},
			want: 4 * sectionMax,
		},
		{
			name: "quantified result earns the bonus",
			story: Story{
				Situation: sparse,
				Task:      sparse,
				Action:    sparse,
				Result:    "Cut p99 latency by 40%.",
			},
			want: 4*(sectionMax/2) + resultBonus,
		},
		{
			name: "whitespace-only sections score zero",
			story: Story{
				Situation: "   \n\t  ",
				Result:    sparse,
			},
			want: sectionMax / 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StrengthScore(tt.story))
		})
	}
}

func TestStrengthScoreCappedAt100(t *testing.T) {
	rich := strings.Repeat("thorough detail ", 20)
	s := Story{
		Situation: rich,
		Task:      rich,
		Action:    rich,
		Result:    rich + " by 40%",
	}
	assert.Equal(t, 100, StrengthScore(s))
}
