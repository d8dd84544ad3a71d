// Package stories provides the STAR story bank: reusable
// situation/task/action/result stories a candidate drills with, plus a
// deterministic strength score used to flag which stories need work.
package stories

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Story is one STAR story owned by a user.
type Story struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Situation string    `json:"situation"`
	Task      string    `json:"task"`
	Action    string    `json:"action"`
	Result    string    `json:"result"`
	Tags      []string  `json:"tags,omitempty"`
	Strength  int       `json:"strength"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Section length thresholds for the strength heuristic. A section below the
// sparse threshold is barely usable in an interview answer; one at or above
// the solid threshold usually carries enough detail to stand alone.
const (
	sparseThreshold = 40
	solidThreshold  = 200

	sectionMax = 22 // per-section ceiling; 4 sections + result bonus = 100
	resultBonus = 12
)

// StrengthScore rates a story 0-100 from text length thresholds per STAR
// section, with a bonus for a quantified result. It is intentionally crude:
// its job is triage, not assessment.
func StrengthScore(s Story) int {
	score := sectionScore(s.Situation) +
		sectionScore(s.Task) +
		sectionScore(s.Action) +
		sectionScore(s.Result)
	if hasDigit(s.Result) {
		score += resultBonus
	}
	if score > 100 {
		score = 100
	}
	return score
}

// sectionScore maps a section's trimmed length onto 0, half, or full credit.
func sectionScore(text string) int {
	n := len(strings.TrimSpace(text))
	switch {
	case n == 0:
		return 0
	case n < sparseThreshold:
		return sectionMax / 2
	case n < solidThreshold:
		return sectionMax - 4
	default:
		return sectionMax
	}
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
