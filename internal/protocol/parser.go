// Package protocol parses the delimited text format the interviewer model is
// instructed to produce. Parsing never fails: malformed or missing fields
// degrade to documented defaults instead of failing the turn, so a user
// always gets a committed turn once the model stream completes.
package protocol

import (
	"regexp"
	"strconv"
	"strings"
)

// Section headers and field labels of the turn response format.
const (
	headerFeedback = "---FEEDBACK---"
	headerQuestion = "---NEXT_QUESTION---"
	headerComplete = "---INTERVIEW_COMPLETE---"

	labelScore        = "FEEDBACK_SCORE:"
	labelStrengths    = "STRENGTHS:"
	labelImprovements = "IMPROVEMENTS:"
	labelIndex        = "QUESTION_INDEX:"
	labelOverall      = "OVERALL_SCORE:"
)

// DefaultScore is used when FEEDBACK_SCORE is absent or unparsable.
const DefaultScore = 5

var intRe = regexp.MustCompile(`-?\d+`)

// Feedback is the evaluation extracted from the FEEDBACK section.
type Feedback struct {
	Text         string
	Score        int
	Strengths    []string
	Improvements []string
}

// NextQuestion is the question branch of a turn response.
type NextQuestion struct {
	Text  string
	Index int // 0 when the model omitted QUESTION_INDEX
}

// Completion is the closing branch of a turn response. OverallScore is nil
// when the model omitted OVERALL_SCORE; callers must treat nil distinctly
// from any numeric score.
type Completion struct {
	Summary      string
	OverallScore *int
}

// TurnResult is the discriminated parse result: exactly one of Question and
// Completion is non-nil.
type TurnResult struct {
	Feedback   Feedback
	Question   *NextQuestion
	Completion *Completion
}

// IsComplete reports whether the response took the closing branch.
func (r TurnResult) IsComplete() bool {
	return r.Completion != nil
}

// ParseTurnResponse extracts the structured turn result from one complete
// model response. It never fails: fully unparsable text yields default
// feedback and an empty branch. expectComplete selects the branch when the
// text contains neither a NEXT_QUESTION nor an INTERVIEW_COMPLETE header.
func ParseTurnResponse(text string, expectComplete bool) TurnResult {
	res := TurnResult{
		Feedback: Feedback{Score: DefaultScore},
	}

	feedbackBody := sectionBody(text, headerFeedback, headerQuestion, headerComplete)
	res.Feedback = parseFeedback(feedbackBody)

	questionBody, hasQuestion := cutSection(text, headerQuestion)
	completeBody, hasComplete := cutSection(text, headerComplete)

	switch {
	case hasQuestion:
		body, index := splitLabeledTail(questionBody, labelIndex)
		q := NextQuestion{Text: body}
		if index != nil {
			q.Index = *index
		}
		res.Question = &q
	case hasComplete:
		body, score := splitLabeledTail(completeBody, labelOverall)
		res.Completion = &Completion{Summary: body, OverallScore: clampOverall(score)}
	case expectComplete:
		res.Completion = &Completion{}
	default:
		res.Question = &NextQuestion{}
	}

	return res
}

// parseFeedback extracts score, strengths and improvements from the labeled
// lines of the feedback section; the remaining lines form the free text.
func parseFeedback(body string) Feedback {
	fb := Feedback{Score: DefaultScore}

	var freeText []string
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, labelScore):
			if n, ok := firstInt(strings.TrimPrefix(trimmed, labelScore)); ok {
				fb.Score = clampScore(n)
			}
		case strings.HasPrefix(trimmed, labelStrengths):
			fb.Strengths = splitCommaList(strings.TrimPrefix(trimmed, labelStrengths))
		case strings.HasPrefix(trimmed, labelImprovements):
			fb.Improvements = splitCommaList(strings.TrimPrefix(trimmed, labelImprovements))
		default:
			freeText = append(freeText, line)
		}
	}
	fb.Text = strings.TrimSpace(strings.Join(freeText, "\n"))

	return fb
}

// sectionBody returns the text between header and the first of the given
// following headers (or end of text). Empty when header is absent.
func sectionBody(text, header string, followers ...string) string {
	body, ok := cutSection(text, header)
	if !ok {
		return ""
	}
	end := len(body)
	for _, f := range followers {
		if i := strings.Index(body, f); i >= 0 && i < end {
			end = i
		}
	}
	return strings.TrimSpace(body[:end])
}

// cutSection returns everything after the header, trimmed, and whether the
// header was present at all.
func cutSection(text, header string) (string, bool) {
	i := strings.Index(text, header)
	if i < 0 {
		return "", false
	}
	return strings.TrimSpace(text[i+len(header):]), true
}

// splitLabeledTail splits a section body at a trailing labeled integer line,
// returning the body text before the label and the parsed integer (nil when
// the label is absent or unparsable).
func splitLabeledTail(body, label string) (string, *int) {
	i := strings.Index(body, label)
	if i < 0 {
		return strings.TrimSpace(body), nil
	}
	text := strings.TrimSpace(body[:i])
	rest := body[i+len(label):]
	// Only read the remainder of the labeled line.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	if n, ok := firstInt(rest); ok {
		return text, &n
	}
	return text, nil
}

// firstInt returns the first integer found in s.
func firstInt(s string) (int, bool) {
	match := intRe.FindString(s)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}

// splitCommaList splits a comma list, trims entries, and drops empty ones.
func splitCommaList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func clampScore(n int) int {
	if n < 1 {
		return 1
	}
	if n > 10 {
		return 10
	}
	return n
}

func clampOverall(n *int) *int {
	if n == nil {
		return nil
	}
	v := *n
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return &v
}
