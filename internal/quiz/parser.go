// Package quiz holds the pure domain logic of the practice platform: the
// bulk-text question parser and the session scorer. Nothing in this package
// performs I/O, so both are deterministic and testable in isolation.
package quiz

import (
	"fmt"
	"regexp"
	"strings"
)

// ParsedQuestion is a structured question extracted from bulk upload text.
// Topic is carried by name; the import layer resolves it to a record.
type ParsedQuestion struct {
	Text          string
	Topic         string
	Subtopic      string
	Difficulty    string
	OptionA       string
	OptionB       string
	OptionC       string
	OptionD       string
	CorrectOption string
	Explanation   string
}

// ParseError reports why an upload was rejected. It marks failures caused
// by the upload text itself, as opposed to infrastructure errors.
type ParseError struct {
	msg string
}

func (e *ParseError) Error() string { return e.msg }

const questionMarker = "QUESTION:"

var blankLineSplit = regexp.MustCompile(`\n\s*\n`)

// ParseBulk converts free-form bulk upload text into structured questions.
//
// Blocks are separated by blank lines. Files without blank-line separators
// are handled by a fallback that starts a new block at every line beginning
// with "QUESTION:". Within a block, lines with recognized prefixes map to
// fields and all other lines are ignored. Difficulty defaults to "medium".
//
// Blocks missing the question text, topic, any of the four options, or the
// correct option are silently dropped; only the accepted count is surfaced
// to callers. A kept block whose correct option is not A-D invalidates the
// whole batch.
func ParseBulk(text string) ([]ParsedQuestion, error) {
	blocks := splitBlocks(text)

	questions := parseBlocks(blocks)
	if len(questions) == 0 {
		return nil, &ParseError{msg: "no valid questions found in upload text"}
	}

	invalid := 0
	for _, q := range questions {
		switch q.CorrectOption {
		case "A", "B", "C", "D":
		default:
			invalid++
		}
	}
	if invalid > 0 {
		return nil, &ParseError{msg: fmt.Sprintf("%d question(s) have a correct option outside A-D", invalid)}
	}

	return questions, nil
}

// splitBlocks tries blank-line separation first and falls back to the
// QUESTION: marker when the text is a single run of lines.
func splitBlocks(text string) []string {
	var nonEmpty []string
	for _, b := range blankLineSplit.Split(text, -1) {
		if strings.TrimSpace(b) != "" {
			nonEmpty = append(nonEmpty, b)
		}
	}
	if len(nonEmpty) > 1 {
		return nonEmpty
	}

	var blocks []string
	var current []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, questionMarker) && len(current) > 0 {
			blocks = append(blocks, strings.Join(current, "\n"))
			current = current[:0]
		}
		if trimmed != "" {
			current = append(current, trimmed)
		}
	}
	if len(current) > 0 {
		blocks = append(blocks, strings.Join(current, "\n"))
	}
	return blocks
}

func parseBlocks(blocks []string) []ParsedQuestion {
	var questions []ParsedQuestion

	for _, block := range blocks {
		q := ParsedQuestion{Difficulty: "medium"}

		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(line, questionMarker):
				q.Text = strings.TrimSpace(strings.TrimPrefix(line, questionMarker))
			case strings.HasPrefix(line, "TOPIC:"):
				q.Topic = strings.TrimSpace(strings.TrimPrefix(line, "TOPIC:"))
			case strings.HasPrefix(line, "SUBTOPIC:"):
				q.Subtopic = strings.TrimSpace(strings.TrimPrefix(line, "SUBTOPIC:"))
			case strings.HasPrefix(line, "DIFFICULTY:"):
				if d := strings.TrimSpace(strings.TrimPrefix(line, "DIFFICULTY:")); d != "" {
					q.Difficulty = d
				}
			case strings.HasPrefix(line, "OPTION A:"):
				q.OptionA = strings.TrimSpace(strings.TrimPrefix(line, "OPTION A:"))
			case strings.HasPrefix(line, "OPTION B:"):
				q.OptionB = strings.TrimSpace(strings.TrimPrefix(line, "OPTION B:"))
			case strings.HasPrefix(line, "OPTION C:"):
				q.OptionC = strings.TrimSpace(strings.TrimPrefix(line, "OPTION C:"))
			case strings.HasPrefix(line, "OPTION D:"):
				q.OptionD = strings.TrimSpace(strings.TrimPrefix(line, "OPTION D:"))
			case strings.HasPrefix(line, "CORRECT:"):
				q.CorrectOption = strings.TrimSpace(strings.TrimPrefix(line, "CORRECT:"))
			case strings.HasPrefix(line, "EXPLANATION:"):
				q.Explanation = strings.TrimSpace(strings.TrimPrefix(line, "EXPLANATION:"))
			}
		}

		if q.Text == "" || q.Topic == "" ||
			q.OptionA == "" || q.OptionB == "" || q.OptionC == "" || q.OptionD == "" ||
			q.CorrectOption == "" {
			continue
		}
		questions = append(questions, q)
	}

	return questions
}
