package suggest

import (
	"fmt"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"

	"cinemuse/internal/failure"
	"cinemuse/models"
)

// maxCandidates bounds how many titles go on to metadata resolution.
const maxCandidates = 5

type rawTitle struct {
	Title *string `json:"title"`
	Year  *int    `json:"year"`
}

// parseStructured enforces array<{title: string, year: integer}>. A reply wrapped
// in a markdown code fence is unwrapped first.
func parseStructured(reply string) ([]models.TitleCandidate, error) {
	const op = "parse titles"

	cleaned := stripCodeFence(reply)
	if cleaned == "" {
		return nil, failure.New(failure.SchemaViolation, op, "empty reply")
	}

	var raw []rawTitle
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, failure.Wrap(failure.SchemaViolation, op, fmt.Errorf("reply is not an array of {title, year}: %w", err))
	}
	if len(raw) == 0 {
		return nil, failure.New(failure.SchemaViolation, op, "reply contains no titles")
	}

	out := make([]models.TitleCandidate, 0, len(raw))
	for i, item := range raw {
		if item.Title == nil || strings.TrimSpace(*item.Title) == "" {
			return nil, failure.New(failure.SchemaViolation, op, fmt.Sprintf("item %d: missing title", i))
		}
		if item.Year == nil {
			return nil, failure.New(failure.SchemaViolation, op, fmt.Sprintf("item %d: missing year", i))
		}
		if *item.Year < 0 {
			return nil, failure.New(failure.SchemaViolation, op, fmt.Sprintf("item %d: negative year %d", i, *item.Year))
		}
		out = append(out, models.TitleCandidate{Title: strings.TrimSpace(*item.Title), Year: *item.Year})
		if len(out) == maxCandidates {
			break
		}
	}
	return out, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

var enumerationMarker = regexp.MustCompile(`^(?:\d+\s*[.)、]|[-*•])\s*`)

// parseLines is the free-text fallback: every non-empty line, stripped of a
// leading enumeration marker, is a title with year 0.
func parseLines(reply string) ([]models.TitleCandidate, error) {
	var out []models.TitleCandidate
	for _, line := range strings.Split(reply, "\n") {
		title := strings.TrimSpace(enumerationMarker.ReplaceAllString(strings.TrimSpace(line), ""))
		if title == "" {
			continue
		}
		out = append(out, models.TitleCandidate{Title: title, Year: 0})
		if len(out) == maxCandidates {
			break
		}
	}
	if len(out) == 0 {
		return nil, failure.New(failure.SchemaViolation, "parse titles", "reply contains no titles")
	}
	return out, nil
}
