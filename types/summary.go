package types

import (
	"fmt"
	"strings"
	"time"
)

// SummaryLevel is one of the compaction tiers.
type SummaryLevel string

const (
	SummaryLevel10    SummaryLevel = "10-turn"
	SummaryLevel100   SummaryLevel = "100-turn"
	SummaryLevel1000  SummaryLevel = "1000-turn"
	SummaryLevelFinal SummaryLevel = "final"
)

// Period returns the turn interval of the level, 0 for the final summary.
func (l SummaryLevel) Period() int {
	switch l {
	case SummaryLevel10:
		return 10
	case SummaryLevel100:
		return 100
	case SummaryLevel1000:
		return 1000
	default:
		return 0
	}
}

// Title returns the level with its first letter upper-cased ("Final", "10-turn").
func (l SummaryLevel) Title() string {
	s := string(l)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseSummaryLevel accepts "10", "10-turn", "final" and friends.
func ParseSummaryLevel(s string) (SummaryLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "10", "10-turn":
		return SummaryLevel10, nil
	case "100", "100-turn":
		return SummaryLevel100, nil
	case "1000", "1000-turn":
		return SummaryLevel1000, nil
	case "final":
		return SummaryLevelFinal, nil
	}
	return "", fmt.Errorf("unknown summary level %q", s)
}

// Summary is one compaction result. Text is empty when summarisation failed.
type Summary struct {
	ID        string       `json:"id"`
	RunID     string       `json:"run_id,omitempty"`
	Level     SummaryLevel `json:"level"`
	Turn      int          `json:"turn"`
	Text      string       `json:"text"`
	CreatedAt time.Time    `json:"created_at"`
}

// Header is the audit-log header line for the summary.
func (s Summary) Header() string {
	return fmt.Sprintf("--- %s Summary at Turn %d ---", s.Level.Title(), s.Turn)
}
