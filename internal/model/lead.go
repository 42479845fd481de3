package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Priority is the outreach priority assigned by lead scoring.
type Priority int

// Priorities in ascending order.
const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityUrgent
)

func (p Priority) String() string {
	switch p {
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityUrgent:
		return "urgent"
	default:
		return "low"
	}
}

// ParsePriority parses a priority name case-insensitively. Empty parses as
// PriorityLow.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	case "urgent":
		return PriorityUrgent, nil
	default:
		return PriorityLow, eris.Errorf("model: unknown priority %q", s)
	}
}

// MarshalText encodes the priority by name.
func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a priority name.
func (p *Priority) UnmarshalText(b []byte) error {
	v, err := ParsePriority(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// LeadScore is the outreach score of a record.
type LeadScore struct {
	Total     int            `json:"total"`
	Priority  Priority       `json:"priority"`
	Breakdown map[string]int `json:"breakdown,omitempty"`
	Reasons   []string       `json:"reasons,omitempty"`
}

func (l LeadScore) clone() LeadScore {
	c := l
	if l.Breakdown != nil {
		c.Breakdown = make(map[string]int, len(l.Breakdown))
		for k, v := range l.Breakdown {
			c.Breakdown[k] = v
		}
	}
	c.Reasons = cloneStrings(l.Reasons)
	return c
}
