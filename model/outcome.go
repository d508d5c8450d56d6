package model

import "github.com/google/uuid"

// SearchOutcome is the answer to one search call.
type SearchOutcome struct {
	ID              uuid.UUID      `json:"id"`
	Query           string         `json:"query"`
	Intent          *Intent        `json:"parsed_intent"`
	Results         []*FusedResult `json:"results"`
	SourceBreakdown map[Source]int `json:"source_breakdown"`
	Explanation     []string       `json:"routing_explanation"`
}

// NewSourceBreakdown returns a breakdown with a zero count for every source tag.
func NewSourceBreakdown() map[Source]int {
	breakdown := make(map[Source]int, len(Sources))
	for _, s := range Sources {
		breakdown[s] = 0
	}
	return breakdown
}
