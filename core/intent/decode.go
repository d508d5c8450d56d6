package intent

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/kaptinlin/jsonrepair"
	"github.com/siherrmann/recipegraph/model"
)

// rawIntent is the extractor's JSON answer; absent and null fields stay nil.
type rawIntent struct {
	Cuisine            *string  `json:"cuisine"`
	Diet               *string  `json:"diet"`
	Course             *string  `json:"course"`
	MaxPrepMinutes     *float64 `json:"max_prep_time_mins"`
	MaxCookMinutes     *float64 `json:"max_cook_time_mins"`
	IngredientsInclude []string `json:"ingredients_include"`
	IngredientsExclude []string `json:"ingredients_exclude"`
	SemanticQuery      *string  `json:"semantic_query"`
	UseGraph           *bool    `json:"use_graph"`
	UseFilters         *bool    `json:"use_filters"`
	UseSimilarity      *bool    `json:"use_similarity"`
	Reasoning          *string  `json:"reasoning"`
	// Older key names
	UseKG     *bool `json:"use_kg"`
	UseSQL    *bool `json:"use_sql"`
	UseVector *bool `json:"use_vector"`
}

// Decode parses the extractor's answer into an intent.
// Code fences are ignored and malformed JSON is repaired before giving up.
func Decode(content string) (*model.Intent, error) {
	content = stripCodeFence(content)
	if content == "" {
		return nil, fmt.Errorf("empty intent response")
	}

	raw := &rawIntent{}
	err := jsoniter.UnmarshalFromString(content, raw)
	if err != nil {
		originalErr := err

		repaired, err := jsonrepair.JSONRepair(content)
		if err != nil {
			return nil, fmt.Errorf("invalid intent json: %w", originalErr)
		}
		raw = &rawIntent{}
		if err := jsoniter.UnmarshalFromString(repaired, raw); err != nil {
			return nil, fmt.Errorf("invalid intent json: %w", originalErr)
		}
	}

	return raw.intent(), nil
}

func (r *rawIntent) intent() *model.Intent {
	return &model.Intent{
		Cuisine:            text(r.Cuisine),
		Diet:               text(r.Diet),
		Course:             text(r.Course),
		MaxPrepMinutes:     minutes(r.MaxPrepMinutes),
		MaxCookMinutes:     minutes(r.MaxCookMinutes),
		IngredientsInclude: cleanList(r.IngredientsInclude),
		IngredientsExclude: cleanList(r.IngredientsExclude),
		SemanticQuery:      text(r.SemanticQuery),
		UseGraph:           flag(r.UseGraph, r.UseKG),
		UseFilters:         flag(r.UseFilters, r.UseSQL),
		UseSimilarity:      flag(r.UseSimilarity, r.UseVector),
		Reasoning:          text(r.Reasoning),
	}
}

func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	if newline := strings.IndexByte(content, '\n'); newline >= 0 {
		content = content[newline+1:]
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

func text(value *string) string {
	if value == nil {
		return ""
	}
	trimmed := strings.TrimSpace(*value)
	if strings.EqualFold(trimmed, "null") || strings.EqualFold(trimmed, "none") {
		return ""
	}
	return trimmed
}

func minutes(value *float64) int {
	if value == nil || *value <= 0 {
		return 0
	}
	return int(*value)
}

func flag(values ...*bool) bool {
	for _, value := range values {
		if value != nil {
			return *value
		}
	}
	return false
}

func cleanList(values []string) []string {
	cleaned := []string{}
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			cleaned = append(cleaned, value)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}
	return cleaned
}
