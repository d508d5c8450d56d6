package vocab

import (
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/siherrmann/recipegraph/model"
)

// Mapping thresholds per field.
const (
	FieldThreshold      = 0.7
	IngredientThreshold = 0.5
	substringScore      = 0.72
)

// IngredientHints maps keywords to preferred ingredient values.
// Hints are tried in order.
var IngredientHints = []Hint{
	{Keyword: "soy-based", Targets: []string{"Tofu", "Tempeh", "Soybeans"}},
	{Keyword: "soybean", Targets: []string{"Soybeans"}},
	{Keyword: "soy", Targets: []string{"Tofu", "Tempeh", "Soybeans"}},
	{Keyword: "bean curd", Targets: []string{"Tofu"}},
	{Keyword: "garbanzo", Targets: []string{"Chickpeas"}},
	{Keyword: "chickpea", Targets: []string{"Chickpeas", "Chana Dal"}},
}

// Hint prefers Targets for any value containing Keyword.
type Hint struct {
	Keyword string
	Targets []string
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

func normalize(value string) string {
	return strings.TrimSpace(nonAlphanumeric.ReplaceAllString(strings.ToLower(value), " "))
}

func tokenize(value string) []string {
	return strings.Fields(normalize(value))
}

// similarityRatio is the sequence matcher ratio of a and b compared character by character.
func similarityRatio(a, b string) float64 {
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}

// Map returns the option best matching value, or "" when nothing scores at least threshold.
//
// An exact match after normalization wins, then the first keyword hint with a target among
// the options, then the best fuzzy score: the highest of the character similarity ratio,
// the share of value tokens found in the option, and a fixed score when a value token
// occurs inside the option.
func Map(value string, options []string, hints []Hint, threshold float64) string {
	if value == "" || len(options) == 0 {
		return ""
	}
	normalizedValue := normalize(value)
	if normalizedValue == "" {
		return ""
	}

	normalizedOptions := make([]string, len(options))
	for i, option := range options {
		normalizedOptions[i] = normalize(option)
		if normalizedOptions[i] == normalizedValue {
			return option
		}
	}

	lowerValue := strings.ToLower(value)
	for _, hint := range hints {
		if !strings.Contains(lowerValue, hint.Keyword) {
			continue
		}
		for _, target := range hint.Targets {
			for _, option := range options {
				if strings.EqualFold(option, target) {
					return option
				}
			}
		}
	}

	valueTokens := tokenize(value)
	best := ""
	bestScore := 0.0
	for i, option := range options {
		score := similarityRatio(normalizedValue, normalizedOptions[i])
		if len(valueTokens) > 0 {
			optionTokens := map[string]bool{}
			for _, token := range tokenize(option) {
				optionTokens[token] = true
			}
			shared := 0
			for _, token := range valueTokens {
				if optionTokens[token] {
					shared++
				}
				if strings.Contains(normalizedOptions[i], token) {
					score = max(score, substringScore)
				}
			}
			score = max(score, float64(shared)/float64(len(valueTokens)))
		}
		if score > bestScore {
			best = option
			bestScore = score
		}
	}

	if best != "" && bestScore >= threshold {
		return best
	}
	return ""
}

// Constrain maps the intent's structured values onto the vocabulary.
// Values without a match are cleared; mapped ingredients are deduplicated.
func Constrain(intent *model.Intent, vocabulary *model.Vocabulary) {
	if intent == nil || vocabulary == nil {
		return
	}

	intent.Cuisine = Map(intent.Cuisine, vocabulary.Cuisines, nil, FieldThreshold)
	intent.Course = Map(intent.Course, vocabulary.Courses, nil, FieldThreshold)
	intent.Diet = Map(intent.Diet, vocabulary.Diets, nil, FieldThreshold)
	intent.IngredientsInclude = mapIngredients(intent.IngredientsInclude, vocabulary.Ingredients)
	intent.IngredientsExclude = mapIngredients(intent.IngredientsExclude, vocabulary.Ingredients)
}

func mapIngredients(values []string, options []string) []string {
	if len(values) == 0 {
		return nil
	}

	mapped := []string{}
	seen := map[string]bool{}
	for _, value := range values {
		option := Map(value, options, IngredientHints, IngredientThreshold)
		if option == "" || seen[option] {
			continue
		}
		seen[option] = true
		mapped = append(mapped, option)
	}

	if len(mapped) == 0 {
		return nil
	}
	return mapped
}
