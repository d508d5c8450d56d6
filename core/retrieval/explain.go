package retrieval

import (
	"fmt"
	"strings"

	"github.com/siherrmann/recipegraph/model"
)

// Explain describes in plain text which retrieval paths a search uses.
// It depends on the intent only, never on results.
func Explain(intent *model.Intent) []string {
	explanation := []string{}

	if intent.UseGraph || intent.HasIngredients() {
		if intent.HasIngredients() {
			explanation = append(explanation, "Graph: searching for recipes with "+strings.Join(intent.IngredientsInclude, ", "))
		} else {
			explanation = append(explanation, "Graph: exploring ingredient relationships")
		}
	}

	switch {
	case intent.UseFilters && intent.UseSimilarity:
		filters := []string{}
		if intent.Cuisine != "" {
			filters = append(filters, "cuisine="+intent.Cuisine)
		}
		if intent.Diet != "" {
			filters = append(filters, "diet="+intent.Diet)
		}
		if intent.MaxPrepMinutes > 0 {
			filters = append(filters, fmt.Sprintf("prep<=%dmin", intent.MaxPrepMinutes))
		}
		list := ""
		if len(filters) > 0 {
			list = " (" + strings.Join(filters, ", ") + ")"
		}
		explanation = append(explanation, "Filters+Similarity: hybrid search combining filters"+list+" with semantic similarity")
	case intent.UseSimilarity && intent.SemanticQuery != "":
		explanation = append(explanation, fmt.Sprintf("Similarity: semantic search for '%s'", intent.SemanticQuery))
	case intent.UseFilters:
		filters := []string{}
		if intent.Cuisine != "" {
			filters = append(filters, "cuisine="+intent.Cuisine)
		}
		if intent.Diet != "" {
			filters = append(filters, "diet="+intent.Diet)
		}
		if intent.Course != "" {
			filters = append(filters, "course="+intent.Course)
		}
		list := "structured filters"
		if len(filters) > 0 {
			list = strings.Join(filters, ", ")
		}
		explanation = append(explanation, "Filters: filtering by "+list)
	}

	if len(explanation) == 0 {
		explanation = append(explanation, "Default: hybrid search with semantic similarity")
	}

	return explanation
}
