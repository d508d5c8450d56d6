package model

// Intent is the structured reading of a recipe query produced by the intent extractor.
// Empty strings, zero ceilings and empty lists mean "not set".
// The routing flags are advisory: the fusion engine always queries the recipe store
// and always queries the graph when ingredients are required.
type Intent struct {
	Cuisine            string   `json:"cuisine,omitempty"`
	Diet               string   `json:"diet,omitempty"`
	Course             string   `json:"course,omitempty"`
	MaxPrepMinutes     int      `json:"max_prep_time_mins,omitempty"`
	MaxCookMinutes     int      `json:"max_cook_time_mins,omitempty"`
	IngredientsInclude []string `json:"ingredients_include,omitempty"`
	IngredientsExclude []string `json:"ingredients_exclude,omitempty"`
	SemanticQuery      string   `json:"semantic_query,omitempty"`
	// Routing
	UseGraph      bool `json:"use_graph"`
	UseFilters    bool `json:"use_filters"`
	UseSimilarity bool `json:"use_similarity"`
	// Free-text explanation from the extractor
	Reasoning string `json:"reasoning,omitempty"`
}

// HasIngredients reports whether the intent requires at least one ingredient.
func (i *Intent) HasIngredients() bool {
	return len(i.IngredientsInclude) > 0
}

// SemanticText returns the text to embed for hybrid search.
// The cuisine is used when no semantic query was extracted.
func (i *Intent) SemanticText() string {
	if i.SemanticQuery != "" {
		return i.SemanticQuery
	}
	return i.Cuisine
}
