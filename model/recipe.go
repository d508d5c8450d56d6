package model

// Source tags which retrieval path contributed a result.
type Source string

const (
	SourceGraph            Source = "graph"
	SourceFilter           Source = "filter"
	SourceSimilarity       Source = "similarity"
	SourceFilterSimilarity Source = "filter+similarity"
)

// Sources lists every source tag in reporting order.
var Sources = []Source{SourceGraph, SourceFilter, SourceSimilarity, SourceFilterSimilarity}

// Recipe holds the descriptive fields of a stored recipe.
type Recipe struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Cuisine     string   `json:"cuisine,omitempty"`
	Course      string   `json:"course,omitempty"`
	Diet        string   `json:"diet,omitempty"`
	PrepMinutes *int     `json:"prep_time_mins"`
	CookMinutes *int     `json:"cook_time_mins"`
	Rating      float64  `json:"rating"`
	VoteCount   int      `json:"vote_count"`
	Ingredients []string `json:"ingredients"`
}

// StoreResult is a recipe returned by the relational+vector store.
// Distance is set only when a similarity component ranked the row; lower is more similar.
type StoreResult struct {
	Recipe
	Distance *float64 `json:"distance,omitempty"`
	Source   Source   `json:"source"`
}

// GraphResult is a lightweight recipe summary returned by a graph traversal.
// Score is 1 for filter traversals and the shared ingredient count for similarity traversals.
type GraphResult struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Rating      float64 `json:"rating"`
	PrepMinutes *int    `json:"prep_time_mins"`
	CookMinutes *int    `json:"cook_time_mins"`
	Score       float64 `json:"score"`
}

// FusedResult is a deduplicated recipe with its fused score and contributing sources.
type FusedResult struct {
	Recipe
	FinalScore float64  `json:"final_score"`
	Sources    []Source `json:"sources"`
}

// HasSource reports whether source already contributed to the result.
func (r *FusedResult) HasSource(source Source) bool {
	for _, s := range r.Sources {
		if s == source {
			return true
		}
	}
	return false
}
