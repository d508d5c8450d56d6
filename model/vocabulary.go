package model

// Vocabulary is the controlled set of values the stores actually contain.
type Vocabulary struct {
	Cuisines    []string `json:"cuisines"`
	Courses     []string `json:"courses"`
	Diets       []string `json:"diets"`
	Ingredients []string `json:"ingredients"`
}
