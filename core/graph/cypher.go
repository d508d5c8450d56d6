package graph

import (
	"fmt"
	"strings"

	"github.com/siherrmann/recipegraph/model"
)

const returnRecipe = `RETURN r.id AS id, r.title AS title, r.rating AS rating, r.prep_time_mins AS prep_time_mins, r.cook_time_mins AS cook_time_mins
ORDER BY coalesce(r.rating, 0.0) DESC, r.id
LIMIT $limit`

const similarByIngredients = `MATCH (r1:Recipe {id: $recipe_id})-[:CONTAINS]->(i:Ingredient)<-[:CONTAINS]-(r2:Recipe)
WHERE r1 <> r2
WITH r2, count(DISTINCT i) AS shared_ingredients
RETURN r2.id AS id, r2.title AS title, r2.rating AS rating, r2.prep_time_mins AS prep_time_mins, r2.cook_time_mins AS cook_time_mins, shared_ingredients
ORDER BY shared_ingredients DESC, coalesce(r2.rating, 0.0) DESC, r2.id
LIMIT $limit`

// query is a Cypher statement with its parameters.
type query struct {
	matches []string
	where   []string
	params  map[string]any
}

func newQuery(limit int) *query {
	return &query{
		matches: []string{"MATCH (r:Recipe)"},
		params:  map[string]any{"limit": int64(limit)},
	}
}

// requireIngredients adds one required CONTAINS match per non-blank ingredient.
func (q *query) requireIngredients(ingredients []string) {
	n := 0
	for _, ingredient := range ingredients {
		ingredient = strings.TrimSpace(ingredient)
		if ingredient == "" {
			continue
		}
		param := fmt.Sprintf("ing_%d", n)
		q.matches = append(q.matches, fmt.Sprintf(
			"MATCH (r)-[:CONTAINS]->(i%d:Ingredient) WHERE toLower(i%d.name) CONTAINS toLower($%s)",
			n, n, param,
		))
		q.params[param] = ingredient
		n++
	}
}

// String assembles the statement. Time ceilings are applied after deduplication.
func (q *query) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(q.matches, "\n"))
	b.WriteString("\nWITH DISTINCT r")
	if len(q.where) > 0 {
		b.WriteString("\nWHERE ")
		b.WriteString(strings.Join(q.where, " AND "))
	}
	b.WriteString("\n")
	b.WriteString(returnRecipe)
	return b.String()
}

// buildSearchQuery translates an intent into required relationship matches.
func buildSearchQuery(intent *model.Intent, limit int) *query {
	q := newQuery(limit)
	if intent == nil {
		return q
	}

	if intent.Cuisine != "" {
		q.matches = append(q.matches, "MATCH (r)-[:HAS_CUISINE]->(:Cuisine {name: $cuisine})")
		q.params["cuisine"] = intent.Cuisine
	}
	if intent.Diet != "" {
		q.matches = append(q.matches, "MATCH (r)-[:HAS_DIET]->(:Diet {name: $diet})")
		q.params["diet"] = intent.Diet
	}
	if intent.Course != "" {
		q.matches = append(q.matches, "MATCH (r)-[:HAS_COURSE]->(:Course {name: $course})")
		q.params["course"] = intent.Course
	}
	q.requireIngredients(intent.IngredientsInclude)

	if intent.MaxPrepMinutes > 0 {
		q.where = append(q.where, "r.prep_time_mins <= $max_prep_time")
		q.params["max_prep_time"] = int64(intent.MaxPrepMinutes)
	}
	if intent.MaxCookMinutes > 0 {
		q.where = append(q.where, "r.cook_time_mins <= $max_cook_time")
		q.params["max_cook_time"] = int64(intent.MaxCookMinutes)
	}

	return q
}

// buildCombinationQuery requires every ingredient and nothing else.
func buildCombinationQuery(ingredients []string, limit int) *query {
	q := newQuery(limit)
	q.requireIngredients(ingredients)
	return q
}
