package graph

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/siherrmann/recipegraph/helper"
	"github.com/siherrmann/recipegraph/model"
)

var constraints = []string{
	"CREATE CONSTRAINT recipe_id IF NOT EXISTS FOR (r:Recipe) REQUIRE r.id IS UNIQUE",
	"CREATE CONSTRAINT cuisine_name IF NOT EXISTS FOR (c:Cuisine) REQUIRE c.name IS UNIQUE",
	"CREATE CONSTRAINT diet_name IF NOT EXISTS FOR (d:Diet) REQUIRE d.name IS UNIQUE",
	"CREATE CONSTRAINT course_name IF NOT EXISTS FOR (co:Course) REQUIRE co.name IS UNIQUE",
	"CREATE CONSTRAINT ingredient_name IF NOT EXISTS FOR (i:Ingredient) REQUIRE i.name IS UNIQUE",
}

// Empty dimension values produce no relationship.
const upsertRecipe = `MERGE (r:Recipe {id: $id})
SET r.title = $title, r.rating = $rating, r.prep_time_mins = $prep_time_mins, r.cook_time_mins = $cook_time_mins
FOREACH (name IN CASE WHEN $cuisine = '' THEN [] ELSE [$cuisine] END |
  MERGE (c:Cuisine {name: name}) MERGE (r)-[:HAS_CUISINE]->(c))
FOREACH (name IN CASE WHEN $diet = '' THEN [] ELSE [$diet] END |
  MERGE (d:Diet {name: name}) MERGE (r)-[:HAS_DIET]->(d))
FOREACH (name IN CASE WHEN $course = '' THEN [] ELSE [$course] END |
  MERGE (co:Course {name: name}) MERGE (r)-[:HAS_COURSE]->(co))
FOREACH (name IN $ingredients |
  MERGE (i:Ingredient {name: name}) MERGE (r)-[:CONTAINS]->(i))`

// Loader writes recipes and their dimensions into the graph.
type Loader struct {
	runner Runner
	logger *slog.Logger
}

// NewLoader creates a loader; the runner must be routed to writers.
func NewLoader(runner Runner, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		runner: runner,
		logger: logger,
	}
}

// CreateConstraints creates the uniqueness constraints of the graph schema.
func (l *Loader) CreateConstraints(ctx context.Context) error {
	for _, constraint := range constraints {
		if _, err := l.runner.Run(ctx, constraint, nil); err != nil {
			return helper.NewError("create graph constraint", fmt.Errorf("%w: %v", model.ErrRetrievalUnavailable, err))
		}
	}
	return nil
}

// UpsertRecipe merges the recipe node and links it to its cuisine, diet, course and ingredients.
func (l *Loader) UpsertRecipe(ctx context.Context, recipe *model.Recipe) error {
	if recipe == nil || recipe.ID <= 0 {
		return helper.NewError("upsert graph recipe", fmt.Errorf("recipe needs a positive id: %w", model.ErrInvalidInput))
	}

	if _, err := l.runner.Run(ctx, upsertRecipe, recipeParams(recipe)); err != nil {
		return helper.NewError("upsert graph recipe", fmt.Errorf("%w: %v", model.ErrRetrievalUnavailable, err))
	}

	l.logger.Debug("Upserted graph recipe", slog.Int64("id", recipe.ID), slog.Int("ingredients", len(recipe.Ingredients)))
	return nil
}

func recipeParams(recipe *model.Recipe) map[string]any {
	ingredients := []any{}
	seen := map[string]bool{}
	for _, ingredient := range recipe.Ingredients {
		name := strings.TrimSpace(ingredient)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		ingredients = append(ingredients, name)
	}

	var rating any
	if recipe.Rating > 0 {
		rating = recipe.Rating
	}

	return map[string]any{
		"id":             recipe.ID,
		"title":          recipe.Title,
		"rating":         rating,
		"prep_time_mins": optionalInt(recipe.PrepMinutes),
		"cook_time_mins": optionalInt(recipe.CookMinutes),
		"cuisine":        strings.TrimSpace(recipe.Cuisine),
		"diet":           strings.TrimSpace(recipe.Diet),
		"course":         strings.TrimSpace(recipe.Course),
		"ingredients":    ingredients,
	}
}

func optionalInt(value *int) any {
	if value == nil {
		return nil
	}
	return int64(*value)
}
