package graph

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/siherrmann/recipegraph/helper"
	"github.com/siherrmann/recipegraph/model"
)

// Retriever answers relationship queries against the recipe knowledge graph.
// It is safe for concurrent use when its Runner is.
type Retriever struct {
	runner Runner
	logger *slog.Logger
}

// NewRetriever creates a graph retriever.
func NewRetriever(runner Runner, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		runner: runner,
		logger: logger,
	}
}

// Search returns recipes connected to every cuisine, diet, course and ingredient the intent requires,
// within its time ceilings, best rated first.
func (r *Retriever) Search(ctx context.Context, intent *model.Intent, limit int) ([]*model.GraphResult, error) {
	if limit <= 0 {
		return nil, helper.NewError("graph search", fmt.Errorf("limit %d: %w", limit, model.ErrInvalidInput))
	}

	q := buildSearchQuery(intent, limit)
	return r.run(ctx, "graph search", q.String(), q.params, "")
}

// FindSimilarByIngredients returns recipes sharing ingredients with the given recipe,
// most shared first. Score is the shared ingredient count. An unknown id yields no results.
func (r *Retriever) FindSimilarByIngredients(ctx context.Context, recipeID int64, limit int) ([]*model.GraphResult, error) {
	if limit <= 0 {
		return nil, helper.NewError("graph similar", fmt.Errorf("limit %d: %w", limit, model.ErrInvalidInput))
	}

	params := map[string]any{
		"recipe_id": recipeID,
		"limit":     int64(limit),
	}
	return r.run(ctx, "graph similar", similarByIngredients, params, "shared_ingredients")
}

// ByIngredientCombination returns recipes containing every listed ingredient.
// An empty list returns no results without querying the graph.
func (r *Retriever) ByIngredientCombination(ctx context.Context, ingredients []string, limit int) ([]*model.GraphResult, error) {
	if !hasIngredient(ingredients) {
		return []*model.GraphResult{}, nil
	}
	if limit <= 0 {
		return nil, helper.NewError("graph combination", fmt.Errorf("limit %d: %w", limit, model.ErrInvalidInput))
	}

	q := buildCombinationQuery(ingredients, limit)
	return r.run(ctx, "graph combination", q.String(), q.params, "")
}

func (r *Retriever) run(ctx context.Context, operation string, cypher string, params map[string]any, scoreKey string) ([]*model.GraphResult, error) {
	records, err := r.runner.Run(ctx, cypher, params)
	if err != nil {
		return nil, helper.NewError(operation, fmt.Errorf("%w: %v", model.ErrRetrievalUnavailable, err))
	}

	results := make([]*model.GraphResult, 0, len(records))
	for _, record := range records {
		result, err := parseRecord(record, scoreKey)
		if err != nil {
			r.logger.Warn("Skipping malformed graph record", slog.String("operation", operation), slog.String("error", err.Error()))
			continue
		}
		results = append(results, result)
	}

	r.logger.Debug("Graph query finished", slog.String("operation", operation), slog.Int("results", len(results)))

	return results, nil
}

func parseRecord(record *neo4j.Record, scoreKey string) (*model.GraphResult, error) {
	rawID, _ := record.Get("id")
	id, ok := toInt64(rawID)
	if !ok {
		return nil, fmt.Errorf("invalid recipe id %v", rawID)
	}

	result := &model.GraphResult{ID: id, Score: 1}
	if title, ok := record.Get("title"); ok {
		result.Title, _ = title.(string)
	}
	if rating, ok := record.Get("rating"); ok {
		result.Rating, _ = toFloat64(rating)
	}
	if prep, ok := record.Get("prep_time_mins"); ok {
		result.PrepMinutes = toIntPointer(prep)
	}
	if cook, ok := record.Get("cook_time_mins"); ok {
		result.CookMinutes = toIntPointer(cook)
	}
	if scoreKey != "" {
		if score, ok := record.Get(scoreKey); ok {
			result.Score, _ = toFloat64(score)
		}
	}

	return result, nil
}

func hasIngredient(ingredients []string) bool {
	for _, ingredient := range ingredients {
		if strings.TrimSpace(ingredient) != "" {
			return true
		}
	}
	return false
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	}
	return 0, false
}

func toFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

func toIntPointer(value any) *int {
	v, ok := toInt64(value)
	if !ok {
		return nil
	}
	i := int(v)
	return &i
}
