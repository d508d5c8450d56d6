package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/siherrmann/recipegraph/core/pipeline"
	"github.com/siherrmann/recipegraph/helper"
	"github.com/siherrmann/recipegraph/model"
)

// RecipeStore is the relational+vector store the recipe retriever queries.
// database.RecipesDBHandler implements it.
type RecipeStore interface {
	SelectRecipe(ctx context.Context, id int64) (*model.Recipe, error)
	SelectRecipesByFilter(ctx context.Context, intent *model.Intent, limit int) ([]*model.StoreResult, error)
	SelectRecipesBySimilarity(ctx context.Context, embedding []float32, limit int) ([]*model.StoreResult, error)
	SelectRecipesByHybrid(ctx context.Context, intent *model.Intent, embedding []float32, limit int) ([]*model.StoreResult, error)
}

// RecipeRetriever answers filter, similarity and hybrid queries against full recipe records.
type RecipeRetriever struct {
	store  RecipeStore
	embed  pipeline.EmbedFunc
	logger *slog.Logger
}

// NewRecipeRetriever creates a recipe retriever.
func NewRecipeRetriever(store RecipeStore, embed pipeline.EmbedFunc, logger *slog.Logger) *RecipeRetriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecipeRetriever{
		store:  store,
		embed:  embed,
		logger: logger,
	}
}

// SearchFilters returns recipes matching every structured constraint, best rated first.
// It never calls the embedding provider.
func (r *RecipeRetriever) SearchFilters(ctx context.Context, intent *model.Intent, limit int) ([]*model.StoreResult, error) {
	if limit <= 0 {
		return nil, helper.NewError("search filters", fmt.Errorf("limit %d: %w", limit, model.ErrInvalidInput))
	}

	results, err := r.store.SelectRecipesByFilter(ctx, intent, limit)
	if err != nil {
		return nil, helper.NewError("search filters", unavailable(err))
	}
	return tag(results, model.SourceFilter), nil
}

// SearchSimilarity returns the recipes semantically nearest to text.
func (r *RecipeRetriever) SearchSimilarity(ctx context.Context, text string, limit int) ([]*model.StoreResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, helper.NewError("search similarity", fmt.Errorf("semantic text is empty: %w", model.ErrInvalidInput))
	}
	if limit <= 0 {
		return nil, helper.NewError("search similarity", fmt.Errorf("limit %d: %w", limit, model.ErrInvalidInput))
	}

	embedding, err := r.embedText(ctx, text)
	if err != nil {
		return nil, helper.NewError("search similarity", err)
	}

	results, err := r.store.SelectRecipesBySimilarity(ctx, embedding, limit)
	if err != nil {
		return nil, helper.NewError("search similarity", unavailable(err))
	}
	return tag(results, model.SourceSimilarity), nil
}

// SearchHybrid applies the structured constraints and orders the matches by semantic distance.
// The semantic text is the intent's semantic query, else its cuisine. Without either the
// matches are ordered by rating and carry no distance.
func (r *RecipeRetriever) SearchHybrid(ctx context.Context, intent *model.Intent, limit int) ([]*model.StoreResult, error) {
	if limit <= 0 {
		return nil, helper.NewError("search hybrid", fmt.Errorf("limit %d: %w", limit, model.ErrInvalidInput))
	}
	if intent == nil {
		intent = &model.Intent{}
	}

	var embedding []float32
	if text := intent.SemanticText(); strings.TrimSpace(text) != "" {
		var err error
		embedding, err = r.embedText(ctx, text)
		if err != nil {
			return nil, helper.NewError("search hybrid", err)
		}
	}

	results, err := r.store.SelectRecipesByHybrid(ctx, intent, embedding, limit)
	if err != nil {
		return nil, helper.NewError("search hybrid", unavailable(err))
	}
	return tag(results, model.SourceFilterSimilarity), nil
}

// GetByID returns one recipe. A miss returns an error wrapping model.ErrNotFound.
func (r *RecipeRetriever) GetByID(ctx context.Context, id int64) (*model.Recipe, error) {
	recipe, err := r.store.SelectRecipe(ctx, id)
	if err != nil {
		return nil, helper.NewError("get recipe", unavailable(err))
	}
	return recipe, nil
}

func (r *RecipeRetriever) embedText(ctx context.Context, text string) ([]float32, error) {
	if r.embed == nil {
		return nil, fmt.Errorf("%w: no embedding provider configured", model.ErrRetrievalUnavailable)
	}

	embedding, err := r.embed(ctx, text)
	if err != nil {
		r.logger.Warn("Embedding failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: embed: %v", model.ErrRetrievalUnavailable, err)
	}
	return embedding, nil
}

// unavailable classifies a store error; anything but a caller error or a lookup miss
// means the store could not answer.
func unavailable(err error) error {
	if errors.Is(err, model.ErrInvalidInput) || errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrRetrievalUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", model.ErrRetrievalUnavailable, err)
}

func tag(results []*model.StoreResult, source model.Source) []*model.StoreResult {
	for _, result := range results {
		result.Source = source
	}
	if results == nil {
		return []*model.StoreResult{}
	}
	return results
}
