package recipegraph

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/siherrmann/recipegraph/config"
	"github.com/siherrmann/recipegraph/core/graph"
	"github.com/siherrmann/recipegraph/core/intent"
	"github.com/siherrmann/recipegraph/core/pipeline"
	"github.com/siherrmann/recipegraph/core/preview"
	"github.com/siherrmann/recipegraph/core/retrieval"
	"github.com/siherrmann/recipegraph/core/vocab"
	"github.com/siherrmann/recipegraph/database"
	"github.com/siherrmann/recipegraph/helper"
	"github.com/siherrmann/recipegraph/model"
)

// RecipeGraph is the search handle. It is created once per process, holds the
// pooled connections to both stores and is safe for concurrent use.
type RecipeGraph struct {
	DB         *helper.Database
	Recipes    *database.RecipesDBHandler
	Driver     neo4j.DriverWithContext // nil when the graph is unreachable
	Graph      *graph.Retriever
	Loader     *graph.Loader
	Engine     *retrieval.Engine
	Extractor  intent.Extractor
	Preview    *preview.Fetcher
	Vocabulary *model.Vocabulary

	embed pipeline.EmbedFunc
	log   *slog.Logger
}

// NewRecipeGraph connects both stores and wires the retrieval engine.
// An unreachable graph is not fatal: searches then run on the store alone.
func NewRecipeGraph(ctx context.Context, cfg *config.Config) (*RecipeGraph, error) {
	if cfg == nil {
		return nil, helper.NewError("recipegraph configuration validation", fmt.Errorf("configuration is nil"))
	}

	logger := helper.NewLogger(os.Stdout, cfg.Level())

	embed, embeddingDim, err := pipeline.NewEmbedder(&cfg.Embedder)
	if err != nil {
		return nil, helper.NewError("create embedder", err)
	}

	db, err := helper.NewDatabase("recipegraph", &cfg.Database, logger)
	if err != nil {
		return nil, helper.NewError("connect database", err)
	}

	recipes, err := database.NewRecipesDBHandler(db, embeddingDim, cfg.ForceSQL)
	if err != nil {
		db.Close()
		return nil, helper.NewError("create recipes handler", err)
	}

	r := &RecipeGraph{
		DB:      db,
		Recipes: recipes,
		Preview: preview.NewFetcher(nil, logger),
		embed:   embed,
		log:     logger,
	}

	var graphSearcher retrieval.GraphSearcher
	driver, err := helper.NewGraphDriver(ctx, &cfg.Graph, logger)
	if err != nil {
		logger.Warn("Graph unavailable, searching without graph", slog.String("uri", cfg.Graph.URI), slog.String("error", err.Error()))
	} else {
		r.Driver = driver
		r.Graph = graph.NewRetriever(graph.NewDriverRunner(driver, cfg.Graph.Database), logger)
		r.Loader = graph.NewLoader(graph.NewDriverWriteRunner(driver, cfg.Graph.Database), logger)
		graphSearcher = r.Graph
		if err := r.Loader.CreateConstraints(ctx); err != nil {
			logger.Warn("Could not create graph constraints", slog.String("error", err.Error()))
		}
	}

	r.Vocabulary, err = vocab.Ensure(ctx, cfg.VocabPath, recipes, logger)
	if err != nil {
		logger.Warn("Controlled vocabulary unavailable, intents are not constrained", slog.String("error", err.Error()))
		r.Vocabulary = nil
	} else if len(r.Vocabulary.Cuisines) == 0 {
		logger.Warn("Controlled vocabulary is empty, intents are not constrained", slog.String("path", cfg.VocabPath))
		r.Vocabulary = nil
	}

	extractor, err := intent.NewOpenAIExtractor(&cfg.Extractor, r.Vocabulary, logger)
	if err != nil {
		logger.Warn("Intent extractor unavailable, only searches with an intent are served", slog.String("error", err.Error()))
	} else {
		r.Extractor = extractor
	}

	retriever := retrieval.NewRecipeRetriever(recipes, embed, logger)
	r.Engine = retrieval.NewEngine(retriever, graphSearcher, model.DefaultFusionConfig(), logger)

	return r, nil
}

// Logger returns the logger shared by all components.
func (r *RecipeGraph) Logger() *slog.Logger {
	if r.log == nil {
		return slog.Default()
	}
	return r.log
}

// Close closes the graph driver and the database pool.
func (r *RecipeGraph) Close(ctx context.Context) error {
	var result error
	if r.Driver != nil {
		if err := r.Driver.Close(ctx); err != nil {
			result = multierror.Append(result, helper.NewError("close graph driver", err))
		}
	}
	if r.DB != nil && r.DB.Instance != nil {
		if err := r.DB.Close(); err != nil {
			result = multierror.Append(result, helper.NewError("close database", err))
		}
	}
	return result
}

// ExtractIntent parses a natural language query into an intent.
func (r *RecipeGraph) ExtractIntent(ctx context.Context, query string) (*model.Intent, error) {
	if r.Extractor == nil {
		return nil, helper.NewError("extract intent", fmt.Errorf("%w: no intent extractor configured", model.ErrRetrievalUnavailable))
	}
	return r.Extractor.Extract(ctx, query)
}

// Search extracts the intent of query and runs the fused search.
func (r *RecipeGraph) Search(ctx context.Context, query string, limit int) (*model.SearchOutcome, error) {
	parsed, err := r.ExtractIntent(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.SearchWithIntent(ctx, query, parsed, limit)
}

// SearchWithIntent runs the fused search for an already extracted intent.
func (r *RecipeGraph) SearchWithIntent(ctx context.Context, query string, parsed *model.Intent, limit int) (*model.SearchOutcome, error) {
	return r.Engine.Search(ctx, query, parsed, limit)
}

// GetRecipe returns a recipe by id or an error wrapping model.ErrNotFound.
func (r *RecipeGraph) GetRecipe(ctx context.Context, id int64) (*model.Recipe, error) {
	recipe, err := r.Recipes.SelectRecipe(ctx, id)
	if err != nil {
		return nil, helper.NewError("get recipe", err)
	}
	return recipe, nil
}

// SimilarRecipes returns recipes sharing the most ingredients with the given recipe.
func (r *RecipeGraph) SimilarRecipes(ctx context.Context, id int64, limit int) ([]*model.FusedResult, error) {
	return r.Engine.Similar(ctx, id, limit)
}

// IngredientCombination returns recipes containing all of the given ingredients.
func (r *RecipeGraph) IngredientCombination(ctx context.Context, ingredients []string, limit int) ([]*model.GraphResult, error) {
	if r.Graph == nil {
		return nil, helper.NewError("ingredient combination", fmt.Errorf("%w: no graph configured", model.ErrRetrievalUnavailable))
	}
	return r.Graph.ByIngredientCombination(ctx, ingredients, limit)
}

// PreviewImage returns the preview image of the recipe page, or "" when there is none.
func (r *RecipeGraph) PreviewImage(ctx context.Context, id int64) (string, error) {
	recipe, err := r.GetRecipe(ctx, id)
	if err != nil {
		return "", err
	}
	return r.Preview.ImageURL(ctx, recipe.URL), nil
}

// AddRecipe embeds the recipe text and upserts it into the store and, when
// connected, into the graph.
func (r *RecipeGraph) AddRecipe(ctx context.Context, recipe *model.Recipe) error {
	if recipe == nil {
		return helper.NewError("add recipe", fmt.Errorf("recipe is nil: %w", model.ErrInvalidInput))
	}

	embedding, err := r.embed(ctx, EmbeddingText(recipe))
	if err != nil {
		return helper.NewError("embed recipe", fmt.Errorf("%w: %w", model.ErrRetrievalUnavailable, err))
	}
	if err := r.Recipes.InsertRecipe(ctx, recipe, embedding); err != nil {
		return err
	}

	if r.Loader != nil {
		return r.Loader.UpsertRecipe(ctx, recipe)
	}
	return nil
}

// EmbeddingText is the text a recipe is embedded from.
func EmbeddingText(recipe *model.Recipe) string {
	parts := []string{recipe.Title}
	if recipe.Description != "" {
		parts = append(parts, recipe.Description)
	}
	if recipe.Cuisine != "" {
		parts = append(parts, "Cuisine: "+recipe.Cuisine)
	}
	if len(recipe.Ingredients) > 0 {
		parts = append(parts, "Ingredients: "+strings.Join(recipe.Ingredients, ", "))
	}
	return strings.Join(parts, ". ")
}
