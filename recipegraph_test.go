package recipegraph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/siherrmann/recipegraph/config"
	"github.com/siherrmann/recipegraph/helper"
	"github.com/siherrmann/recipegraph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const intentAnswer = `{"cuisine": "Indian", "semantic_query": "creamy paneer", "use_filters": true, "use_similarity": true, "reasoning": "Indian cuisine with a creamy paneer feel."}`

// newOpenAIServer answers embeddings with a vector chosen by keyword and
// chat completions with a fixed intent.
func newOpenAIServer(t *testing.T) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/embeddings":
			request := struct {
				Input string `json:"input"`
			}{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
			vector := []float64{0, 1, 0}
			if strings.Contains(strings.ToLower(request.Input), "paneer") {
				vector = []float64{1, 0, 0}
			}
			json.NewEncoder(w).Encode(map[string]any{
				"object": "list",
				"model":  "text-embedding-3-small",
				"data":   []map[string]any{{"object": "embedding", "index": 0, "embedding": vector}},
				"usage":  map[string]any{"prompt_tokens": 1, "total_tokens": 1},
			})
		case "/chat/completions":
			json.NewEncoder(w).Encode(map[string]any{
				"id":      "chatcmpl-test",
				"object":  "chat.completion",
				"created": 1700000000,
				"model":   "gpt-4o-mini",
				"choices": []map[string]any{{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": intentAnswer},
				}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func initRecipeGraph(t *testing.T) *RecipeGraph {
	openAI := newOpenAIServer(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, nil, 0600))

	helper.SetTestDatabaseConfigEnvs(t, dbPort)
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", openAI.URL)
	t.Setenv("RECIPES_EMBEDDING_DIMENSIONS", "3")
	t.Setenv("RECIPES_GRAPH_URI", "bolt://127.0.0.1:1")
	t.Setenv("RECIPES_VOCAB_PATH", filepath.Join(dir, "controlled_vocab.json"))
	t.Setenv("RECIPES_LOG_LEVEL", "error")

	cfg, err := config.Load(envFile)
	require.NoError(t, err, "failed to load configuration")

	r, err := NewRecipeGraph(context.Background(), cfg)
	require.NoError(t, err, "failed to create recipe graph")
	t.Cleanup(func() { r.Close(context.Background()) })

	_, err = r.DB.Instance.Exec(`DELETE FROM recipes`)
	require.NoError(t, err)
	return r
}

func seed(t *testing.T, r *RecipeGraph, pageURL string) {
	prep := 20
	recipes := []*model.Recipe{
		{ID: 1, Title: "Palak Paneer", Description: "Spinach curry", URL: pageURL, Cuisine: "Indian", Course: "Dinner", Diet: "Vegetarian", PrepMinutes: &prep, Rating: 4.5, VoteCount: 10, Ingredients: []string{"Paneer", "Spinach"}},
		{ID: 2, Title: "Chicken Curry", Description: "Classic curry", URL: "https://example.invalid/chicken", Cuisine: "Indian", Course: "Dinner", Diet: "Non Vegeterian", Rating: 4.0, VoteCount: 5, Ingredients: []string{"Chicken", "Onion"}},
		{ID: 3, Title: "Margherita Pizza", Description: "Tomato and basil", URL: "ftp://example.invalid/pizza", Cuisine: "Italian", Course: "Dinner", Diet: "Vegetarian", Rating: 4.9, VoteCount: 50, Ingredients: []string{"Tomato", "Basil"}},
	}
	for _, recipe := range recipes {
		require.NoError(t, r.AddRecipe(context.Background(), recipe), "Expected AddRecipe to not return an error")
	}
}

func TestNewRecipeGraph(t *testing.T) {
	t.Run("Valid call NewRecipeGraph without graph", func(t *testing.T) {
		r := initRecipeGraph(t)
		assert.NotNil(t, r.DB, "Expected recipe graph to have a database instance")
		assert.NotNil(t, r.Recipes, "Expected recipe graph to have a recipes handler")
		assert.NotNil(t, r.Engine, "Expected recipe graph to have an engine")
		assert.NotNil(t, r.Extractor, "Expected recipe graph to have an extractor")
		assert.Nil(t, r.Driver, "Expected unreachable graph to be skipped")
		assert.Nil(t, r.Graph)
	})

	t.Run("Nil configuration fails", func(t *testing.T) {
		_, err := NewRecipeGraph(context.Background(), nil)
		assert.Error(t, err)
	})

	t.Run("Close handles nil members", func(t *testing.T) {
		r := &RecipeGraph{}
		assert.NoError(t, r.Close(context.Background()))
	})

	t.Run("ExtractIntent without extractor is unavailable", func(t *testing.T) {
		r := &RecipeGraph{}
		_, err := r.ExtractIntent(context.Background(), "paneer")
		assert.ErrorIs(t, err, model.ErrRetrievalUnavailable)
	})
}

func TestRecipeGraphSearch(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><meta property="og:image" content="/img/palak.jpg"></head></html>`))
	}))
	t.Cleanup(page.Close)

	r := initRecipeGraph(t)
	seed(t, r, page.URL+"/palak-paneer")
	ctx := context.Background()

	t.Run("Search extracts the intent and fuses the store results", func(t *testing.T) {
		outcome, err := r.Search(ctx, "something creamy and indian with paneer", 10)
		require.NoError(t, err)
		require.NotNil(t, outcome.Intent)
		assert.Equal(t, "Indian", outcome.Intent.Cuisine)
		assert.Equal(t, "Indian cuisine with a creamy paneer feel.", outcome.Intent.Reasoning)

		require.Len(t, outcome.Results, 2, "Expected only Indian recipes")
		assert.Equal(t, int64(1), outcome.Results[0].ID, "Expected the closest recipe first")
		assert.Equal(t, int64(2), outcome.Results[1].ID)
		assert.Equal(t, 2, outcome.SourceBreakdown[model.SourceFilterSimilarity])
		assert.Equal(t, 0, outcome.SourceBreakdown[model.SourceGraph])
		assert.NotEmpty(t, outcome.Explanation)
	})

	t.Run("Search respects the limit", func(t *testing.T) {
		outcome, err := r.Search(ctx, "paneer", 1)
		require.NoError(t, err)
		assert.Len(t, outcome.Results, 1)
	})

	t.Run("Empty query is invalid input", func(t *testing.T) {
		_, err := r.Search(ctx, "   ", 10)
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("SearchWithIntent skips extraction", func(t *testing.T) {
		outcome, err := r.SearchWithIntent(ctx, "pizza", &model.Intent{Cuisine: "Italian", UseFilters: true}, 10)
		require.NoError(t, err)
		require.Len(t, outcome.Results, 1)
		assert.Equal(t, int64(3), outcome.Results[0].ID)
	})

	t.Run("GetRecipe returns a stored recipe", func(t *testing.T) {
		recipe, err := r.GetRecipe(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Palak Paneer", recipe.Title)
		assert.Equal(t, []string{"Paneer", "Spinach"}, recipe.Ingredients)
	})

	t.Run("GetRecipe of a missing recipe is not found", func(t *testing.T) {
		_, err := r.GetRecipe(ctx, 999)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("Graph operations without graph are unavailable", func(t *testing.T) {
		_, err := r.SimilarRecipes(ctx, 1, 5)
		assert.ErrorIs(t, err, model.ErrRetrievalUnavailable)

		_, err = r.IngredientCombination(ctx, []string{"Paneer"}, 5)
		assert.ErrorIs(t, err, model.ErrRetrievalUnavailable)
	})

	t.Run("PreviewImage resolves the page image", func(t *testing.T) {
		image, err := r.PreviewImage(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, page.URL+"/img/palak.jpg", image)
	})

	t.Run("PreviewImage of a non http url is empty", func(t *testing.T) {
		image, err := r.PreviewImage(ctx, 3)
		require.NoError(t, err)
		assert.Empty(t, image)
	})
}

func TestEmbeddingText(t *testing.T) {
	text := EmbeddingText(&model.Recipe{Title: "Palak Paneer", Description: "Spinach curry", Cuisine: "Indian", Ingredients: []string{"Paneer", "Spinach"}})
	assert.Equal(t, "Palak Paneer. Spinach curry. Cuisine: Indian. Ingredients: Paneer, Spinach", text)
	assert.Equal(t, "Toast", EmbeddingText(&model.Recipe{Title: "Toast"}))
}
