package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/siherrmann/recipegraph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderUpsertRecipe(t *testing.T) {
	prep := 20

	t.Run("Sends the recipe with cleaned dimensions", func(t *testing.T) {
		runner := &fakeRunner{}
		loader := NewLoader(runner, nil)

		err := loader.UpsertRecipe(context.Background(), &model.Recipe{
			ID: 7, Title: "Palak Paneer", Cuisine: " Indian ", Diet: "Vegetarian",
			PrepMinutes: &prep, Rating: 4.5,
			Ingredients: []string{"Paneer", " ", "Spinach", "Paneer"},
		})
		require.NoError(t, err)
		require.Len(t, runner.calls, 1)

		params := runner.calls[0].params
		assert.Equal(t, int64(7), params["id"])
		assert.Equal(t, "Indian", params["cuisine"])
		assert.Equal(t, "", params["course"])
		assert.Equal(t, 4.5, params["rating"])
		assert.Equal(t, int64(20), params["prep_time_mins"])
		assert.Nil(t, params["cook_time_mins"])
		assert.Equal(t, []any{"Paneer", "Spinach"}, params["ingredients"])
		assert.Contains(t, runner.calls[0].cypher, "MERGE (r:Recipe {id: $id})")
	})

	t.Run("Unrated recipe stores no rating", func(t *testing.T) {
		runner := &fakeRunner{}
		require.NoError(t, NewLoader(runner, nil).UpsertRecipe(context.Background(), &model.Recipe{ID: 1, Title: "Toast"}))
		assert.Nil(t, runner.calls[0].params["rating"])
	})

	t.Run("Recipe without id is invalid", func(t *testing.T) {
		runner := &fakeRunner{}
		err := NewLoader(runner, nil).UpsertRecipe(context.Background(), &model.Recipe{Title: "Toast"})
		assert.ErrorIs(t, err, model.ErrInvalidInput)
		assert.Empty(t, runner.calls)
	})

	t.Run("Runner failure is retrieval unavailable", func(t *testing.T) {
		runner := &fakeRunner{err: errors.New("connection refused")}
		err := NewLoader(runner, nil).UpsertRecipe(context.Background(), &model.Recipe{ID: 1, Title: "Toast"})
		assert.ErrorIs(t, err, model.ErrRetrievalUnavailable)
	})
}

func TestLoaderCreateConstraints(t *testing.T) {
	runner := &fakeRunner{}
	require.NoError(t, NewLoader(runner, nil).CreateConstraints(context.Background()))
	assert.Len(t, runner.calls, len(constraints))

	failing := &fakeRunner{err: errors.New("down")}
	assert.ErrorIs(t, NewLoader(failing, nil).CreateConstraints(context.Background()), model.ErrRetrievalUnavailable)
}

func TestLoaderAgainstNeo4j(t *testing.T) {
	driver := initGraph(t)
	ctx := context.Background()
	_, err := neo4j.ExecuteQuery(ctx, driver, "MATCH (n) DETACH DELETE n", nil, neo4j.EagerResultTransformer)
	require.NoError(t, err)

	loader := NewLoader(NewDriverWriteRunner(driver, ""), nil)
	require.NoError(t, loader.CreateConstraints(ctx))

	prep := 20
	recipes := []*model.Recipe{
		{ID: 1, Title: "Palak Paneer", Cuisine: "Indian", Diet: "Vegetarian", Course: "Dinner", PrepMinutes: &prep, Rating: 4.5, Ingredients: []string{"Paneer", "Spinach"}},
		{ID: 2, Title: "Paneer Tikka", Cuisine: "Indian", Diet: "Vegetarian", Rating: 4.8, Ingredients: []string{"Paneer", "Yogurt"}},
	}
	for i := 0; i < 2; i++ {
		for _, recipe := range recipes {
			require.NoError(t, loader.UpsertRecipe(ctx, recipe), "Expected upsert to be repeatable")
		}
	}

	retriever := NewRetriever(NewDriverRunner(driver, ""), nil)

	t.Run("Loaded recipes are searchable", func(t *testing.T) {
		results, err := retriever.Search(ctx, &model.Intent{Cuisine: "Indian"}, 10)
		require.NoError(t, err)
		assert.Equal(t, []int64{2, 1}, graphIDs(results))
	})

	t.Run("Loaded ingredients link recipes once", func(t *testing.T) {
		results, err := retriever.FindSimilarByIngredients(ctx, 1, 10)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, int64(2), results[0].ID)
		assert.Equal(t, 1.0, results[0].Score)
	})

	t.Run("Missing course creates no course node", func(t *testing.T) {
		result, err := neo4j.ExecuteQuery(ctx, driver, "MATCH (co:Course) RETURN count(co) AS courses", nil, neo4j.EagerResultTransformer)
		require.NoError(t, err)
		courses, _ := result.Records[0].Get("courses")
		assert.Equal(t, int64(1), courses)
	})
}
