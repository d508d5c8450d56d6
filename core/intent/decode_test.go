package intent

import (
	"testing"

	"github.com/siherrmann/recipegraph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Run("Decodes a complete answer", func(t *testing.T) {
		intent, err := Decode(`{
			"cuisine": "Indian",
			"diet": "Vegetarian",
			"course": null,
			"max_prep_time_mins": 30,
			"max_cook_time_mins": null,
			"ingredients_include": ["paneer", " "],
			"ingredients_exclude": [],
			"semantic_query": "spicy curry",
			"use_graph": true,
			"use_filters": true,
			"use_similarity": true,
			"reasoning": "Indian vegetarian with paneer."
		}`)
		require.NoError(t, err)

		assert.Equal(t, &model.Intent{
			Cuisine:            "Indian",
			Diet:               "Vegetarian",
			MaxPrepMinutes:     30,
			IngredientsInclude: []string{"paneer"},
			SemanticQuery:      "spicy curry",
			UseGraph:           true,
			UseFilters:         true,
			UseSimilarity:      true,
			Reasoning:          "Indian vegetarian with paneer.",
		}, intent)
	})

	t.Run("Ignores code fences", func(t *testing.T) {
		intent, err := Decode("```json\n{\"cuisine\": \"Italian\"}\n```")
		require.NoError(t, err)

		assert.Equal(t, "Italian", intent.Cuisine)
	})

	t.Run("Repairs malformed JSON", func(t *testing.T) {
		intent, err := Decode(`{"cuisine": "Mexican", "use_filters": true,}`)
		require.NoError(t, err)

		assert.Equal(t, "Mexican", intent.Cuisine)
		assert.True(t, intent.UseFilters)
	})

	t.Run("Repairs a truncated answer", func(t *testing.T) {
		intent, err := Decode(`{"cuisine": "Thai", "semantic_query": "green curry"`)
		require.NoError(t, err)

		assert.Equal(t, "green curry", intent.SemanticQuery)
	})

	t.Run("Accepts older routing keys", func(t *testing.T) {
		intent, err := Decode(`{"use_kg": true, "use_sql": false, "use_vector": true}`)
		require.NoError(t, err)

		assert.True(t, intent.UseGraph)
		assert.False(t, intent.UseFilters)
		assert.True(t, intent.UseSimilarity)
	})

	t.Run("Fractional minutes are truncated", func(t *testing.T) {
		intent, err := Decode(`{"max_cook_time_mins": 20.5, "max_prep_time_mins": -3}`)
		require.NoError(t, err)

		assert.Equal(t, 20, intent.MaxCookMinutes)
		assert.Equal(t, 0, intent.MaxPrepMinutes)
	})

	t.Run("Empty answer", func(t *testing.T) {
		_, err := Decode("  ")
		assert.Error(t, err)
	})
}
