package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultFusionConfig(t *testing.T) {
	t.Run("Returns correct default values", func(t *testing.T) {
		config := DefaultFusionConfig()

		assert.Equal(t, 0.6, config.VectorWeight, "Default VectorWeight should be 0.6")
		assert.Equal(t, 0.4, config.RatingWeight, "Default RatingWeight should be 0.4")
		assert.Equal(t, 0.5, config.NeutralScore, "Default NeutralScore should be 0.5")
		assert.Equal(t, 1.2, config.CorroborationBoost, "Default CorroborationBoost should be 1.2")
		assert.Equal(t, 2, config.CandidateFactor, "Default CandidateFactor should be 2")
	})

	t.Run("Default weights sum to 1.0", func(t *testing.T) {
		config := DefaultFusionConfig()

		assert.InDelta(t, 1.0, config.VectorWeight+config.RatingWeight, 0.001)
	})
}

func TestFusionConfigScores(t *testing.T) {
	config := DefaultFusionConfig()

	t.Run("Vector score from distance", func(t *testing.T) {
		distance := 0.2
		assert.InDelta(t, 1/1.2, config.VectorScore(&distance), 1e-9)
	})

	t.Run("Missing distance is neutral", func(t *testing.T) {
		assert.Equal(t, 0.5, config.VectorScore(nil))
	})

	t.Run("Zero distance scores one", func(t *testing.T) {
		distance := 0.0
		assert.Equal(t, 1.0, config.VectorScore(&distance))
	})

	t.Run("Rating is normalized to five", func(t *testing.T) {
		assert.InDelta(t, 0.8, config.RatingScore(4), 1e-9)
	})

	t.Run("Missing rating is neutral", func(t *testing.T) {
		assert.Equal(t, 0.5, config.RatingScore(0))
	})

	t.Run("Store score combines vector and rating", func(t *testing.T) {
		distance := 0.2
		result := &StoreResult{Recipe: Recipe{ID: 7, Rating: 4}, Distance: &distance, Source: SourceFilterSimilarity}

		assert.InDelta(t, 0.82, config.StoreScore(result), 1e-9)
	})

	t.Run("Store score without distance or rating", func(t *testing.T) {
		result := &StoreResult{Recipe: Recipe{ID: 1}, Source: SourceFilter}

		assert.InDelta(t, 0.5, config.StoreScore(result), 1e-9)
	})
}

func TestIntent(t *testing.T) {
	t.Run("Semantic text prefers the semantic query", func(t *testing.T) {
		intent := &Intent{Cuisine: "Indian", SemanticQuery: "spicy curry"}
		assert.Equal(t, "spicy curry", intent.SemanticText())
	})

	t.Run("Semantic text falls back to cuisine", func(t *testing.T) {
		intent := &Intent{Cuisine: "Indian"}
		assert.Equal(t, "Indian", intent.SemanticText())
	})

	t.Run("Semantic text is empty without either", func(t *testing.T) {
		intent := &Intent{Diet: "Vegan"}
		assert.Equal(t, "", intent.SemanticText())
	})

	t.Run("HasIngredients", func(t *testing.T) {
		assert.False(t, (&Intent{}).HasIngredients())
		assert.True(t, (&Intent{IngredientsInclude: []string{"paneer"}}).HasIngredients())
	})
}

func TestSourceBreakdown(t *testing.T) {
	t.Run("Starts with every tag at zero", func(t *testing.T) {
		breakdown := NewSourceBreakdown()

		assert.Len(t, breakdown, 4)
		for _, source := range Sources {
			assert.Equal(t, 0, breakdown[source])
		}
	})

	t.Run("HasSource", func(t *testing.T) {
		result := &FusedResult{Sources: []Source{SourceFilter, SourceGraph}}

		assert.True(t, result.HasSource(SourceGraph))
		assert.False(t, result.HasSource(SourceSimilarity))
	})
}
