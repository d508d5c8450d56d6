package retrieval

import (
	"testing"

	"github.com/siherrmann/recipegraph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuse(t *testing.T) {
	config := model.DefaultFusionConfig()

	t.Run("Store only result scores from distance and rating", func(t *testing.T) {
		results, breakdown := Fuse([]*model.StoreResult{storeResult(7, floatPtr(0.2), 4.0)}, nil, nil, 10, config)
		require.Len(t, results, 1)

		assert.InDelta(t, 0.82, results[0].FinalScore, 1e-9)
		assert.Equal(t, []model.Source{model.SourceFilterSimilarity}, results[0].Sources)
		assert.Equal(t, 1, breakdown[model.SourceFilterSimilarity])
		assert.Equal(t, 0, breakdown[model.SourceGraph])
	})

	t.Run("Graph corroboration multiplies the score", func(t *testing.T) {
		results, breakdown := Fuse(
			[]*model.StoreResult{storeResult(7, floatPtr(0.2), 4.0)},
			[]*model.GraphResult{{ID: 7, Rating: 4.0, Score: 1}},
			nil, 10, config,
		)
		require.Len(t, results, 1)

		assert.InDelta(t, 0.984, results[0].FinalScore, 1e-9)
		assert.Equal(t, []model.Source{model.SourceFilterSimilarity, model.SourceGraph}, results[0].Sources)
		assert.Equal(t, 1, breakdown[model.SourceGraph])
		assert.Equal(t, 1, breakdown[model.SourceFilterSimilarity])
	})

	t.Run("Boosted score may exceed one", func(t *testing.T) {
		results, _ := Fuse(
			[]*model.StoreResult{storeResult(1, floatPtr(0), 5.0)},
			[]*model.GraphResult{{ID: 1, Rating: 5.0}},
			nil, 10, config,
		)
		require.Len(t, results, 1)

		assert.InDelta(t, 1.2, results[0].FinalScore, 1e-9, "Multiplicative boost is not capped")
	})

	t.Run("Repeated graph hit boosts again without a second tag", func(t *testing.T) {
		results, _ := Fuse(
			[]*model.StoreResult{storeResult(7, floatPtr(0.2), 4.0)},
			[]*model.GraphResult{{ID: 7}, {ID: 7}},
			nil, 10, config,
		)
		require.Len(t, results, 1)

		assert.InDelta(t, 0.984*1.2, results[0].FinalScore, 1e-9)
		assert.Equal(t, []model.Source{model.SourceFilterSimilarity, model.SourceGraph}, results[0].Sources)
	})

	t.Run("Repeated graph only hit is boosted", func(t *testing.T) {
		hydrated := map[int64]*model.Recipe{9: {ID: 9, Rating: 4.5}}
		results, _ := Fuse(nil, []*model.GraphResult{{ID: 9, Rating: 4.5}, {ID: 9, Rating: 4.5}}, hydrated, 10, config)
		require.Len(t, results, 1)

		assert.InDelta(t, 0.9*1.2, results[0].FinalScore, 1e-9)
		assert.Equal(t, []model.Source{model.SourceGraph}, results[0].Sources)
	})

	t.Run("Graph only hit uses hydrated record and rating score", func(t *testing.T) {
		hydrated := map[int64]*model.Recipe{9: {ID: 9, Title: "Dal", Rating: 4.5}}
		results, breakdown := Fuse(nil, []*model.GraphResult{{ID: 9, Rating: 4.5}}, hydrated, 10, config)
		require.Len(t, results, 1)

		assert.Equal(t, "Dal", results[0].Title)
		assert.InDelta(t, 0.9, results[0].FinalScore, 1e-9)
		assert.Equal(t, []model.Source{model.SourceGraph}, results[0].Sources)
		assert.Equal(t, 1, breakdown[model.SourceGraph])
	})

	t.Run("Unhydrated graph hit is dropped", func(t *testing.T) {
		results, breakdown := Fuse(nil, []*model.GraphResult{{ID: 9, Rating: 4.5}}, map[int64]*model.Recipe{}, 10, config)

		assert.Empty(t, results)
		assert.Equal(t, 0, breakdown[model.SourceGraph])
	})

	t.Run("Unrated graph only hit is neutral", func(t *testing.T) {
		hydrated := map[int64]*model.Recipe{3: {ID: 3}}
		results, _ := Fuse(nil, []*model.GraphResult{{ID: 3}}, hydrated, 10, config)
		require.Len(t, results, 1)

		assert.Equal(t, 0.5, results[0].FinalScore)
	})

	t.Run("Sorted by score with stable ties", func(t *testing.T) {
		hydrated := map[int64]*model.Recipe{20: {ID: 20}}
		results, _ := Fuse(
			[]*model.StoreResult{
				storeResult(1, nil, 0),
				storeResult(2, floatPtr(0), 5.0),
				storeResult(3, nil, 0),
			},
			[]*model.GraphResult{{ID: 20}},
			hydrated, 10, config,
		)

		ids := []int64{}
		for _, r := range results {
			ids = append(ids, r.ID)
		}
		assert.Equal(t, []int64{2, 1, 3, 20}, ids)
	})

	t.Run("Duplicate store ids keep the first", func(t *testing.T) {
		first := storeResult(4, floatPtr(0), 5.0)
		second := storeResult(4, nil, 0)
		second.Source = model.SourceFilter
		results, _ := Fuse([]*model.StoreResult{first, second}, nil, nil, 10, config)
		require.Len(t, results, 1)

		assert.Equal(t, []model.Source{model.SourceFilterSimilarity}, results[0].Sources)
	})

	t.Run("Cut to limit and count only kept results", func(t *testing.T) {
		storeResults := []*model.StoreResult{}
		for i := int64(1); i <= 6; i++ {
			storeResults = append(storeResults, storeResult(i, floatPtr(float64(i)), 0))
		}
		results, breakdown := Fuse(storeResults, []*model.GraphResult{{ID: 1}, {ID: 6}}, nil, 3, config)

		assert.Len(t, results, 3)
		total := 0
		for _, n := range breakdown {
			total += n
		}
		assert.Equal(t, 4, total, "Result 1 carries two tags")
		assert.Equal(t, 1, breakdown[model.SourceGraph], "Graph tag of the cut result 6 is not counted")
	})

	t.Run("No duplicate ids across paths", func(t *testing.T) {
		hydrated := map[int64]*model.Recipe{2: {ID: 2}, 3: {ID: 3}}
		results, _ := Fuse(
			[]*model.StoreResult{storeResult(1, nil, 3), storeResult(2, nil, 3)},
			[]*model.GraphResult{{ID: 2}, {ID: 3}, {ID: 3}, {ID: 1}},
			hydrated, 10, config,
		)

		seen := map[int64]bool{}
		for _, r := range results {
			assert.False(t, seen[r.ID], "Duplicate id %d", r.ID)
			seen[r.ID] = true
		}
		assert.Len(t, results, 3)
	})

	t.Run("Deterministic across runs", func(t *testing.T) {
		run := func() []*model.FusedResult {
			hydrated := map[int64]*model.Recipe{10: {ID: 10}, 11: {ID: 11}}
			results, _ := Fuse(
				[]*model.StoreResult{storeResult(1, floatPtr(0.3), 4), storeResult(2, floatPtr(0.3), 4)},
				[]*model.GraphResult{{ID: 11}, {ID: 10}, {ID: 2}},
				hydrated, 10, config,
			)
			return results
		}

		first := run()
		for i := 0; i < 20; i++ {
			again := run()
			require.Len(t, again, len(first))
			for j := range first {
				assert.Equal(t, first[j].ID, again[j].ID)
				assert.Equal(t, first[j].FinalScore, again[j].FinalScore)
			}
		}
	})
}
