package retrieval

import (
	"sort"

	"github.com/siherrmann/recipegraph/model"
)

// Fuse merges store and graph results into one ranked, deduplicated list of at most limit results.
//
// Store results are scored from distance and rating and inserted first. Every graph hit on an id
// already merged multiplies its score by the corroboration boost, repeats included. A graph-only hit is scored from its rating
// if hydrated holds its record and dropped otherwise. Ties keep insertion order.
// The breakdown counts source tags over the returned results only.
func Fuse(storeResults []*model.StoreResult, graphResults []*model.GraphResult, hydrated map[int64]*model.Recipe, limit int, config model.FusionConfig) ([]*model.FusedResult, map[model.Source]int) {
	merged := make(map[int64]*model.FusedResult, len(storeResults)+len(graphResults))
	ordered := make([]*model.FusedResult, 0, len(storeResults)+len(graphResults))

	for _, result := range storeResults {
		if _, exists := merged[result.ID]; exists {
			continue
		}
		fused := &model.FusedResult{
			Recipe:     result.Recipe,
			FinalScore: config.StoreScore(result),
			Sources:    []model.Source{result.Source},
		}
		merged[result.ID] = fused
		ordered = append(ordered, fused)
	}

	for _, result := range graphResults {
		if existing, exists := merged[result.ID]; exists {
			existing.FinalScore *= config.CorroborationBoost
			if !existing.HasSource(model.SourceGraph) {
				existing.Sources = append(existing.Sources, model.SourceGraph)
			}
			continue
		}

		recipe, ok := hydrated[result.ID]
		if !ok || recipe == nil {
			continue
		}
		fused := &model.FusedResult{
			Recipe:     *recipe,
			FinalScore: config.RatingScore(result.Rating),
			Sources:    []model.Source{model.SourceGraph},
		}
		merged[result.ID] = fused
		ordered = append(ordered, fused)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].FinalScore > ordered[j].FinalScore
	})

	if limit >= 0 && len(ordered) > limit {
		ordered = ordered[:limit]
	}

	breakdown := model.NewSourceBreakdown()
	for _, result := range ordered {
		for _, source := range result.Sources {
			breakdown[source]++
		}
	}

	return ordered, breakdown
}
