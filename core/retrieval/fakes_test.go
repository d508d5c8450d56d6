package retrieval

import (
	"context"
	"fmt"
	"sync"

	"github.com/siherrmann/recipegraph/model"
)

type fakeStore struct {
	mu         sync.Mutex
	recipes    map[int64]*model.Recipe
	filter     []*model.StoreResult
	similarity []*model.StoreResult
	hybrid     []*model.StoreResult
	err        error
	calls      []string
	embeddings [][]float32
	limits     []int
}

func (f *fakeStore) record(call string, limit int, embedding []float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	f.limits = append(f.limits, limit)
	f.embeddings = append(f.embeddings, embedding)
}

func (f *fakeStore) SelectRecipe(ctx context.Context, id int64) (*model.Recipe, error) {
	f.record("select", 0, nil)
	if f.err != nil {
		return nil, f.err
	}
	recipe, ok := f.recipes[id]
	if !ok {
		return nil, fmt.Errorf("recipe %d: %w", id, model.ErrNotFound)
	}
	return recipe, nil
}

func (f *fakeStore) SelectRecipesByFilter(ctx context.Context, intent *model.Intent, limit int) ([]*model.StoreResult, error) {
	f.record("filter", limit, nil)
	return f.filter, f.err
}

func (f *fakeStore) SelectRecipesBySimilarity(ctx context.Context, embedding []float32, limit int) ([]*model.StoreResult, error) {
	f.record("similarity", limit, embedding)
	return f.similarity, f.err
}

func (f *fakeStore) SelectRecipesByHybrid(ctx context.Context, intent *model.Intent, embedding []float32, limit int) ([]*model.StoreResult, error) {
	f.record("hybrid", limit, embedding)
	return f.hybrid, f.err
}

// fakeSearcher stands in for the store path of the engine.
type fakeSearcher struct {
	mu      sync.Mutex
	results []*model.StoreResult
	err     error
	recipes map[int64]*model.Recipe
	lookups map[int64]error
	calls   []string
	limits  []int
}

func (f *fakeSearcher) record(call string, limit int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	f.limits = append(f.limits, limit)
}

func (f *fakeSearcher) SearchFilters(ctx context.Context, intent *model.Intent, limit int) ([]*model.StoreResult, error) {
	f.record("filters", limit)
	return f.copyResults(model.SourceFilter), f.err
}

func (f *fakeSearcher) SearchSimilarity(ctx context.Context, text string, limit int) ([]*model.StoreResult, error) {
	f.record("similarity", limit)
	return f.copyResults(model.SourceSimilarity), f.err
}

func (f *fakeSearcher) SearchHybrid(ctx context.Context, intent *model.Intent, limit int) ([]*model.StoreResult, error) {
	f.record("hybrid", limit)
	return f.copyResults(model.SourceFilterSimilarity), f.err
}

func (f *fakeSearcher) GetByID(ctx context.Context, id int64) (*model.Recipe, error) {
	f.record("get", 0)
	if err, ok := f.lookups[id]; ok {
		return nil, err
	}
	recipe, ok := f.recipes[id]
	if !ok {
		return nil, fmt.Errorf("recipe %d: %w", id, model.ErrNotFound)
	}
	return recipe, nil
}

func (f *fakeSearcher) copyResults(source model.Source) []*model.StoreResult {
	if f.err != nil {
		return nil
	}
	out := make([]*model.StoreResult, 0, len(f.results))
	for _, r := range f.results {
		c := *r
		c.Source = source
		out = append(out, &c)
	}
	return out
}

func (f *fakeSearcher) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

type fakeGraph struct {
	mu      sync.Mutex
	results []*model.GraphResult
	similar []*model.GraphResult
	err     error
	calls   int
	limits  []int
}

func (f *fakeGraph) Search(ctx context.Context, intent *model.Intent, limit int) ([]*model.GraphResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.limits = append(f.limits, limit)
	return f.results, f.err
}

func (f *fakeGraph) FindSimilarByIngredients(ctx context.Context, recipeID int64, limit int) ([]*model.GraphResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.limits = append(f.limits, limit)
	return f.similar, f.err
}

func floatPtr(v float64) *float64 {
	return &v
}

func storeResult(id int64, distance *float64, rating float64) *model.StoreResult {
	return &model.StoreResult{
		Recipe:   model.Recipe{ID: id, Title: fmt.Sprintf("Recipe %d", id), Rating: rating},
		Distance: distance,
		Source:   model.SourceFilterSimilarity,
	}
}
