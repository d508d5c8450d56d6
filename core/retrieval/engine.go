package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/siherrmann/recipegraph/helper"
	"github.com/siherrmann/recipegraph/model"
	"golang.org/x/sync/errgroup"
)

// StoreSearcher is the relational+vector retrieval path. RecipeRetriever implements it.
type StoreSearcher interface {
	SearchFilters(ctx context.Context, intent *model.Intent, limit int) ([]*model.StoreResult, error)
	SearchSimilarity(ctx context.Context, text string, limit int) ([]*model.StoreResult, error)
	SearchHybrid(ctx context.Context, intent *model.Intent, limit int) ([]*model.StoreResult, error)
	GetByID(ctx context.Context, id int64) (*model.Recipe, error)
}

// GraphSearcher is the graph retrieval path. graph.Retriever implements it.
type GraphSearcher interface {
	Search(ctx context.Context, intent *model.Intent, limit int) ([]*model.GraphResult, error)
	FindSimilarByIngredients(ctx context.Context, recipeID int64, limit int) ([]*model.GraphResult, error)
}

// Engine routes a search to the graph and the store, then fuses their results.
// It holds no per-search state and is safe for concurrent use.
type Engine struct {
	store  StoreSearcher
	graph  GraphSearcher
	config model.FusionConfig
	logger *slog.Logger
}

// NewEngine creates a fusion engine.
func NewEngine(store StoreSearcher, graph GraphSearcher, config model.FusionConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:  store,
		graph:  graph,
		config: config,
		logger: logger,
	}
}

// Search runs both retrieval paths concurrently and returns at most limit fused results.
//
// A failing path degrades to no results. The search fails with model.ErrRetrievalUnavailable
// when the store path failed and no graph hit could be loaded from the store.
func (e *Engine) Search(ctx context.Context, query string, intent *model.Intent, limit int) (*model.SearchOutcome, error) {
	if limit <= 0 {
		return nil, helper.NewError("search", fmt.Errorf("limit %d: %w", limit, model.ErrInvalidInput))
	}
	if intent == nil {
		return nil, helper.NewError("search", fmt.Errorf("intent is nil: %w", model.ErrInvalidInput))
	}

	route := PlanRoute(intent)
	candidates := limit * e.config.CandidateFactor
	if candidates < limit {
		candidates = limit
	}

	var storeResults []*model.StoreResult
	var graphResults []*model.GraphResult
	var storeErr, graphErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		storeResults, storeErr = e.searchStore(gctx, route.Store, intent, candidates)
		return nil
	})
	if route.Graph && e.graph != nil {
		g.Go(func() error {
			graphResults, graphErr = e.graph.Search(gctx, intent, candidates)
			return nil
		})
	}
	_ = g.Wait()

	if graphErr != nil {
		e.logger.Warn("Graph path failed, continuing without graph results", slog.String("error", graphErr.Error()))
		graphResults = nil
	}

	if storeErr != nil {
		if errors.Is(storeErr, model.ErrInvalidInput) {
			return nil, helper.NewError("search", storeErr)
		}
		if len(graphResults) == 0 {
			var failures error
			failures = multierror.Append(failures, storeErr)
			if graphErr != nil {
				failures = multierror.Append(failures, graphErr)
			}
			return nil, helper.NewError("search", fmt.Errorf("%w: %w", model.ErrRetrievalUnavailable, failures))
		}
		e.logger.Warn("Store path failed, continuing with graph results", slog.String("store_query", string(route.Store)), slog.String("error", storeErr.Error()))
		storeResults = nil
	}

	hydrated, lookupErr := e.hydrate(ctx, graphResults, storeResults)
	results, breakdown := Fuse(storeResults, graphResults, hydrated, limit, e.config)

	// Graph hits that could not be loaded leave nothing to return.
	if storeErr != nil && len(results) == 0 {
		var failures error
		failures = multierror.Append(failures, storeErr)
		if lookupErr != nil {
			failures = multierror.Append(failures, lookupErr)
		}
		return nil, helper.NewError("search", fmt.Errorf("%w: %w", model.ErrRetrievalUnavailable, failures))
	}

	e.logger.Debug("Search fused",
		slog.String("store_query", string(route.Store)),
		slog.Bool("graph", route.Graph),
		slog.Int("store_results", len(storeResults)),
		slog.Int("graph_results", len(graphResults)),
		slog.Int("results", len(results)),
	)

	return &model.SearchOutcome{
		ID:              uuid.New(),
		Query:           query,
		Intent:          intent,
		Results:         results,
		SourceBreakdown: breakdown,
		Explanation:     Explain(intent),
	}, nil
}

// Similar returns recipes sharing ingredients with the given recipe, most shared first.
// The final score of each result is its shared ingredient count.
func (e *Engine) Similar(ctx context.Context, id int64, limit int) ([]*model.FusedResult, error) {
	if limit <= 0 {
		return nil, helper.NewError("similar", fmt.Errorf("limit %d: %w", limit, model.ErrInvalidInput))
	}
	// An unknown id is NotFound, not an empty list.
	if _, err := e.store.GetByID(ctx, id); err != nil {
		return nil, helper.NewError("similar", err)
	}
	if e.graph == nil {
		return nil, helper.NewError("similar", fmt.Errorf("%w: no graph configured", model.ErrRetrievalUnavailable))
	}

	graphResults, err := e.graph.FindSimilarByIngredients(ctx, id, limit)
	if err != nil {
		return nil, helper.NewError("similar", err)
	}

	hydrated, lookupErr := e.hydrate(ctx, graphResults, nil)
	if lookupErr != nil && len(hydrated) == 0 && len(graphResults) > 0 {
		return nil, helper.NewError("similar", fmt.Errorf("%w: %w", model.ErrRetrievalUnavailable, lookupErr))
	}
	results := make([]*model.FusedResult, 0, len(graphResults))
	for _, result := range graphResults {
		recipe, ok := hydrated[result.ID]
		if !ok {
			continue
		}
		results = append(results, &model.FusedResult{
			Recipe:     *recipe,
			FinalScore: result.Score,
			Sources:    []model.Source{model.SourceGraph},
		})
	}

	return results, nil
}

func (e *Engine) searchStore(ctx context.Context, query StoreQuery, intent *model.Intent, limit int) ([]*model.StoreResult, error) {
	switch query {
	case StoreSimilarity:
		return e.store.SearchSimilarity(ctx, intent.SemanticQuery, limit)
	case StoreFilters:
		return e.store.SearchFilters(ctx, intent, limit)
	default:
		return e.store.SearchHybrid(ctx, intent, limit)
	}
}

// hydrate loads the full records of graph hits the store did not return.
// Missing records are dropped; lookups stop when ctx is done.
// Failed lookups are dropped too and returned combined as the error.
func (e *Engine) hydrate(ctx context.Context, graphResults []*model.GraphResult, storeResults []*model.StoreResult) (map[int64]*model.Recipe, error) {
	known := make(map[int64]bool, len(storeResults))
	for _, result := range storeResults {
		known[result.ID] = true
	}

	hydrated := make(map[int64]*model.Recipe)
	var failures error
	for _, result := range graphResults {
		if known[result.ID] {
			continue
		}
		known[result.ID] = true

		if ctx.Err() != nil {
			e.logger.Warn("Stopping graph hydration", slog.String("error", ctx.Err().Error()))
			failures = multierror.Append(failures, ctx.Err())
			break
		}

		recipe, err := e.store.GetByID(ctx, result.ID)
		if errors.Is(err, model.ErrNotFound) {
			e.logger.Debug("Dropping graph hit without stored recipe", slog.Int64("id", result.ID))
			continue
		}
		if err != nil {
			e.logger.Warn("Dropping graph hit, recipe lookup failed", slog.Int64("id", result.ID), slog.String("error", err.Error()))
			failures = multierror.Append(failures, fmt.Errorf("recipe %d: %w", result.ID, err))
			continue
		}
		hydrated[result.ID] = recipe
	}

	return hydrated, failures
}
