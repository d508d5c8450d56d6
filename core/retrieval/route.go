package retrieval

import "github.com/siherrmann/recipegraph/model"

// StoreQuery names the single store search a route issues.
type StoreQuery string

const (
	StoreHybrid     StoreQuery = "hybrid"
	StoreSimilarity StoreQuery = "similarity"
	StoreFilters    StoreQuery = "filters"
)

// Route is the retrieval plan for one search.
type Route struct {
	Graph bool
	Store StoreQuery
}

// PlanRoute decides which retrievers a search invokes.
// Required ingredients always enable the graph and the store is always queried,
// whatever routing flags the intent carries.
func PlanRoute(intent *model.Intent) Route {
	route := Route{
		Graph: intent.UseGraph || intent.HasIngredients(),
		Store: StoreHybrid,
	}

	switch {
	case intent.UseFilters && intent.UseSimilarity:
		route.Store = StoreHybrid
	case intent.UseSimilarity && intent.SemanticQuery != "":
		route.Store = StoreSimilarity
	case intent.UseFilters:
		route.Store = StoreFilters
	}

	return route
}
