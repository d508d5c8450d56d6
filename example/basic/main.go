package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/siherrmann/recipegraph"
	"github.com/siherrmann/recipegraph/config"
	"github.com/siherrmann/recipegraph/helper"
	"github.com/siherrmann/recipegraph/model"
)

func intPtr(v int) *int {
	return &v
}

var sampleRecipes = []*model.Recipe{
	{
		ID: 1, Title: "Palak Paneer", Description: "Cottage cheese cubes in a smooth spinach gravy.",
		URL: "https://www.archanaskitchen.com/palak-paneer-recipe", Cuisine: "Indian", Course: "Lunch", Diet: "Vegetarian",
		PrepMinutes: intPtr(15), CookMinutes: intPtr(25), Rating: 4.6, VoteCount: 210,
		Ingredients: []string{"Paneer", "Spinach", "Onion", "Garam Masala"},
	},
	{
		ID: 2, Title: "Paneer Butter Masala", Description: "Rich and creamy tomato gravy with paneer.",
		URL: "https://www.archanaskitchen.com/paneer-butter-masala-recipe", Cuisine: "North Indian Recipes", Course: "Dinner", Diet: "Vegetarian",
		PrepMinutes: intPtr(20), CookMinutes: intPtr(30), Rating: 4.8, VoteCount: 540,
		Ingredients: []string{"Paneer", "Tomato", "Butter", "Cream", "Garam Masala"},
	},
	{
		ID: 3, Title: "Chana Masala", Description: "Spicy chickpea curry.",
		URL: "https://www.archanaskitchen.com/chana-masala-recipe", Cuisine: "Indian", Course: "Dinner", Diet: "Vegan",
		PrepMinutes: intPtr(10), CookMinutes: intPtr(40), Rating: 4.3, VoteCount: 95,
		Ingredients: []string{"Chickpeas", "Onion", "Tomato", "Garam Masala"},
	},
	{
		ID: 4, Title: "Tofu Stir Fry", Description: "Quick weeknight stir fry with vegetables.",
		URL: "https://www.archanaskitchen.com/tofu-stir-fry-recipe", Cuisine: "Chinese", Course: "Lunch", Diet: "Vegan",
		PrepMinutes: intPtr(10), CookMinutes: intPtr(10), Rating: 4.1, VoteCount: 40,
		Ingredients: []string{"Tofu", "Soy Sauce", "Bell Pepper"},
	},
}

func main() {
	ctx := context.Background()

	// Start test containers for both stores
	teardownDB, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardownDB(ctx)

	teardownGraph, graphURI, err := helper.MustStartNeo4jContainer()
	if err != nil {
		log.Fatalf("Failed to start Neo4j container: %v", err)
	}
	defer teardownGraph(ctx)

	// The container credentials match the configuration defaults
	os.Setenv("RECIPES_DB_PORT", dbPort)
	os.Setenv("RECIPES_GRAPH_URI", graphURI)
	os.Setenv("RECIPES_EMBEDDER", "local")
	os.Setenv("RECIPES_VOCAB_PATH", filepath.Join(os.TempDir(), "recipegraph_example_vocab.json"))

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	r, err := recipegraph.NewRecipeGraph(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create recipe graph: %v", err)
	}
	defer r.Close(ctx)

	fmt.Println("Adding recipes...")
	for _, recipe := range sampleRecipes {
		if err := r.AddRecipe(ctx, recipe); err != nil {
			log.Fatalf("Failed to add recipe %d: %v", recipe.ID, err)
		}
	}

	// A hand-written intent, as the extractor would produce for
	// "creamy vegetarian dinner with paneer"
	intent := &model.Intent{
		Diet:               "Vegetarian",
		IngredientsInclude: []string{"Paneer"},
		SemanticQuery:      "creamy rich curry",
		UseGraph:           true,
		UseFilters:         true,
		UseSimilarity:      true,
	}

	outcome, err := r.SearchWithIntent(ctx, "creamy vegetarian dinner with paneer", intent, 5)
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}
	printOutcome(outcome)

	fmt.Println("\nRecipes similar to Palak Paneer:")
	similar, err := r.SimilarRecipes(ctx, 1, 3)
	if err != nil {
		log.Fatalf("Similar recipes failed: %v", err)
	}
	for _, result := range similar {
		fmt.Printf("  %s (%.0f shared ingredients)\n", result.Title, result.FinalScore)
	}

	// Natural language search needs an OpenAI key for the intent extractor
	if os.Getenv("OPENAI_API_KEY") != "" {
		outcome, err := r.Search(ctx, "quick vegan lunch", 5)
		if err != nil {
			log.Fatalf("Search failed: %v", err)
		}
		fmt.Println()
		printOutcome(outcome)
	}
}

func printOutcome(outcome *model.SearchOutcome) {
	fmt.Printf("Query: %s\n", outcome.Query)
	for _, line := range outcome.Explanation {
		fmt.Printf("  %s\n", line)
	}
	for i, result := range outcome.Results {
		fmt.Printf("%d. %s (score %.3f, sources %v)\n", i+1, result.Title, result.FinalScore, result.Sources)
	}
	fmt.Printf("Source breakdown: %v\n", outcome.SourceBreakdown)
}
