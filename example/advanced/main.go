package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	"github.com/siherrmann/recipegraph"
	"github.com/siherrmann/recipegraph/config"
	"github.com/siherrmann/recipegraph/helper"
	"github.com/siherrmann/recipegraph/model"
	"github.com/siherrmann/recipegraph/server"
)

var sampleRecipes = []*model.Recipe{
	{ID: 1, Title: "Palak Paneer", Cuisine: "Indian", Course: "Lunch", Diet: "Vegetarian", Rating: 4.6, Ingredients: []string{"Paneer", "Spinach", "Garam Masala"}},
	{ID: 2, Title: "Paneer Tikka", Cuisine: "Indian", Course: "Appetizer", Diet: "Vegetarian", Rating: 4.8, Ingredients: []string{"Paneer", "Yogurt", "Garam Masala"}},
	{ID: 3, Title: "Aloo Gobi", Cuisine: "Indian", Course: "Dinner", Diet: "Vegan", Rating: 4.2, Ingredients: []string{"Potato", "Cauliflower", "Garam Masala"}},
	{ID: 4, Title: "Mapo Tofu", Cuisine: "Chinese", Course: "Dinner", Diet: "Vegetarian", Rating: 4.4, Ingredients: []string{"Tofu", "Chili Bean Paste"}},
}

func main() {
	if os.Getenv("OPENAI_API_KEY") == "" {
		log.Fatal("This example streams a natural language search and needs OPENAI_API_KEY")
	}
	ctx := context.Background()

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

	os.Setenv("RECIPES_DB_PORT", dbPort)
	os.Setenv("RECIPES_GRAPH_URI", graphURI)
	os.Setenv("RECIPES_VOCAB_PATH", filepath.Join(os.TempDir(), "recipegraph_advanced_vocab.json"))

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	r, err := recipegraph.NewRecipeGraph(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create recipe graph: %v", err)
	}
	defer r.Close(ctx)

	for _, recipe := range sampleRecipes {
		if err := r.AddRecipe(ctx, recipe); err != nil {
			log.Fatalf("Failed to add recipe %d: %v", recipe.ID, err)
		}
	}

	api := httptest.NewServer(server.NewServer(r, cfg.Server, r.Logger()).Routes())
	defer api.Close()

	// Stream the search phases as they happen
	body := strings.NewReader(`{"query": "vegetarian indian dishes with paneer", "limit": 3}`)
	response, err := http.Post(api.URL+"/api/search/stream", "application/json", body)
	if err != nil {
		log.Fatalf("Stream request failed: %v", err)
	}
	defer response.Body.Close()

	scanner := bufio.NewScanner(response.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	event := ""
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			fmt.Printf("[%s] %s\n", event, strings.TrimPrefix(line, "data: "))
		}
	}

	// Plain JSON endpoints
	for _, path := range []string{"/api/recipes/1", "/api/recipes/1/similar?limit=2"} {
		response, err := http.Get(api.URL + path)
		if err != nil {
			log.Fatalf("GET %s failed: %v", path, err)
		}
		data, _ := io.ReadAll(response.Body)
		response.Body.Close()
		fmt.Printf("\nGET %s -> %d\n%s", path, response.StatusCode, data)
	}
}
