package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/recipegraph/helper"
	"github.com/siherrmann/recipegraph/model"
	loadSql "github.com/siherrmann/recipegraph/sql"
)

const recipeColumns = `id, title, description, url, cuisine, course, diet, prep_time_mins, cook_time_mins, rating, vote_count, ingredients`

// RecipesDBHandlerFunctions defines the interface for Recipes database operations.
type RecipesDBHandlerFunctions interface {
	InsertRecipe(ctx context.Context, recipe *model.Recipe, embedding []float32) error
	DeleteRecipe(ctx context.Context, id int64) error
	SelectRecipe(ctx context.Context, id int64) (*model.Recipe, error)
	SelectRecipesByFilter(ctx context.Context, intent *model.Intent, limit int) ([]*model.StoreResult, error)
	SelectRecipesBySimilarity(ctx context.Context, embedding []float32, limit int) ([]*model.StoreResult, error)
	SelectRecipesByHybrid(ctx context.Context, intent *model.Intent, embedding []float32, limit int) ([]*model.StoreResult, error)
	SelectControlledVocab(ctx context.Context, maxIngredients int) (*model.Vocabulary, error)
}

// RecipesDBHandler handles recipe-related database operations
type RecipesDBHandler struct {
	db *helper.Database
}

// NewRecipesDBHandler creates a new recipes database handler.
// It loads the recipe-related SQL functions and creates the table.
// If force is true, it will reload the SQL functions even if they already exist.
func NewRecipesDBHandler(db *helper.Database, embeddingDim int, force bool) (*RecipesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}
	if embeddingDim <= 0 {
		return nil, helper.NewError("embedding dimension validation", fmt.Errorf("embedding dimension must be positive, got %d", embeddingDim))
	}

	recipesDbHandler := &RecipesDBHandler{
		db: db,
	}

	err := loadSql.Init(recipesDbHandler.db.Instance)
	if err != nil {
		return nil, helper.NewError("init extensions", err)
	}

	err = loadSql.LoadRecipesSql(recipesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load recipes sql", err)
	}

	err = recipesDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized RecipesDBHandler")

	return recipesDbHandler, nil
}

// CreateTable creates the 'recipes' table with its indexes if it does not exist.
func (h *RecipesDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_recipes($1);`, embeddingDim)
	if err != nil {
		return helper.NewError("init recipes", err)
	}

	h.db.Logger.Info("Checked/created table recipes")

	return nil
}

// InsertRecipe inserts or replaces a recipe. A nil embedding stores NULL.
func (h *RecipesDBHandler) InsertRecipe(ctx context.Context, recipe *model.Recipe, embedding []float32) error {
	if recipe == nil {
		return helper.NewError("recipe validation", model.ErrInvalidInput)
	}

	var embeddingValue any
	if len(embedding) > 0 {
		embeddingValue = pgvector.NewVector(embedding)
	}

	var id int64
	err := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT insert_recipe($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		recipe.ID,
		recipe.Title,
		recipe.Description,
		recipe.URL,
		nullString(recipe.Cuisine),
		nullString(recipe.Course),
		nullString(recipe.Diet),
		nullInt(recipe.PrepMinutes),
		nullInt(recipe.CookMinutes),
		nullRating(recipe.Rating),
		recipe.VoteCount,
		pq.Array(recipe.Ingredients),
		embeddingValue,
	).Scan(&id)
	if err != nil {
		return helper.NewError("scan", err)
	}

	recipe.ID = id
	return nil
}

// DeleteRecipe deletes a recipe by ID
func (h *RecipesDBHandler) DeleteRecipe(ctx context.Context, id int64) error {
	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT delete_recipe($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// SelectRecipe retrieves a recipe by ID.
// A missing recipe returns an error wrapping model.ErrNotFound.
func (h *RecipesDBHandler) SelectRecipe(ctx context.Context, id int64) (*model.Recipe, error) {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_recipe($1)`,
		id,
	)

	recipe, _, err := scanRecipe(row, false)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, helper.NewError("select recipe", fmt.Errorf("recipe %d: %w", id, model.ErrNotFound))
	}
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return recipe, nil
}

// SelectRecipesByFilter returns recipes satisfying every constraint of the intent,
// best rated first. Distance is not set on the results.
func (h *RecipesDBHandler) SelectRecipesByFilter(ctx context.Context, intent *model.Intent, limit int) ([]*model.StoreResult, error) {
	if limit <= 0 {
		return nil, helper.NewError("limit validation", model.ErrInvalidInput)
	}

	b := &predicateBuilder{}
	b.applyIntent(intent)
	query := fmt.Sprintf(
		`SELECT %s, NULL::DOUBLE PRECISION AS distance FROM recipes WHERE %s ORDER BY COALESCE(rating, 0) DESC, id LIMIT %s`,
		recipeColumns, b.where(), b.param(limit),
	)

	return h.queryStoreResults(ctx, query, b.args, model.SourceFilter)
}

// SelectRecipesBySimilarity returns the recipes nearest to the embedding by cosine distance.
// Recipes without an embedding are never returned.
func (h *RecipesDBHandler) SelectRecipesBySimilarity(ctx context.Context, embedding []float32, limit int) ([]*model.StoreResult, error) {
	if limit <= 0 || len(embedding) == 0 {
		return nil, helper.NewError("similarity validation", model.ErrInvalidInput)
	}

	b := &predicateBuilder{}
	vector := b.param(pgvector.NewVector(embedding))
	b.addRaw("embedding IS NOT NULL")
	query := fmt.Sprintf(
		`SELECT %s, embedding <=> %s AS distance FROM recipes WHERE %s ORDER BY distance, id LIMIT %s`,
		recipeColumns, vector, b.where(), b.param(limit),
	)

	return h.queryStoreResults(ctx, query, b.args, model.SourceSimilarity)
}

// SelectRecipesByHybrid applies the intent constraints and, when an embedding is given,
// orders the matches by cosine distance. Without an embedding it orders by rating.
func (h *RecipesDBHandler) SelectRecipesByHybrid(ctx context.Context, intent *model.Intent, embedding []float32, limit int) ([]*model.StoreResult, error) {
	if limit <= 0 {
		return nil, helper.NewError("limit validation", model.ErrInvalidInput)
	}

	b := &predicateBuilder{}
	distance := "NULL::DOUBLE PRECISION"
	order := "COALESCE(rating, 0) DESC, id"
	if len(embedding) > 0 {
		distance = "embedding <=> " + b.param(pgvector.NewVector(embedding))
		order = "distance, id"
	}
	b.applyIntent(intent)
	query := fmt.Sprintf(
		`SELECT %s, %s AS distance FROM recipes WHERE %s ORDER BY %s LIMIT %s`,
		recipeColumns, distance, b.where(), order, b.param(limit),
	)

	return h.queryStoreResults(ctx, query, b.args, model.SourceFilterSimilarity)
}

// SelectControlledVocab returns the distinct cuisines, courses and diets
// and the maxIngredients most used ingredients.
func (h *RecipesDBHandler) SelectControlledVocab(ctx context.Context, maxIngredients int) (*model.Vocabulary, error) {
	if maxIngredients <= 0 {
		return nil, helper.NewError("max ingredients validation", model.ErrInvalidInput)
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_recipe_vocabulary($1)`,
		maxIngredients,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	vocabulary := &model.Vocabulary{}
	for rows.Next() {
		var kind, value string
		if err := rows.Scan(&kind, &value); err != nil {
			return nil, helper.NewError("scan", err)
		}
		switch kind {
		case "cuisine":
			vocabulary.Cuisines = append(vocabulary.Cuisines, value)
		case "course":
			vocabulary.Courses = append(vocabulary.Courses, value)
		case "diet":
			vocabulary.Diets = append(vocabulary.Diets, value)
		case "ingredient":
			vocabulary.Ingredients = append(vocabulary.Ingredients, value)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, helper.NewError("rows iteration", err)
	}

	sort.Strings(vocabulary.Cuisines)
	sort.Strings(vocabulary.Courses)
	sort.Strings(vocabulary.Diets)
	sort.Strings(vocabulary.Ingredients)

	h.db.Logger.Debug("Selected controlled vocabulary",
		slog.Int("cuisines", len(vocabulary.Cuisines)),
		slog.Int("ingredients", len(vocabulary.Ingredients)),
	)

	return vocabulary, nil
}

func (h *RecipesDBHandler) queryStoreResults(ctx context.Context, query string, args []any, source model.Source) ([]*model.StoreResult, error) {
	rows, err := h.db.Instance.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	results := []*model.StoreResult{}
	for rows.Next() {
		recipe, distance, err := scanRecipe(rows, true)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		results = append(results, &model.StoreResult{
			Recipe:   *recipe,
			Distance: distance,
			Source:   source,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, helper.NewError("rows iteration", err)
	}

	return results, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner, withDistance bool) (*model.Recipe, *float64, error) {
	recipe := &model.Recipe{}
	var cuisine, course, diet sql.NullString
	var prep, cook sql.NullInt64
	var rating, distance sql.NullFloat64

	dest := []any{
		&recipe.ID,
		&recipe.Title,
		&recipe.Description,
		&recipe.URL,
		&cuisine,
		&course,
		&diet,
		&prep,
		&cook,
		&rating,
		&recipe.VoteCount,
		pq.Array(&recipe.Ingredients),
	}
	if withDistance {
		dest = append(dest, &distance)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, nil, err
	}

	recipe.Cuisine = cuisine.String
	recipe.Course = course.String
	recipe.Diet = diet.String
	recipe.PrepMinutes = intPointer(prep)
	recipe.CookMinutes = intPointer(cook)
	recipe.Rating = rating.Float64
	if recipe.Ingredients == nil {
		recipe.Ingredients = []string{}
	}

	if distance.Valid {
		d := distance.Float64
		return recipe, &d, nil
	}
	return recipe, nil, nil
}

func intPointer(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	v := int(value.Int64)
	return &v
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func nullInt(value *int) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*value), Valid: true}
}

func nullRating(value float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: value, Valid: value != 0}
}
