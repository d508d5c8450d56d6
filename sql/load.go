package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed recipes.sql
var recipesSQL string

// Function lists for verification
var RecipesFunctions = []string{
	"init_recipes",
	"insert_recipe",
	"select_recipe",
	"delete_recipe",
	"select_recipe_vocabulary",
}

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadRecipesSql loads recipe-related SQL functions
func LoadRecipesSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, RecipesFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing recipes functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(recipesSQL)
	if err != nil {
		return fmt.Errorf("error executing recipes SQL: %w", err)
	}

	exist, err := checkFunctions(db, RecipesFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL recipes functions loaded successfully")
	return nil
}

// LoadAllSql loads all SQL functions
func LoadAllSql(db *sql.DB, force bool) error {
	return LoadRecipesSql(db, force)
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
