package vocab

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/siherrmann/recipegraph/helper"
	"github.com/siherrmann/recipegraph/model"
)

// DefaultIngredientCount is the number of most used ingredients kept in the vocabulary.
const DefaultIngredientCount = 150

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Source provides the controlled vocabulary. database.RecipesDBHandler implements it.
type Source interface {
	SelectControlledVocab(ctx context.Context, maxIngredients int) (*model.Vocabulary, error)
}

// Load reads a cached vocabulary. A missing or unreadable cache returns an error wrapping fs.ErrNotExist.
func Load(path string) (*model.Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, helper.NewError("read vocabulary", err)
	}

	vocabulary := &model.Vocabulary{}
	if err := json.Unmarshal(data, vocabulary); err != nil {
		return nil, helper.NewError("decode vocabulary", fmt.Errorf("%w: %v", fs.ErrNotExist, err))
	}
	return vocabulary, nil
}

// Save writes the vocabulary cache, creating parent directories.
func Save(path string, vocabulary *model.Vocabulary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return helper.NewError("create vocabulary directory", err)
	}

	data, err := json.MarshalIndent(vocabulary, "", "  ")
	if err != nil {
		return helper.NewError("encode vocabulary", err)
	}

	if err := os.WriteFile(path, data, 0640); err != nil {
		return helper.NewError("write vocabulary", err)
	}
	return nil
}

// Ensure returns the cached vocabulary, loading it from source and caching it
// when the cache is missing or has no cuisines.
func Ensure(ctx context.Context, path string, source Source, logger *slog.Logger) (*model.Vocabulary, error) {
	if logger == nil {
		logger = slog.Default()
	}

	vocabulary, err := Load(path)
	if err == nil && len(vocabulary.Cuisines) > 0 {
		return vocabulary, nil
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Ignoring vocabulary cache", slog.String("path", path), slog.String("error", err.Error()))
	}

	vocabulary, err = source.SelectControlledVocab(ctx, DefaultIngredientCount)
	if err != nil {
		return nil, helper.NewError("select vocabulary", err)
	}

	if err := Save(path, vocabulary); err != nil {
		logger.Warn("Could not cache vocabulary", slog.String("path", path), slog.String("error", err.Error()))
	} else {
		logger.Info("Cached controlled vocabulary", slog.String("path", path), slog.Int("cuisines", len(vocabulary.Cuisines)), slog.Int("ingredients", len(vocabulary.Ingredients)))
	}

	return vocabulary, nil
}

// PromptSnippet lists the controlled values for an extraction prompt.
// Long lists are cut and end with the number of omitted values.
func PromptSnippet(vocabulary *model.Vocabulary, ingredientLimit int) string {
	if vocabulary == nil {
		return ""
	}

	sections := []string{}
	add := func(name string, values []string, limit int) {
		if len(values) == 0 {
			return
		}
		subset := values
		if limit > 0 && len(values) > limit {
			subset = values[:limit]
		}
		entry := fmt.Sprintf("- %s: %s", name, strings.Join(subset, ", "))
		if extra := len(values) - len(subset); extra > 0 {
			entry += fmt.Sprintf(" (+%d more)", extra)
		}
		sections = append(sections, entry)
	}

	add("Cuisines", vocabulary.Cuisines, 30)
	add("Courses", vocabulary.Courses, 20)
	add("Diets", vocabulary.Diets, 20)
	add("Ingredients", vocabulary.Ingredients, ingredientLimit)

	if len(sections) == 0 {
		return ""
	}

	return "Use only the following controlled values when setting structured filters or ingredient names:\n" + strings.Join(sections, "\n")
}
