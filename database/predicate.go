package database

import (
	"fmt"
	"strings"

	"github.com/siherrmann/recipegraph/model"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// predicateBuilder collects WHERE clauses with positional parameters.
// Values are always bound, never interpolated into the query text.
type predicateBuilder struct {
	clauses []string
	args    []any
}

// param binds a value and returns its placeholder.
func (b *predicateBuilder) param(value any) string {
	b.args = append(b.args, value)
	return fmt.Sprintf("$%d", len(b.args))
}

// add appends a clause; format takes the placeholder of value as its single verb.
func (b *predicateBuilder) add(format string, value any) {
	b.clauses = append(b.clauses, fmt.Sprintf(format, b.param(value)))
}

// addRaw appends a clause without parameters.
func (b *predicateBuilder) addRaw(clause string) {
	b.clauses = append(b.clauses, clause)
}

// where joins the clauses with AND; no clause matches every row.
func (b *predicateBuilder) where() string {
	if len(b.clauses) == 0 {
		return "TRUE"
	}
	return strings.Join(b.clauses, " AND ")
}

// applyIntent adds the structured constraints of an intent.
// Every required ingredient must match at least one stored ingredient case-insensitively as a substring.
func (b *predicateBuilder) applyIntent(intent *model.Intent) {
	if intent == nil {
		return
	}
	if intent.Cuisine != "" {
		b.add("cuisine = %s", intent.Cuisine)
	}
	if intent.Diet != "" {
		b.add("diet = %s", intent.Diet)
	}
	if intent.Course != "" {
		b.add("course = %s", intent.Course)
	}
	if intent.MaxPrepMinutes > 0 {
		b.add("prep_time_mins <= %s", intent.MaxPrepMinutes)
	}
	if intent.MaxCookMinutes > 0 {
		b.add("cook_time_mins <= %s", intent.MaxCookMinutes)
	}
	for _, ingredient := range intent.IngredientsInclude {
		ingredient = strings.TrimSpace(ingredient)
		if ingredient == "" {
			continue
		}
		b.add("EXISTS (SELECT 1 FROM unnest(ingredients) AS ing WHERE ing ILIKE %s)", "%"+likeEscaper.Replace(ingredient)+"%")
	}
}
