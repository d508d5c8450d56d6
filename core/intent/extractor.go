package intent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/siherrmann/recipegraph/core/vocab"
	"github.com/siherrmann/recipegraph/helper"
	"github.com/siherrmann/recipegraph/model"
)

const systemPrompt = `You are a query parser for a recipe search system. Extract structured filters and semantic meaning from user queries.

The system has three query paths:
1. Filters - for structured filters (cuisine, diet, course, time constraints)
2. Similarity - for semantic similarity (fuzzy concepts like "comfort food", "healthy", "easy")
3. Graph - for ingredient relationships and "recipes similar to X"

Analyze the user's query and extract:
- cuisine: specific cuisine type (Indian, Italian, Mexican, etc.) - exact match
- diet: dietary restriction (Vegetarian, Vegan, Non-Vegetarian, etc.) - exact match
- course: meal type (Breakfast, Lunch, Dinner, Snack, Dessert, etc.) - exact match
- max_prep_time_mins: maximum prep time in minutes (interpret "quick" as 30, "fast" as 20)
- max_cook_time_mins: maximum cook time in minutes
- ingredients_include: specific ingredients that must be present
- ingredients_exclude: ingredients to avoid
- semantic_query: the semantic/conceptual part for similarity search
- use_graph: true if query involves ingredient relationships or "similar to" patterns
- use_filters: true if there are structured filters
- use_similarity: true if there are semantic/conceptual terms
- reasoning: one or two sentences explaining how you read the query

Respond with valid JSON only.`

// Extractor turns a natural language query into an intent.
type Extractor interface {
	Extract(ctx context.Context, query string) (*model.Intent, error)
}

// ExtractorConfig configures the OpenAI intent extractor.
type ExtractorConfig struct {
	APIKey  string `env:"OPENAI_API_KEY"`
	Model   string `env:"RECIPES_LLM_MODEL" envDefault:"gpt-4o-mini"`
	BaseURL string `env:"OPENAI_BASE_URL"`
}

// OpenAIExtractor extracts intents with a chat completion and maps the values
// onto the controlled vocabulary when one is set.
type OpenAIExtractor struct {
	client     openai.Client
	model      string
	vocabulary *model.Vocabulary
	prompt     string
	logger     *slog.Logger
}

// NewOpenAIExtractor creates an extractor. vocabulary may be nil.
func NewOpenAIExtractor(config *ExtractorConfig, vocabulary *model.Vocabulary, logger *slog.Logger, opts ...option.RequestOption) (*OpenAIExtractor, error) {
	if config == nil || config.APIKey == "" {
		return nil, helper.NewError("intent extractor", fmt.Errorf("api key is empty"))
	}
	if logger == nil {
		logger = slog.Default()
	}

	options := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		options = append(options, option.WithBaseURL(config.BaseURL))
	}
	options = append(options, opts...)

	prompt := systemPrompt
	if snippet := vocab.PromptSnippet(vocabulary, 40); snippet != "" {
		prompt += "\n\n" + snippet
	}

	return &OpenAIExtractor{
		client:     openai.NewClient(options...),
		model:      config.Model,
		vocabulary: vocabulary,
		prompt:     prompt,
		logger:     logger,
	}, nil
}

// Extract parses the query. An empty query is invalid input; a failed or
// undecodable completion is retrieval unavailable.
func (e *OpenAIExtractor) Extract(ctx context.Context, query string) (*model.Intent, error) {
	if strings.TrimSpace(query) == "" {
		return nil, helper.NewError("extract intent", fmt.Errorf("query is empty: %w", model.ErrInvalidInput))
	}

	completion, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(e.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(e.prompt),
			openai.UserMessage("Parse this recipe search query: " + query),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return nil, helper.NewError("extract intent", fmt.Errorf("%w: %v", model.ErrRetrievalUnavailable, err))
	}
	if len(completion.Choices) == 0 {
		return nil, helper.NewError("extract intent", fmt.Errorf("%w: no completion choices", model.ErrRetrievalUnavailable))
	}

	intent, err := Decode(completion.Choices[0].Message.Content)
	if err != nil {
		return nil, helper.NewError("extract intent", fmt.Errorf("%w: %v", model.ErrRetrievalUnavailable, err))
	}

	vocab.Constrain(intent, e.vocabulary)

	e.logger.Debug("Extracted intent",
		slog.String("cuisine", intent.Cuisine),
		slog.String("diet", intent.Diet),
		slog.Int("ingredients", len(intent.IngredientsInclude)),
		slog.Bool("use_graph", intent.UseGraph),
	)

	return intent, nil
}
