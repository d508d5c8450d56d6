package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/siherrmann/recipegraph/helper"
)

// LocalEmbeddingDimensions is the output size of the local sentence transformer.
const LocalEmbeddingDimensions = 384

// NewEmbedder creates the embedder selected by the configuration.
func NewEmbedder(config *EmbedderConfig) (EmbedFunc, int, error) {
	if config == nil {
		return nil, 0, helper.NewError("embedder configuration validation", fmt.Errorf("configuration is nil"))
	}

	switch strings.ToLower(config.Provider) {
	case ProviderLocal:
		embedder, err := DefaultEmbedder(config.ModelDir)
		return embedder, LocalEmbeddingDimensions, err
	case ProviderOpenAI, "":
		embedder, err := OpenAIEmbedder(config)
		return embedder, config.Dimensions, err
	default:
		return nil, 0, helper.NewError("embedder configuration validation", fmt.Errorf("unknown embedder provider %q", config.Provider))
	}
}

// OpenAIEmbedder creates an embedder backed by the OpenAI embeddings API.
func OpenAIEmbedder(config *EmbedderConfig, opts ...option.RequestOption) (EmbedFunc, error) {
	if config.APIKey == "" {
		return nil, helper.NewError("openai embedder", fmt.Errorf("api key is empty"))
	}
	if config.Dimensions <= 0 {
		return nil, helper.NewError("openai embedder", fmt.Errorf("dimensions must be positive, got %d", config.Dimensions))
	}

	options := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		options = append(options, option.WithBaseURL(config.BaseURL))
	}
	options = append(options, opts...)
	client := openai.NewClient(options...)

	return func(ctx context.Context, text string) ([]float32, error) {
		response, err := client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input:          openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
			Model:          openai.EmbeddingModel(config.Model),
			Dimensions:     openai.Int(int64(config.Dimensions)),
			EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to generate embedding: %w", err)
		}

		if len(response.Data) == 0 {
			return nil, fmt.Errorf("no embedding generated")
		}

		values := response.Data[0].Embedding
		embedding := make([]float32, len(values))
		for i, v := range values {
			embedding[i] = float32(v)
		}
		return embedding, nil
	}, nil
}

// DefaultEmbedder creates an embedder using a real sentence transformer model
// Uses the all-MiniLM-L6-v2 model which produces 384-dimensional embeddings.
// The model is cached below modelDir, an empty modelDir uses ./models.
func DefaultEmbedder(modelDir string) (EmbedFunc, error) {
	modelName := "sentence-transformers/all-MiniLM-L6-v2"
	modelPath, err := helper.PrepareModel(modelDir, modelName, "onnx/model.onnx")
	if err != nil {
		return nil, err
	}

	// Initialize hugot session with Go backend
	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "recipe-embedder-pipeline",
	}
	sentencePipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create sentence pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create sentence pipeline: %w", err)
	}

	return func(ctx context.Context, text string) ([]float32, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := sentencePipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, fmt.Errorf("failed to generate embedding: %w", err)
		}

		if len(result.Embeddings) == 0 {
			return nil, fmt.Errorf("no embedding generated")
		}

		return result.Embeddings[0], nil
	}, nil
}
