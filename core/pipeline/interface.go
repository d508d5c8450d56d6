package pipeline

import "context"

// EmbedFunc is a function that generates embeddings for text
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// Embedder providers
const (
	ProviderOpenAI = "openai"
	ProviderLocal  = "local"
)

// EmbedderConfig selects and configures an embedding provider.
type EmbedderConfig struct {
	Provider   string `env:"RECIPES_EMBEDDER" envDefault:"openai"`
	APIKey     string `env:"OPENAI_API_KEY"`
	Model      string `env:"RECIPES_EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	Dimensions int    `env:"RECIPES_EMBEDDING_DIMENSIONS" envDefault:"1536"`
	// Base URL override for OpenAI compatible servers
	BaseURL string `env:"OPENAI_BASE_URL"`
	// Cache directory for the local model
	ModelDir string `env:"RECIPES_MODEL_DIR" envDefault:"./models"`
}
