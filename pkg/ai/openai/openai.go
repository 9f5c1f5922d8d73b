package openai

import (
	"time"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"
)

// GraphOpenAIClient implements ai.GraphAIClient against any OpenAI
// compatible API. It manages separate clients for embeddings and
// chat/completion so both can point at different providers.
//
// A GraphOpenAIClient should be created using NewGraphOpenAIClient.
type GraphOpenAIClient struct {
	embeddingModel  string
	extractionModel string
	dimensions      int

	chatURL string
	timeout time.Duration

	reqLock *semaphore.Weighted
	meter   ai.Meter

	ChatClient      *openai.Client
	EmbeddingClient *openai.Client
}

// NewGraphOpenAIClientParams defines the configuration parameters for
// creating a new GraphOpenAIClient.
//
// ExtractionModel is used for tagging, EmbeddingModel for entity
// embeddings. Dimensions truncates or pads every embedding. An empty
// ChatURL talks to api.openai.com.
type NewGraphOpenAIClientParams struct {
	EmbeddingModel  string
	ExtractionModel string
	Dimensions      int

	EmbeddingURL string
	EmbeddingKey string
	ChatURL      string
	ChatKey      string

	MaxConcurrentRequests int64
	Timeout               time.Duration
}

// NewGraphOpenAIClient creates and returns a new client configured with
// the provided parameters.
//
// Example:
//
//	client := openai.NewGraphOpenAIClient(openai.NewGraphOpenAIClientParams{
//		EmbeddingModel:  "text-embedding-3-small",
//		ExtractionModel: "gpt-4o-mini",
//		Dimensions:      1536,
//		EmbeddingKey:    os.Getenv("AI_EMBED_KEY"),
//		ChatKey:         os.Getenv("AI_CHAT_KEY"),
//	})
func NewGraphOpenAIClient(
	params NewGraphOpenAIClientParams,
) *GraphOpenAIClient {
	maxReq := params.MaxConcurrentRequests
	if maxReq <= 0 {
		maxReq = 4
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	dim := params.Dimensions
	if dim <= 0 {
		dim = defaultDimensions
	}

	return &GraphOpenAIClient{
		embeddingModel:  params.EmbeddingModel,
		extractionModel: params.ExtractionModel,
		dimensions:      dim,

		chatURL: params.ChatURL,
		timeout: timeout,

		reqLock: semaphore.NewWeighted(maxReq),

		ChatClient:      newOpenaiClient(params.ChatURL, params.ChatKey),
		EmbeddingClient: newOpenaiClient(params.EmbeddingURL, params.EmbeddingKey),
	}
}

func newOpenaiClient(
	baseURL string,
	apiKey string,
) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &client
}

// ResetMetrics clears all accumulated token and timing metrics to zero.
func (c *GraphOpenAIClient) ResetMetrics() {
	c.meter.Reset()
}

// GetMetrics returns the accumulated token usage and timing metrics since the last reset.
func (c *GraphOpenAIClient) GetMetrics() ai.ModelMetrics {
	return c.meter.Snapshot()
}
