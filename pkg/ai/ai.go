package ai

import (
	"context"
	"math"
	"sync"
)

// GenerateOptions holds configuration for AI generation requests.
type GenerateOptions struct {
	Model         string   // Model identifier to use for generation
	SystemPrompts []string // System prompts prepended to the request
	Temperature   float64  // Sampling temperature (0.0-2.0)
	Thinking      string   // Reasoning effort, empty disables it
}

// ModelMetrics contains performance metrics from AI model operations.
type ModelMetrics struct {
	InputTokens    int     `json:"input_tokens"`
	OutputTokens   int     `json:"output_tokens"`
	TotalTokens    int     `json:"total_tokens"`
	DurationMs     int64   `json:"duration_ms"`
	TokenPerSecond float32 `json:"tokens_per_second"`
}

// GenerateOption is a functional option for configuring AI generation requests.
type GenerateOption func(*GenerateOptions)

// WithModel returns a GenerateOption that sets the model to use for generation.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithSystemPrompts returns a GenerateOption that sets the system prompts
// to prepend to the generation request.
func WithSystemPrompts(prompts ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.SystemPrompts = prompts
	}
}

// WithTemperature returns a GenerateOption that sets the sampling temperature.
// Lower values make the tagging output more deterministic.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// WithThinking returns a GenerateOption that sets the reasoning effort.
func WithThinking(thinking string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Thinking = thinking
	}
}

// ApplyOptions returns defaults with every option applied in order.
func ApplyOptions(defaults GenerateOptions, opts ...GenerateOption) GenerateOptions {
	for _, o := range opts {
		o(&defaults)
	}
	return defaults
}

// GraphAIClient defines the model operations the extraction backend uses:
// structured completions for the LLM tagger and embeddings for similarity
// search over stored entities.
type GraphAIClient interface {
	GenerateCompletion(
		ctx context.Context,
		prompt string,
		opts ...GenerateOption,
	) (string, error)
	GenerateCompletionWithFormat(
		ctx context.Context,
		name string,
		description string,
		prompt string,
		out any,
		opts ...GenerateOption,
	) error

	GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error)

	ResetMetrics()
	GetMetrics() ModelMetrics
}

// Meter accumulates ModelMetrics across concurrent requests. The zero value
// is ready to use.
type Meter struct {
	mu      sync.Mutex
	metrics ModelMetrics
}

// Add records the usage of one request.
func (m *Meter) Add(r ModelMetrics) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.InputTokens += r.InputTokens
	m.metrics.OutputTokens += r.OutputTokens
	m.metrics.TotalTokens += r.TotalTokens
	m.metrics.DurationMs += r.DurationMs

	if m.metrics.DurationMs > 0 {
		tokensPerSecond := (float64(m.metrics.TotalTokens) * 1000.0) / float64(m.metrics.DurationMs)
		m.metrics.TokenPerSecond = float32(math.Round(tokensPerSecond*100) / 100)
	}
}

// Reset clears all accumulated metrics.
func (m *Meter) Reset() {
	m.mu.Lock()
	m.metrics = ModelMetrics{}
	m.mu.Unlock()
}

// Snapshot returns the metrics accumulated since the last reset.
func (m *Meter) Snapshot() ModelMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metrics
}
