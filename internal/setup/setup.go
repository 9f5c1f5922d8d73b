// Package setup builds the shared components of the server, the worker and
// the CLI from environment configuration.
package setup

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/OFFIS-RIT/kgraph/backend/internal/util"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/ai"
	oai "github.com/OFFIS-RIT/kgraph/backend/pkg/ai/ollama"
	gai "github.com/OFFIS-RIT/kgraph/backend/pkg/ai/openai"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/graph"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger/console"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger/file"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/rules"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/store"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/store/neo4j"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/store/pgx"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/tagger"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/tagger/cloudnl"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/tagger/lexicon"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/tagger/llm"
)

const (
	TaggerLexicon = "lexicon"
	TaggerLLM     = "llm"
	TaggerCloudNL = "cloudnl"

	StoreNeo4j    = "neo4j"
	StorePostgres = "postgres"

	AdapterOpenAI = "openai"
	AdapterOllama = "ollama"
)

// Config is the environment configuration shared by every binary.
type Config struct {
	Debug     bool
	LogFile   string
	LogFormat string

	Tagger            string
	RulesFile         string
	MinConfidence     float64
	ParallelDocuments int
	ParallelSentences int

	NLCredentials string
	NLLanguage    string

	GraphStore  string
	DatabaseURL string

	AIAdapter      string
	ChatURL        string
	ChatKey        string
	ExtractModel   string
	EmbedURL       string
	EmbedKey       string
	EmbedModel     string
	EmbedDim       int
	ParallelAIReqs int
	TokenEncoder   string
	MaxUnitTokens  int
}

// ConfigFromEnv reads Config from the environment.
func ConfigFromEnv() Config {
	return Config{
		Debug:     util.GetEnvBool("DEBUG", false),
		LogFile:   util.GetEnv("LOG_FILE"),
		LogFormat: strings.ToLower(util.GetEnvString("LOG_FORMAT", "text")),

		Tagger:            strings.ToLower(util.GetEnvString("TAGGER", TaggerLexicon)),
		RulesFile:         util.GetEnv("RULES_FILE"),
		MinConfidence:     util.GetEnvNumeric("MIN_CONFIDENCE", 0),
		ParallelDocuments: util.GetEnvInt("PARALLEL_DOCUMENTS", 2),
		ParallelSentences: util.GetEnvInt("PARALLEL_SENTENCES", 4),

		NLCredentials: util.GetEnv("NATURAL_LANGUAGE_CREDENTIALS"),
		NLLanguage:    util.GetEnvString("NATURAL_LANGUAGE_LANG", "en"),

		GraphStore:  strings.ToLower(util.GetEnvString("GRAPH_STORE", StoreNeo4j)),
		DatabaseURL: util.GetEnv("DATABASE_URL"),

		AIAdapter:      strings.ToLower(util.GetEnv("AI_ADAPTER")),
		ChatURL:        util.GetEnv("AI_CHAT_URL"),
		ChatKey:        util.GetEnv("AI_CHAT_KEY"),
		ExtractModel:   util.GetEnv("AI_CHAT_EXTRACT_MODEL"),
		EmbedURL:       util.GetEnv("AI_EMBED_URL"),
		EmbedKey:       util.GetEnv("AI_EMBED_KEY"),
		EmbedModel:     util.GetEnv("AI_EMBED_MODEL"),
		EmbedDim:       util.GetEnvInt("AI_EMBED_DIM", 0),
		ParallelAIReqs: util.GetEnvInt("AI_PARALLEL_REQ", 4),
		TokenEncoder:   util.GetEnvString("AI_TOKEN_ENCODER", ai.DefaultEncoding),
		MaxUnitTokens:  util.GetEnvInt("AI_MAX_UNIT_TOKENS", 1000),
	}
}

// InitLogger registers the console logger and, when cfg.LogFile is set, a
// rotating file logger. LOG_FORMAT=json switches the console to JSON lines.
func InitLogger(cfg Config) {
	instances := []logger.LoggerInstance{
		console.NewConsoleLogger(console.ConsoleLoggerParams{Debug: cfg.Debug, JSON: cfg.LogFormat == "json"}),
	}
	if cfg.LogFile != "" {
		instances = append(instances, file.NewFileLogger(file.FileLoggerParams{Path: cfg.LogFile, Debug: cfg.Debug}))
	}
	logger.Init(instances...)
}

// NewAIClient builds the client selected by AIAdapter. It returns nil
// without error when no adapter is configured.
func NewAIClient(cfg Config) (ai.GraphAIClient, error) {
	switch cfg.AIAdapter {
	case "":
		return nil, nil
	case AdapterOllama:
		client, err := oai.NewGraphOllamaClient(oai.NewGraphOllamaClientParams{
			EmbeddingModel:  cfg.EmbedModel,
			ExtractionModel: cfg.ExtractModel,
			Dimensions:      cfg.EmbedDim,

			BaseURL: cfg.ChatURL,
			ApiKey:  cfg.ChatKey,

			MaxConcurrentRequests: int64(cfg.ParallelAIReqs),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
		return client, nil
	case AdapterOpenAI:
		return gai.NewGraphOpenAIClient(gai.NewGraphOpenAIClientParams{
			EmbeddingModel:  cfg.EmbedModel,
			ExtractionModel: cfg.ExtractModel,
			Dimensions:      cfg.EmbedDim,

			EmbeddingURL: cfg.EmbedURL,
			EmbeddingKey: cfg.EmbedKey,
			ChatURL:      cfg.ChatURL,
			ChatKey:      cfg.ChatKey,

			MaxConcurrentRequests: int64(cfg.ParallelAIReqs),
			Timeout:               5 * time.Minute,
		}), nil
	default:
		return nil, fmt.Errorf("unknown AI_ADAPTER %q", cfg.AIAdapter)
	}
}

// NewRules returns the default rules or, when path is set, the defaults
// overridden by the YAML file at path.
func NewRules(path string) (*rules.Set, error) {
	if path == "" {
		return rules.Default(), nil
	}
	r, err := rules.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules from %s: %w", path, err)
	}
	return r, nil
}

// NewTagger builds the tagger selected by cfg.Tagger. The llm tagger needs
// an AI client; the cloudnl tagger reads base64 encoded service account
// credentials from cfg.NLCredentials or falls back to the application
// default credentials.
func NewTagger(cfg Config, r *rules.Set, aiClient ai.GraphAIClient) (tagger.Tagger, error) {
	switch cfg.Tagger {
	case "", TaggerLexicon:
		return lexicon.New(r), nil
	case TaggerLLM:
		if aiClient == nil {
			return nil, fmt.Errorf("TAGGER=llm needs AI_ADAPTER")
		}
		return llm.New(aiClient, r,
			llm.WithEncoding(cfg.TokenEncoder),
			llm.WithMaxUnitTokens(cfg.MaxUnitTokens),
			llm.WithParallel(cfg.ParallelAIReqs),
		), nil
	case TaggerCloudNL:
		var creds []byte
		if cfg.NLCredentials != "" {
			decoded, err := base64.StdEncoding.DecodeString(cfg.NLCredentials)
			if err != nil {
				return nil, fmt.Errorf("failed to decode NATURAL_LANGUAGE_CREDENTIALS: %w", err)
			}
			creds = decoded
		}
		client, err := cloudnl.NewClient(context.Background(), creds)
		if err != nil {
			return nil, err
		}
		return cloudnl.New(client, r, cloudnl.WithLanguage(cfg.NLLanguage)), nil
	default:
		return nil, fmt.Errorf("unknown TAGGER %q", cfg.Tagger)
	}
}

// NewGraphClient builds rules, tagger and the graph client.
func NewGraphClient(cfg Config, aiClient ai.GraphAIClient) (*graph.GraphClient, error) {
	r, err := NewRules(cfg.RulesFile)
	if err != nil {
		return nil, err
	}
	t, err := NewTagger(cfg, r, aiClient)
	if err != nil {
		return nil, err
	}
	return graph.NewGraphClient(graph.NewGraphClientParams{
		Tagger:            t,
		Rules:             r,
		MinConfidence:     cfg.MinConfidence,
		ParallelFiles:     cfg.ParallelDocuments,
		ParallelSentences: cfg.ParallelSentences,
	})
}

// NewStore opens the store selected by cfg.GraphStore. The postgres store
// keeps entity embeddings when an AI client is given.
func NewStore(ctx context.Context, cfg Config, aiClient ai.GraphAIClient) (store.GraphStorage, error) {
	switch cfg.GraphStore {
	case "", StoreNeo4j:
		s, err := neo4j.NewFromEnv(ctx)
		if err != nil {
			return nil, err
		}
		return s, nil
	case StorePostgres:
		var opts []pgx.GraphDBStorageOption
		if aiClient != nil {
			opts = append(opts, pgx.WithAIClient(aiClient))
		}
		s, err := pgx.New(ctx, cfg.DatabaseURL, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown GRAPH_STORE %q", cfg.GraphStore)
	}
}
