package graph

import (
	"errors"
	"fmt"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/rules"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/tagger"
)

// ErrNoTagger is returned when a GraphClient has no tagging capability.
var ErrNoTagger = errors.New("graph: no tagger configured")

// GraphClient runs the extraction pipeline. It holds only immutable
// configuration and may be shared by concurrent callers.
//
// A GraphClient should be created using NewGraphClient.
type GraphClient struct {
	tagger            tagger.Tagger
	rules             *rules.Set
	strategies        []Strategy
	validator         *Validator
	parallelFiles     int
	parallelSentences int
}

// NewGraphClientParams defines the configuration parameters for creating
// a new GraphClient.
//
// Tagger provides spans, sentences and dependency arcs.
// Rules holds the rule tables; nil selects rules.Default().
// MinConfidence overrides the rule set threshold when greater than zero.
// ParallelFiles controls how many documents ProcessDocuments handles at once.
// ParallelSentences controls how many sentences of one document are
// inferred concurrently.
type NewGraphClientParams struct {
	Tagger            tagger.Tagger
	Rules             *rules.Set
	MinConfidence     float64
	ParallelFiles     int
	ParallelSentences int
}

// NewGraphClient creates and returns a new GraphClient configured with
// the provided parameters.
//
// Example:
//
//	params := graph.NewGraphClientParams{
//		Tagger:        lexicon.New(nil),
//		MinConfidence: 0.6,
//		ParallelFiles: 2,
//	}
//	client, err := graph.NewGraphClient(params)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Returns a pointer to GraphClient and an error if initialization fails.
func NewGraphClient(params NewGraphClientParams) (*GraphClient, error) {
	if params.Tagger == nil {
		return nil, ErrNoTagger
	}
	if params.MinConfidence < 0 || params.MinConfidence > 1 {
		return nil, fmt.Errorf("min confidence %v is outside [0, 1]", params.MinConfidence)
	}

	r := params.Rules
	if r == nil {
		r = rules.Default()
	}
	if err := r.Build(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}

	var opts []ValidatorOption
	if params.MinConfidence > 0 {
		opts = append(opts, WithMinConfidence(params.MinConfidence))
	}

	parallelFiles := params.ParallelFiles
	if parallelFiles <= 0 {
		parallelFiles = 2
	}
	parallelSentences := params.ParallelSentences
	if parallelSentences <= 0 {
		parallelSentences = 4
	}

	g := &GraphClient{
		tagger:            params.Tagger,
		rules:             r,
		strategies:        DefaultStrategies(r),
		validator:         NewValidator(r, opts...),
		parallelFiles:     parallelFiles,
		parallelSentences: parallelSentences,
	}

	return g, nil
}

// Rules returns the rule set the client was built with.
func (c *GraphClient) Rules() *rules.Set {
	return c.rules
}

// MinConfidence returns the effective relationship threshold.
func (c *GraphClient) MinConfidence() float64 {
	return c.validator.MinConfidence()
}
