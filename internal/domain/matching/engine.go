package matching

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/medintake/medintake/internal/platform/extract"
)

// Provider scores a registry snapshot against extracted patient info. The two
// implementations (WeightedMatcher, HeuristicMatcher) are selected once at
// startup; callers depend only on the Result contract.
type Provider interface {
	Match(ctx context.Context, info extract.PatientInfo, registry []RegistryRecord) (Result, error)
}

// Engine runs the primary provider and falls back to the heuristic when the
// primary is unconfigured, fails, or produces no usable candidates. It never
// propagates an error: a document that cannot be matched is still a valid
// pipeline outcome.
type Engine struct {
	primary  Provider
	fallback Provider
	logger   zerolog.Logger
}

// NewEngine creates a two-tier matching engine. primary may be nil, in which
// case only the fallback runs.
func NewEngine(primary, fallback Provider, logger zerolog.Logger) *Engine {
	return &Engine{primary: primary, fallback: fallback, logger: logger}
}

// Match produces the ranked candidate list for one document.
func (e *Engine) Match(ctx context.Context, info extract.PatientInfo, registry []RegistryRecord) Result {
	if e.primary != nil {
		result, err := e.primary.Match(ctx, info, registry)
		if err == nil && len(result.Candidates) > 0 {
			return result
		}
		if err != nil {
			e.logger.Warn().Err(err).Msg("primary matcher failed, using fallback")
		}
	}

	result, err := e.fallback.Match(ctx, info, registry)
	if err != nil {
		e.logger.Error().Err(err).Msg("fallback matcher failed")
		return Result{}
	}
	return result
}
