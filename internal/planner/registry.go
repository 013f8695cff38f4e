package planner

import (
	"slices"

	"github.com/felixgeelhaar/dialectic/internal/errors"
	"github.com/felixgeelhaar/dialectic/internal/recipe"
)

// DefaultStrategy is used for steps naming an unregistered strategy
const DefaultStrategy = recipe.StrategyPerSourceDocument

var registry = map[string]Planner{
	recipe.StrategyPerSourceDocument:          PlanPerSourceDocument,
	recipe.StrategyPairwiseByOrigin:           PlanPairwiseByOrigin,
	recipe.StrategyPerModel:                   PlanPerModel,
	recipe.StrategyPerSourceDocumentByLineage: PlanPerSourceDocumentByLineage,
	recipe.StrategyPerSourceGroup:             PlanPerSourceGroup,
	recipe.StrategyAllToOne:                   PlanAllToOne,
}

// Lookup returns the planner for a strategy key, falling back to
// per_source_document for unknown keys.
func Lookup(strategy string) Planner {
	if p, ok := registry[strategy]; ok {
		return p
	}
	return registry[DefaultStrategy]
}

// LookupStrict returns the planner for a strategy key or a PLAN-004 error
func LookupStrict(strategy string) (Planner, error) {
	p, ok := registry[strategy]
	if !ok {
		return nil, errors.Newf(errors.ErrCodePlanUnknownStrategy, "Unknown granularity strategy %q", strategy).
			WithSuggestions("Use one of: " + joinStrategies())
	}
	return p, nil
}

// Strategies lists the registered strategy keys, sorted
func Strategies() []string {
	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func joinStrategies() string {
	var out string
	for i, k := range Strategies() {
		if i > 0 {
			out += ", "
		}
		out += k
	}
	return out
}
