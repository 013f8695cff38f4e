// Package anchor selects the source document whose provenance a new
// artifact's path and lineage are built from.
package anchor

import (
	"github.com/felixgeelhaar/dialectic/internal/domain"
	"github.com/felixgeelhaar/dialectic/internal/errors"
	"github.com/felixgeelhaar/dialectic/internal/job"
	"github.com/felixgeelhaar/dialectic/internal/recipe"
)

// Kind is the outcome of lineage anchor selection
type Kind string

const (
	NoAnchorRequired        Kind = "no_anchor_required"
	DeriveFromHeaderContext Kind = "derive_from_header_context"
	AnchorFound             Kind = "anchor_found"
	AnchorNotFound          Kind = "anchor_not_found"
)

// Result of SelectAnchor. Document is set for AnchorFound; Slug and
// DocumentKey name the missing input for AnchorNotFound.
type Result struct {
	Kind        Kind
	Document    *job.SourceDocument
	Slug        string
	DocumentKey string
}

// SelectAnchor walks the lineage decision tree for a step. Every branch
// ends in an explicit result or an error; nothing is defaulted.
func SelectAnchor(step recipe.Step, docs []job.SourceDocument) (Result, error) {
	if step.JobType == domain.JobTypePlan && step.GranularityStrategy == recipe.StrategyAllToOne {
		return Result{Kind: NoAnchorRequired}, nil
	}
	if step.JobType == domain.JobTypeExecute && step.GranularityStrategy == recipe.StrategyPerModel {
		return Result{Kind: NoAnchorRequired}, nil
	}

	documentInputs := step.DocumentInputs()
	if len(documentInputs) == 0 {
		switch {
		case step.JobType == domain.JobTypeExecute && len(step.HeaderContextInputs()) > 0:
			return Result{Kind: DeriveFromHeaderContext}, nil
		case step.JobType == domain.JobTypeExecute && step.OutputType == recipe.OutputTypeHeaderContext:
			return Result{Kind: NoAnchorRequired}, nil
		default:
			return Result{}, errors.NewMalformedRecipeError(step.ID,
				"no document inputs and no header_context input to derive an anchor from")
		}
	}

	winner, err := highestRelevance(step, documentInputs, true)
	if err != nil {
		return Result{}, err
	}
	if winner == nil {
		return Result{}, errors.NewNoRelevanceError(step.ID)
	}

	if doc := findDocument(docs, *winner); doc != nil {
		return Result{Kind: AnchorFound, Document: doc}, nil
	}
	if step.JobType == domain.JobTypeExecute && step.OutputType == recipe.OutputTypeHeaderContext {
		return Result{Kind: NoAnchorRequired}, nil
	}
	return Result{Kind: AnchorNotFound, Slug: winner.Slug, DocumentKey: winner.DocumentKey}, nil
}

// SelectAnchorForPathParams picks a best-effort naming anchor. It returns
// nil when the step has no document inputs, no relevance metadata, or no
// matching document, and fails only on a tie.
func SelectAnchorForPathParams(step recipe.Step, docs []job.SourceDocument) (*job.SourceDocument, error) {
	documentInputs := step.DocumentInputs()
	if len(documentInputs) == 0 || len(step.InputsRelevance) == 0 {
		return nil, nil
	}

	winner, err := highestRelevance(step, documentInputs, false)
	if err != nil || winner == nil {
		return nil, err
	}
	return findDocument(docs, *winner), nil
}

// TopDocumentInput returns the document input with the strictly highest
// relevance, ignoring inputs without a score. It is nil when none is scored.
func TopDocumentInput(step recipe.Step) (*recipe.InputRule, error) {
	return highestRelevance(step, step.DocumentInputs(), false)
}

// Matches reports whether doc satisfies a document input rule: same stage,
// and same resolved document key when the rule names one.
func Matches(doc job.SourceDocument, rule recipe.InputRule) bool {
	if doc.Stage != rule.Slug {
		return false
	}
	return rule.DocumentKey == "" || doc.ResolvedDocumentKey() == rule.DocumentKey
}

// highestRelevance ranks document inputs by relevance. With strict set, a
// required input without a score is an error; otherwise it is skipped.
func highestRelevance(step recipe.Step, inputs []recipe.InputRule, strict bool) (*recipe.InputRule, error) {
	var (
		best     *recipe.InputRule
		bestRel  float64
		tiedKeys []string
	)

	for i := range inputs {
		rule := inputs[i]
		rel, ok := step.RelevanceFor(rule)
		if !ok {
			if strict && rule.Required {
				return nil, errors.NewMissingRelevanceError(step.ID, rule.Slug, rule.DocumentKey)
			}
			continue
		}

		switch {
		case best == nil || domain.Relevance(rel).IsHigherThan(domain.Relevance(bestRel)):
			best, bestRel = &rule, rel
			tiedKeys = []string{rule.String()}
		case rel == bestRel:
			tiedKeys = append(tiedKeys, rule.String())
		}
	}

	if len(tiedKeys) > 1 {
		return nil, errors.NewAmbiguousAnchorError(step.ID, bestRel, tiedKeys)
	}
	return best, nil
}

// findDocument returns the first document, in input order, matching rule
func findDocument(docs []job.SourceDocument, rule recipe.InputRule) *job.SourceDocument {
	for i := range docs {
		if Matches(docs[i], rule) {
			d := docs[i]
			return &d
		}
	}
	return nil
}
