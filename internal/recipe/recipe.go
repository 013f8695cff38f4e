package recipe

import (
	"fmt"
	"slices"
	"strings"

	"github.com/felixgeelhaar/dialectic/internal/domain"
	"github.com/felixgeelhaar/dialectic/internal/errors"
)

// Recipe is the ordered list of steps one stage executes
type Recipe struct {
	Name        string `json:"name" yaml:"name"`
	Stage       string `json:"stage" yaml:"stage"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Steps       []Step `json:"steps" yaml:"steps"`
}

// Step returns the step with the given id
func (r *Recipe) Step(id string) (Step, error) {
	for _, s := range r.Steps {
		if s.ID == id {
			return s, nil
		}
	}
	return Step{}, errors.Newf(errors.ErrCodeRecipeStepNotFound, "step %q not found in recipe %q", id, r.Name).
		WithSuggestion("Run 'dialectic recipe validate' to list the recipe's step ids")
}

// Validate checks the recipe and every step in it, reporting the first problem
func (r *Recipe) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New(errors.ErrCodeRecipeInvalid, "recipe name cannot be empty")
	}
	if r.Stage != "" && !domain.IsStage(r.Stage) {
		return errors.Newf(errors.ErrCodeRecipeInvalid, "recipe %q names unknown stage %q", r.Name, r.Stage).
			WithSuggestion("Use one of: thesis, antithesis, synthesis, parenthesis, paralysis")
	}
	if len(r.Steps) == 0 {
		return errors.Newf(errors.ErrCodeRecipeInvalid, "recipe %q has no steps", r.Name)
	}

	seen := make(map[string]bool, len(r.Steps))
	for i, s := range r.Steps {
		if seen[s.ID] {
			return errors.Newf(errors.ErrCodeRecipeInvalid, "step at index %d reuses id %q", i, s.ID)
		}
		seen[s.ID] = true

		if err := s.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Validate checks a single step against the rules planners rely on
func (s Step) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return errors.NewMalformedRecipeError("", "step id is required")
	}
	if err := s.JobType.Validate(); err != nil {
		return errors.NewMalformedRecipeError(s.ID, err.Error())
	}
	if s.GranularityStrategy != "" && !slices.Contains(KnownStrategies, s.GranularityStrategy) {
		return errors.NewMalformedRecipeError(s.ID,
			fmt.Sprintf("unknown granularity strategy %q", s.GranularityStrategy)).
			WithSuggestion("Run 'dialectic strategies' to list the supported strategies")
	}
	if strings.TrimSpace(s.OutputType) == "" {
		return errors.NewMalformedRecipeError(s.ID, "output_type is required")
	}

	for i, in := range s.InputsRequired {
		if err := in.Type.Validate(); err != nil {
			return errors.NewMalformedRecipeError(s.ID, fmt.Sprintf("inputs_required[%d]: %v", i, err))
		}
		if in.Type == domain.InputDocument && in.Slug == "" {
			return errors.NewMalformedRecipeError(s.ID, fmt.Sprintf("inputs_required[%d]: document inputs need a stage slug", i))
		}
	}

	for i, rel := range s.InputsRelevance {
		if _, err := domain.NewRelevance(rel.Relevance); err != nil {
			return errors.NewMalformedRecipeError(s.ID, fmt.Sprintf("inputs_relevance[%d]: %v", i, err))
		}
	}

	if s.NeedsAnchor() && len(s.DocumentInputs()) > 0 && len(s.InputsRelevance) == 0 {
		return errors.NewNoRelevanceError(s.ID)
	}

	if s.GranularityStrategy == StrategyAllToOne {
		switch s.JobType {
		case domain.JobTypePlan:
			if _, err := s.RequirePlanOutputs(); err != nil {
				return err
			}
		case domain.JobTypeExecute:
			if _, err := s.RequireExecuteOutputs(); err != nil {
				return err
			}
		}
	}

	return nil
}

// RequirePlanOutputs returns the outputs a PLAN step must propagate: the
// header context artifact and at least one context_for_documents entry,
// each naming a document key.
func (s Step) RequirePlanOutputs() (*OutputsRequired, error) {
	out := s.OutputsRequired
	if out == nil {
		return nil, errors.NewOutputsRequiredError(s.ID, "outputs_required")
	}
	if out.HeaderContextArtifact == nil || strings.TrimSpace(out.HeaderContextArtifact.DocumentKey) == "" {
		return nil, errors.NewOutputsRequiredError(s.ID, "header_context_artifact.document_key")
	}
	if len(out.ContextForDocuments) == 0 {
		return nil, errors.NewOutputsRequiredError(s.ID, "context_for_documents")
	}
	for i, c := range out.ContextForDocuments {
		if strings.TrimSpace(c.DocumentKey) == "" {
			return nil, errors.NewOutputsRequiredError(s.ID, fmt.Sprintf("context_for_documents[%d].document_key", i))
		}
	}
	return out, nil
}

// RequireExecuteOutputs returns the outputs an EXECUTE step must propagate:
// a first document with a key and at least one file to generate.
func (s Step) RequireExecuteOutputs() (*OutputsRequired, error) {
	out := s.OutputsRequired
	if out == nil {
		return nil, errors.NewOutputsRequiredError(s.ID, "outputs_required")
	}
	if len(out.Documents) == 0 || strings.TrimSpace(out.Documents[0].DocumentKey) == "" {
		return nil, errors.NewOutputsRequiredError(s.ID, "documents[0].document_key")
	}
	if len(out.FilesToGenerate) == 0 {
		return nil, errors.NewOutputsRequiredError(s.ID, "files_to_generate")
	}
	for i, f := range out.FilesToGenerate {
		if strings.TrimSpace(f.FromDocumentKey) == "" || strings.TrimSpace(f.TemplateFilename) == "" {
			return nil, errors.NewOutputsRequiredError(s.ID, fmt.Sprintf("files_to_generate[%d]", i))
		}
	}
	return out, nil
}
