package recipe

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/dialectic/internal/domain"
	"github.com/felixgeelhaar/dialectic/internal/errors"
)

// Shape is any stored form of a recipe step. Planners only ever see the
// normalized Step.
type Shape interface {
	Normalize() (Step, error)
}

// StepBody holds the fields every step shape shares
type StepBody struct {
	StepKey             string           `json:"step_key" yaml:"step_key"`
	StepSlug            string           `json:"step_slug" yaml:"step_slug"`
	StepName            string           `json:"step_name" yaml:"step_name"`
	JobType             string           `json:"job_type" yaml:"job_type"`
	GranularityStrategy string           `json:"granularity_strategy" yaml:"granularity_strategy"`
	OutputType          string           `json:"output_type" yaml:"output_type"`
	InputsRequired      []InputRule      `json:"inputs_required" yaml:"inputs_required"`
	InputsRelevance     []RelevanceRule  `json:"inputs_relevance" yaml:"inputs_relevance"`
	OutputsRequired     *OutputsRequired `json:"outputs_required" yaml:"outputs_required"`
}

// TemplateStep is a step as defined on a shared recipe template
type TemplateStep struct {
	ID            string `json:"id" yaml:"id"`
	TemplateID    string `json:"template_id" yaml:"template_id"`
	StepNumber    int    `json:"step_number" yaml:"step_number"`
	ParallelGroup *int   `json:"parallel_group,omitempty" yaml:"parallel_group,omitempty"`
	BranchKey     string `json:"branch_key,omitempty" yaml:"branch_key,omitempty"`
	StepBody      `yaml:",inline"`
}

// Normalize implements Shape
func (t TemplateStep) Normalize() (Step, error) {
	return t.StepBody.normalize(t.ID, OriginTemplate)
}

// InstanceStep is a template step copied into a session's recipe instance,
// possibly with overrides.
type InstanceStep struct {
	ID             string `json:"id" yaml:"id"`
	InstanceID     string `json:"instance_id" yaml:"instance_id"`
	TemplateStepID string `json:"template_step_id,omitempty" yaml:"template_step_id,omitempty"`
	IsSkipped      bool   `json:"is_skipped,omitempty" yaml:"is_skipped,omitempty"`
	StepBody       `yaml:",inline"`
}

// Normalize implements Shape. Skipped instance steps cannot be planned.
func (i InstanceStep) Normalize() (Step, error) {
	if i.IsSkipped {
		return Step{}, errors.NewMalformedRecipeError(i.ID, "step is marked as skipped in its recipe instance")
	}
	return i.StepBody.normalize(i.ID, OriginInstance)
}

// AdHocStep is a step assembled by a caller without a stored recipe
type AdHocStep struct {
	ID       string `json:"id" yaml:"id"`
	StepBody `yaml:",inline"`
}

// Normalize implements Shape
func (a AdHocStep) Normalize() (Step, error) {
	return a.StepBody.normalize(a.ID, OriginAdHoc)
}

func (b StepBody) normalize(id string, origin Origin) (Step, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Step{}, errors.NewMalformedRecipeError("", "step id is required")
	}

	jobType, err := domain.NewJobType(strings.ToUpper(strings.TrimSpace(b.JobType)))
	if err != nil {
		return Step{}, errors.NewMalformedRecipeError(id, err.Error())
	}

	inputs := make([]InputRule, 0, len(b.InputsRequired))
	for _, r := range b.InputsRequired {
		r.Type = domain.InputType(strings.ToLower(strings.TrimSpace(string(r.Type))))
		r.Slug = strings.TrimSpace(r.Slug)
		r.DocumentKey = strings.TrimSpace(r.DocumentKey)
		inputs = append(inputs, r)
	}

	return Step{
		ID:                  id,
		StepKey:             b.StepKey,
		StepSlug:            b.StepSlug,
		Name:                b.StepName,
		JobType:             jobType,
		GranularityStrategy: strings.TrimSpace(b.GranularityStrategy),
		OutputType:          strings.TrimSpace(b.OutputType),
		InputsRequired:      inputs,
		InputsRelevance:     b.InputsRelevance,
		OutputsRequired:     b.OutputsRequired,
		Origin:              origin,
	}, nil
}

// shapeProbe finds which shape a serialized step is in
type shapeProbe struct {
	TemplateID string `yaml:"template_id"`
	InstanceID string `yaml:"instance_id"`
}

// ParseStep decodes a step in any of the three shapes (YAML or JSON) and
// normalizes it.
func ParseStep(data []byte) (Step, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return Step{}, errors.Wrap(errors.ErrCodeRecipeMalformed, "failed to decode recipe step", err)
	}
	return decodeStep(&node)
}

// decodeStep picks the shape of a step node: a template_id marks a template
// step, an instance_id an instance step; anything else is ad hoc.
func decodeStep(node *yaml.Node) (Step, error) {
	var probe shapeProbe
	if err := node.Decode(&probe); err != nil {
		return Step{}, errors.Wrap(errors.ErrCodeRecipeMalformed, "failed to decode recipe step", err)
	}

	var shape Shape
	switch {
	case probe.InstanceID != "":
		var s InstanceStep
		if err := node.Decode(&s); err != nil {
			return Step{}, errors.Wrap(errors.ErrCodeRecipeMalformed, "failed to decode instance step", err)
		}
		shape = s
	case probe.TemplateID != "":
		var s TemplateStep
		if err := node.Decode(&s); err != nil {
			return Step{}, errors.Wrap(errors.ErrCodeRecipeMalformed, "failed to decode template step", err)
		}
		shape = s
	default:
		var s AdHocStep
		if err := node.Decode(&s); err != nil {
			return Step{}, errors.Wrap(errors.ErrCodeRecipeMalformed, "failed to decode ad hoc step", err)
		}
		shape = s
	}

	return shape.Normalize()
}

// Compile-time verification that every shape normalizes
var (
	_ Shape = TemplateStep{}
	_ Shape = InstanceStep{}
	_ Shape = AdHocStep{}
)
