// Package recipe models the declarative steps a dialectic stage executes.
package recipe

import (
	"strings"

	"github.com/felixgeelhaar/dialectic/internal/domain"
	"github.com/felixgeelhaar/dialectic/internal/pathcodec"
)

// Granularity strategy keys
const (
	StrategyPerSourceDocument          = "per_source_document"
	StrategyPairwiseByOrigin           = "pairwise_by_origin"
	StrategyPerModel                   = "per_model"
	StrategyPerSourceDocumentByLineage = "per_source_document_by_lineage"
	StrategyPerSourceGroup             = "per_source_group"
	StrategyAllToOne                   = "all_to_one"
)

// KnownStrategies lists every strategy key a step may name
var KnownStrategies = []string{
	StrategyPerSourceDocument,
	StrategyPairwiseByOrigin,
	StrategyPerModel,
	StrategyPerSourceDocumentByLineage,
	StrategyPerSourceGroup,
	StrategyAllToOne,
}

// OutputTypeHeaderContext is the output type of steps that produce a header context
const OutputTypeHeaderContext = string(pathcodec.FileTypeHeaderContext)

// InputRule is one entry of inputs_required
type InputRule struct {
	Type        domain.InputType `json:"type" yaml:"type"`
	Slug        string           `json:"slug" yaml:"slug"`
	DocumentKey string           `json:"document_key,omitempty" yaml:"document_key,omitempty"`
	Required    bool             `json:"required" yaml:"required"`
}

// String renders the rule for error messages
func (r InputRule) String() string {
	var b strings.Builder
	b.WriteString(string(r.Type))
	if r.Slug != "" {
		b.WriteString(":" + r.Slug)
	}
	if r.DocumentKey != "" {
		b.WriteString("/" + r.DocumentKey)
	}
	return b.String()
}

// RelevanceRule scores how authoritative an input is for anchor selection
type RelevanceRule struct {
	DocumentKey string           `json:"document_key" yaml:"document_key"`
	Slug        string           `json:"slug,omitempty" yaml:"slug,omitempty"`
	Type        domain.InputType `json:"type,omitempty" yaml:"type,omitempty"`
	Relevance   float64          `json:"relevance" yaml:"relevance"`
}

// HeaderContextArtifact describes the header context a PLAN step produces
type HeaderContextArtifact struct {
	Type          string `json:"type,omitempty" yaml:"type,omitempty"`
	DocumentKey   string `json:"document_key" yaml:"document_key"`
	ArtifactClass string `json:"artifact_class,omitempty" yaml:"artifact_class,omitempty"`
	FileType      string `json:"file_type,omitempty" yaml:"file_type,omitempty"`
}

// ContextForDocument tells the executor what to gather for one document
type ContextForDocument struct {
	DocumentKey      string         `json:"document_key" yaml:"document_key"`
	ContentToInclude map[string]any `json:"content_to_include,omitempty" yaml:"content_to_include,omitempty"`
}

// DocumentOutput is one document an EXECUTE step renders
type DocumentOutput struct {
	DocumentKey      string `json:"document_key" yaml:"document_key"`
	TemplateFilename string `json:"template_filename,omitempty" yaml:"template_filename,omitempty"`
	ArtifactClass    string `json:"artifact_class,omitempty" yaml:"artifact_class,omitempty"`
	FileType         string `json:"file_type,omitempty" yaml:"file_type,omitempty"`
}

// FileToGenerate maps a rendered document onto a template
type FileToGenerate struct {
	FromDocumentKey  string `json:"from_document_key" yaml:"from_document_key"`
	TemplateFilename string `json:"template_filename" yaml:"template_filename"`
}

// OutputsRequired is what a step must hand to the executor
type OutputsRequired struct {
	HeaderContextArtifact *HeaderContextArtifact `json:"header_context_artifact,omitempty" yaml:"header_context_artifact,omitempty"`
	ContextForDocuments   []ContextForDocument   `json:"context_for_documents,omitempty" yaml:"context_for_documents,omitempty"`
	Documents             []DocumentOutput       `json:"documents,omitempty" yaml:"documents,omitempty"`
	FilesToGenerate       []FileToGenerate       `json:"files_to_generate,omitempty" yaml:"files_to_generate,omitempty"`
}

// Origin records which step shape a Step was normalized from
type Origin string

const (
	OriginTemplate Origin = "template"
	OriginInstance Origin = "instance"
	OriginAdHoc    Origin = "ad_hoc"
)

// Step is the normalized recipe step every planner consumes
type Step struct {
	ID                  string           `json:"id" yaml:"id"`
	StepKey             string           `json:"step_key,omitempty" yaml:"step_key,omitempty"`
	StepSlug            string           `json:"step_slug,omitempty" yaml:"step_slug,omitempty"`
	Name                string           `json:"step_name,omitempty" yaml:"step_name,omitempty"`
	JobType             domain.JobType   `json:"job_type" yaml:"job_type"`
	GranularityStrategy string           `json:"granularity_strategy" yaml:"granularity_strategy"`
	OutputType          string           `json:"output_type" yaml:"output_type"`
	InputsRequired      []InputRule      `json:"inputs_required,omitempty" yaml:"inputs_required,omitempty"`
	InputsRelevance     []RelevanceRule  `json:"inputs_relevance,omitempty" yaml:"inputs_relevance,omitempty"`
	OutputsRequired     *OutputsRequired `json:"outputs_required,omitempty" yaml:"outputs_required,omitempty"`
	Origin              Origin           `json:"-" yaml:"-"`
}

// DocumentInputs returns the document-type entries of inputs_required
func (s Step) DocumentInputs() []InputRule {
	return s.inputsOfType(domain.InputDocument)
}

// HeaderContextInputs returns the header_context-type entries of inputs_required
func (s Step) HeaderContextInputs() []InputRule {
	return s.inputsOfType(domain.InputHeaderContext)
}

func (s Step) inputsOfType(t domain.InputType) []InputRule {
	var out []InputRule
	for _, r := range s.InputsRequired {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

// RelevanceFor returns the relevance score for an input rule. A relevance
// entry matches on document key, and on slug and type when it names them.
func (s Step) RelevanceFor(rule InputRule) (float64, bool) {
	for _, r := range s.InputsRelevance {
		if r.DocumentKey != rule.DocumentKey {
			continue
		}
		if r.Slug != "" && r.Slug != rule.Slug {
			continue
		}
		if r.Type != "" && r.Type != rule.Type {
			continue
		}
		return r.Relevance, true
	}
	return 0, false
}

// NeedsAnchor reports whether planning this step selects an anchor document.
// PLAN all_to_one and EXECUTE per_model consolidate and never anchor.
func (s Step) NeedsAnchor() bool {
	if s.JobType == domain.JobTypePlan && s.GranularityStrategy == StrategyAllToOne {
		return false
	}
	if s.JobType == domain.JobTypeExecute && s.GranularityStrategy == StrategyPerModel {
		return false
	}
	return true
}

// PrimaryDocumentKey is the document key the step's output is named after
func (s Step) PrimaryDocumentKey() string {
	if s.OutputsRequired == nil {
		return ""
	}
	if len(s.OutputsRequired.Documents) > 0 {
		return s.OutputsRequired.Documents[0].DocumentKey
	}
	if s.OutputsRequired.HeaderContextArtifact != nil {
		return s.OutputsRequired.HeaderContextArtifact.DocumentKey
	}
	return ""
}
