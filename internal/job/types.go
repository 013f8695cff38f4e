// Package job holds the records planners read and the payloads they emit.
package job

import (
	"github.com/felixgeelhaar/dialectic/internal/domain"
	"github.com/felixgeelhaar/dialectic/internal/pathcodec"
	"github.com/felixgeelhaar/dialectic/internal/recipe"
)

// RelationshipSourceGroup is the document_relationships key of the lineage pointer
const RelationshipSourceGroup = "source_group"

// DocumentRelationships maps relationship names (source_group, stage slugs)
// to contribution ids.
type DocumentRelationships map[string]string

// SourceGroup returns the lineage pointer, or "" for lineage roots
func (r DocumentRelationships) SourceGroup() string {
	return r[RelationshipSourceGroup]
}

// SourceDocument is an artifact produced by an earlier job. Planners never
// modify one.
type SourceDocument struct {
	ID                    string                `json:"id" yaml:"id"`
	SessionID             string                `json:"session_id" yaml:"session_id"`
	ContributionType      string                `json:"contribution_type" yaml:"contribution_type"`
	Stage                 string                `json:"stage" yaml:"stage"`
	IterationNumber       int                   `json:"iteration_number" yaml:"iteration_number"`
	ModelID               string                `json:"model_id" yaml:"model_id"`
	ModelName             string                `json:"model_name" yaml:"model_name"`
	AttemptCount          int                   `json:"attempt_count" yaml:"attempt_count"`
	StoragePath           string                `json:"storage_path" yaml:"storage_path"`
	FileName              string                `json:"file_name" yaml:"file_name"`
	DocumentRelationships DocumentRelationships `json:"document_relationships,omitempty" yaml:"document_relationships,omitempty"`
	DocumentKey           string                `json:"document_key,omitempty" yaml:"document_key,omitempty"`
}

// SourceGroup returns the id of the document that began this document's lineage
func (d SourceDocument) SourceGroup() string {
	return d.DocumentRelationships.SourceGroup()
}

// LineageKey is the source group, or the document's own id for a lineage root
func (d SourceDocument) LineageKey() string {
	if g := d.SourceGroup(); g != "" {
		return g
	}
	return d.ID
}

// PathInfo decodes the document's stored location
func (d SourceDocument) PathInfo() pathcodec.DeconstructedPathInfo {
	return pathcodec.Deconstruct(pathcodec.DeconstructInput{StoragePath: d.StoragePath, FileName: d.FileName})
}

// ResolvedDocumentKey is the document key embedded in the file name. It
// falls back to the document_key column and then to contribution_type.
func (d SourceDocument) ResolvedDocumentKey() string {
	if info := d.PathInfo(); info.DocumentKey != "" {
		return info.DocumentKey
	}
	if d.DocumentKey != "" {
		return d.DocumentKey
	}
	return d.ContributionType
}

// Optional holds the parent fields forwarded to children only when the
// parent sets them.
type Optional struct {
	ModelSlug             *string `json:"model_slug,omitempty" yaml:"model_slug,omitempty"`
	ContinueUntilComplete *bool   `json:"continueUntilComplete,omitempty" yaml:"continueUntilComplete,omitempty"`
	MaxRetries            *int    `json:"maxRetries,omitempty" yaml:"maxRetries,omitempty"`
	ContinuationCount     *int    `json:"continuation_count,omitempty" yaml:"continuation_count,omitempty"`
	IsTestJob             *bool   `json:"is_test_job,omitempty" yaml:"is_test_job,omitempty"`
	TargetContributionID  *string `json:"target_contribution_id,omitempty" yaml:"target_contribution_id,omitempty"`
}

// Clone copies every present field so children never share parent pointers
func (o Optional) Clone() Optional {
	return Optional{
		ModelSlug:             clonePtr(o.ModelSlug),
		ContinueUntilComplete: clonePtr(o.ContinueUntilComplete),
		MaxRetries:            clonePtr(o.MaxRetries),
		ContinuationCount:     clonePtr(o.ContinuationCount),
		IsTestJob:             clonePtr(o.IsTestJob),
		TargetContributionID:  clonePtr(o.TargetContributionID),
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// JobPayload is the payload of a PLAN job
type JobPayload struct {
	ProjectID       string `json:"projectId" yaml:"projectId"`
	SessionID       string `json:"sessionId" yaml:"sessionId"`
	StageSlug       string `json:"stageSlug" yaml:"stageSlug"`
	IterationNumber int    `json:"iterationNumber" yaml:"iterationNumber"`
	ModelID         string `json:"model_id" yaml:"model_id"`
	Optional        `yaml:",inline"`
}

// JobRow is a queued job
type JobRow struct {
	ID              string         `json:"id" yaml:"id"`
	UserID          string         `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	SessionID       string         `json:"session_id" yaml:"session_id"`
	StageSlug       string         `json:"stage_slug" yaml:"stage_slug"`
	IterationNumber int            `json:"iteration_number" yaml:"iteration_number"`
	JobType         domain.JobType `json:"job_type" yaml:"job_type"`
	Status          string         `json:"status,omitempty" yaml:"status,omitempty"`
	Payload         JobPayload     `json:"payload" yaml:"payload"`
}

// CanonicalPathParams is the provenance a new artifact's path is built from
type CanonicalPathParams struct {
	ContributionType          string   `json:"contributionType"`
	SourceModelSlugs          []string `json:"sourceModelSlugs,omitempty"`
	SourceAnchorType          string   `json:"sourceAnchorType,omitempty"`
	SourceAnchorModelSlug     string   `json:"sourceAnchorModelSlug,omitempty"`
	PairedModelSlug           string   `json:"pairedModelSlug,omitempty"`
	SourceAttemptCount        *int     `json:"sourceAttemptCount,omitempty"`
	SourceContributionIDShort string   `json:"sourceContributionIdShort,omitempty"`
}

// Inputs references the documents a child job reads
type Inputs struct {
	DocumentIDs     []string `json:"document_ids"`
	HeaderContextID string   `json:"header_context_id,omitempty"`
}

// PlannerMetadata records which recipe step produced a job
type PlannerMetadata struct {
	RecipeStepID string `json:"recipe_step_id"`
}

// ExecuteJobPayload is the payload of a planned EXECUTE child job
type ExecuteJobPayload struct {
	ProjectID       string         `json:"projectId"`
	SessionID       string         `json:"sessionId"`
	StageSlug       string         `json:"stageSlug"`
	IterationNumber int            `json:"iterationNumber"`
	ModelID         string         `json:"model_id"`
	JobType         domain.JobType `json:"job_type"`
	OutputType      string         `json:"output_type"`

	CanonicalPathParams   CanonicalPathParams   `json:"canonicalPathParams"`
	Inputs                Inputs                `json:"inputs"`
	DocumentRelationships DocumentRelationships `json:"document_relationships,omitempty"`
	PlannerMetadata       PlannerMetadata       `json:"planner_metadata"`
	// SourceContributionID is the lineage anchor; encoded as null when unset
	SourceContributionID *string `json:"sourceContributionId"`

	DocumentKey         string                      `json:"document_key,omitempty"`
	ContextForDocuments []recipe.ContextForDocument `json:"context_for_documents,omitempty"`
	FilesToGenerate     []recipe.FileToGenerate     `json:"files_to_generate,omitempty"`
	UserJWT             string                      `json:"user_jwt"`

	Optional
}
