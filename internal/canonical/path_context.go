package canonical

import (
	"github.com/felixgeelhaar/dialectic/internal/job"
	"github.com/felixgeelhaar/dialectic/internal/pathcodec"
)

// PathBase is the part of a path context the executor knows about itself
type PathBase struct {
	ProjectID    string
	SessionID    string
	Iteration    int
	StageSlug    string
	ModelSlug    string
	AttemptCount int
}

// ToPathContext turns planned params into a codec context for the artifact
// the executor is about to store.
func ToPathContext(params job.CanonicalPathParams, base PathBase, fileType pathcodec.FileType, documentKey string) pathcodec.PathContext {
	ctx := pathcodec.PathContext{
		ProjectID:             base.ProjectID,
		FileType:              fileType,
		SessionID:             base.SessionID,
		Iteration:             base.Iteration,
		StageSlug:             base.StageSlug,
		ModelSlug:             base.ModelSlug,
		AttemptCount:          base.AttemptCount,
		ContributionType:      params.ContributionType,
		DocumentKey:           documentKey,
		SourceModelSlugs:      params.SourceModelSlugs,
		SourceAnchorType:      params.SourceAnchorType,
		SourceAnchorModelSlug: params.SourceAnchorModelSlug,
		PairedModelSlug:       params.PairedModelSlug,
	}
	if params.SourceAttemptCount != nil {
		n := *params.SourceAttemptCount
		ctx.SourceAttemptCount = &n
	}
	return ctx
}

// ArtifactFileType is the codec kind a planned child's output is stored as.
// Output types that name a session kind map to it; otherwise a child with a
// document key renders a document and any other child writes a contribution.
func ArtifactFileType(p job.ExecuteJobPayload) pathcodec.FileType {
	if ft := pathcodec.FileType(p.OutputType); ft.IsKnown() && !ft.IsProjectLevel() {
		return ft
	}
	if p.DocumentKey != "" {
		return pathcodec.FileTypeRenderedDocument
	}
	return pathcodec.FileTypeModelContributionMain
}

// ArtifactPath previews where a planned child stores its output on the
// first attempt. The model slug option wins over the model id.
func ArtifactPath(p job.ExecuteJobPayload) (pathcodec.PathParts, error) {
	model := p.ModelID
	if p.ModelSlug != nil && *p.ModelSlug != "" {
		model = *p.ModelSlug
	}
	base := PathBase{
		ProjectID: p.ProjectID,
		SessionID: p.SessionID,
		Iteration: p.IterationNumber,
		StageSlug: p.StageSlug,
		ModelSlug: model,
	}
	return pathcodec.Construct(ToPathContext(p.CanonicalPathParams, base, ArtifactFileType(p), p.DocumentKey))
}
