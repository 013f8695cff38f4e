// Package canonical computes the provenance parameters a new artifact's
// path is built from.
package canonical

import (
	"slices"
	"strings"

	"github.com/felixgeelhaar/dialectic/internal/domain"
	"github.com/felixgeelhaar/dialectic/internal/job"
	"github.com/felixgeelhaar/dialectic/internal/pathcodec"
	"github.com/felixgeelhaar/dialectic/internal/recipe"
)

// BuildCanonicalPathParams derives path parameters for an artifact of
// outputType produced in stage from docs. anchor may be nil. Model slugs are
// returned in the form the path codec writes them.
func BuildCanonicalPathParams(docs []job.SourceDocument, outputType string, anchor *job.SourceDocument, stage string) job.CanonicalPathParams {
	params := job.CanonicalPathParams{
		ContributionType: contributionType(outputType, stage),
		SourceModelSlugs: modelSlugs(docs),
	}

	if anchor == nil {
		return params
	}

	params.SourceAnchorType = anchorType(*anchor)
	params.SourceAnchorModelSlug = pathcodec.SanitizeModelSlug(anchor.ModelName)
	attempt := anchor.AttemptCount
	params.SourceAttemptCount = &attempt

	// Entering a critique stage the model columns may name the critiquing
	// model; the stored file name still names the original author.
	if outputType == recipe.OutputTypeHeaderContext && pathcodec.IsCritiqueStage(stage) {
		if info := anchor.PathInfo(); info.Recognized() {
			if info.ModelSlug != "" {
				params.SourceAnchorModelSlug = info.ModelSlug
			}
			if info.AttemptCount != nil {
				n := *info.AttemptCount
				params.SourceAttemptCount = &n
			}
			switch {
			case info.DocumentKey != "":
				params.SourceAnchorType = info.DocumentKey
			case info.ContributionType != "":
				params.SourceAnchorType = info.ContributionType
			}
		}
	}

	if len(docs) == 2 && containsID(docs, anchor.ID) {
		for _, d := range docs {
			if d.ID != anchor.ID {
				params.PairedModelSlug = pathcodec.SanitizeModelSlug(d.ModelName)
			}
		}
	}

	params.SourceContributionIDShort = pathcodec.GenerateShortID(anchor.ID)
	return params
}

// contributionType lets the stage override the five generic stage kinds
func contributionType(outputType, stage string) string {
	if domain.IsStage(outputType) && stage != "" && !strings.EqualFold(stage, outputType) {
		return stage
	}
	return outputType
}

func anchorType(anchor job.SourceDocument) string {
	if anchor.DocumentKey != "" {
		return anchor.DocumentKey
	}
	return anchor.ContributionType
}

// modelSlugs returns the distinct sorted slugs, or nil when there are none
func modelSlugs(docs []job.SourceDocument) []string {
	var slugs []string
	for _, d := range docs {
		if slug := pathcodec.SanitizeModelSlug(d.ModelName); slug != "" && !slices.Contains(slugs, slug) {
			slugs = append(slugs, slug)
		}
	}
	slices.Sort(slugs)
	return slugs
}

func containsID(docs []job.SourceDocument, id string) bool {
	for _, d := range docs {
		if d.ID == id {
			return true
		}
	}
	return false
}
