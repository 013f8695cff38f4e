// Package planner fans a PLAN job out into EXECUTE child jobs according to
// the granularity strategy of a recipe step.
package planner

import (
	"slices"

	"github.com/felixgeelhaar/dialectic/internal/anchor"
	"github.com/felixgeelhaar/dialectic/internal/domain"
	"github.com/felixgeelhaar/dialectic/internal/errors"
	"github.com/felixgeelhaar/dialectic/internal/job"
	"github.com/felixgeelhaar/dialectic/internal/pathcodec"
	"github.com/felixgeelhaar/dialectic/internal/recipe"
)

// BroadcastKinds are contribution types shared by every lineage instead of
// belonging to one. A document of one of these kinds without a source group
// is handed to every lineage group.
var BroadcastKinds = []string{string(domain.InputSeedPrompt)}

// IsBroadcast reports whether doc is shared by all lineages
func IsBroadcast(doc job.SourceDocument) bool {
	return doc.SourceGroup() == "" && slices.Contains(BroadcastKinds, doc.ContributionType)
}

// IsHeaderContext reports whether doc is a header context, by column or by path
func IsHeaderContext(doc job.SourceDocument) bool {
	if doc.ContributionType == recipe.OutputTypeHeaderContext {
		return true
	}
	return doc.PathInfo().FileType == pathcodec.FileTypeHeaderContext
}

// GroupByLineage buckets docs by lineage key. Keys are returned sorted and
// documents keep their input order within a group.
func GroupByLineage(docs []job.SourceDocument) (map[string][]job.SourceDocument, []string) {
	return groupBy(docs, job.SourceDocument.LineageKey)
}

// GroupBySourceGroup buckets the docs that carry a source group. Lineage
// roots without one are left out.
func GroupBySourceGroup(docs []job.SourceDocument) (map[string][]job.SourceDocument, []string) {
	grouped := make([]job.SourceDocument, 0, len(docs))
	for _, d := range docs {
		if d.SourceGroup() != "" {
			grouped = append(grouped, d)
		}
	}
	return groupBy(grouped, job.SourceDocument.SourceGroup)
}

// checkLineage rejects documents whose source group is neither their own id
// nor the id of another document in docs.
func checkLineage(step recipe.Step, docs []job.SourceDocument) error {
	ids := make(map[string]bool, len(docs))
	for _, d := range docs {
		ids[d.ID] = true
	}
	for _, d := range docs {
		if g := d.SourceGroup(); g != "" && !ids[g] {
			return errors.NewDanglingLineageError(step.ID, d.ID, g)
		}
	}
	return nil
}

func groupBy(docs []job.SourceDocument, key func(job.SourceDocument) string) (map[string][]job.SourceDocument, []string) {
	groups := make(map[string][]job.SourceDocument)
	var keys []string
	for _, d := range docs {
		k := key(d)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], d)
	}
	slices.Sort(keys)
	return groups, keys
}

// CommonLineage returns the lineage key shared by every doc, or "" when
// they span several lineages or docs is empty.
func CommonLineage(docs []job.SourceDocument) string {
	if len(docs) == 0 {
		return ""
	}
	key := docs[0].LineageKey()
	for _, d := range docs[1:] {
		if d.LineageKey() != key {
			return ""
		}
	}
	return key
}

func documentIDs(docs []job.SourceDocument) []string {
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids
}

func headerContextID(docs []job.SourceDocument) string {
	for _, d := range docs {
		if IsHeaderContext(d) {
			return d.ID
		}
	}
	return ""
}

func firstHeaderContext(docs []job.SourceDocument) *job.SourceDocument {
	for i := range docs {
		if IsHeaderContext(docs[i]) {
			d := docs[i]
			return &d
		}
	}
	return nil
}

// stageOf is the stage the child artifacts are produced in
func stageOf(parent job.JobRow) string {
	if parent.Payload.StageSlug != "" {
		return parent.Payload.StageSlug
	}
	return parent.StageSlug
}

// newPayload fills the fields every child job shares
func newPayload(parent job.JobRow, step recipe.Step, authToken string) job.ExecuteJobPayload {
	p := parent.Payload
	sessionID := p.SessionID
	if sessionID == "" {
		sessionID = parent.SessionID
	}
	iteration := p.IterationNumber
	if iteration == 0 {
		iteration = parent.IterationNumber
	}

	return job.ExecuteJobPayload{
		ProjectID:       p.ProjectID,
		SessionID:       sessionID,
		StageSlug:       stageOf(parent),
		IterationNumber: iteration,
		ModelID:         p.ModelID,
		JobType:         domain.JobTypeExecute,
		OutputType:      step.OutputType,
		PlannerMetadata: job.PlannerMetadata{RecipeStepID: step.ID},
		DocumentKey:     step.PrimaryDocumentKey(),
		UserJWT:         authToken,
		Optional:        p.Optional.Clone(),
	}
}

// requireRelevance rejects anchoring steps with document inputs but no
// relevance metadata to rank them by.
func requireRelevance(step recipe.Step) error {
	if step.NeedsAnchor() && len(step.DocumentInputs()) > 0 && len(step.InputsRelevance) == 0 {
		return errors.NewNoRelevanceError(step.ID)
	}
	return nil
}

// resolveAnchor turns the lineage decision into a document. When the winning
// input is absent from scope it falls back to the best-effort naming anchor
// over all.
func resolveAnchor(step recipe.Step, scope, all []job.SourceDocument) (*job.SourceDocument, bool, error) {
	res, err := anchor.SelectAnchor(step, scope)
	if err != nil {
		return nil, false, err
	}

	switch res.Kind {
	case anchor.AnchorFound:
		return res.Document, true, nil
	case anchor.DeriveFromHeaderContext:
		return firstHeaderContext(scope), false, nil
	case anchor.AnchorNotFound:
		doc, err := anchor.SelectAnchorForPathParams(step, all)
		return doc, false, err
	default:
		return nil, false, nil
	}
}

func idPtr(doc *job.SourceDocument) *string {
	if doc == nil {
		return nil
	}
	id := doc.ID
	return &id
}

func withSourceGroup(key string) job.DocumentRelationships {
	if key == "" {
		return nil
	}
	return job.DocumentRelationships{job.RelationshipSourceGroup: key}
}

// satisfies reports whether a required input rule is met by docs
func satisfies(docs []job.SourceDocument, rule recipe.InputRule) bool {
	for _, d := range docs {
		switch rule.Type {
		case domain.InputDocument:
			if anchor.Matches(d, rule) {
				return true
			}
		case domain.InputHeaderContext:
			if IsHeaderContext(d) && (rule.DocumentKey == "" || d.ResolvedDocumentKey() == rule.DocumentKey) {
				return true
			}
		default:
			if d.ContributionType == string(rule.Type) && (rule.DocumentKey == "" || d.ResolvedDocumentKey() == rule.DocumentKey) {
				return true
			}
		}
	}
	return false
}
