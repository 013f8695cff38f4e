package planner

import (
	"maps"

	"github.com/felixgeelhaar/dialectic/internal/anchor"
	"github.com/felixgeelhaar/dialectic/internal/canonical"
	"github.com/felixgeelhaar/dialectic/internal/domain"
	"github.com/felixgeelhaar/dialectic/internal/errors"
	"github.com/felixgeelhaar/dialectic/internal/job"
	"github.com/felixgeelhaar/dialectic/internal/recipe"
)

// Planner expands a PLAN job into EXECUTE child payloads. Planners are pure:
// identical inputs yield identical payloads.
type Planner func(docs []job.SourceDocument, parent job.JobRow, step recipe.Step, authToken string) ([]job.ExecuteJobPayload, error)

// PlanPerSourceDocument creates one child per source document, anchored on it
func PlanPerSourceDocument(docs []job.SourceDocument, parent job.JobRow, step recipe.Step, authToken string) ([]job.ExecuteJobPayload, error) {
	if err := requireRelevance(step); err != nil {
		return nil, err
	}

	stage := stageOf(parent)
	payloads := make([]job.ExecuteJobPayload, 0, len(docs))
	for _, doc := range docs {
		doc := doc
		p := newPayload(parent, step, authToken)
		p.CanonicalPathParams = canonical.BuildCanonicalPathParams([]job.SourceDocument{doc}, step.OutputType, &doc, stage)
		p.Inputs = job.Inputs{DocumentIDs: []string{doc.ID}}
		p.DocumentRelationships = withSourceGroup(doc.LineageKey())
		p.SourceContributionID = idPtr(&doc)
		payloads = append(payloads, p)
	}
	return payloads, nil
}

// PlanPairwiseByOrigin pairs every primary document, the kind of the most
// relevant document input, with each other document descending from it.
func PlanPairwiseByOrigin(docs []job.SourceDocument, parent job.JobRow, step recipe.Step, authToken string) ([]job.ExecuteJobPayload, error) {
	if err := requireRelevance(step); err != nil {
		return nil, err
	}

	top, err := anchor.TopDocumentInput(step)
	if err != nil {
		return nil, err
	}
	if top == nil {
		return nil, errors.Newf(errors.ErrCodePlanNoPrimaryType,
			"Step %q has no scored document input to pair by", step.ID).
			WithSuggestion("Give the primary document input the highest inputs_relevance score")
	}

	var primaries, others []job.SourceDocument
	for _, d := range docs {
		if anchor.Matches(d, *top) {
			primaries = append(primaries, d)
		} else {
			others = append(others, d)
		}
	}

	stage := stageOf(parent)
	var payloads []job.ExecuteJobPayload
	for _, primary := range primaries {
		primary := primary
		lineage := primary.LineageKey()
		for _, other := range others {
			if other.SourceGroup() != lineage && other.LineageKey() != lineage {
				continue
			}
			pair := []job.SourceDocument{primary, other}

			p := newPayload(parent, step, authToken)
			p.CanonicalPathParams = canonical.BuildCanonicalPathParams(pair, step.OutputType, &primary, stage)
			p.Inputs = job.Inputs{DocumentIDs: documentIDs(pair)}
			p.DocumentRelationships = job.DocumentRelationships{
				job.RelationshipSourceGroup: lineage,
				other.Stage:                 other.ID,
			}
			p.DocumentRelationships[primary.Stage] = primary.ID
			p.SourceContributionID = idPtr(&primary)
			payloads = append(payloads, p)
		}
	}
	return payloads, nil
}

// PlanPerModel creates a single child for the parent's model over all docs
func PlanPerModel(docs []job.SourceDocument, parent job.JobRow, step recipe.Step, authToken string) ([]job.ExecuteJobPayload, error) {
	if len(docs) == 0 {
		return []job.ExecuteJobPayload{}, nil
	}

	p := newPayload(parent, step, authToken)
	p.CanonicalPathParams = canonical.BuildCanonicalPathParams(docs, step.OutputType, nil, stageOf(parent))
	p.Inputs = job.Inputs{DocumentIDs: documentIDs(docs), HeaderContextID: headerContextID(docs)}
	p.DocumentRelationships = withSourceGroup(CommonLineage(docs))
	return []job.ExecuteJobPayload{p}, nil
}

// PlanPerSourceDocumentByLineage creates one child per lineage. Every group
// must satisfy every required input before any child is created.
func PlanPerSourceDocumentByLineage(docs []job.SourceDocument, parent job.JobRow, step recipe.Step, authToken string) ([]job.ExecuteJobPayload, error) {
	if err := requireRelevance(step); err != nil {
		return nil, err
	}
	if err := checkLineage(step, docs); err != nil {
		return nil, err
	}

	var broadcast, lineaged []job.SourceDocument
	for _, d := range docs {
		if IsBroadcast(d) {
			broadcast = append(broadcast, d)
		} else {
			lineaged = append(lineaged, d)
		}
	}
	groups, keys := GroupByLineage(lineaged)

	scopes := make(map[string][]job.SourceDocument, len(keys))
	for _, key := range keys {
		scope := append(append([]job.SourceDocument{}, groups[key]...), broadcast...)
		for _, rule := range step.InputsRequired {
			if rule.Required && !satisfies(scope, rule) {
				return nil, errors.NewLineageIncompleteError(step.ID, key, rule.String())
			}
		}
		scopes[key] = scope
	}

	stage := stageOf(parent)
	payloads := make([]job.ExecuteJobPayload, 0, len(keys))
	for _, key := range keys {
		scope := scopes[key]
		doc, lineageAnchor, err := resolveAnchor(step, scope, docs)
		if err != nil {
			return nil, err
		}

		p := newPayload(parent, step, authToken)
		p.CanonicalPathParams = canonical.BuildCanonicalPathParams(scope, step.OutputType, doc, stage)
		p.Inputs = job.Inputs{DocumentIDs: documentIDs(scope), HeaderContextID: headerContextID(scope)}
		p.DocumentRelationships = withSourceGroup(key)
		if lineageAnchor {
			p.SourceContributionID = idPtr(doc)
		}
		payloads = append(payloads, p)
	}
	return payloads, nil
}

// PlanPerSourceGroup creates one child per source group. Documents without a
// source group are not planned, but the roots they name must be present.
func PlanPerSourceGroup(docs []job.SourceDocument, parent job.JobRow, step recipe.Step, authToken string) ([]job.ExecuteJobPayload, error) {
	if err := requireRelevance(step); err != nil {
		return nil, err
	}
	if err := checkLineage(step, docs); err != nil {
		return nil, err
	}

	groups, keys := GroupBySourceGroup(docs)
	stage := stageOf(parent)
	payloads := make([]job.ExecuteJobPayload, 0, len(keys))
	for _, key := range keys {
		members := groups[key]
		doc, err := anchor.SelectAnchorForPathParams(step, members)
		if err != nil {
			return nil, err
		}

		p := newPayload(parent, step, authToken)
		p.CanonicalPathParams = canonical.BuildCanonicalPathParams(members, step.OutputType, doc, stage)
		p.Inputs = job.Inputs{DocumentIDs: documentIDs(members), HeaderContextID: headerContextID(members)}
		p.DocumentRelationships = withSourceGroup(key)
		p.SourceContributionID = idPtr(doc)
		payloads = append(payloads, p)
	}
	return payloads, nil
}

// PlanAllToOne consolidates every document into a single child. PLAN steps
// must declare the header context they produce; EXECUTE steps the document
// they render and the files generated from it.
func PlanAllToOne(docs []job.SourceDocument, parent job.JobRow, step recipe.Step, authToken string) ([]job.ExecuteJobPayload, error) {
	if len(docs) == 0 {
		return []job.ExecuteJobPayload{}, nil
	}
	if err := requireRelevance(step); err != nil {
		return nil, err
	}

	p := newPayload(parent, step, authToken)
	p.Inputs = job.Inputs{DocumentIDs: documentIDs(docs), HeaderContextID: headerContextID(docs)}
	p.DocumentRelationships = withSourceGroup(CommonLineage(docs))

	var doc *job.SourceDocument
	if step.JobType == domain.JobTypePlan {
		outputs, err := step.RequirePlanOutputs()
		if err != nil {
			return nil, err
		}
		p.DocumentKey = outputs.HeaderContextArtifact.DocumentKey
		p.ContextForDocuments = cloneContexts(outputs.ContextForDocuments)
	} else {
		outputs, err := step.RequireExecuteOutputs()
		if err != nil {
			return nil, err
		}
		p.DocumentKey = outputs.Documents[0].DocumentKey
		p.FilesToGenerate = append([]recipe.FileToGenerate(nil), outputs.FilesToGenerate...)

		var lineageAnchor bool
		doc, lineageAnchor, err = resolveAnchor(step, docs, docs)
		if err != nil {
			return nil, err
		}
		if lineageAnchor {
			p.SourceContributionID = idPtr(doc)
		}
	}

	p.CanonicalPathParams = canonical.BuildCanonicalPathParams(docs, step.OutputType, doc, stageOf(parent))
	return []job.ExecuteJobPayload{p}, nil
}

func cloneContexts(in []recipe.ContextForDocument) []recipe.ContextForDocument {
	out := make([]recipe.ContextForDocument, len(in))
	for i, c := range in {
		out[i] = recipe.ContextForDocument{DocumentKey: c.DocumentKey, ContentToInclude: maps.Clone(c.ContentToInclude)}
	}
	return out
}
