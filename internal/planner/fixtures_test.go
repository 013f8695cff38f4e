package planner

import (
	"github.com/felixgeelhaar/dialectic/internal/domain"
	"github.com/felixgeelhaar/dialectic/internal/job"
	"github.com/felixgeelhaar/dialectic/internal/recipe"
)

const (
	projectID  = "proj-1"
	sessionID  = "a1b2c3d4-0000-4000-8000-000000000001"
	thesisPath = "proj-1/session_a1b2c3d4/iteration_1/1_thesis/documents"
)

func thesis(id, model string) job.SourceDocument {
	return job.SourceDocument{
		ID:               id,
		SessionID:        sessionID,
		ContributionType: "thesis",
		Stage:            "thesis",
		IterationNumber:  1,
		ModelID:          "model-" + model,
		ModelName:        model,
		StoragePath:      thesisPath,
		FileName:         model + "_0_business_case.md",
	}
}

func critique(id, model, of string) job.SourceDocument {
	return job.SourceDocument{
		ID:                    id,
		SessionID:             sessionID,
		ContributionType:      "antithesis",
		Stage:                 "antithesis",
		IterationNumber:       1,
		ModelID:               "model-" + model,
		ModelName:             model,
		DocumentKey:           "business_case_critique",
		DocumentRelationships: job.DocumentRelationships{job.RelationshipSourceGroup: of},
	}
}

func seedPrompt() job.SourceDocument {
	return job.SourceDocument{
		ID:               "seed",
		SessionID:        sessionID,
		ContributionType: "seed_prompt",
		Stage:            "synthesis",
		IterationNumber:  1,
	}
}

func parentJob(stage string) job.JobRow {
	return job.JobRow{
		ID:              "parent-1",
		SessionID:       sessionID,
		StageSlug:       stage,
		IterationNumber: 1,
		JobType:         domain.JobTypePlan,
		Payload: job.JobPayload{
			ProjectID:       projectID,
			SessionID:       sessionID,
			StageSlug:       stage,
			IterationNumber: 1,
			ModelID:         "model-parent",
		},
	}
}

func thesisInput(required bool) recipe.InputRule {
	return recipe.InputRule{Type: domain.InputDocument, Slug: "thesis", DocumentKey: "business_case", Required: required}
}

func critiqueInput(required bool) recipe.InputRule {
	return recipe.InputRule{Type: domain.InputDocument, Slug: "antithesis", DocumentKey: "business_case_critique", Required: required}
}

// synthesisStep reads a thesis and its critiques, ranking the thesis first
func synthesisStep(strategy string) recipe.Step {
	return recipe.Step{
		ID:                  "pairwise-synthesis",
		JobType:             domain.JobTypeExecute,
		GranularityStrategy: strategy,
		OutputType:          "pairwise_synthesis_chunk",
		InputsRequired: []recipe.InputRule{
			{Type: domain.InputSeedPrompt, Slug: "synthesis", Required: true},
			thesisInput(true),
			critiqueInput(true),
		},
		InputsRelevance: []recipe.RelevanceRule{
			{DocumentKey: "business_case", Relevance: 1.0},
			{DocumentKey: "business_case_critique", Relevance: 0.8},
		},
	}
}

func strPtr(s string) *string { return &s }
