package pathcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/dialectic/internal/errors"
)

const (
	testProjectID = "6f1c2a4e-5b7d-4e8f-9a0b-1c2d3e4f5a6b"
	testSessionID = "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d"
)

func intPtr(n int) *int { return &n }

func sessionCtx(kind FileType) PathContext {
	return PathContext{
		ProjectID:    testProjectID,
		FileType:     kind,
		SessionID:    testSessionID,
		Iteration:    2,
		StageSlug:    "synthesis",
		ModelSlug:    "Claude-3-Opus",
		AttemptCount: 1,
	}
}

func TestMapDirNameToStageSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1_thesis", "thesis"},
		{"THESIS", "thesis"},
		{"2_ANTITHESIS", "antithesis"},
		{"5_paralysis", "paralysis"},
		{"custom_stage", "custom_stage"},
		{"Custom", "Custom"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MapDirNameToStageSlug(tt.in))
		})
	}
}

func TestMapStageSlugToDirName(t *testing.T) {
	assert.Equal(t, "1_thesis", MapStageSlugToDirName("thesis"))
	assert.Equal(t, "3_synthesis", MapStageSlugToDirName("Synthesis"))
	assert.Equal(t, "review", MapStageSlugToDirName("review"))

	for _, s := range stageDirs {
		assert.Equal(t, s.slug, MapDirNameToStageSlug(MapStageSlugToDirName(s.slug)))
	}
}

func TestSanitizeForPath(t *testing.T) {
	assert.Equal(t, "claude_3_opus", SanitizeForPath("  Claude 3   Opus "))
	assert.Equal(t, "gpt-4o", SanitizeForPath("GPT-4o"))
	assert.Equal(t, "modelv2.1", SanitizeForPath("model/v2.1!"))
	assert.Equal(t, "", SanitizeForPath("  "))
}

func TestSanitizeModelSlug(t *testing.T) {
	assert.Equal(t, "llama-3-70b", SanitizeModelSlug("Llama 3 70B"))
	assert.Equal(t, "my-model-2", SanitizeModelSlug("my_model_2"))
	assert.Equal(t, "gpt-4o", SanitizeModelSlug("GPT-4o"))
	assert.Equal(t, "-", SanitizeModelSlug("_!"))
}

func TestConstruct_ModelNamesWithDigitRuns(t *testing.T) {
	tests := []struct {
		name string
		ctx  PathContext
	}{
		{"contribution", PathContext{FileType: FileTypeModelContributionMain, ModelSlug: "Llama 3 70B", ContributionType: "thesis"}},
		{"continuation", PathContext{FileType: FileTypeModelContributionMain, ModelSlug: "Llama 3 70B", ContributionType: "thesis", IsContinuation: true, TurnIndex: 3}},
		{"raw contribution", PathContext{FileType: FileTypeModelContributionRaw, ModelSlug: "mixtral_8_7b", ContributionType: "thesis"}},
		{"rendered document", PathContext{FileType: FileTypeRenderedDocument, ModelSlug: "Llama 3 70B", DocumentKey: "business_case"}},
		{"critique", PathContext{
			FileType: FileTypeRenderedDocument, StageSlug: "antithesis", ModelSlug: "Qwen 2 72B", DocumentKey: "business_case_critique",
			SourceAnchorModelSlug: "Llama 3 70B", SourceAnchorType: "business_case", SourceAttemptCount: intPtr(1),
		}},
		{"pairwise", PathContext{
			FileType: FileTypePairwiseSynthesisChunk, ModelSlug: "Llama 3 70B",
			SourceAnchorModelSlug: "gpt 4", PairedModelSlug: "claude 3 5", SourceAnchorType: "thesis",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := tt.ctx
			ctx.ProjectID, ctx.SessionID, ctx.Iteration, ctx.AttemptCount = testProjectID, testSessionID, 1, 2
			if ctx.StageSlug == "" {
				ctx.StageSlug = "thesis"
			}

			parts, err := Construct(ctx)
			require.NoError(t, err)

			info := Deconstruct(DeconstructInput{StoragePath: parts.StoragePath, FileName: parts.FileName})
			assertRoundTrip(t, ctx, info)
		})
	}
}

func TestConstruct_ModelSlugWritesHyphens(t *testing.T) {
	ctx := sessionCtx(FileTypeModelContributionMain)
	ctx.ModelSlug = "Llama 3 70B"
	ctx.AttemptCount = 0

	parts, err := Construct(ctx)
	require.NoError(t, err)
	assert.Equal(t, "llama-3-70b_0_synthesis.md", parts.FileName)

	info := Deconstruct(DeconstructInput{StoragePath: parts.StoragePath, FileName: parts.FileName})
	assert.Equal(t, "llama-3-70b", info.ModelSlug)
	assert.Equal(t, intPtr(0), info.AttemptCount)
	assert.Equal(t, "synthesis", info.ContributionType)
}

func TestGenerateShortID(t *testing.T) {
	assert.Equal(t, "a1b2c3d4", GenerateShortID(testSessionID))
	assert.Equal(t, "abc", GenerateShortID("abc"))
	assert.Equal(t, GenerateShortID(testSessionID), GenerateShortID(testSessionID))
}

func TestDeconstruct_Unknown(t *testing.T) {
	info := Deconstruct(DeconstructInput{
		StoragePath: "some/completely/unknown/path/structure",
		FileName:    "file.txt",
	})

	assert.Equal(t, DeconstructedPathInfo{Error: "Path did not match any known deconstruction patterns."}, info)
	assert.False(t, info.Recognized())
	assert.Nil(t, info.Iteration)
	assert.Nil(t, info.AttemptCount)
}

func TestDeconstruct_EmptyInput(t *testing.T) {
	assert.Equal(t, ErrUnrecognizedPath, Deconstruct(DeconstructInput{}).Error)
	assert.Equal(t, ErrUnrecognizedPath, Deconstruct(DeconstructInput{StoragePath: testProjectID}).Error)
	assert.Equal(t, ErrUnrecognizedPath, DeconstructPath("no-slash.md").Error)
}

func TestDeconstruct_ExportArchiveNeverInitialPrompt(t *testing.T) {
	for _, name := range []string{"my_export.zip", "MY_EXPORT.ZIP", "backup.tar", "b.tgz", "x.gz", "y.rar", "z.7z", ".zip", ".TAR"} {
		t.Run(name, func(t *testing.T) {
			info := Deconstruct(DeconstructInput{StoragePath: testProjectID, FileName: name})
			require.True(t, info.Recognized())
			assert.Equal(t, FileTypeProjectExportZip, info.FileType)
			assert.Equal(t, testProjectID, info.OriginalProjectID)
			assert.Equal(t, name, info.OriginalFileName)
		})
	}
}

func TestConstruct_BareArchiveExtension(t *testing.T) {
	parts, err := Construct(PathContext{ProjectID: testProjectID, FileType: FileTypeProjectExportZip, OriginalFileName: ".zip"})
	require.NoError(t, err)

	info := Deconstruct(DeconstructInput{StoragePath: parts.StoragePath, FileName: parts.FileName})
	assert.Equal(t, FileTypeProjectExportZip, info.FileType)
	assert.Equal(t, ".zip", info.OriginalFileName)
}

func TestDeconstruct_InitialUserPromptCatchAll(t *testing.T) {
	info := Deconstruct(DeconstructInput{
		StoragePath:        testProjectID + "/",
		FileName:           "initial_prompt_1700000000.md",
		DBOriginalFileName: "My Idea.md",
	})

	require.True(t, info.Recognized())
	assert.Equal(t, FileTypeInitialUserPrompt, info.FileType)
	assert.Equal(t, "My Idea.md", info.OriginalFileName)
	assert.Equal(t, "initial_user_prompt", info.Rule)
}

func TestDeconstruct_ProjectFiles(t *testing.T) {
	tests := []struct {
		dir  string
		file string
		want FileType
	}{
		{testProjectID, "project_readme.md", FileTypeProjectReadme},
		{testProjectID, "project_settings.json", FileTypeProjectSettings},
		{testProjectID + "/general_resource", "notes.pdf", FileTypeGeneralResource},
		{testProjectID + "/Pending", "task.md", FileTypePendingFile},
		{testProjectID + "/Current", "task.md", FileTypeCurrentFile},
		{testProjectID + "/Complete", "task.md", FileTypeCompleteFile},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			info := Deconstruct(DeconstructInput{StoragePath: tt.dir, FileName: tt.file})
			require.True(t, info.Recognized(), info.Error)
			assert.Equal(t, tt.want, info.FileType)
			assert.Equal(t, testProjectID, info.OriginalProjectID)
			assert.Empty(t, info.ShortSessionID)
		})
	}
}

func TestDeconstruct_Precedence(t *testing.T) {
	base := testProjectID + "/session_a1b2c3d4/iteration_1/2_antithesis"

	tests := []struct {
		name     string
		dir      string
		file     string
		wantType FileType
		wantRule string
	}{
		{
			name:     "critique beats plain contribution",
			dir:      base,
			file:     "gpt-4_critiquing_(claude_business_case_0)_1_antithesis.md",
			wantType: FileTypeModelContributionMain,
			wantRule: "critique_contribution_main",
		},
		{
			name:     "continuation beats plain contribution",
			dir:      base,
			file:     "gpt-4_0_antithesis_continuation_2.md",
			wantType: FileTypeModelContributionMain,
			wantRule: "continuation_contribution_main",
		},
		{
			name:     "planner prompt beats turn prompt",
			dir:      base + "/_work/prompts",
			file:     "gpt-4_0_outline_planner_prompt.md",
			wantType: FileTypePlannerPrompt,
			wantRule: "planner_prompt",
		},
		{
			name:     "pairwise beats generic work",
			dir:      base + "/_work",
			file:     "gpt-4_synthesizing_claude_with_gemini_on_thesis_0_pairwise_synthesis_chunk.md",
			wantType: FileTypePairwiseSynthesisChunk,
			wantRule: "pairwise_synthesis_chunk",
		},
		{
			name:     "generic work fallback",
			dir:      base + "/_work",
			file:     "gpt-4_3_scratch_notes.json",
			wantType: FileTypeWorkArtifact,
			wantRule: "work_artifact",
		},
		{
			name:     "seed prompt at stage root",
			dir:      base,
			file:     "seed_prompt.md",
			wantType: FileTypeSeedPrompt,
			wantRule: "seed_prompt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := Deconstruct(DeconstructInput{StoragePath: tt.dir, FileName: tt.file})
			require.True(t, info.Recognized(), info.Error)
			assert.Equal(t, tt.wantType, info.FileType)
			assert.Equal(t, tt.wantRule, info.Rule)
			assert.Equal(t, "antithesis", info.StageSlug)
			assert.Equal(t, "2_antithesis", info.StageDirName)
		})
	}
}

func TestDeconstruct_CritiqueProvenance(t *testing.T) {
	info := DeconstructPath(testProjectID +
		"/session_a1b2c3d4/iteration_1/2_antithesis/documents/gpt-4_critiquing_(claude_business_case_3)_1_business_case_critique.md")

	require.True(t, info.Recognized(), info.Error)
	assert.Equal(t, FileTypeRenderedDocument, info.FileType)
	assert.Equal(t, "gpt-4", info.ModelSlug)
	assert.Equal(t, "claude", info.SourceAnchorModelSlug)
	assert.Equal(t, "business_case", info.SourceAnchorType)
	assert.Equal(t, intPtr(3), info.SourceAttemptCount)
	assert.Equal(t, intPtr(1), info.AttemptCount)
	assert.Equal(t, "business_case_critique", info.DocumentKey)
}

func TestConstruct_ProjectLevel(t *testing.T) {
	tests := []struct {
		name     string
		ctx      PathContext
		wantDir  string
		wantFile string
	}{
		{
			name:     "readme",
			ctx:      PathContext{ProjectID: testProjectID, FileType: FileTypeProjectReadme},
			wantDir:  testProjectID,
			wantFile: "project_readme.md",
		},
		{
			name:     "general resource",
			ctx:      PathContext{ProjectID: testProjectID, FileType: FileTypeGeneralResource, OriginalFileName: "brief.pdf"},
			wantDir:  testProjectID + "/general_resource",
			wantFile: "brief.pdf",
		},
		{
			name:     "pending mailbox",
			ctx:      PathContext{ProjectID: testProjectID, FileType: FileTypePendingFile, OriginalFileName: "todo.md"},
			wantDir:  testProjectID + "/Pending",
			wantFile: "todo.md",
		},
		{
			name:     "export archive",
			ctx:      PathContext{ProjectID: testProjectID, FileType: FileTypeProjectExportZip, OriginalFileName: "export.zip"},
			wantDir:  testProjectID,
			wantFile: "export.zip",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts, err := Construct(tt.ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDir, parts.StoragePath)
			assert.Equal(t, tt.wantFile, parts.FileName)

			info := Deconstruct(DeconstructInput{StoragePath: parts.StoragePath, FileName: parts.FileName})
			assert.Equal(t, tt.ctx.FileType, info.FileType)
		})
	}
}

func TestConstruct_SessionLayout(t *testing.T) {
	ctx := sessionCtx(FileTypeRenderedDocument)
	ctx.ModelSlug = "Claude 3 Opus"
	ctx.DocumentKey = "Business Case"

	parts, err := Construct(ctx)
	require.NoError(t, err)

	assert.Equal(t, testProjectID+"/session_a1b2c3d4/iteration_2/3_synthesis/documents", parts.StoragePath)
	assert.Equal(t, "claude-3-opus_1_business_case.md", parts.FileName)
}

func TestConstruct_CritiqueOnlyInCritiqueStage(t *testing.T) {
	ctx := sessionCtx(FileTypeModelContributionMain)
	ctx.ModelSlug = "gpt-4"
	ctx.ContributionType = "antithesis"
	ctx.SourceAnchorModelSlug = "claude"
	ctx.SourceAnchorType = "thesis"
	ctx.SourceAttemptCount = intPtr(0)

	parts, err := Construct(ctx)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4_1_antithesis.md", parts.FileName, "synthesis stage files carry no critique provenance")

	ctx.StageSlug = "antithesis"
	parts, err = Construct(ctx)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4_critiquing_(claude_thesis_0)_1_antithesis.md", parts.FileName)
}

func TestConstruct_Errors(t *testing.T) {
	tests := []struct {
		name     string
		ctx      PathContext
		wantCode errors.ErrorCode
	}{
		{
			name:     "missing project",
			ctx:      PathContext{FileType: FileTypeProjectReadme},
			wantCode: errors.ErrCodePathMissingField,
		},
		{
			name:     "unknown kind",
			ctx:      PathContext{ProjectID: testProjectID, FileType: "hologram"},
			wantCode: errors.ErrCodePathUnknownKind,
		},
		{
			name:     "missing session",
			ctx:      PathContext{ProjectID: testProjectID, FileType: FileTypeSeedPrompt, StageSlug: "thesis"},
			wantCode: errors.ErrCodePathMissingField,
		},
		{
			name: "missing model",
			ctx: func() PathContext {
				c := sessionCtx(FileTypeModelContributionMain)
				c.ModelSlug = "!!"
				return c
			}(),
			wantCode: errors.ErrCodePathMissingField,
		},
		{
			name:     "missing document key",
			ctx:      sessionCtx(FileTypeRenderedDocument),
			wantCode: errors.ErrCodePathMissingField,
		},
		{
			name:     "archive as initial prompt",
			ctx:      PathContext{ProjectID: testProjectID, FileType: FileTypeInitialUserPrompt, OriginalFileName: "idea.zip"},
			wantCode: errors.ErrCodePathInvalidContext,
		},
		{
			name:     "export without archive extension",
			ctx:      PathContext{ProjectID: testProjectID, FileType: FileTypeProjectExportZip, OriginalFileName: "export.md"},
			wantCode: errors.ErrCodePathInvalidContext,
		},
		{
			name: "negative attempt",
			ctx: func() PathContext {
				c := sessionCtx(FileTypeModelContributionMain)
				c.AttemptCount = -1
				return c
			}(),
			wantCode: errors.ErrCodePathInvalidContext,
		},
		{
			name:     "rag summary without sources",
			ctx:      sessionCtx(FileTypeRagContextSummary),
			wantCode: errors.ErrCodePathMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Construct(tt.ctx)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.CodeOf(err))
		})
	}
}

func TestRoundTrip_EveryKind(t *testing.T) {
	withKey := func(kind FileType, key string) PathContext {
		c := sessionCtx(kind)
		c.DocumentKey = key
		return c
	}
	anchored := func(c PathContext) PathContext {
		c.StageSlug = "antithesis"
		c.SourceAnchorModelSlug = "gemini-pro"
		c.SourceAnchorType = "business_case"
		c.SourceAttemptCount = intPtr(4)
		return c
	}

	cases := map[string]PathContext{
		"seed prompt":   sessionCtx(FileTypeSeedPrompt),
		"user feedback": sessionCtx(FileTypeUserFeedback),
		"main": func() PathContext {
			c := sessionCtx(FileTypeModelContributionMain)
			c.ContributionType = "synthesis"
			return c
		}(),
		"main continuation": func() PathContext {
			c := sessionCtx(FileTypeModelContributionMain)
			c.ContributionType = "synthesis"
			c.IsContinuation, c.TurnIndex = true, 3
			return c
		}(),
		"raw main": func() PathContext {
			c := sessionCtx(FileTypeModelContributionRaw)
			c.ContributionType = "synthesis"
			return c
		}(),
		"planner prompt": func() PathContext {
			c := sessionCtx(FileTypePlannerPrompt)
			c.StepName = "generate_header"
			return c
		}(),
		"turn prompt":            withKey(FileTypeTurnPrompt, "feature_spec"),
		"header context":         withKey(FileTypeHeaderContext, "header_context"),
		"assembled json":         withKey(FileTypeAssembledDocumentJSON, "technical_approach"),
		"rendered document":      withKey(FileTypeRenderedDocument, "business_case"),
		"document raw json":      withKey(FileTypeDocumentRawJSON, "success_metrics"),
		"critique rendered":      anchored(withKey(FileTypeRenderedDocument, "business_case_critique")),
		"critique header":        anchored(withKey(FileTypeHeaderContext, "header_context")),
		"critique assembled":     anchored(withKey(FileTypeAssembledDocumentJSON, "risk_register")),
		"critique doc raw":       anchored(withKey(FileTypeDocumentRawJSON, "risk_register")),
		"work artifact":          withKey(FileTypeWorkArtifact, "scratch"),
		"work artifact with ext": func() PathContext { c := withKey(FileTypeWorkArtifact, "scratch"); c.Extension = ".json"; return c }(),
		"pairwise": func() PathContext {
			c := sessionCtx(FileTypePairwiseSynthesisChunk)
			c.SourceAnchorModelSlug, c.PairedModelSlug, c.SourceAnchorType = "gpt-4", "gemini-pro", "business_case"
			return c
		}(),
		"reduced": func() PathContext {
			c := sessionCtx(FileTypeReducedSynthesis)
			c.SourceAnchorModelSlug, c.SourceAnchorType = "gpt-4", "pairwise_synthesis_chunk"
			return c
		}(),
		"rag summary": func() PathContext {
			c := sessionCtx(FileTypeRagContextSummary)
			c.SourceModelSlugs = []string{"gpt-4", "gemini-pro"}
			return c
		}(),
	}

	for name, ctx := range cases {
		t.Run(name, func(t *testing.T) {
			parts, err := Construct(ctx)
			require.NoError(t, err)

			info := Deconstruct(DeconstructInput{StoragePath: parts.StoragePath, FileName: parts.FileName})
			assertRoundTrip(t, ctx, info)
		})
	}
}

// roundTripT is satisfied by both *testing.T and *rapid.T
type roundTripT interface {
	require.TestingT
	Helper()
}

// assertRoundTrip checks every field of ctx that has a slot for its kind
func assertRoundTrip(t roundTripT, ctx PathContext, info DeconstructedPathInfo) {
	t.Helper()

	require.Empty(t, info.Error)
	assert.Equal(t, ctx.FileType, info.FileType)
	assert.Equal(t, ctx.ProjectID, info.OriginalProjectID)
	assert.Equal(t, GenerateShortID(ctx.SessionID), info.ShortSessionID)
	assert.Equal(t, intPtr(ctx.Iteration), info.Iteration)
	assert.Equal(t, ctx.StageSlug, info.StageSlug)

	switch ctx.FileType {
	case FileTypeSeedPrompt, FileTypeUserFeedback:
		return
	case FileTypeRagContextSummary:
		assert.Equal(t, SanitizeModelSlug(ctx.ModelSlug), info.ModelSlug)
		var slugs []string
		for _, m := range ctx.SourceModelSlugs {
			slugs = append(slugs, SanitizeModelSlug(m))
		}
		assert.Equal(t, slugs, info.SourceModelSlugs)
		return
	}

	assert.Equal(t, SanitizeModelSlug(ctx.ModelSlug), info.ModelSlug)
	assert.Equal(t, intPtr(ctx.AttemptCount), info.AttemptCount)

	switch ctx.FileType {
	case FileTypeModelContributionMain, FileTypeModelContributionRaw:
		assert.Equal(t, ctx.ContributionType, info.ContributionType)
	case FileTypePlannerPrompt:
		assert.Equal(t, ctx.StepName, info.StepName)
	case FileTypePairwiseSynthesisChunk:
		assert.Equal(t, SanitizeModelSlug(ctx.SourceAnchorModelSlug), info.SourceAnchorModelSlug)
		assert.Equal(t, SanitizeModelSlug(ctx.PairedModelSlug), info.PairedModelSlug)
		assert.Equal(t, ctx.SourceAnchorType, info.SourceAnchorType)
	case FileTypeReducedSynthesis:
		assert.Equal(t, SanitizeModelSlug(ctx.SourceAnchorModelSlug), info.SourceAnchorModelSlug)
		assert.Equal(t, ctx.SourceAnchorType, info.SourceAnchorType)
	default:
		assert.Equal(t, ctx.DocumentKey, info.DocumentKey)
	}

	if ctx.IsContinuation {
		assert.True(t, info.IsContinuation)
		assert.Equal(t, intPtr(ctx.TurnIndex), info.TurnIndex)
	}

	if _, critique := critiqueSegment(ctx); critique {
		assert.Equal(t, SanitizeModelSlug(ctx.SourceAnchorModelSlug), info.SourceAnchorModelSlug)
		assert.Equal(t, ctx.SourceAnchorType, info.SourceAnchorType)
		assert.Equal(t, ctx.SourceAttemptCount, info.SourceAttemptCount)
	}
}
