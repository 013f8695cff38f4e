package pathcodec

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/dialectic/internal/errors"
)

// Directory and file name fragments shared by Construct and the decode table
const (
	dirGeneralResource = "general_resource"
	dirPending         = "Pending"
	dirCurrent         = "Current"
	dirComplete        = "Complete"
	dirRawResponses    = "raw_responses"
	dirDocuments       = "documents"
	dirWork            = "_work"
	dirWorkPrompts     = "_work/prompts"
	dirWorkContext     = "_work/context"
	dirWorkAssembled   = "_work/assembled_json"
	dirWorkRaw         = "_work/raw_responses"

	fileProjectReadme   = "project_readme.md"
	fileProjectSettings = "project_settings.json"
	fileSeedPrompt      = "seed_prompt.md"

	defaultHeaderContextKey = "header_context"
)

// Construct returns the storage directory and file name for an artifact
func Construct(ctx PathContext) (PathParts, error) {
	kind := string(ctx.FileType)
	projectID := strings.Trim(strings.TrimSpace(ctx.ProjectID), "/")
	if projectID == "" {
		return PathParts{}, errors.NewPathMissingFieldError(kind, "projectId")
	}

	if ctx.FileType.IsProjectLevel() {
		return constructProjectLevel(projectID, ctx)
	}
	if !ctx.FileType.IsKnown() {
		return PathParts{}, errors.Newf(errors.ErrCodePathUnknownKind, "unknown file type %q", kind)
	}

	base, err := stageDir(projectID, ctx)
	if err != nil {
		return PathParts{}, err
	}

	switch ctx.FileType {
	case FileTypeSeedPrompt:
		return PathParts{StoragePath: base, FileName: fileSeedPrompt}, nil
	case FileTypeUserFeedback:
		return PathParts{StoragePath: base, FileName: "user_feedback_" + SanitizeForPath(ctx.StageSlug) + ".md"}, nil
	}

	model := SanitizeModelSlug(ctx.ModelSlug)
	if model == "" {
		return PathParts{}, errors.NewPathMissingFieldError(kind, "modelSlug")
	}
	if ctx.AttemptCount < 0 {
		return PathParts{}, errors.Newf(errors.ErrCodePathInvalidContext, "attemptCount must not be negative, got %d", ctx.AttemptCount)
	}
	attempt := strconv.Itoa(ctx.AttemptCount)

	switch ctx.FileType {
	case FileTypeModelContributionMain, FileTypeModelContributionRaw:
		key := SanitizeForPath(ctx.ContributionType)
		if key == "" {
			key = SanitizeForPath(ctx.StageSlug)
		}
		dir, suffix := base, ".md"
		if ctx.FileType == FileTypeModelContributionRaw {
			dir, suffix = path.Join(base, dirRawResponses), "_raw.json"
		}
		return PathParts{StoragePath: dir, FileName: stem(model, attempt, key, ctx) + continuation(ctx) + suffix}, nil

	case FileTypePlannerPrompt:
		step := SanitizeForPath(ctx.StepName)
		if step == "" {
			return PathParts{}, errors.NewPathMissingFieldError(kind, "stepName")
		}
		return PathParts{
			StoragePath: path.Join(base, dirWorkPrompts),
			FileName:    fmt.Sprintf("%s_%s_%s_planner_prompt.md", model, attempt, step),
		}, nil

	case FileTypeTurnPrompt:
		key, err := documentKey(ctx)
		if err != nil {
			return PathParts{}, err
		}
		return PathParts{
			StoragePath: path.Join(base, dirWorkPrompts),
			FileName:    fmt.Sprintf("%s_%s_%s%s_prompt.md", model, attempt, key, continuation(ctx)),
		}, nil

	case FileTypeHeaderContext:
		key := SanitizeForPath(ctx.DocumentKey)
		if key == "" {
			key = defaultHeaderContextKey
		}
		return PathParts{StoragePath: path.Join(base, dirWorkContext), FileName: stem(model, attempt, key, ctx) + ".json"}, nil

	case FileTypeAssembledDocumentJSON:
		key, err := documentKey(ctx)
		if err != nil {
			return PathParts{}, err
		}
		return PathParts{StoragePath: path.Join(base, dirWorkAssembled), FileName: stem(model, attempt, key, ctx) + "_assembled.json"}, nil

	case FileTypeRenderedDocument:
		key, err := documentKey(ctx)
		if err != nil {
			return PathParts{}, err
		}
		return PathParts{StoragePath: path.Join(base, dirDocuments), FileName: stem(model, attempt, key, ctx) + ".md"}, nil

	case FileTypeDocumentRawJSON:
		key, err := documentKey(ctx)
		if err != nil {
			return PathParts{}, err
		}
		return PathParts{StoragePath: path.Join(base, dirWorkRaw), FileName: stem(model, attempt, key, ctx) + continuation(ctx) + "_raw.json"}, nil

	case FileTypePairwiseSynthesisChunk:
		anchorModel, paired, anchorType := SanitizeModelSlug(ctx.SourceAnchorModelSlug), SanitizeModelSlug(ctx.PairedModelSlug), SanitizeForPath(ctx.SourceAnchorType)
		if anchorModel == "" || paired == "" || anchorType == "" {
			return PathParts{}, errors.NewPathMissingFieldError(kind, "sourceAnchorModelSlug, pairedModelSlug and sourceAnchorType")
		}
		return PathParts{
			StoragePath: path.Join(base, dirWork),
			FileName: fmt.Sprintf("%s_synthesizing_%s_with_%s_on_%s_%s_pairwise_synthesis_chunk.md",
				model, anchorModel, paired, anchorType, attempt),
		}, nil

	case FileTypeReducedSynthesis:
		anchorModel, anchorType := SanitizeModelSlug(ctx.SourceAnchorModelSlug), SanitizeForPath(ctx.SourceAnchorType)
		if anchorModel == "" || anchorType == "" {
			return PathParts{}, errors.NewPathMissingFieldError(kind, "sourceAnchorModelSlug and sourceAnchorType")
		}
		return PathParts{
			StoragePath: path.Join(base, dirWork),
			FileName:    fmt.Sprintf("%s_reducing_%s_by_%s_%s_reduced_synthesis.md", model, anchorType, anchorModel, attempt),
		}, nil

	case FileTypeRagContextSummary:
		var slugs []string
		for _, s := range ctx.SourceModelSlugs {
			if clean := SanitizeModelSlug(s); clean != "" {
				slugs = append(slugs, clean)
			}
		}
		if len(slugs) == 0 {
			return PathParts{}, errors.NewPathMissingFieldError(kind, "sourceModelSlugs")
		}
		return PathParts{
			StoragePath: path.Join(base, dirWork),
			FileName:    fmt.Sprintf("%s_compressing_%s_rag_summary.txt", model, strings.Join(slugs, "_and_")),
		}, nil

	case FileTypeWorkArtifact:
		key, err := documentKey(ctx)
		if err != nil {
			return PathParts{}, err
		}
		ext := strings.TrimPrefix(strings.ToLower(ctx.Extension), ".")
		switch ext {
		case "":
			ext = "md"
		case "md", "json", "txt":
		default:
			return PathParts{}, errors.Newf(errors.ErrCodePathInvalidContext, "work artifacts must be md, json or txt, got %q", ctx.Extension)
		}
		return PathParts{StoragePath: path.Join(base, dirWork), FileName: fmt.Sprintf("%s_%s_%s.%s", model, attempt, key, ext)}, nil
	}

	return PathParts{}, errors.Newf(errors.ErrCodePathUnknownKind, "no construction rule for file type %q", kind)
}

func constructProjectLevel(projectID string, ctx PathContext) (PathParts, error) {
	kind := string(ctx.FileType)
	switch ctx.FileType {
	case FileTypeProjectReadme:
		return PathParts{StoragePath: projectID, FileName: fileProjectReadme}, nil
	case FileTypeProjectSettings:
		return PathParts{StoragePath: projectID, FileName: fileProjectSettings}, nil
	}

	name := strings.TrimSpace(ctx.OriginalFileName)
	if name == "" {
		return PathParts{}, errors.NewPathMissingFieldError(kind, "originalFileName")
	}
	if strings.Contains(name, "/") {
		return PathParts{}, errors.Newf(errors.ErrCodePathInvalidContext, "originalFileName %q must not contain a directory", name)
	}

	switch ctx.FileType {
	case FileTypeInitialUserPrompt:
		if IsArchiveName(name) || name == fileProjectReadme || name == fileProjectSettings {
			return PathParts{}, errors.Newf(errors.ErrCodePathInvalidContext,
				"%q cannot be stored as the initial user prompt; the name is reserved for another project file", name)
		}
		return PathParts{StoragePath: projectID, FileName: name}, nil
	case FileTypeProjectExportZip:
		if !IsArchiveName(name) {
			return PathParts{}, errors.Newf(errors.ErrCodePathInvalidContext, "export archive %q must end in an archive extension", name)
		}
		return PathParts{StoragePath: projectID, FileName: name}, nil
	case FileTypeGeneralResource:
		return PathParts{StoragePath: path.Join(projectID, dirGeneralResource), FileName: name}, nil
	case FileTypePendingFile:
		return PathParts{StoragePath: path.Join(projectID, dirPending), FileName: name}, nil
	case FileTypeCurrentFile:
		return PathParts{StoragePath: path.Join(projectID, dirCurrent), FileName: name}, nil
	case FileTypeCompleteFile:
		return PathParts{StoragePath: path.Join(projectID, dirComplete), FileName: name}, nil
	}

	return PathParts{}, errors.Newf(errors.ErrCodePathUnknownKind, "no construction rule for file type %q", kind)
}

func stageDir(projectID string, ctx PathContext) (string, error) {
	kind := string(ctx.FileType)
	if strings.TrimSpace(ctx.SessionID) == "" {
		return "", errors.NewPathMissingFieldError(kind, "sessionId")
	}
	if strings.TrimSpace(ctx.StageSlug) == "" {
		return "", errors.NewPathMissingFieldError(kind, "stageSlug")
	}
	if ctx.Iteration < 0 {
		return "", errors.Newf(errors.ErrCodePathInvalidContext, "iteration must not be negative, got %d", ctx.Iteration)
	}
	return path.Join(
		projectID,
		"session_"+GenerateShortID(ctx.SessionID),
		"iteration_"+strconv.Itoa(ctx.Iteration),
		MapStageSlugToDirName(ctx.StageSlug),
	), nil
}

func documentKey(ctx PathContext) (string, error) {
	key := SanitizeForPath(ctx.DocumentKey)
	if key == "" {
		return "", errors.NewPathMissingFieldError(string(ctx.FileType), "documentKey")
	}
	return key, nil
}

// stem renders "{model}_{attempt}_{key}", embedding the critiqued
// document's provenance when the stage is a critique stage.
func stem(model, attempt, key string, ctx PathContext) string {
	if seg, ok := critiqueSegment(ctx); ok {
		return fmt.Sprintf("%s_critiquing_(%s)_%s_%s", model, seg, attempt, key)
	}
	return fmt.Sprintf("%s_%s_%s", model, attempt, key)
}

func critiqueSegment(ctx PathContext) (string, bool) {
	if !IsCritiqueStage(ctx.StageSlug) || ctx.SourceAttemptCount == nil {
		return "", false
	}
	anchorModel, anchorType := SanitizeModelSlug(ctx.SourceAnchorModelSlug), SanitizeForPath(ctx.SourceAnchorType)
	if anchorModel == "" || anchorType == "" {
		return "", false
	}
	return fmt.Sprintf("%s_%s_%d", anchorModel, anchorType, *ctx.SourceAttemptCount), true
}

func continuation(ctx PathContext) string {
	if !ctx.IsContinuation {
		return ""
	}
	return "_continuation_" + strconv.Itoa(ctx.TurnIndex)
}
