package pathcodec

import (
	"regexp"
	"strconv"
	"strings"
)

// decodeRule pairs a directory pattern and a file name pattern with the
// builder that turns their captures into a result.
type decodeRule struct {
	name  string
	dir   *regexp.Regexp
	file  *regexp.Regexp
	build func(dir, file []string, in DeconstructInput) DeconstructedPathInfo
}

// decodeRules is evaluated top to bottom and the first rule whose patterns
// both match wins. Order is part of the wire format: several file names
// satisfy more than one pattern.
var decodeRules = []decodeRule{
	// Critique provenance and continuation turns of stage contributions
	critiqueRule("critique_contribution_main", "", `\.md`, true, FileTypeModelContributionMain),
	critiqueRule("critique_contribution_raw", dirRawResponses, `_raw\.json`, true, FileTypeModelContributionRaw),
	critiqueRule("critique_rendered_document", dirDocuments, `\.md`, false, FileTypeRenderedDocument),
	critiqueRule("critique_document_raw", dirWorkRaw, `_raw\.json`, true, FileTypeDocumentRawJSON),
	critiqueRule("critique_header_context", dirWorkContext, `\.json`, false, FileTypeHeaderContext),
	critiqueRule("critique_assembled_json", dirWorkAssembled, `_assembled\.json`, false, FileTypeAssembledDocumentJSON),
	{
		name: "continuation_contribution_main",
		dir:  sessionPattern(""),
		file: regexp.MustCompile(`^(.+?)_(\d+)_(.+)_continuation_(\d+)\.md$`),
		build: func(d, f []string, _ DeconstructInput) DeconstructedPathInfo {
			info := modelInfo(d, f, FileTypeModelContributionMain)
			info.ContributionType = f[3]
			info.IsContinuation, info.TurnIndex = true, atoi(f[4])
			return info
		},
	},
	{
		name: "continuation_contribution_raw",
		dir:  sessionPattern(dirRawResponses),
		file: regexp.MustCompile(`^(.+?)_(\d+)_(.+)_continuation_(\d+)_raw\.json$`),
		build: func(d, f []string, _ DeconstructInput) DeconstructedPathInfo {
			info := modelInfo(d, f, FileTypeModelContributionRaw)
			info.ContributionType = f[3]
			info.IsContinuation, info.TurnIndex = true, atoi(f[4])
			return info
		},
	},

	// Document-centric artifacts
	{
		name: "planner_prompt",
		dir:  sessionPattern(dirWorkPrompts),
		file: regexp.MustCompile(`^(.+?)_(\d+)_(.+)_planner_prompt\.md$`),
		build: func(d, f []string, _ DeconstructInput) DeconstructedPathInfo {
			info := modelInfo(d, f, FileTypePlannerPrompt)
			info.StepName = f[3]
			return info
		},
	},
	{
		name: "turn_prompt",
		dir:  sessionPattern(dirWorkPrompts),
		file: regexp.MustCompile(`^(.+?)_(\d+)_(.+?)(?:_continuation_(\d+))?_prompt\.md$`),
		build: func(d, f []string, _ DeconstructInput) DeconstructedPathInfo {
			info := modelInfo(d, f, FileTypeTurnPrompt)
			info.DocumentKey = f[3]
			setContinuation(&info, f[4])
			return info
		},
	},
	{
		name: "header_context",
		dir:  sessionPattern(dirWorkContext),
		file: regexp.MustCompile(`^(.+?)_(\d+)_(.+)\.json$`),
		build: func(d, f []string, _ DeconstructInput) DeconstructedPathInfo {
			info := modelInfo(d, f, FileTypeHeaderContext)
			info.ContributionType = string(FileTypeHeaderContext)
			info.DocumentKey = f[3]
			return info
		},
	},
	{
		name:  "assembled_json",
		dir:   sessionPattern(dirWorkAssembled),
		file:  regexp.MustCompile(`^(.+?)_(\d+)_(.+)_assembled\.json$`),
		build: documentBuilder(FileTypeAssembledDocumentJSON),
	},
	{
		name:  "rendered_document",
		dir:   sessionPattern(dirDocuments),
		file:  regexp.MustCompile(`^(.+?)_(\d+)_(.+)\.md$`),
		build: documentBuilder(FileTypeRenderedDocument),
	},
	{
		name: "document_raw_json",
		dir:  sessionPattern(dirWorkRaw),
		file: regexp.MustCompile(`^(.+?)_(\d+)_(.+?)(?:_continuation_(\d+))?_raw\.json$`),
		build: func(d, f []string, _ DeconstructInput) DeconstructedPathInfo {
			info := modelInfo(d, f, FileTypeDocumentRawJSON)
			info.DocumentKey = f[3]
			setContinuation(&info, f[4])
			return info
		},
	},

	// Intermediate _work artifacts
	{
		name: "pairwise_synthesis_chunk",
		dir:  sessionPattern(dirWork),
		file: regexp.MustCompile(`^(.+?)_synthesizing_(.+?)_with_(.+?)_on_(.+)_(\d+)_pairwise_synthesis_chunk\.md$`),
		build: func(d, f []string, _ DeconstructInput) DeconstructedPathInfo {
			info := sessionInfo(d, FileTypePairwiseSynthesisChunk)
			info.ModelSlug = f[1]
			info.SourceAnchorModelSlug = f[2]
			info.PairedModelSlug = f[3]
			info.SourceAnchorType = f[4]
			info.AttemptCount = atoi(f[5])
			info.ContributionType = string(FileTypePairwiseSynthesisChunk)
			return info
		},
	},
	{
		name: "reduced_synthesis",
		dir:  sessionPattern(dirWork),
		file: regexp.MustCompile(`^(.+?)_reducing_(.+)_by_(.+?)_(\d+)_reduced_synthesis\.md$`),
		build: func(d, f []string, _ DeconstructInput) DeconstructedPathInfo {
			info := sessionInfo(d, FileTypeReducedSynthesis)
			info.ModelSlug = f[1]
			info.SourceAnchorType = f[2]
			info.SourceAnchorModelSlug = f[3]
			info.AttemptCount = atoi(f[4])
			info.ContributionType = string(FileTypeReducedSynthesis)
			return info
		},
	},
	{
		name: "rag_summary",
		dir:  sessionPattern(dirWork),
		file: regexp.MustCompile(`^(.+?)_compressing_(.+)_rag_summary\.txt$`),
		build: func(d, f []string, _ DeconstructInput) DeconstructedPathInfo {
			info := sessionInfo(d, FileTypeRagContextSummary)
			info.ModelSlug = f[1]
			info.SourceModelSlugs = strings.Split(f[2], "_and_")
			info.ContributionType = string(FileTypeRagContextSummary)
			return info
		},
	},
	{
		name:  "work_artifact",
		dir:   sessionPattern(dirWork),
		file:  regexp.MustCompile(`^(.+?)_(\d+)_(.+)\.(md|json|txt)$`),
		build: documentBuilder(FileTypeWorkArtifact),
	},

	// Mailbox
	{
		name: "mailbox",
		dir:  regexp.MustCompile(`^([^/]+)/(` + dirPending + `|` + dirCurrent + `|` + dirComplete + `)$`),
		file: regexp.MustCompile(`^(.+)$`),
		build: func(d, f []string, in DeconstructInput) DeconstructedPathInfo {
			kind := map[string]FileType{
				dirPending:  FileTypePendingFile,
				dirCurrent:  FileTypeCurrentFile,
				dirComplete: FileTypeCompleteFile,
			}[d[2]]
			return projectInfo(d, kind, originalName(f[1], in))
		},
	},

	// Plain stage contributions
	{
		name: "seed_prompt",
		dir:  sessionPattern(""),
		file: regexp.MustCompile(`^seed_prompt\.md$`),
		build: func(d, _ []string, _ DeconstructInput) DeconstructedPathInfo {
			info := sessionInfo(d, FileTypeSeedPrompt)
			info.ContributionType = string(FileTypeSeedPrompt)
			return info
		},
	},
	{
		name: "user_feedback",
		dir:  sessionPattern(""),
		file: regexp.MustCompile(`^user_feedback_(.+)\.md$`),
		build: func(d, _ []string, _ DeconstructInput) DeconstructedPathInfo {
			info := sessionInfo(d, FileTypeUserFeedback)
			info.ContributionType = string(FileTypeUserFeedback)
			return info
		},
	},
	{
		name:  "contribution_main",
		dir:   sessionPattern(""),
		file:  regexp.MustCompile(`^(.+?)_(\d+)_(.+)\.md$`),
		build: contributionBuilder(FileTypeModelContributionMain),
	},
	{
		name:  "contribution_raw",
		dir:   sessionPattern(dirRawResponses),
		file:  regexp.MustCompile(`^(.+?)_(\d+)_(.+)_raw\.json$`),
		build: contributionBuilder(FileTypeModelContributionRaw),
	},

	// Project root
	{
		name: "project_readme",
		dir:  projectPattern(""),
		file: regexp.MustCompile(`^` + regexp.QuoteMeta(fileProjectReadme) + `$`),
		build: func(d, f []string, _ DeconstructInput) DeconstructedPathInfo {
			return projectInfo(d, FileTypeProjectReadme, f[0])
		},
	},
	{
		name: "project_settings",
		dir:  projectPattern(""),
		file: regexp.MustCompile(`^` + regexp.QuoteMeta(fileProjectSettings) + `$`),
		build: func(d, f []string, _ DeconstructInput) DeconstructedPathInfo {
			return projectInfo(d, FileTypeProjectSettings, f[0])
		},
	},
	{
		name: "general_resource",
		dir:  projectPattern(dirGeneralResource),
		file: regexp.MustCompile(`^(.+)$`),
		build: func(d, f []string, in DeconstructInput) DeconstructedPathInfo {
			return projectInfo(d, FileTypeGeneralResource, originalName(f[1], in))
		},
	},
	{
		name: "project_export_archive",
		dir:  projectPattern(""),
		file: regexp.MustCompile(`(?i)^.*\.(zip|tar|tgz|gz|rar|7z)$`),
		build: func(d, f []string, in DeconstructInput) DeconstructedPathInfo {
			return projectInfo(d, FileTypeProjectExportZip, originalName(f[0], in))
		},
	},
	{
		name: "initial_user_prompt",
		dir:  projectPattern(""),
		file: regexp.MustCompile(`^(.+)$`),
		build: func(d, f []string, in DeconstructInput) DeconstructedPathInfo {
			return projectInfo(d, FileTypeInitialUserPrompt, originalName(f[1], in))
		},
	},
}

// Deconstruct classifies a stored location and recovers the metadata
// encoded in it. Unrecognized paths yield a result with Error set.
func Deconstruct(in DeconstructInput) DeconstructedPathInfo {
	dir := strings.Trim(strings.TrimSpace(in.StoragePath), "/")
	file := strings.TrimSpace(in.FileName)
	if dir == "" || file == "" || strings.Contains(file, "/") {
		return DeconstructedPathInfo{Error: ErrUnrecognizedPath}
	}

	for _, rule := range decodeRules {
		d := rule.dir.FindStringSubmatch(dir)
		if d == nil {
			continue
		}
		f := rule.file.FindStringSubmatch(file)
		if f == nil {
			continue
		}
		info := rule.build(d, f, in)
		info.Rule = rule.name
		return info
	}

	return DeconstructedPathInfo{Error: ErrUnrecognizedPath}
}

// DeconstructPath splits a full path at its last slash and deconstructs it
func DeconstructPath(fullPath string) DeconstructedPathInfo {
	trimmed := strings.Trim(strings.TrimSpace(fullPath), "/")
	i := strings.LastIndex(trimmed, "/")
	if i < 0 {
		return DeconstructedPathInfo{Error: ErrUnrecognizedPath}
	}
	return Deconstruct(DeconstructInput{StoragePath: trimmed[:i], FileName: trimmed[i+1:]})
}

func sessionPattern(sub string) *regexp.Regexp {
	expr := `^([^/]+)/session_([^/]+)/iteration_(\d+)/([^/]+)`
	if sub != "" {
		expr += "/" + regexp.QuoteMeta(sub)
	}
	return regexp.MustCompile(expr + `$`)
}

func projectPattern(sub string) *regexp.Regexp {
	expr := `^([^/]+)`
	if sub != "" {
		expr += "/" + regexp.QuoteMeta(sub)
	}
	return regexp.MustCompile(expr + `$`)
}

func critiqueRule(name, sub, suffix string, continuation bool, kind FileType) decodeRule {
	cont := ""
	if continuation {
		cont = `(?:_continuation_(\d+))?`
	}
	return decodeRule{
		name: name,
		dir:  sessionPattern(sub),
		file: regexp.MustCompile(`^(.+?)_critiquing_\((.+?)_(.+)_(\d+)\)_(\d+)_(.+?)` + cont + suffix + `$`),
		build: func(d, f []string, _ DeconstructInput) DeconstructedPathInfo {
			info := sessionInfo(d, kind)
			info.ModelSlug = f[1]
			info.SourceAnchorModelSlug = f[2]
			info.SourceAnchorType = f[3]
			info.SourceAttemptCount = atoi(f[4])
			info.AttemptCount = atoi(f[5])
			switch kind {
			case FileTypeModelContributionMain, FileTypeModelContributionRaw:
				info.ContributionType = f[6]
			case FileTypeHeaderContext:
				info.ContributionType = string(FileTypeHeaderContext)
				info.DocumentKey = f[6]
			default:
				info.DocumentKey = f[6]
			}
			if len(f) > 7 {
				setContinuation(&info, f[7])
			}
			return info
		},
	}
}

func documentBuilder(kind FileType) func(d, f []string, _ DeconstructInput) DeconstructedPathInfo {
	return func(d, f []string, _ DeconstructInput) DeconstructedPathInfo {
		info := modelInfo(d, f, kind)
		info.DocumentKey = f[3]
		return info
	}
}

func contributionBuilder(kind FileType) func(d, f []string, _ DeconstructInput) DeconstructedPathInfo {
	return func(d, f []string, _ DeconstructInput) DeconstructedPathInfo {
		info := modelInfo(d, f, kind)
		info.ContributionType = f[3]
		return info
	}
}

func sessionInfo(d []string, kind FileType) DeconstructedPathInfo {
	return DeconstructedPathInfo{
		OriginalProjectID: d[1],
		FileType:          kind,
		ShortSessionID:    d[2],
		Iteration:         atoi(d[3]),
		StageDirName:      d[4],
		StageSlug:         MapDirNameToStageSlug(d[4]),
	}
}

// modelInfo covers file names that start with "{model}_{attempt}_"
func modelInfo(d, f []string, kind FileType) DeconstructedPathInfo {
	info := sessionInfo(d, kind)
	info.ModelSlug = f[1]
	info.AttemptCount = atoi(f[2])
	return info
}

func projectInfo(d []string, kind FileType, name string) DeconstructedPathInfo {
	return DeconstructedPathInfo{
		OriginalProjectID: d[1],
		FileType:          kind,
		OriginalFileName:  name,
	}
}

func originalName(stored string, in DeconstructInput) string {
	if in.DBOriginalFileName != "" {
		return in.DBOriginalFileName
	}
	return stored
}

func setContinuation(info *DeconstructedPathInfo, turn string) {
	if turn == "" {
		return
	}
	info.IsContinuation = true
	info.TurnIndex = atoi(turn)
}

func atoi(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
