// Package pathcodec encodes artifact provenance into storage paths and
// recovers it from them.
//
// Every artifact a dialectic session produces is stored at a path of the form
//
//	{projectId}/session_{shortSessionId}/iteration_{n}/{stageDir}/...
//
// (or directly under {projectId} for project-level files), and the file name
// embeds the model, attempt and artifact kind. Deconstruct reverses
// Construct without any index table.
package pathcodec

// FileType names an artifact kind. The set is open: a new kind needs an
// encode case in Construct and a rule in the decode table.
type FileType string

// Project-level kinds
const (
	FileTypeProjectReadme     FileType = "project_readme"
	FileTypeProjectSettings   FileType = "project_settings_file"
	FileTypeInitialUserPrompt FileType = "initial_user_prompt"
	FileTypeGeneralResource   FileType = "general_resource"
	FileTypeProjectExportZip  FileType = "project_export_zip"
	FileTypePendingFile       FileType = "pending_file"
	FileTypeCurrentFile       FileType = "current_file"
	FileTypeCompleteFile      FileType = "complete_file"
)

// Session-scoped kinds
const (
	FileTypeSeedPrompt             FileType = "seed_prompt"
	FileTypeUserFeedback           FileType = "user_feedback"
	FileTypeModelContributionMain  FileType = "model_contribution_main"
	FileTypeModelContributionRaw   FileType = "model_contribution_raw_json"
	FileTypePlannerPrompt          FileType = "planner_prompt"
	FileTypeTurnPrompt             FileType = "turn_prompt"
	FileTypeHeaderContext          FileType = "header_context"
	FileTypeAssembledDocumentJSON  FileType = "assembled_document_json"
	FileTypeRenderedDocument       FileType = "rendered_document"
	FileTypeDocumentRawJSON        FileType = "document_raw_json"
	FileTypePairwiseSynthesisChunk FileType = "pairwise_synthesis_chunk"
	FileTypeReducedSynthesis       FileType = "reduced_synthesis"
	FileTypeRagContextSummary      FileType = "rag_context_summary"
	FileTypeWorkArtifact           FileType = "work_artifact"
)

// FileTypes lists every kind the codec knows, project-level first
func FileTypes() []FileType {
	return []FileType{
		FileTypeProjectReadme, FileTypeProjectSettings, FileTypeInitialUserPrompt,
		FileTypeGeneralResource, FileTypeProjectExportZip,
		FileTypePendingFile, FileTypeCurrentFile, FileTypeCompleteFile,
		FileTypeSeedPrompt, FileTypeUserFeedback,
		FileTypeModelContributionMain, FileTypeModelContributionRaw,
		FileTypePlannerPrompt, FileTypeTurnPrompt, FileTypeHeaderContext,
		FileTypeAssembledDocumentJSON, FileTypeRenderedDocument, FileTypeDocumentRawJSON,
		FileTypePairwiseSynthesisChunk, FileTypeReducedSynthesis,
		FileTypeRagContextSummary, FileTypeWorkArtifact,
	}
}

// IsProjectLevel reports whether the kind lives directly under the project
func (f FileType) IsProjectLevel() bool {
	switch f {
	case FileTypeProjectReadme, FileTypeProjectSettings, FileTypeInitialUserPrompt,
		FileTypeGeneralResource, FileTypeProjectExportZip,
		FileTypePendingFile, FileTypeCurrentFile, FileTypeCompleteFile:
		return true
	}
	return false
}

// IsKnown reports whether the codec can construct this kind
func (f FileType) IsKnown() bool {
	for _, k := range FileTypes() {
		if k == f {
			return true
		}
	}
	return false
}

// String returns the string representation
func (f FileType) String() string {
	return string(f)
}

// PathContext carries everything Construct may need. Which fields matter
// depends on FileType.
type PathContext struct {
	ProjectID string
	FileType  FileType

	SessionID    string
	Iteration    int
	StageSlug    string
	ModelSlug    string
	AttemptCount int

	ContributionType string
	DocumentKey      string
	StepName         string
	OriginalFileName string
	// Extension applies to work artifacts only: md, json or txt.
	Extension string

	IsContinuation bool
	TurnIndex      int

	SourceModelSlugs      []string
	SourceAnchorType      string
	SourceAnchorModelSlug string
	SourceAttemptCount    *int
	PairedModelSlug       string
}

// PathParts is the storage location of an artifact
type PathParts struct {
	StoragePath string `json:"storage_path"`
	FileName    string `json:"file_name"`
}

// FullPath joins directory and file name
func (p PathParts) FullPath() string {
	return p.StoragePath + "/" + p.FileName
}

// DeconstructInput is a stored location to classify
type DeconstructInput struct {
	StoragePath string
	FileName    string
	// DBOriginalFileName, when known, replaces FileName as the recovered
	// original name of user-supplied files.
	DBOriginalFileName string
}

// ErrUnrecognizedPath is the Error value for paths no rule matches
const ErrUnrecognizedPath = "Path did not match any known deconstruction patterns."

// DeconstructedPathInfo is the parse of a stored path. When Error is set,
// every other field is zero.
type DeconstructedPathInfo struct {
	OriginalProjectID string   `json:"original_project_id,omitempty"`
	FileType          FileType `json:"file_type,omitempty"`
	ShortSessionID    string   `json:"short_session_id,omitempty"`
	Iteration         *int     `json:"iteration,omitempty"`
	StageDirName      string   `json:"stage_dir_name,omitempty"`
	StageSlug         string   `json:"stage_slug,omitempty"`
	ModelSlug         string   `json:"model_slug,omitempty"`
	AttemptCount      *int     `json:"attempt_count,omitempty"`
	ContributionType  string   `json:"contribution_type,omitempty"`
	DocumentKey       string   `json:"document_key,omitempty"`
	StepName          string   `json:"step_name,omitempty"`
	OriginalFileName  string   `json:"original_file_name,omitempty"`

	IsContinuation bool `json:"is_continuation,omitempty"`
	TurnIndex      *int `json:"turn_index,omitempty"`

	SourceModelSlugs      []string `json:"source_model_slugs,omitempty"`
	SourceAnchorType      string   `json:"source_anchor_type,omitempty"`
	SourceAnchorModelSlug string   `json:"source_anchor_model_slug,omitempty"`
	SourceAttemptCount    *int     `json:"source_attempt_count,omitempty"`
	PairedModelSlug       string   `json:"paired_model_slug,omitempty"`

	// Rule names the decode table entry that matched
	Rule  string `json:"rule,omitempty"`
	Error string `json:"error,omitempty"`
}

// Recognized reports whether a decode rule matched
func (d DeconstructedPathInfo) Recognized() bool {
	return d.Error == ""
}
