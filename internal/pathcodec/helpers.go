package pathcodec

import (
	"regexp"
	"strings"
)

const shortIDLength = 8

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	unsafeChars   = regexp.MustCompile(`[^a-z0-9_.-]`)
)

// SanitizeForPath lowercases s, turns whitespace runs into underscores and
// drops every character outside [a-z0-9_.-].
func SanitizeForPath(s string) string {
	out := strings.ToLower(strings.TrimSpace(s))
	out = whitespaceRun.ReplaceAllString(out, "_")
	return unsafeChars.ReplaceAllString(out, "")
}

// SanitizeModelSlug sanitizes a model slug and replaces underscores with
// hyphens. Underscores separate file name fields, so a slug containing one
// would not decode back to itself.
func SanitizeModelSlug(s string) string {
	return strings.ReplaceAll(SanitizeForPath(s), "_", "-")
}

// GenerateShortID returns the first eight characters of id
func GenerateShortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}

var stageDirs = []struct {
	slug string
	dir  string
}{
	{"thesis", "1_thesis"},
	{"antithesis", "2_antithesis"},
	{"synthesis", "3_synthesis"},
	{"parenthesis", "4_parenthesis"},
	{"paralysis", "5_paralysis"},
}

// MapStageSlugToDirName returns the numbered directory for a stage slug.
// Unknown slugs pass through unchanged.
func MapStageSlugToDirName(slug string) string {
	lower := strings.ToLower(slug)
	for _, s := range stageDirs {
		if s.slug == lower {
			return s.dir
		}
	}
	return slug
}

// MapDirNameToStageSlug returns the stage slug for a directory name, ignoring
// case and accepting the bare slug too. Unknown names pass through unchanged.
func MapDirNameToStageSlug(dir string) string {
	lower := strings.ToLower(dir)
	for _, s := range stageDirs {
		if s.dir == lower || s.slug == lower {
			return s.slug
		}
	}
	return dir
}

// IsCritiqueStage reports whether artifacts of the stage carry the
// provenance of the document they critique in their file names.
func IsCritiqueStage(stageSlug string) bool {
	return MapDirNameToStageSlug(stageSlug) == "antithesis"
}

var archiveExtensions = []string{".zip", ".tar", ".tgz", ".gz", ".rar", ".7z"}

// IsArchiveName reports whether the file name ends in a known archive extension
func IsArchiveName(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range archiveExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
