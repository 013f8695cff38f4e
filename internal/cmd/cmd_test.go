package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/dialectic/internal/config"
	derrors "github.com/felixgeelhaar/dialectic/internal/errors"
)

const documentPath = "proj-1/session_a1b2c3d4/iteration_1/1_thesis/documents/claude-3_0_business_case.md"

// execute runs a fresh root command with an isolated config home
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	if os.Getenv(config.EnvHome) == "" {
		t.Setenv(config.EnvHome, t.TempDir())
	}

	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestPathConstruct(t *testing.T) {
	out, err := execute(t, "path", "construct",
		"--project", "proj-1",
		"--type", "rendered_document",
		"--session", "a1b2c3d4-0000-4000-8000-000000000001",
		"--iteration", "1",
		"--stage", "thesis",
		"--model", "claude-3",
		"--document-key", "business_case",
		"--format", "json",
	)
	require.NoError(t, err)

	var parts struct {
		StoragePath string `json:"storage_path"`
		FileName    string `json:"file_name"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &parts))
	assert.Equal(t, documentPath, parts.StoragePath+"/"+parts.FileName)
}

func TestPathConstruct_RequiresType(t *testing.T) {
	_, err := execute(t, "path", "construct", "--project", "proj-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestPathDeconstruct(t *testing.T) {
	out, err := execute(t, "path", "deconstruct", documentPath, "--format", "json")
	require.NoError(t, err)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "rendered_document", info["file_type"])
	assert.Equal(t, "claude-3", info["model_slug"])
	assert.Equal(t, "business_case", info["document_key"])
	assert.Equal(t, "thesis", info["stage_slug"])
}

func TestPathDeconstruct_TextTable(t *testing.T) {
	out, err := execute(t, "path", "deconstruct", documentPath, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "FIELD")
	assert.Contains(t, out, "rendered_document")
}

func TestPathDeconstruct_Unrecognized(t *testing.T) {
	_, err := execute(t, "path", "deconstruct", "somewhere/else/notes.txt", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, derrors.ErrCodePathUnrecognized, derrors.CodeOf(err))
}

func TestPathScan(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, filepath.FromSlash(documentPath)), "# thesis")
	writeFile(t, filepath.Join(root, "notes.txt"), "scratch")

	out, err := execute(t, "path", "scan", root, "--metrics", "--format", "json", "-j", "2")
	require.NoError(t, err)

	var result struct {
		Summary struct {
			Total      int            `json:"total"`
			Recognized int            `json:"recognized"`
			ByType     map[string]int `json:"by_type"`
			Misses     []string       `json:"misses"`
		} `json:"summary"`
		Metrics []struct {
			Series string  `json:"series"`
			Value  float64 `json:"value"`
		} `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))

	assert.Equal(t, 2, result.Summary.Total)
	assert.Equal(t, 1, result.Summary.Recognized)
	assert.Equal(t, map[string]int{"rendered_document": 1}, result.Summary.ByType)
	assert.Equal(t, []string{"notes.txt"}, result.Summary.Misses)

	series := make(map[string]float64)
	for _, s := range result.Metrics {
		series[s.Series] = s.Value
	}
	assert.Equal(t, 1.0, series["dialectic_paths_classified_total{file_type=rendered_document}"])
	assert.Equal(t, 1.0, series["dialectic_path_classification_misses_total"])
}

func TestPathScan_MissingDir(t *testing.T) {
	_, err := execute(t, "path", "scan", filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Equal(t, derrors.ErrCodeFileReadFailed, derrors.CodeOf(err))
}

func TestStrategies(t *testing.T) {
	out, err := execute(t, "strategies", "--format", "json")
	require.NoError(t, err)

	var infos []struct {
		Name    string `json:"name"`
		Default bool   `json:"default"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 6)

	var defaults []string
	for _, info := range infos {
		if info.Default {
			defaults = append(defaults, info.Name)
		}
	}
	assert.Equal(t, []string{"per_source_document"}, defaults)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "dialectic "))

	out, err = execute(t, "version", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"go_version"`)
}

func TestUnknownFormat(t *testing.T) {
	_, err := execute(t, "strategies", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}
