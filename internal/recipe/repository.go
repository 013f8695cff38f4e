package recipe

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/dialectic/internal/errors"
)

// Repository loads and saves recipes
type Repository interface {
	// Load reads a Recipe from a file
	Load(path string) (*Recipe, error)

	// Save writes a Recipe to a file
	Save(r *Recipe, path string) error
}

// FileRepository implements Repository for YAML and JSON files, chosen by
// extension. Steps in a file may use any of the three step shapes.
type FileRepository struct{}

// NewFileRepository creates a new file-based recipe repository
func NewFileRepository() *FileRepository {
	return &FileRepository{}
}

// recipeFile is the on-disk layout; steps are decoded shape by shape
type recipeFile struct {
	Name        string      `yaml:"name"`
	Stage       string      `yaml:"stage"`
	Description string      `yaml:"description"`
	Steps       []yaml.Node `yaml:"steps"`
}

// Load reads a Recipe and normalizes its steps
func (r *FileRepository) Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFoundError(path)
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "read recipe file", err)
	}

	return Parse(data, path)
}

// Parse decodes recipe bytes. name is only used in error messages.
func Parse(data []byte, name string) (*Recipe, error) {
	// yaml.v3 reads JSON too, so one decoder serves both formats
	var file recipeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.NewFileUnmarshalError(name, formatOf(name), err)
	}

	rec := &Recipe{
		Name:        file.Name,
		Stage:       file.Stage,
		Description: file.Description,
		Steps:       make([]Step, 0, len(file.Steps)),
	}
	for i := range file.Steps {
		step, err := decodeStep(&file.Steps[i])
		if err != nil {
			return nil, fmt.Errorf("step %d of %s: %w", i, name, err)
		}
		rec.Steps = append(rec.Steps, step)
	}

	return rec, nil
}

// Save writes the normalized recipe as YAML, or JSON for .json paths
func (r *FileRepository) Save(rec *Recipe, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryFailed, "create directory", err)
	}

	var (
		data []byte
		err  error
	)
	if formatOf(path) == "JSON" {
		data, err = json.MarshalIndent(rec, "", "  ")
	} else {
		data, err = yaml.Marshal(rec)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileMarshal, "marshal recipe", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "write recipe file", err)
	}

	return nil
}

func formatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "JSON"
	}
	return "YAML"
}

// Default instance for package-level functions
var defaultRepository = NewFileRepository()

// LoadRecipe reads a Recipe using the default repository
func LoadRecipe(path string) (*Recipe, error) {
	return defaultRepository.Load(path)
}

// Compile-time verification that FileRepository implements Repository
var _ Repository = (*FileRepository)(nil)
