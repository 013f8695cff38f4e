package domain

import (
	"fmt"
	"strings"
)

// StageSlug identifies one stage of the dialectic pipeline.
// This is a value object that enforces the five known stages.
type StageSlug string

// Known stages, in pipeline order
const (
	StageThesis      StageSlug = "thesis"
	StageAntithesis  StageSlug = "antithesis"
	StageSynthesis   StageSlug = "synthesis"
	StageParenthesis StageSlug = "parenthesis"
	StageParalysis   StageSlug = "paralysis"
)

// Stages lists every stage in pipeline order
var Stages = []StageSlug{StageThesis, StageAntithesis, StageSynthesis, StageParenthesis, StageParalysis}

// NewStageSlug creates a StageSlug, accepting any letter case
func NewStageSlug(value string) (StageSlug, error) {
	s := StageSlug(strings.ToLower(strings.TrimSpace(value)))
	if err := s.Validate(); err != nil {
		return "", err
	}
	return s, nil
}

// Validate checks that the slug names a known stage
func (s StageSlug) Validate() error {
	if s.Position() == 0 {
		return fmt.Errorf("invalid stage %q: must be one of thesis, antithesis, synthesis, parenthesis, paralysis", string(s))
	}
	return nil
}

// Position returns the 1-based pipeline position, or 0 for unknown stages
func (s StageSlug) Position() int {
	for i, stage := range Stages {
		if stage == s {
			return i + 1
		}
	}
	return 0
}

// Next returns the stage that follows s; the last stage has no successor
func (s StageSlug) Next() (StageSlug, bool) {
	pos := s.Position()
	if pos == 0 || pos == len(Stages) {
		return "", false
	}
	return Stages[pos], true
}

// IsCritique reports whether the stage critiques the previous stage's output
func (s StageSlug) IsCritique() bool {
	return s == StageAntithesis
}

// String returns the string representation
func (s StageSlug) String() string {
	return string(s)
}

// IsStage reports whether value is a known stage slug (case-sensitive)
func IsStage(value string) bool {
	return StageSlug(value).Position() != 0
}
