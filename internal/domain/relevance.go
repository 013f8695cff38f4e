package domain

import (
	"fmt"
	"math"
)

// Relevance ranks how authoritative a document input is for anchor selection.
// Valid values lie in [0, 1].
type Relevance float64

// NewRelevance creates a Relevance value object with validation
func NewRelevance(value float64) (Relevance, error) {
	r := Relevance(value)
	if err := r.Validate(); err != nil {
		return 0, err
	}
	return r, nil
}

// Validate checks the range
func (r Relevance) Validate() error {
	v := float64(r)
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("invalid relevance %v: must be between 0.0 and 1.0", v)
	}
	return nil
}

// IsHigherThan checks if this relevance outranks another
func (r Relevance) IsHigherThan(other Relevance) bool {
	return r > other
}
