package pathcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	results := []Classification{
		Classify("proj/session_abcd1234/iteration_1/1_thesis/documents/gpt-4_0_business_case.md"),
		Classify("proj/session_abcd1234/iteration_1/1_thesis/seed_prompt.md"),
		Classify("proj/session_abcd1234/iteration_1/1_thesis/documents/claude_0_feature_spec.md"),
		Classify("nowhere"),
		Classify("proj/project_readme.md"),
	}

	s := Summarize(results)
	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 4, s.Recognized)
	assert.Equal(t, map[FileType]int{
		FileTypeRenderedDocument: 2,
		FileTypeSeedPrompt:       1,
		FileTypeProjectReadme:    1,
	}, s.ByType)
	assert.Equal(t, []string{"nowhere"}, s.Misses)
}
