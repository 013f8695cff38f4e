package domain

import "fmt"

// JobType distinguishes recipe steps that expand into work from steps that produce artifacts
type JobType string

const (
	JobTypePlan    JobType = "PLAN"
	JobTypeExecute JobType = "EXECUTE"
)

// NewJobType creates a JobType value object with validation
func NewJobType(value string) (JobType, error) {
	j := JobType(value)
	if err := j.Validate(); err != nil {
		return "", err
	}
	return j, nil
}

// Validate checks if the job type is valid
func (j JobType) Validate() error {
	switch j {
	case JobTypePlan, JobTypeExecute:
		return nil
	default:
		return fmt.Errorf("invalid job type %q: must be PLAN or EXECUTE", string(j))
	}
}

// String returns the string representation
func (j JobType) String() string {
	return string(j)
}

// InputType classifies a recipe input requirement
type InputType string

const (
	InputDocument      InputType = "document"
	InputSeedPrompt    InputType = "seed_prompt"
	InputHeaderContext InputType = "header_context"
	InputFeedback      InputType = "feedback"
)

// Validate checks if the input type is known
func (t InputType) Validate() error {
	switch t {
	case InputDocument, InputSeedPrompt, InputHeaderContext, InputFeedback:
		return nil
	default:
		return fmt.Errorf("invalid input type %q: must be document, seed_prompt, header_context, or feedback", string(t))
	}
}
