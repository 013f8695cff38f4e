package domain

import "testing"

func TestNewStageSlug(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    StageSlug
		wantErr bool
	}{
		{name: "lowercase", input: "thesis", want: StageThesis},
		{name: "uppercase", input: "SYNTHESIS", want: StageSynthesis},
		{name: "padded", input: "  paralysis ", want: StageParalysis},
		{name: "directory name", input: "1_thesis", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewStageSlug(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewStageSlug(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NewStageSlug(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStageSlug_Next(t *testing.T) {
	next, ok := StageThesis.Next()
	if !ok || next != StageAntithesis {
		t.Errorf("thesis.Next() = %q, %v", next, ok)
	}

	if _, ok := StageParalysis.Next(); ok {
		t.Error("paralysis should have no successor")
	}

	if _, ok := StageSlug("unknown").Next(); ok {
		t.Error("unknown stage should have no successor")
	}
}

func TestStageSlug_IsCritique(t *testing.T) {
	for _, s := range Stages {
		if got := s.IsCritique(); got != (s == StageAntithesis) {
			t.Errorf("%s.IsCritique() = %v", s, got)
		}
	}
}

func TestJobType_Validate(t *testing.T) {
	if err := JobTypePlan.Validate(); err != nil {
		t.Errorf("PLAN should be valid: %v", err)
	}
	if _, err := NewJobType("plan"); err == nil {
		t.Error("lowercase job type should be rejected")
	}
	if err := InputType("image").Validate(); err == nil {
		t.Error("unknown input type should be rejected")
	}
}

func TestIDs(t *testing.T) {
	if _, err := NewProjectID("not-a-uuid"); err == nil {
		t.Error("expected error for malformed project ID")
	}

	id, err := NewSessionID("A1B2C3D4-0000-4000-8000-000000000000")
	if err != nil {
		t.Fatalf("NewSessionID() error = %v", err)
	}
	if id.String() != "a1b2c3d4-0000-4000-8000-000000000000" {
		t.Errorf("expected canonical lowercase form, got %s", id)
	}

	if NewRandomSessionID() == NewRandomSessionID() {
		t.Error("random session IDs should differ")
	}
}
