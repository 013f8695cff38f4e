package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	derrors "github.com/felixgeelhaar/dialectic/internal/errors"
)

func TestNewRegistry(t *testing.T) {
	reg, m := NewRegistry()

	if reg == nil {
		t.Fatal("expected registry, got nil")
	}

	if m == nil {
		t.Fatal("expected metrics, got nil")
	}

	// Verify metrics are registered with the custom registry
	m.PlanInvocations.WithLabelValues("per_model", OutcomeSuccess).Inc()

	metricFamilies, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metricFamilies {
		if mf.GetName() == "dialectic_plan_invocations_total" {
			found = true
			break
		}
	}

	if !found {
		t.Error("metrics not registered with custom registry")
	}
}

func TestMultipleRegistries(t *testing.T) {
	reg1, m1 := NewRegistry()
	reg2, m2 := NewRegistry()

	m1.ObservePlan("per_model", 1, 0, "")
	m2.ObservePlan("all_to_one", 1, 0, "")

	s1, err := Snapshot(reg1)
	if err != nil {
		t.Fatalf("failed to gather from reg1: %v", err)
	}
	s2, err := Snapshot(reg2)
	if err != nil {
		t.Fatalf("failed to gather from reg2: %v", err)
	}

	for _, s := range s1 {
		if strings.Contains(s.Series, "all_to_one") {
			t.Errorf("reg1 leaked series %s", s.Series)
		}
	}
	for _, s := range s2 {
		if strings.Contains(s.Series, "per_model") {
			t.Errorf("reg2 leaked series %s", s.Series)
		}
	}
}

func TestSnapshot(t *testing.T) {
	reg, m := NewRegistry()

	m.ObservePlan("per_model", 3, 0, "")
	m.ObserveClassification("")

	samples, err := Snapshot(reg)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	want := map[string]float64{
		"dialectic_child_jobs_planned_total{strategy=per_model}":               3,
		"dialectic_path_classification_misses_total":                           1,
		"dialectic_plan_duration_seconds{strategy=per_model}":                  1,
		"dialectic_plan_invocations_total{outcome=success,strategy=per_model}": 1,
	}
	got := make(map[string]float64, len(samples))
	for _, s := range samples {
		got[s.Series] = s.Value
	}
	for series, v := range want {
		if got[series] != v {
			t.Errorf("%s = %v, want %v", series, got[series], v)
		}
	}

	for i := 1; i < len(samples); i++ {
		if samples[i-1].Series > samples[i].Series {
			t.Fatalf("samples not sorted: %q before %q", samples[i-1].Series, samples[i].Series)
		}
	}
}

func TestWriteTextfile(t *testing.T) {
	reg, m := NewRegistry()
	m.ObserveClassification("seed_prompt")

	path := filepath.Join(t.TempDir(), "dialectic.prom")
	if err := WriteTextfile(path, reg); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	body := string(data)
	if !strings.Contains(body, "# TYPE dialectic_paths_classified_total counter") {
		t.Error("textfile is missing the counter type line")
	}
	if !strings.Contains(body, `dialectic_paths_classified_total{file_type="seed_prompt"} 1`) {
		t.Errorf("textfile is missing the seed_prompt series:\n%s", body)
	}
}

func TestWriteTextfile_BadPath(t *testing.T) {
	reg, _ := NewRegistry()

	err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom"), reg)
	if derrors.CodeOf(err) != derrors.ErrCodeFileWriteFailed {
		t.Fatalf("CodeOf(%v) = %q, want %q", err, derrors.CodeOf(err), derrors.ErrCodeFileWriteFailed)
	}
}
