package metrics

import (
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/felixgeelhaar/dialectic/internal/errors"
)

// NewRegistry creates a new Prometheus registry with metrics
func NewRegistry() (*prometheus.Registry, *Metrics) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	return reg, m
}

// WriteTextfile writes every series of g to path in the Prometheus text
// format, for pickup by a node exporter textfile collector. The file is
// replaced atomically.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to write metrics textfile", err)
	}
	return nil
}

// Sample is one counter series of a Snapshot
type Sample struct {
	Series string  `json:"series" yaml:"series"`
	Value  float64 `json:"value" yaml:"value"`
}

// Snapshot gathers every dialectic counter series from g, sorted by series
// name. Histograms report their sample count.
func Snapshot(g prometheus.Gatherer) ([]Sample, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}

	var samples []Sample
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "dialectic_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			var value float64
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				value = m.GetCounter().GetValue()
			case dto.MetricType_HISTOGRAM:
				value = float64(m.GetHistogram().GetSampleCount())
			default:
				continue
			}
			samples = append(samples, Sample{Series: seriesName(mf.GetName(), m.GetLabel()), Value: value})
		}
	}

	sort.Slice(samples, func(i, j int) bool { return samples[i].Series < samples[j].Series })
	return samples, nil
}

func seriesName(name string, labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return name
	}
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		parts = append(parts, l.GetName()+"="+l.GetValue())
	}
	return name + "{" + strings.Join(parts, ",") + "}"
}
