// Package metrics counts calls across the native engine boundary and writes
// them in the Prometheus text format for node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/MeKo-Tech/pobar/internal/engine"
)

// Decode outcomes used as the "outcome" label.
const (
	OutcomeNull  = "null"
	OutcomeEmpty = "empty"
	OutcomeFound = "found"
)

// Recorder owns a private registry so repeated runs in one process never collide.
type Recorder struct {
	registry *prometheus.Registry

	calls          *prometheus.CounterVec
	decodes        *prometheus.CounterVec
	decodeDuration prometheus.Histogram
	barcodes       *prometheus.CounterVec
	licenseErrors  prometheus.Counter
	liveInstances  prometheus.Gauge
	outstanding    prometheus.Gauge
}

// NewRecorder registers the engine metrics on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		registry: reg,
		calls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pobar_engine_calls_total",
				Help: "Total number of calls into the native engine",
			},
			[]string{"call"},
		),
		decodes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pobar_decodes_total",
				Help: "Total number of decoded files by outcome",
			},
			[]string{"outcome"}, // outcome: null, empty, found
		),
		decodeDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pobar_decode_duration_seconds",
				Help:    "Time spent inside the engine decoding one file",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
		),
		barcodes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pobar_barcodes_total",
				Help: "Total number of barcodes decoded",
			},
			[]string{"format"},
		),
		licenseErrors: f.NewCounter(
			prometheus.CounterOpts{
				Name: "pobar_license_failures_total",
				Help: "Total number of rejected license initializations",
			},
		),
		liveInstances: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "pobar_engine_live_instances",
				Help: "Engine instances created and not yet destroyed",
			},
		),
		outstanding: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "pobar_engine_outstanding_results",
				Help: "Non-null decode results not yet released",
			},
		),
	}
}

// WriteTextfile atomically writes every metric to path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}

// Wrap returns n instrumented with r. The returned value forwards every call unchanged.
func (r *Recorder) Wrap(n engine.Native) engine.Native {
	return &instrumented{next: n, rec: r}
}

type instrumented struct {
	next engine.Native
	rec  *Recorder
}

func (i *instrumented) InitLicense(key string) int {
	i.rec.calls.WithLabelValues("init_license").Inc()
	code := i.next.InitLicense(key)
	if code != 0 {
		i.rec.licenseErrors.Inc()
	}
	return code
}

func (i *instrumented) CreateInstance() engine.Handle {
	i.rec.calls.WithLabelValues("create_instance").Inc()
	h := i.next.CreateInstance()
	if h != nil {
		i.rec.liveInstances.Inc()
	}
	return h
}

func (i *instrumented) DecodeFile(h engine.Handle, path string) engine.RawResult {
	i.rec.calls.WithLabelValues("decode_file").Inc()
	start := time.Now()
	raw := i.next.DecodeFile(h, path)
	i.rec.decodeDuration.Observe(time.Since(start).Seconds())

	switch {
	case raw == nil:
		i.rec.decodes.WithLabelValues(OutcomeNull).Inc()
		return nil
	case raw.Count() == 0:
		i.rec.decodes.WithLabelValues(OutcomeEmpty).Inc()
	default:
		i.rec.decodes.WithLabelValues(OutcomeFound).Inc()
		for k := range raw.Count() {
			i.rec.barcodes.WithLabelValues(raw.Item(k).Format).Inc()
		}
	}
	i.rec.outstanding.Inc()
	return raw
}

func (i *instrumented) ReleaseResult(raw engine.RawResult) {
	i.rec.calls.WithLabelValues("release_result").Inc()
	i.rec.outstanding.Dec()
	i.next.ReleaseResult(raw)
}

func (i *instrumented) DestroyInstance(h engine.Handle) {
	i.rec.calls.WithLabelValues("destroy_instance").Inc()
	i.rec.liveInstances.Dec()
	i.next.DestroyInstance(h)
}
