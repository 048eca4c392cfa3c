// Package metrics counts the network and computation work done by the
// pagination loaders and lazy values.
package metrics

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "geepr"

type Collector interface {
	PageRequested(loader string)
	PageDiscarded(loader string)
	ComputationStarted(value string)
	ComputationCancelled(value string)
}

// Nop drops every observation.
type Nop struct{}

func (Nop) PageRequested(string)        {}
func (Nop) PageDiscarded(string)        {}
func (Nop) ComputationStarted(string)   {}
func (Nop) ComputationCancelled(string) {}

type PrometheusCollector struct {
	gatherer prometheus.Gatherer

	PageRequests         *prometheus.CounterVec
	PageDiscards         *prometheus.CounterVec
	Computations         *prometheus.CounterVec
	CancelledComputation *prometheus.CounterVec
}

// NewPrometheus registers the collector's counters on its own registry.
func NewPrometheus() *PrometheusCollector {
	reg := prometheus.NewRegistry()
	c := &PrometheusCollector{
		gatherer: reg,
		PageRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pagination",
			Name:      "page_requests_total",
			Help:      "Page requests issued by paged loaders.",
		}, []string{"loader"}),
		PageDiscards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pagination",
			Name:      "page_discards_total",
			Help:      "Fetched pages dropped because the loader state moved on.",
		}, []string{"loader"}),
		Computations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lazy",
			Name:      "computations_total",
			Help:      "Background computations started by lazy values.",
		}, []string{"value"}),
		CancelledComputation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lazy",
			Name:      "cancellations_total",
			Help:      "Lazy value computations cancelled before completion.",
		}, []string{"value"}),
	}

	reg.MustRegister(
		c.PageRequests,
		c.PageDiscards,
		c.Computations,
		c.CancelledComputation,
	)

	return c
}

func (c *PrometheusCollector) PageRequested(loader string) {
	c.PageRequests.WithLabelValues(loader).Inc()
}

func (c *PrometheusCollector) PageDiscarded(loader string) {
	c.PageDiscards.WithLabelValues(loader).Inc()
}

func (c *PrometheusCollector) ComputationStarted(value string) {
	c.Computations.WithLabelValues(value).Inc()
}

func (c *PrometheusCollector) ComputationCancelled(value string) {
	c.CancelledComputation.WithLabelValues(value).Inc()
}

type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// Samples flattens the registry into name/label/value triples sorted by name.
func (c *PrometheusCollector) Samples() ([]Sample, error) {
	families, err := c.gatherer.Gather()
	if err != nil {
		return nil, err
	}

	var samples []Sample
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}

			samples = append(samples, Sample{
				Name:   mf.GetName(),
				Labels: labels,
				Value:  m.GetCounter().GetValue(),
			})
		}
	}

	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Name < samples[j].Name
	})

	return samples, nil
}
