package collector

import (
	"regexp"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

var metricNameRE = regexp.MustCompile(`[^a-zA-Z0-9_]`)

func sanitizeMetricName(n string) string {
	return metricNameRE.ReplaceAllString(n, "_")
}

func newMetricDescr(namespace string, metricName string, docString string, labels []string) *prometheus.Desc {
	return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", metricName), docString, labels, nil)
}

// PromCollector exposes one target's collection as prometheus metrics, for
// running the plugin standalone without a blackbird agent in front of it.
// It implements prometheus.Collector.
type PromCollector struct {
	sync.Mutex

	collector *Collector
	spec      ConnectionSpec
	namespace string

	totalCollects   prometheus.Counter
	collectDuration prometheus.Summary

	descriptions map[string]*prometheus.Desc
}

// NewPromCollector wraps a Collector and a target spec for registration
// with a prometheus registry.
func NewPromCollector(c *Collector, spec ConnectionSpec, namespace string) *PromCollector {
	p := &PromCollector{
		collector: c,
		spec:      spec,
		namespace: namespace,

		totalCollects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plugin_collects_total",
			Help:      "Total collections run by this plugin.",
		}),

		collectDuration: prometheus.NewSummary(prometheus.SummaryOpts{
			Namespace: namespace,
			Name:      "plugin_collect_duration_seconds",
			Help:      "Durations of the collections run by this plugin",
		}),
	}

	p.descriptions = map[string]*prometheus.Desc{}
	for k, desc := range map[string]struct {
		txt  string
		lbls []string
	}{
		"up":                   {txt: "Whether the last collection from the Redis instance succeeded"},
		"last_collect_error":   {txt: "The last collection error status.", lbls: []string{"err"}},
		"fields_skipped":       {txt: "Allow-listed fields dropped in the last collection because their values didn't coerce"},
		"samples_collected":    {txt: "Samples returned by the last collection"},
		"last_collect_seconds": {txt: "Duration of the last collection"},
	} {
		p.descriptions[k] = newMetricDescr(namespace, k, desc.txt, desc.lbls)
	}

	return p
}

// Describe outputs the plugin's own metric descriptions; the per-field
// stat descriptions are created per collection.
func (p *PromCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, desc := range p.descriptions {
		ch <- desc
	}
	ch <- p.totalCollects.Desc()
	ch <- p.collectDuration.Desc()
}

// Collect runs one collection against the target and converts the samples
// to const metrics.
func (p *PromCollector) Collect(ch chan<- prometheus.Metric) {
	p.Lock()
	defer p.Unlock()
	p.totalCollects.Inc()

	startTime := time.Now()
	res, err := p.collector.Collect(p.spec)
	took := time.Since(startTime).Seconds()
	p.collectDuration.Observe(took)
	p.registerConstMetricGauge(ch, "last_collect_seconds", took)

	if err != nil {
		log.Errorf("Collection failed for %s, err: %s", p.spec.Addr(), err)
		p.registerConstMetricGauge(ch, "up", 0)
		p.registerConstMetricGauge(ch, "last_collect_error", 1.0, err.Error())
	} else {
		p.registerConstMetricGauge(ch, "up", 1)
		p.registerConstMetricGauge(ch, "last_collect_error", 0, "")
		p.registerConstMetricGauge(ch, "samples_collected", float64(len(res.Samples)))
		p.registerConstMetricGauge(ch, "fields_skipped", float64(len(res.Skipped)))

		for _, sample := range res.Samples {
			p.registerSample(ch, sample)
		}
	}

	ch <- p.totalCollects
	ch <- p.collectDuration
}

// registerSample converts one MetricSample. Numeric samples map directly;
// status strings map ok/fail style values to 1/0 and other strings are not
// representable as prometheus values and get dropped.
func (p *PromCollector) registerSample(ch chan<- prometheus.Metric, sample MetricSample) {
	val, ok := sample.Number()
	if !ok {
		switch sample.Str {
		case "ok", "up", "online", "true":
			val = 1
		case "err", "fail", "down", "false":
			val = 0
		default:
			log.Debugf("not exporting string sample %s=%q", sample.Field, sample.Str)
			return
		}
	}

	valType := prometheus.GaugeValue
	if isCounterField(sample.Field) {
		valType = prometheus.CounterValue
	}

	name := sanitizeMetricName(sample.Field)
	desc := newMetricDescr(p.namespace, name, name+" metric", nil)
	m, err := prometheus.NewConstMetric(desc, valType, val)
	if err != nil {
		log.Debugf("registerSample( %s , %.2f) err: %s", name, val, err)
		return
	}
	ch <- m
}

func (p *PromCollector) registerConstMetricGauge(ch chan<- prometheus.Metric, metric string, val float64, labelValues ...string) {
	desc, found := p.descriptions[metric]
	if !found {
		log.Debugf("registerConstMetricGauge( %s ) - no description", metric)
		return
	}

	m, err := prometheus.NewConstMetric(desc, prometheus.GaugeValue, val, labelValues...)
	if err != nil {
		log.Debugf("registerConstMetricGauge( %s , %.2f) err: %s", metric, val, err)
		return
	}
	ch <- m
}
