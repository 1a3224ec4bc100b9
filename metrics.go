package learnedgeek

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const metricsNamespace = "learnedgeek"

// siteMetrics are the site-specific series exposed next to the HTTP ones.
type siteMetrics struct {
	registry     *prometheus.Registry
	lookupErrors *prometheus.CounterVec
	feedItems    *prometheus.GaugeVec
	posts        *prometheus.GaugeVec
}

func newSiteMetrics() *siteMetrics {
	m := &siteMetrics{
		registry: prometheus.NewRegistry(),
		lookupErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "post_lookup_failures_total",
			Help:      "Failed post lookups by reason.",
		}, []string{"reason"}),
		feedItems: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "feed_items",
			Help:      "Items in the last rendered feed by format.",
		}, []string{"format"}),
		posts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "registry_entries",
			Help:      "Registry entries loaded at startup by state.",
		}, []string{"state"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.lookupErrors,
		m.feedItems,
		m.posts,
	)
	for _, reason := range []string{"slug_not_found", "content_missing", "render_failure"} {
		m.lookupErrors.WithLabelValues(reason)
	}
	return m
}

func (m *siteMetrics) observeSnapshot(s *Snapshot) {
	m.posts.WithLabelValues("loaded").Set(float64(s.Len()))
	m.posts.WithLabelValues("skipped").Set(float64(len(s.skipped)))
}
