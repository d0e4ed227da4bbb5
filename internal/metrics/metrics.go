package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the API counters. Registration happens once in New so the
// package carries no mutable globals.
type Metrics struct {
	Requests      *prometheus.CounterVec
	ArticleWrites prometheus.Counter
	StatusWrites  prometheus.Counter

	registry *prometheus.Registry
}

func New() *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "api_requests_total",
				Help: "Total number of API requests by route and status code.",
			},
			[]string{"route", "code"},
		),
		ArticleWrites: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "articles_written_total",
				Help: "Total number of article create/update/delete operations.",
			},
		),
		StatusWrites: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lesson_status_written_total",
				Help: "Total number of lesson status saves.",
			},
		),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(m.Requests, m.ArticleWrites, m.StatusWrites)
	return m
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
