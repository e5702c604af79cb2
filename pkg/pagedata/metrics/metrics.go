// Package metrics exposes Prometheus counters for page data reads, saves and
// failures, fed through controller hooks.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendant/simple-pagedata/pkg/pagedata"
)

// Metrics holds the collectors.
type Metrics struct {
	Reads    prometheus.Counter
	Saves    *prometheus.CounterVec
	Failures *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Reads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pagedata_reads_total",
			Help: "Total number of editor data loads.",
		}),
		Saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pagedata_saves_total",
			Help: "Total number of successful editor saves by post type and resulting status.",
		}, []string{"type", "status"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pagedata_failures_total",
			Help: "Total number of failed editor operations.",
		}, []string{"operation"}),
	}
	reg.MustRegister(m.Reads, m.Saves, m.Failures)
	return m
}

// Hooks returns the hooks feeding the collectors.
func (m *Metrics) Hooks() *pagedata.Hooks {
	return &pagedata.Hooks{
		GetData: []pagedata.GetDataHook{
			func(hctx *pagedata.HookContext, extra pagedata.Response, payload pagedata.Payload) (pagedata.Response, error) {
				m.Reads.Inc()
				return extra, nil
			},
		},
		PostSaved: []pagedata.PostSavedHook{
			func(hctx *pagedata.HookContext, saved pagedata.SavedPost) error {
				m.Saves.WithLabelValues(saved.Post.Type, string(saved.Post.Status)).Inc()
				return nil
			},
		},
		OnError: []pagedata.ErrorHook{
			func(hctx *pagedata.HookContext, operation string, err error) {
				m.Failures.WithLabelValues(operation).Inc()
			},
		},
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
