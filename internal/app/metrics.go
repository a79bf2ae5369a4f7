package app

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/yourusername/tiktok-bulk-go/internal/domain"
)

var (
	jobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ttbulk_jobs_total",
			Help: "Total batch jobs by outcome",
		},
		[]string{"outcome"},
	)

	urlsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ttbulk_urls_total",
			Help: "Total URLs processed by result",
		},
		[]string{"result"},
	)
)

// observeJobOutcome records job and per-URL counters for a finished batch.
func observeJobOutcome(res *BatchResult, err error) {
	switch {
	case err == nil:
		jobsTotal.WithLabelValues("success").Inc()
	case errors.Is(err, domain.ErrNoArtifacts):
		jobsTotal.WithLabelValues("no_artifacts").Inc()
	default:
		jobsTotal.WithLabelValues("error").Inc()
	}

	if res != nil && res.Summary != nil {
		urlsTotal.WithLabelValues("success").Add(float64(res.Summary.Success))
		urlsTotal.WithLabelValues("failed").Add(float64(len(res.Summary.Failed)))
	}
}
