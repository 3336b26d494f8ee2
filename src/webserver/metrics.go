package webserver

import (
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal   *prometheus.CounterVec
	votesCastTotal      *prometheus.CounterVec
	canisterErrorsTotal *prometheus.CounterVec
	registerOnce        sync.Once
)

func registerMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voteverse",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed by the gateway.",
		}, []string{"method", "path", "status"})
		votesCastTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voteverse",
			Name:      "votes_cast_total",
			Help:      "Ballots forwarded to the canister, by choice and outcome.",
		}, []string{"choice", "outcome"})
		canisterErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voteverse",
			Name:      "canister_errors_total",
			Help:      "Failed calls to the governance canister, by method.",
		}, []string{"method"})
	})
}

// MetricsMiddleware counts every request by route template and status.
func MetricsMiddleware() gin.HandlerFunc {
	registerMetrics()
	return func(c *gin.Context) {
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

func countVote(choice, outcome string) {
	if votesCastTotal != nil {
		votesCastTotal.WithLabelValues(choice, outcome).Inc()
	}
}

func countCanisterError(method string) {
	if canisterErrorsTotal != nil {
		canisterErrorsTotal.WithLabelValues(method).Inc()
	}
}
