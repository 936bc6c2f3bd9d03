package rpc

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsEndpoints registers the Prometheus scrape endpoint, nothing is
// registered when pr is nil.
func MetricsEndpoints(pr prometheus.Registerer) RegistrarFunc {
	return func(r *mux.Router) {
		if pr == nil {
			return
		}
		gatherer, ok := pr.(prometheus.Gatherer)
		if !ok {
			return
		}
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{MaxRequestsInFlight: 1})).Methods(http.MethodGet, http.MethodOptions)
	}
}
