package rpc

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/metric"
)

const (
	headerContentType = "Content-Type"
	headerAccept      = "Accept"
	applicationJson   = "application/json"
	applicationCBOR   = "application/cbor"

	metricsScopeRESTAPI = "rest_api"

	DefaultMaxBodyBytes int64 = 65536 // 64KB
)

var allowedCORSHeaders = []string{"Accept", "Accept-Language", "Content-Language", "Origin", headerContentType}

type (
	// Registrar registers new HTTP handlers for given router.
	Registrar interface {
		Register(r *mux.Router)
	}

	// RegistrarFunc type is an adapter to allow the use of ordinary function as Registrar.
	RegistrarFunc func(r *mux.Router)

	Observability interface {
		Meter(name string, opts ...metric.MeterOption) metric.Meter
		PrometheusRegisterer() prometheus.Registerer
		Logger() *slog.Logger
	}

	// ServerConfiguration is the configuration of the REST server.
	ServerConfiguration struct {
		// Address specifies the TCP address for the server to listen on, in the form "host:port".
		// REST server isn't initialised if Address is empty.
		Address string

		// ReadTimeout is the maximum duration for reading the entire request, including the body. A zero or negative
		// value means there will be no timeout.
		ReadTimeout time.Duration

		// ReadHeaderTimeout is the amount of time allowed to read request headers. If ReadHeaderTimeout is zero, the
		// value of ReadTimeout is used. If both are zero, there is no timeout.
		ReadHeaderTimeout time.Duration

		// WriteTimeout is the maximum duration before timing out writes of the response. A zero or negative value means
		// there will be no timeout.
		WriteTimeout time.Duration

		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alive is enabled. If
		// IdleTimeout is zero, the value of ReadTimeout is used. If both are zero, there is no timeout.
		IdleTimeout time.Duration

		// MaxBodyBytes controls the maximum number of bytes the server will read parsing the request body. If zero,
		// DefaultMaxBodyBytes is used.
		MaxBodyBytes int64
	}
)

func (c *ServerConfiguration) IsAddressEmpty() bool {
	return strings.TrimSpace(c.Address) == ""
}

/*
NewHTTPServer returns server where the handlers of the registrars are served
under the "/api/v1" path prefix.
*/
func NewHTTPServer(conf *ServerConfiguration, obs Observability, registrars ...Registrar) *http.Server {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(http.NotFound)
	restRouter := router.PathPrefix("/api/v1").Subrouter()
	restRouter.Use(
		handlers.CORS(handlers.AllowedHeaders(allowedCORSHeaders)),
		instrumentHTTP(obs.Meter(metricsScopeRESTAPI), obs.Logger()))
	for _, registrar := range registrars {
		registrar.Register(restRouter)
	}

	maxBody := conf.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return &http.Server{
		Addr:              conf.Address,
		ReadTimeout:       conf.ReadTimeout,
		ReadHeaderTimeout: conf.ReadHeaderTimeout,
		WriteTimeout:      conf.WriteTimeout,
		IdleTimeout:       conf.IdleTimeout,
		Handler:           http.MaxBytesHandler(router, maxBody),
	}
}

func (f RegistrarFunc) Register(r *mux.Router) {
	f(r)
}
