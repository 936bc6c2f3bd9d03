package rpc

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/alphabill-org/alphabill-fees/internal/testutils/observability"
)

func TestNewHTTPServer(t *testing.T) {
	conf := &ServerConfiguration{Address: "localhost:0"}
	require.False(t, conf.IsAddressEmpty())
	require.True(t, (&ServerConfiguration{Address: "  "}).IsAddressEmpty())

	obs := observability.WithMetrics(t)
	srv := NewHTTPServer(conf, obs, RegistrarFunc(func(r *mux.Router) {
		r.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}).Methods(http.MethodGet)
	}))
	require.Equal(t, "localhost:0", srv.Addr)

	rsp := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rsp, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
	require.Equal(t, http.StatusNoContent, rsp.Code)
	require.EqualValues(t, 1, obs.Collect(t, "calls", "http.route", "/api/v1/ping"))

	rsp = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rsp, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusNotFound, rsp.Code)
}

func TestMetricsEndpoints(t *testing.T) {
	t.Run("no registerer", func(t *testing.T) {
		rsp := serve(t, MetricsEndpoints(nil), httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil))
		require.Equal(t, http.StatusNotFound, rsp.Code)
	})

	t.Run("prometheus", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		cnt := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_counter"})
		require.NoError(t, reg.Register(cnt))
		cnt.Add(3)

		rsp := serve(t, MetricsEndpoints(reg), httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil))
		require.Equal(t, http.StatusOK, rsp.Code)
		require.Contains(t, rsp.Body.String(), "test_counter 3")
	})
}

func TestAcceptsCBOR(t *testing.T) {
	for _, tc := range []struct {
		accept string
		cbor   bool
	}{
		{accept: "", cbor: false},
		{accept: "application/json", cbor: false},
		{accept: "application/cbor", cbor: true},
		{accept: "text/html, application/cbor;q=0.9", cbor: true},
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(headerAccept, tc.accept)
		require.Equal(t, tc.cbor, acceptsCBOR(req), tc.accept)
	}
}
