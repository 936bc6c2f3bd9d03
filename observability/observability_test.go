package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"github.com/alphabill-org/alphabill-fees/types"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew(t *testing.T) {
	t.Run("logger is nil", func(t *testing.T) {
		o, err := New("", nil)
		require.EqualError(t, err, "logger is nil")
		require.Nil(t, o)
	})

	t.Run("unsupported exporter", func(t *testing.T) {
		o, err := New("foo", discardLogger())
		require.EqualError(t, err, `initialize meter provider: unsupported exporter "foo"`)
		require.Nil(t, o)
	})

	t.Run("metrics disabled", func(t *testing.T) {
		log := discardLogger()
		o, err := New("", log)
		require.NoError(t, err)
		require.Equal(t, log, o.Logger())
		require.NotNil(t, o.Meter("test"))
		require.Nil(t, o.MetricsHandler())
		require.Nil(t, o.PrometheusRegisterer())
		require.NoError(t, o.Shutdown())
	})

	t.Run("stdout", func(t *testing.T) {
		o, err := New("stdout", discardLogger())
		require.NoError(t, err)
		require.Nil(t, o.MetricsHandler())
		require.NoError(t, o.Shutdown())
	})

	t.Run("prometheus", func(t *testing.T) {
		o, err := New("prometheus", discardLogger())
		require.NoError(t, err)
		t.Cleanup(func() { require.NoError(t, o.Shutdown()) })
		require.NotNil(t, o.PrometheusRegisterer())

		cnt, err := o.Meter("fees").Int64Counter("fee.charged")
		require.NoError(t, err)
		cnt.Add(context.Background(), 5)

		handler := o.MetricsHandler()
		require.NotNil(t, handler)
		rsp := httptest.NewRecorder()
		handler.ServeHTTP(rsp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, rsp.Code)
		require.Contains(t, rsp.Body.String(), "ab_fee_charged_total")
	})
}

func TestAttributes(t *testing.T) {
	require.Equal(t, attribute.Int64("round", 8), Round(8))
	require.Equal(t, attribute.String("unit_id", "0a0b"), UnitID([]byte{0x0A, 0x0B}))
	require.Equal(t, attribute.String("account", "0a"), Account(types.AccountID{0x0A}))
	require.Equal(t, attribute.String("call", "generic_asset.transfer"), Call(types.CallID{Module: "generic_asset", Method: "transfer"}))
	require.Equal(t, attribute.String("status", "ok"), ErrStatus(nil))
	require.Equal(t, attribute.String("status", "err"), ErrStatus(errors.New("boom")))
}
