package monitoring

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/medrex/healthcare-ledger/pkg/types"
)

func TestMetricsCollector_RecordTransaction(t *testing.T) {
	m := NewMetricsCollector("healthcare")

	m.RecordTransaction("CreatePatient", "", 2*time.Millisecond)
	m.RecordTransaction("CreatePatient", "ALREADY_EXISTS", time.Millisecond)
	m.RecordTransaction("CreatePatient", "ALREADY_EXISTS", time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.transactionsTotal.WithLabelValues("CreatePatient", StatusSuccess, "", "healthcare")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.transactionsTotal.WithLabelValues("CreatePatient", StatusFailure, "ALREADY_EXISTS", "healthcare")))
}

func TestMetricsCollector_RecordAccessDecision(t *testing.T) {
	m := NewMetricsCollector("healthcare")

	m.RecordAccessDecision(true)
	m.RecordAccessDecision(false)
	m.RecordAccessDecision(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.accessDecisions.WithLabelValues("granted", "healthcare")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.accessDecisions.WithLabelValues("denied", "healthcare")))
}

func TestMetricsCollector_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetricsCollector("a")
		NewMetricsCollector("b")
	})
}

func TestServer_Endpoints(t *testing.T) {
	metrics := NewMetricsCollector("healthcare")
	health := NewHealthManager("healthcare", "1.0.0")
	metrics.RecordTransaction("QueryPatientRecord", "", time.Millisecond)

	srv := httptest.NewServer(NewServer(":0", "/metrics", "/health", metrics, health).Handler)
	defer srv.Close()

	t.Run("health is unavailable until marked healthy", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/health")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		health.MarkHealthy()
		resp, err = http.Get(srv.URL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var report HealthReport
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
		assert.Equal(t, HealthStatusHealthy, report.Status)
		assert.Equal(t, "1.0.0", report.Version)
	})

	t.Run("metrics expose transaction counters", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		buf := new(strings.Builder)
		_, err = io.Copy(buf, resp.Body)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), `chaincode_transactions_total{code="",function="QueryPatientRecord",service="healthcare",status="success"} 1`)
	})
}

func TestTracingManager_TransactionSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tm := NewTracingManagerWithProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)), "healthcare")

	_, span := tm.StartTransactionSpan(context.Background(), "healthcare-ledger", "CreatePatient", "tx1")
	tm.EndSpan(span, nil)
	_, span = tm.StartTransactionSpan(context.Background(), "healthcare-ledger", "QueryPatientRecord", "tx2")
	tm.EndSpan(span, types.NewAccessDeniedError("denied"))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "blockchain.healthcare-ledger.CreatePatient", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	assert.Equal(t, codes.Error, spans[1].Status().Code)
	attrs := map[string]string{}
	for _, kv := range spans[1].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "tx2", attrs["blockchain.tx_id"])
	assert.Equal(t, types.ErrCodeAccessDenied, attrs["ledger.error_code"])

	assert.NoError(t, tm.Shutdown(context.Background()))
}

func TestNewTracingManager_Disabled(t *testing.T) {
	tm, err := NewTracingManager(context.Background(), TracingConfig{ServiceName: "healthcare"})
	require.NoError(t, err)
	_, span := tm.StartTransactionSpan(context.Background(), "healthcare-ledger", "InitLedger", "tx1")
	tm.EndSpan(span, nil)
	assert.NoError(t, tm.Shutdown(context.Background()))
}
