package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestScopedAPI(t *testing.T) {
	recorder := NewRecorderAPI()
	scoped := NewScopedAPI("catalog", NewScopedAPI("uwcatalog", recorder))

	scoped.ReportBroken("client.department-page", "cse.html")
	scoped.ReportWarning("extract.page")
	scoped.ReportDebug("segment")
	scoped.ReportCount("records", 12)

	reports := recorder.Reports("")
	require.Len(t, reports, 4)
	require.Equal(t, "uwcatalog: catalog: client.department-page", reports[0].Id)
	require.Equal(t, []any{"cse.html"}, reports[0].Params)
	require.Equal(t, "warning", reports[1].Level)
	require.Equal(t, "uwcatalog: catalog: segment", reports[2].Id)
	require.Equal(t, []any{int64(12)}, reports[3].Params)
}

func TestSetupDisabled(t *testing.T) {
	tel, err := Setup(context.Background(), "test:telemetry", Config{})
	require.NoError(t, err)
	require.Nil(t, tel.TracerProvider)
	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestInstrumentResty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	recorder := NewRecorderAPI()
	client := resty.New()
	InstrumentResty(client, recorder)

	_, err := client.R().SetContext(context.Background()).Get(server.URL)
	require.NoError(t, err)

	debug := recorder.Reports("debug")
	require.Len(t, debug, 2)
	require.Equal(t, report_resty_request, debug[0].Id)
	require.Equal(t, report_resty_response, debug[1].Id)

	server.Close()
	_, err = client.R().Get(server.URL)
	require.Error(t, err)
	require.Len(t, recorder.Reports("broken"), 1)
}

func TestInstrumentRestyRetries(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	recorder := NewRecorderAPI()
	client := resty.New().
		SetRetryCount(2).
		SetRetryWaitTime(time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Millisecond)
	InstrumentResty(client, recorder)

	_, err := client.R().SetContext(context.Background()).Get(url)
	require.Error(t, err)

	require.Len(t, recorder.Reports("debug"), 3)
	require.Len(t, recorder.Reports("broken"), 1)

	// one ended span per attempt, each a sibling rather than a child of the
	// attempt before it
	require.Len(t, spans.Started(), 3)
	ended := spans.Ended()
	require.Len(t, ended, 3)
	for _, span := range ended {
		require.False(t, span.Parent().IsValid())
	}
}
