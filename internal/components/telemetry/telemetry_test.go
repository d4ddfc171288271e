package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	rec := NewRecorder()
	scoped := NewScopedAPI("iserv_client", rec)

	scoped.ReportWarning("client.own-user-info", "publiccontact_title")
	scoped.ReportBroken("client.login", fmt.Errorf("boom"))
	scoped.ReportDebug("get badges")

	warnings := rec.Reports(REPORT_WARNING)
	require.Len(t, warnings, 1)
	require.Equal(t, "iserv_client: client.own-user-info", warnings[0].Id)
	require.Equal(t, []any{"publiccontact_title"}, warnings[0].Params)

	require.Equal(t, 1, rec.Count(REPORT_BROKEN, "client.login"))
	require.Equal(t, 0, rec.Count(REPORT_BROKEN, "client.own-user-info"))
	require.Equal(t, 1, rec.Count(REPORT_DEBUG, "get badges"))
}

func TestInstrumentResty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	rec := NewRecorder()
	client := resty.New()
	InstrumentResty(client, "test", rec)

	res, err := client.R().SetContext(context.Background()).Get(server.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusTeapot, res.StatusCode())

	require.Equal(t, 1, rec.Count(REPORT_DEBUG, report_resty_request))
	require.Equal(t, 1, rec.Count(REPORT_DEBUG, report_resty_response))

	server.Close()
	_, err = client.R().Get(server.URL)
	require.Error(t, err)
	require.Equal(t, 1, rec.Count(REPORT_BROKEN, report_resty_response))
}
