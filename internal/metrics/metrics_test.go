package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesRegistry(t *testing.T) {
	OverrideUpsertsTotal.WithLabelValues(SurfaceCompact, OutcomeConflict).Inc()
	ActiveHolidayTimestamp.WithLabelValues("rollover").Set(1745884800)

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `attendance_override_upserts_total{outcome="conflict",surface="compact"}`)
	assert.Contains(t, string(body), `holiday_active_date_timestamp_seconds{strategy="rollover"}`)
}

func TestCounterLabels(t *testing.T) {
	before := testutil.ToFloat64(OverrideUpsertsTotal.WithLabelValues(SurfaceDetailed, OutcomeOK))
	OverrideUpsertsTotal.WithLabelValues(SurfaceDetailed, OutcomeOK).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(OverrideUpsertsTotal.WithLabelValues(SurfaceDetailed, OutcomeOK)))
}
