package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesCounters(t *testing.T) {
	before := testutil.ToFloat64(BusyRejections.WithLabelValues("collection"))

	BusyRejections.WithLabelValues("collection").Inc()
	Submissions.WithLabelValues("factory", "createNFTContract", "Mined").Inc()

	require.InDelta(t, before+1, testutil.ToFloat64(BusyRejections.WithLabelValues("collection")), 0)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "nftcreator_flow_busy_rejections_total")
	require.Contains(t, string(body), `nftcreator_submitter_submissions_total{contract="factory",method="createNFTContract",status="Mined"}`)
}
