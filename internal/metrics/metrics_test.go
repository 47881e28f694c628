package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordUserCreated(t *testing.T) {
	before := testutil.ToFloat64(usersCreatedTotal)
	RecordUserCreated()
	if got := testutil.ToFloat64(usersCreatedTotal); got != before+1 {
		t.Fatalf("expected counter %v, got %v", before+1, got)
	}
}

func TestRecordStoreError(t *testing.T) {
	before := testutil.ToFloat64(storeErrorsTotal.WithLabelValues("list"))
	RecordStoreError("list")
	if got := testutil.ToFloat64(storeErrorsTotal.WithLabelValues("list")); got != before+1 {
		t.Fatalf("expected counter %v, got %v", before+1, got)
	}
}

func TestHandlerExposesHTTPMetrics(t *testing.T) {
	RecordHTTPRequest("GET", "/api/users", 200, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), `http_requests_total{method="GET",route="/api/users",status="200"}`) {
		t.Fatalf("expected request counter in exposition, got:\n%s", body)
	}
}
