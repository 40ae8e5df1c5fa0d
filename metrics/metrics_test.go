package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestRecordRequest(t *testing.T) {
	tests := []struct {
		name       string
		tool       string
		duration   float64
		success    bool
		wantStatus string
	}{
		{
			name:       "successful request",
			tool:       "evawiki_ping",
			duration:   0.5,
			success:    true,
			wantStatus: "success",
		},
		{
			name:       "failed request",
			tool:       "evawiki_ping",
			duration:   1.0,
			success:    false,
			wantStatus: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := counterValue(t, RequestsTotal.WithLabelValues(tt.tool, tt.wantStatus))
			RecordRequest(tt.tool, tt.duration, tt.success)

			if got := counterValue(t, RequestsTotal.WithLabelValues(tt.tool, tt.wantStatus)); got != before+1 {
				t.Errorf("requests_total = %v, want %v", got, before+1)
			}
		})
	}
}

func TestRecordAPICall(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		duration  float64
		success   bool
		errorCode string
	}{
		{
			name:     "successful API call",
			method:   "CmfDocument.get",
			duration: 0.1,
			success:  true,
		},
		{
			name:      "failed API call with error code",
			method:    "CmfDocument.update",
			duration:  0.5,
			success:   false,
			errorCode: "-32000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := "success"
			if !tt.success {
				want = "error"
			}
			before := counterValue(t, APIRequestsTotal.WithLabelValues(tt.method, want))

			RecordAPICall(tt.method, tt.duration, tt.success, tt.errorCode)

			if got := counterValue(t, APIRequestsTotal.WithLabelValues(tt.method, want)); got != before+1 {
				t.Errorf("eva_api_requests_total = %v, want %v", got, before+1)
			}
			if tt.errorCode != "" {
				if got := counterValue(t, APIErrors.WithLabelValues(tt.method, tt.errorCode)); got < 1 {
					t.Error("expected error counter to be incremented")
				}
			}
		})
	}
}

func TestRecordToolError(t *testing.T) {
	before := counterValue(t, ToolErrors.WithLabelValues("evawiki_find_user", "user_input"))
	RecordToolError("evawiki_find_user", "user_input")
	if got := counterValue(t, ToolErrors.WithLabelValues("evawiki_find_user", "user_input")); got != before+1 {
		t.Errorf("tool_errors_total = %v, want %v", got, before+1)
	}
}

func TestRecordEdit(t *testing.T) {
	before := counterValue(t, EditOperations.WithLabelValues("update_text", "success"))
	RecordEdit("update_text", 1200, true)
	RecordEdit("publish", -1, false)

	if got := counterValue(t, EditOperations.WithLabelValues("update_text", "success")); got != before+1 {
		t.Errorf("edit_operations_total = %v, want %v", got, before+1)
	}
	if got := counterValue(t, EditOperations.WithLabelValues("publish", "error")); got < 1 {
		t.Error("expected failed publish to be counted")
	}
}

func TestHandler(t *testing.T) {
	RecordRequest("evawiki_list_projects", 0.2, true)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), Namespace+"_requests_total") {
		t.Error("metrics output should contain requests_total")
	}
}

func TestMetricsRegistered(t *testing.T) {
	metrics := []prometheus.Collector{
		RequestsTotal,
		RequestDuration,
		RequestInFlight,
		ToolErrors,
		APILatency,
		APIRequestsTotal,
		APIErrors,
		PanicsRecovered,
		EditOperations,
		ContentSize,
	}

	for i, m := range metrics {
		if m == nil {
			t.Errorf("metric at index %d is nil", i)
		}
	}
}

func TestNamespace(t *testing.T) {
	if Namespace != "evawiki_mcp" {
		t.Errorf("expected namespace 'evawiki_mcp', got '%s'", Namespace)
	}
}

// Helper to get counter value
func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return m.Counter.GetValue()
}
