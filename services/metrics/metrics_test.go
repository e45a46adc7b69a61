package metricsvc

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	m := New()

	m.Loaded(7, nil)
	m.Loaded(0, fmt.Errorf("connection refused"))
	m.Edited("home")
	m.Edited("home")
	m.Saved("home", 30*time.Millisecond, nil)
	m.Saved("home", time.Second, fmt.Errorf("connection refused"))

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{name: "documents", got: testutil.ToFloat64(m.documents), want: 7},
		{name: "load failures", got: testutil.ToFloat64(m.loadFailures), want: 1},
		{name: "edits", got: testutil.ToFloat64(m.edits.WithLabelValues("home")), want: 2},
		{name: "saves", got: testutil.ToFloat64(m.saves.WithLabelValues("home", "success")), want: 1},
		{name: "failed saves", got: testutil.ToFloat64(m.saves.WithLabelValues("home", "failure")), want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `vitrine_content_saves_total{page="home",result="success"} 1`) {
		t.Errorf("GET /metrics = %d\n%s", rec.Code, rec.Body.String())
	}
}
