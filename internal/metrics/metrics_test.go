package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// findMetric は指定名とラベル値に一致するメトリクスを返す。
func findMetric(t *testing.T, reg *prometheus.Registry, name, labelValue string) *dto.Metric {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelValue == "" {
				return m
			}
			for _, lp := range m.GetLabel() {
				if lp.GetValue() == labelValue {
					return m
				}
			}
		}
	}
	return nil
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordOutcomes_IncrementsCountersByLabel は結果ラベルごとにカウンタが増加することを検証する。
func TestRecordOutcomes_IncrementsCountersByLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSignup(OutcomeSuccess)
	c.RecordSignup(OutcomeSuccess)
	c.RecordSignup(OutcomeConflict)
	c.RecordLogin(OutcomeInvalidCredentials)
	c.RecordTokenVerification(OutcomeInvalidToken)

	tests := []struct {
		name  string
		label string
		want  float64
	}{
		{"pwauth_signup_total", OutcomeSuccess, 2},
		{"pwauth_signup_total", OutcomeConflict, 1},
		{"pwauth_login_total", OutcomeInvalidCredentials, 1},
		{"pwauth_token_verify_total", OutcomeInvalidToken, 1},
	}

	for _, tt := range tests {
		m := findMetric(t, reg, tt.name, tt.label)
		if m == nil {
			t.Errorf("%s{outcome=%q} not found", tt.name, tt.label)
			continue
		}
		if got := m.GetCounter().GetValue(); got != tt.want {
			t.Errorf("%s{outcome=%q} = %v, want %v", tt.name, tt.label, got, tt.want)
		}
	}
}

// TestRecordHTTPStatus_IncrementsCounterWithLabel はステータスコード別に記録されることを検証する。
func TestRecordHTTPStatus_IncrementsCounterWithLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(201)
	c.RecordHTTPStatus(401)
	c.RecordHTTPStatus(401)

	m := findMetric(t, reg, "pwauth_http_status_total", "401")
	if m == nil {
		t.Fatal("pwauth_http_status_total{status_code=401} not found")
	}
	if got := m.GetCounter().GetValue(); got != 2 {
		t.Errorf("status 401 count = %v, want 2", got)
	}
}

// TestRecordHashLatency_ObservesHistogram はハッシュ時間がヒストグラムに記録されることを検証する。
func TestRecordHashLatency_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHashLatency(50 * time.Millisecond)
	c.RecordHashLatency(150 * time.Millisecond)

	m := findMetric(t, reg, "pwauth_password_hash_seconds", "")
	if m == nil {
		t.Fatal("pwauth_password_hash_seconds not found")
	}
	if got := m.GetHistogram().GetSampleCount(); got != 2 {
		t.Errorf("sample count = %d, want 2", got)
	}
}

// TestMetricsHandler_ReturnsPrometheusFormat はスクレイプ用ハンドラーがテキスト形式で返すことを検証する。
func TestMetricsHandler_ReturnsPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordLogin(OutcomeSuccess)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	Handler(reg).ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `pwauth_login_total{outcome="success"} 1`) {
		t.Errorf("response should contain login counter, got:\n%s", body)
	}
}

// TestMultipleCollectors_IndependentRegistries は別レジストリに重複登録できることを検証する。
func TestMultipleCollectors_IndependentRegistries(t *testing.T) {
	NewCollector(prometheus.NewRegistry())
	NewCollector(prometheus.NewRegistry())
}

func TestNopCollector_DoesNotPanic(t *testing.T) {
	var c MetricsCollector = NopCollector{}
	c.RecordSignup(OutcomeSuccess)
	c.RecordLogin(OutcomeSuccess)
	c.RecordTokenVerification(OutcomeSuccess)
	c.RecordHTTPStatus(200)
	c.RecordHashLatency(time.Millisecond)
}
