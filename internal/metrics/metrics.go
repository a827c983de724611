// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 認証フローの結果ラベル
const (
	OutcomeSuccess            = "success"
	OutcomeValidationError    = "validation_error"
	OutcomeConflict           = "conflict"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeInvalidToken       = "invalid_token"
	OutcomeNotFound           = "not_found"
	OutcomeError              = "error"
)

// MetricsCollector はメトリクス収集のインターフェース。
// 認証サービスやHTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordSignup(outcome string)
	RecordLogin(outcome string)
	RecordTokenVerification(outcome string)
	RecordHTTPStatus(statusCode int)
	RecordHashLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	signup      *prometheus.CounterVec
	login       *prometheus.CounterVec
	tokenVerify *prometheus.CounterVec
	httpStatus  *prometheus.CounterVec
	hashLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signup: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pwauth_signup_total",
			Help: "サインアップ結果別の合計数",
		}, []string{"outcome"}),
		login: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pwauth_login_total",
			Help: "ログイン結果別の合計数",
		}, []string{"outcome"}),
		tokenVerify: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pwauth_token_verify_total",
			Help: "トークン検証結果別の合計数",
		}, []string{"outcome"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pwauth_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		hashLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pwauth_password_hash_seconds",
			Help:    "パスワードハッシュ計算の所要時間（秒）",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
	}

	reg.MustRegister(
		c.signup,
		c.login,
		c.tokenVerify,
		c.httpStatus,
		c.hashLatency,
	)

	return c
}

// RecordSignup はサインアップ結果を記録する。
func (c *Collector) RecordSignup(outcome string) {
	c.signup.WithLabelValues(outcome).Inc()
}

// RecordLogin はログイン結果を記録する。
func (c *Collector) RecordLogin(outcome string) {
	c.login.WithLabelValues(outcome).Inc()
}

// RecordTokenVerification はトークン検証結果を記録する。
func (c *Collector) RecordTokenVerification(outcome string) {
	c.tokenVerify.WithLabelValues(outcome).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordHashLatency はパスワードハッシュの所要時間を記録する。
func (c *Collector) RecordHashLatency(duration time.Duration) {
	c.hashLatency.Observe(duration.Seconds())
}

// NopCollector は何も記録しないMetricsCollector。
type NopCollector struct{}

func (NopCollector) RecordSignup(string) {}
func (NopCollector) RecordLogin(string) {}
func (NopCollector) RecordTokenVerification(string) {}
func (NopCollector) RecordHTTPStatus(int) {}
func (NopCollector) RecordHashLatency(time.Duration) {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = NopCollector{}
)
