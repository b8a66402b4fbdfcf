// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector は認証・HTTPメトリクスを収集するPrometheus実装。
type Collector struct {
	logins        *prometheus.CounterVec
	registrations *prometheus.CounterVec
	httpStatus    *prometheus.CounterVec
	latency       prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "journal_logins_total",
			Help: "プロバイダー・結果別のログイン試行数",
		}, []string{"provider", "outcome"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "journal_registrations_total",
			Help: "結果別のユーザー登録試行数",
		}, []string{"outcome"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "journal_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "journal_http_request_duration_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.logins,
		c.registrations,
		c.httpStatus,
		c.latency,
	)

	return c
}

// RecordLogin はログイン試行の結果をプロバイダー別に記録する。
func (c *Collector) RecordLogin(provider string, success bool) {
	c.logins.WithLabelValues(provider, outcome(success)).Inc()
}

// RecordRegistration はユーザー登録試行の結果を記録する。
func (c *Collector) RecordRegistration(success bool) {
	c.registrations.WithLabelValues(outcome(success)).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はHTTPリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.latency.Observe(duration.Seconds())
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
