// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェアやサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordAuthFailure(reason string)
	RecordJobCreated()
	RecordApplicationSubmitted()
	RecordDuplicateApplicationRejected()
	RecordUploadStored(count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus        *prometheus.CounterVec
	requestLatency    prometheus.Histogram
	authFailures      *prometheus.CounterVec
	jobsCreated       prometheus.Counter
	applications      prometheus.Counter
	duplicateRejected prometheus.Counter
	uploadsStored     prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jobboard_request_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		authFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_auth_failures_total",
			Help: "認証失敗の合計数（理由別）",
		}, []string{"reason"}),
		jobsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobboard_jobs_created_total",
			Help: "作成された求人の合計数",
		}),
		applications: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobboard_applications_submitted_total",
			Help: "提出された応募の合計数",
		}),
		duplicateRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobboard_duplicate_applications_rejected_total",
			Help: "重複として拒否された応募の合計数",
		}),
		uploadsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobboard_uploads_stored_total",
			Help: "保存されたアップロードファイルの合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.authFailures,
		c.jobsCreated,
		c.applications,
		c.duplicateRejected,
		c.uploadsStored,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordAuthFailure は認証失敗を理由付きで記録する。
func (c *Collector) RecordAuthFailure(reason string) {
	c.authFailures.WithLabelValues(reason).Inc()
}

// RecordJobCreated は求人の作成を記録する。
func (c *Collector) RecordJobCreated() {
	c.jobsCreated.Inc()
}

// RecordApplicationSubmitted は応募の提出を記録する。
func (c *Collector) RecordApplicationSubmitted() {
	c.applications.Inc()
}

// RecordDuplicateApplicationRejected は重複応募の拒否を記録する。
func (c *Collector) RecordDuplicateApplicationRejected() {
	c.duplicateRejected.Inc()
}

// RecordUploadStored は保存されたアップロードファイル数を記録する。
func (c *Collector) RecordUploadStored(count int) {
	c.uploadsStored.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
