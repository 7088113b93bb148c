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
// サービス層とHTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordIdeaSubmitted(category string)
	RecordVote(rewarded bool)
	RecordCoinsAwarded(count int)
	RecordSignup()
	RecordLoginFailure()
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordSessionsCleaned(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	ideasSubmitted  *prometheus.CounterVec
	votes           *prometheus.CounterVec
	coinsAwarded    prometheus.Counter
	signups         prometheus.Counter
	loginFailures   prometheus.Counter
	httpStatus      *prometheus.CounterVec
	requestLatency  prometheus.Histogram
	sessionsCleaned prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		ideasSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inspiration_ideas_submitted_total",
			Help: "投稿されたアイデアの合計数",
		}, []string{"category"}),
		votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inspiration_votes_total",
			Help: "記録された投票の合計数（rewarded: 所有者にコインが付与されたか）",
		}, []string{"rewarded"}),
		coinsAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inspiration_coins_awarded_total",
			Help: "投票によって付与されたコインの合計数",
		}),
		signups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inspiration_signups_total",
			Help: "サインアップ成功の合計数",
		}),
		loginFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inspiration_login_failures_total",
			Help: "ログイン失敗の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inspiration_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "inspiration_request_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		sessionsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inspiration_sessions_cleaned_total",
			Help: "削除された期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.ideasSubmitted,
		c.votes,
		c.coinsAwarded,
		c.signups,
		c.loginFailures,
		c.httpStatus,
		c.requestLatency,
		c.sessionsCleaned,
	)

	return c
}

// RecordIdeaSubmitted はアイデア投稿を記録する。
func (c *Collector) RecordIdeaSubmitted(category string) {
	c.ideasSubmitted.WithLabelValues(category).Inc()
}

// RecordVote は投票を記録する。
func (c *Collector) RecordVote(rewarded bool) {
	c.votes.WithLabelValues(strconv.FormatBool(rewarded)).Inc()
}

// RecordCoinsAwarded は投票によるコイン付与を記録する。
func (c *Collector) RecordCoinsAwarded(count int) {
	c.coinsAwarded.Add(float64(count))
}

// RecordSignup はサインアップ成功を記録する。
func (c *Collector) RecordSignup() {
	c.signups.Inc()
}

// RecordLoginFailure はログイン失敗を記録する。
func (c *Collector) RecordLoginFailure() {
	c.loginFailures.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordSessionsCleaned は削除された期限切れセッション数を記録する。
func (c *Collector) RecordSessionsCleaned(count int64) {
	c.sessionsCleaned.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// Noop は何も記録しないMetricsCollector。
type Noop struct{}

func (Noop) RecordIdeaSubmitted(string)         {}
func (Noop) RecordVote(bool)                    {}
func (Noop) RecordCoinsAwarded(int)             {}
func (Noop) RecordSignup()                      {}
func (Noop) RecordLoginFailure()                {}
func (Noop) RecordHTTPStatus(int)               {}
func (Noop) RecordRequestLatency(time.Duration) {}
func (Noop) RecordSessionsCleaned(int64)        {}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Noop{}
)
