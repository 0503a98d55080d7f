package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector 指标收集器
type MetricsCollector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// 业务指标
	ordersFinalizedTotal *prometheus.CounterVec
	provisionCallsTotal  *prometheus.CounterVec
	provisionDuration    *prometheus.HistogramVec
	spinsTotal           *prometheus.CounterVec
	couponChecksTotal    *prometheus.CounterVec
	giftClaimsTotal      *prometheus.CounterVec
	alertsDroppedTotal   prometheus.Counter
}

// NewMetricsCollector 创建指标收集器
func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	f := promauto.With(reg)
	return &MetricsCollector{
		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		httpRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		ordersFinalizedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orders_finalized_total",
				Help: "Orders moved out of the payment callback, by resulting status",
			},
			[]string{"status"},
		),

		provisionCallsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provision_calls_total",
				Help: "Outbound provisioning calls by provider and result",
			},
			[]string{"provider", "result"},
		),

		provisionDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "provision_call_duration_seconds",
				Help:    "Outbound provisioning call latency",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"provider"},
		),

		spinsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spins_total",
				Help: "Spin attempts by outcome",
			},
			[]string{"outcome"},
		),

		couponChecksTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coupon_validations_total",
				Help: "Coupon validations by result",
			},
			[]string{"result"},
		),

		giftClaimsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gift_claims_total",
				Help: "Gift claims by result",
			},
			[]string{"result"},
		),

		alertsDroppedTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "operator_alerts_dropped_total",
				Help: "Operator alert mails dropped after retries or on a full queue",
			},
		),
	}
}

// RecordHTTPRequest 记录 HTTP 请求
func (m *MetricsCollector) RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordOrderFinalized 记录订单终态
func (m *MetricsCollector) RecordOrderFinalized(status string) {
	m.ordersFinalizedTotal.WithLabelValues(status).Inc()
}

// RecordProvision 记录一次供应商调用
func (m *MetricsCollector) RecordProvision(provider string, ok bool, duration time.Duration) {
	result := "success"
	if !ok {
		result = "failure"
	}
	m.provisionCallsTotal.WithLabelValues(provider, result).Inc()
	m.provisionDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordSpin 记录抽奖结果
func (m *MetricsCollector) RecordSpin(outcome string) {
	m.spinsTotal.WithLabelValues(outcome).Inc()
}

// RecordCouponCheck 记录优惠券校验结果
func (m *MetricsCollector) RecordCouponCheck(result string) {
	m.couponChecksTotal.WithLabelValues(result).Inc()
}

// RecordGiftClaim 记录礼包领取结果
func (m *MetricsCollector) RecordGiftClaim(result string) {
	m.giftClaimsTotal.WithLabelValues(result).Inc()
}

// RecordAlertDropped 记录丢弃的告警
func (m *MetricsCollector) RecordAlertDropped() {
	m.alertsDroppedTotal.Inc()
}

var (
	globalCollector *MetricsCollector
	once            sync.Once
)

// GetGlobalCollector 获取全局指标收集器（注册到默认 Registry）
func GetGlobalCollector() *MetricsCollector {
	once.Do(func() {
		globalCollector = NewMetricsCollector(prometheus.DefaultRegisterer)
	})
	return globalCollector
}
