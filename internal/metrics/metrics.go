package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "messagely"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	messagesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "messages",
			Name:      "sent_total",
			Help:      "Total number of messages stored.",
		},
	)

	messagesRead = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "messages",
			Name:      "read_total",
			Help:      "Total number of messages marked read for the first time.",
		},
	)

	logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		},
		[]string{"result"},
	)

	eventPublishFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "publish_failures_total",
			Help:      "Events that could not be published.",
		},
		[]string{"event_type"},
	)

	websocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "clients",
			Help:      "Currently connected websocket clients.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		messagesSent,
		messagesRead,
		logins,
		eventPublishFailures,
		websocketClients,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RequestStarted marks a request in flight and returns the function that
// records its outcome. route should be the matched pattern, not the raw path.
func RequestStarted() func(method, route string, status int) {
	start := time.Now()
	httpInFlight.Inc()
	return func(method, route string, status int) {
		httpInFlight.Dec()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func MessageSent() {
	messagesSent.Inc()
}

func MessageRead() {
	messagesRead.Inc()
}

// Login records a login attempt; result is "success", "invalid" or "error".
func Login(result string) {
	logins.WithLabelValues(result).Inc()
}

func EventPublishFailed(eventType string) {
	eventPublishFailures.WithLabelValues(eventType).Inc()
}

func WebSocketConnected() {
	websocketClients.Inc()
}

func WebSocketDisconnected() {
	websocketClients.Dec()
}
