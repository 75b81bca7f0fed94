// Package metrics exposes Prometheus counters for the collection API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the subset of Collector used by middleware and handlers.
type Recorder interface {
	RecordRequest(method, route string, status int, duration time.Duration)
	RecordOrderPlaced(total float64)
	RecordUpload(bytes int)
}

type Collector struct {
	requests     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	ordersPlaced prometheus.Counter
	orderValue   prometheus.Counter
	uploadBytes  prometheus.Counter
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mobilehub_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status_code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mobilehub_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ordersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mobilehub_orders_placed_total",
			Help: "Orders placed",
		}),
		orderValue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mobilehub_order_value_total",
			Help: "Sum of placed order totals",
		}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mobilehub_upload_bytes_total",
			Help: "Bytes accepted by the image upload endpoint",
		}),
	}

	reg.MustRegister(c.requests, c.latency, c.ordersPlaced, c.orderValue, c.uploadBytes)
	return c
}

func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.latency.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) RecordOrderPlaced(total float64) {
	c.ordersPlaced.Inc()
	c.orderValue.Add(total)
}

func (c *Collector) RecordUpload(bytes int) {
	c.uploadBytes.Add(float64(bytes))
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards all measurements.
type Nop struct{}

func (Nop) RecordRequest(string, string, int, time.Duration) {}
func (Nop) RecordOrderPlaced(float64)                        {}
func (Nop) RecordUpload(int)                                 {}
