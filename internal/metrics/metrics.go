// Package metrics holds the Prometheus collectors for the API. Every method,
// including the HTTP middleware and handler, is safe on a nil *Metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
	betsPlaced          prometheus.Counter
	betsSettled         *prometheus.CounterVec
	payoutTotal         prometheus.Counter
	transactionsReviews *prometheus.CounterVec
	upstreamErrors      *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cricketbet_http_requests_total",
			Help: "HTTP requests by route template, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cricketbet_http_request_duration_seconds",
			Help:    "HTTP request latency by route template.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		betsPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cricketbet_bets_placed_total",
			Help: "Bets accepted.",
		}),
		betsSettled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cricketbet_bets_settled_total",
			Help: "Bet settlement outcomes.",
		}, []string{"outcome"}),
		payoutTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cricketbet_payout_amount_total",
			Help: "Sum of winnings credited.",
		}),
		transactionsReviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cricketbet_transactions_reviewed_total",
			Help: "Deposit and withdrawal reviews by kind and resulting status.",
		}, []string{"kind", "status"}),
		upstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cricketbet_upstream_errors_total",
			Help: "Failed calls to the match data provider.",
		}, []string{"operation"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.betsPlaced,
		m.betsSettled,
		m.payoutTotal,
		m.transactionsReviews,
		m.upstreamErrors,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) BetPlaced() {
	if m == nil {
		return
	}
	m.betsPlaced.Inc()
}

// BetSettled records one outcome: won, lost, skipped, unmatched or failed.
func (m *Metrics) BetSettled(outcome string, payout decimal.Decimal) {
	if m == nil {
		return
	}
	m.betsSettled.WithLabelValues(outcome).Inc()
	if payout.IsPositive() {
		m.payoutTotal.Add(payout.InexactFloat64())
	}
}

func (m *Metrics) TransactionReviewed(kind, status string) {
	if m == nil {
		return
	}
	m.transactionsReviews.WithLabelValues(kind, status).Inc()
}

func (m *Metrics) UpstreamError(operation string) {
	if m == nil {
		return
	}
	m.upstreamErrors.WithLabelValues(operation).Inc()
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware counts requests under their mux route template, so path
// parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(sw.status)).Inc()
		m.httpDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
