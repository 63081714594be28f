// Package telemetry exposes engine counters over Prometheus.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Metrics struct {
	OrdersSubmitted prometheus.Counter
	OrdersRejected  prometheus.Counter
	OrdersCancelled prometheus.Counter
	OrdersFilled    prometheus.Counter
	TradesTotal     prometheus.Counter
	TradeQty        prometheus.Histogram
	SubmitDur       prometheus.Histogram

	registry *prometheus.Registry
}

func New() *Metrics {
	m := &Metrics{
		OrdersSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oms_orders_submitted_total",
			Help: "Orders accepted past the risk gate",
		}),
		OrdersRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oms_orders_rejected_total",
			Help: "Orders rejected by the risk gate",
		}),
		OrdersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oms_orders_cancelled_total",
			Help: "Orders cancelled by user or expiry",
		}),
		OrdersFilled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oms_orders_filled_total",
			Help: "Orders that reached FILLED",
		}),
		TradesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oms_trades_total",
			Help: "Trades appended to the trade ledger",
		}),
		TradeQty: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "oms_trade_quantity",
			Help:    "Per-trade fill quantity",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		SubmitDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "oms_submit_duration_seconds",
			Help:    "Synchronous submit path duration (risk + venue scoring)",
			Buckets: prometheus.DefBuckets,
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.OrdersSubmitted, m.OrdersRejected, m.OrdersCancelled, m.OrdersFilled,
		m.TradesTotal, m.TradeQty, m.SubmitDur,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve blocks serving /metrics on addr.
func (m *Metrics) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	zap.S().Infof("telemetry listening on %s", addr)
	return srv.ListenAndServe()
}
