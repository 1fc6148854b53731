package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "governor_indexer"

// Recorder tracks per-ledger indexing counters. A nil Recorder is a no-op.
type Recorder struct {
	registry       *prometheus.Registry
	ledgers        prometheus.Counter
	lastLedger     prometheus.Gauge
	eventsRouted   *prometheus.CounterVec
	recordsWritten *prometheus.CounterVec
	storeFailures  *prometheus.CounterVec
	ledgerDuration prometheus.Histogram
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		ledgers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledgers_processed_total",
			Help:      "number of closed ledgers processed",
		}),
		lastLedger: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_ledger_sequence",
			Help:      "sequence of the most recently processed ledger",
		}),
		eventsRouted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_routed_total",
			Help:      "recognized governor events routed to a decoder",
		}, []string{"kind"}),
		recordsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_written_total",
			Help:      "store calls that completed successfully",
		}, []string{"kind"}),
		storeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_failures_total",
			Help:      "store calls that failed; the event was reported and skipped",
		}, []string{"kind"}),
		ledgerDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ledger_duration_seconds",
			Help:      "time spent dispatching one ledger",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
	}
	r.registry.MustRegister(r.ledgers, r.lastLedger, r.eventsRouted, r.recordsWritten, r.storeFailures, r.ledgerDuration)
	return r
}

func (r *Recorder) LedgerProcessed(sequence uint32, took time.Duration) {
	if r == nil {
		return
	}
	r.ledgers.Inc()
	r.lastLedger.Set(float64(sequence))
	r.ledgerDuration.Observe(took.Seconds())
}

func (r *Recorder) EventsRouted(kind string, n int) {
	if r == nil || n == 0 {
		return
	}
	r.eventsRouted.WithLabelValues(kind).Add(float64(n))
}

func (r *Recorder) RecordsWritten(kind string, n int) {
	if r == nil || n == 0 {
		return
	}
	r.recordsWritten.WithLabelValues(kind).Add(float64(n))
}

func (r *Recorder) StoreFailed(kind string) {
	if r == nil {
		return
	}
	r.storeFailures.WithLabelValues(kind).Inc()
}

// Serve exposes /metrics on addr until ctx is done.
func (r *Recorder) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics listening", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
