package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "invoicely"

// Recorder collects ledger and HTTP metrics.
type Recorder struct {
	invoicesCreated  prometheus.Counter
	paymentsApplied  prometheus.Counter
	paymentsRejected *prometheus.CounterVec
	paymentAmount    prometheus.Histogram
	overdueMarked    prometheus.Counter
	httpDuration     *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. A nil registry gets a private one so
// that tests and CLI commands never collide on the default registerer.
func New(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	r := &Recorder{
		invoicesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_created_total",
			Help:      "Invoices created.",
		}),
		paymentsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_applied_total",
			Help:      "Payments successfully applied to invoices.",
		}),
		paymentsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_rejected_total",
			Help:      "Payments rejected, by error kind.",
		}, []string{"reason"}),
		paymentAmount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "payment_amount",
			Help:      "Distribution of applied payment amounts.",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 8),
		}),
		overdueMarked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_marked_overdue_total",
			Help:      "Invoices moved to overdue by the sweep.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		gatherer: reg,
	}

	reg.MustRegister(
		r.invoicesCreated,
		r.paymentsApplied,
		r.paymentsRejected,
		r.paymentAmount,
		r.overdueMarked,
		r.httpDuration,
	)
	return r
}

func (r *Recorder) InvoiceCreated() {
	if r == nil {
		return
	}
	r.invoicesCreated.Inc()
}

func (r *Recorder) PaymentApplied(amount float64) {
	if r == nil {
		return
	}
	r.paymentsApplied.Inc()
	r.paymentAmount.Observe(amount)
}

func (r *Recorder) PaymentRejected(reason string) {
	if r == nil {
		return
	}
	r.paymentsRejected.WithLabelValues(reason).Inc()
}

func (r *Recorder) OverdueMarked(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.overdueMarked.Add(float64(n))
}

func (r *Recorder) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
