package prometheusmetrics

import (
	"reminderengine/internal/core/domain/metrics"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Recorder struct {
	scans             prometheus.Counter
	scanDuration      prometheus.Histogram
	scanReminders     *prometheus.CounterVec
	cacheReloads      *prometheus.CounterVec
	cacheSize         prometheus.Gauge
	channelDeliveries *prometheus.CounterVec
	channelSkips      *prometheus.CounterVec
	userActions       *prometheus.CounterVec
}

func New(registerer prometheus.Registerer) *Recorder {
	factory := promauto.With(registerer)
	return &Recorder{
		scans: factory.NewCounter(prometheus.CounterOpts{
			Name: "reminder_engine_scans_total",
			Help: "Total number of due detection scans",
		}),
		scanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "reminder_engine_scan_duration_seconds",
			Help:    "Duration of due detection scans",
			Buckets: prometheus.DefBuckets,
		}),
		scanReminders: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reminder_engine_scan_reminders_total",
			Help: "Reminders seen by scans, by outcome",
		}, []string{"outcome"}),
		cacheReloads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reminder_engine_cache_reloads_total",
			Help: "Reminder cache reloads, by result",
		}, []string{"result"}),
		cacheSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "reminder_engine_cache_size",
			Help: "Number of active reminders held by the cache",
		}),
		channelDeliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reminder_engine_channel_deliveries_total",
			Help: "Channel deliveries, by channel and result",
		}, []string{"channel", "result"}),
		channelSkips: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reminder_engine_channel_skips_total",
			Help: "Channel deliveries skipped, by channel and reason",
		}, []string{"channel", "reason"}),
		userActions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reminder_engine_user_actions_total",
			Help: "Snooze and dismiss actions, by action and result",
		}, []string{"action", "result"}),
	}
}

func (r *Recorder) ObserveScan(outcome metrics.ScanOutcome, took time.Duration) {
	r.scans.Inc()
	r.scanDuration.Observe(took.Seconds())
	r.scanReminders.WithLabelValues("due").Add(float64(outcome.Due))
	r.scanReminders.WithLabelValues("delivered").Add(float64(outcome.Delivered))
	r.scanReminders.WithLabelValues("suppressed").Add(float64(outcome.Suppressed))
	r.scanReminders.WithLabelValues("failed").Add(float64(outcome.Failed))
}

func (r *Recorder) ObserveCacheReload(size int, err error) {
	if err != nil {
		r.cacheReloads.WithLabelValues("error").Inc()
		return
	}
	r.cacheReloads.WithLabelValues("ok").Inc()
	r.cacheSize.Set(float64(size))
}

func (r *Recorder) ObserveChannelDelivery(channel string, err error) {
	r.channelDeliveries.WithLabelValues(channel, result(err)).Inc()
}

func (r *Recorder) ObserveChannelSkipped(channel string, reason string) {
	r.channelSkips.WithLabelValues(channel, reason).Inc()
}

func (r *Recorder) ObserveUserAction(action string, err error) {
	r.userActions.WithLabelValues(action, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
