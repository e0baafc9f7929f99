package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"liyu1981.xyz/iot-datalogger/pkg/iot"
	"liyu1981.xyz/iot-datalogger/pkg/models"
)

const namespace = "datalogger"

var statuses = []models.DeviceStatus{
	models.DeviceStatusOffline,
	models.DeviceStatusMissingData,
	models.DeviceStatusOnline,
	models.DeviceStatusAlarm,
}

// Metrics records poll outcomes on its own registry so tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	ticksTotal    prometheus.Counter
	tickErrors    prometheus.Counter
	alarmsTotal   prometheus.Counter
	devices       *prometheus.GaugeVec
	fetchDuration prometheus.Histogram
	lastSuccess   prometheus.Gauge
}

var _ iot.IObserver = (*Metrics)(nil)

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_ticks_total",
			Help:      "Total poll ticks applied.",
		}),
		tickErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_errors_total",
			Help:      "Total poll ticks that failed to fetch or parse the dashboard feed.",
		}),
		alarmsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alarms_raised_total",
			Help:      "Total alarms recorded.",
		}),
		devices: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "devices",
			Help:      "Devices on the board by status after the last tick.",
		}, []string{"status"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Histogram of dashboard fetch and normalize durations.",
			Buckets:   prometheus.DefBuckets,
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful tick.",
		}),
	}

	m.Registry.MustRegister(
		m.ticksTotal,
		m.tickErrors,
		m.alarmsTotal,
		m.devices,
		m.fetchDuration,
		m.lastSuccess,
		collectors.NewGoCollector(),
	)

	for _, s := range statuses {
		m.devices.WithLabelValues(string(s)).Set(0)
	}

	return m
}

func (m *Metrics) OnTick(result models.TickResult) {
	if m == nil {
		return
	}

	m.ticksTotal.Inc()
	if result.Took > 0 {
		m.fetchDuration.Observe(result.Took.Seconds())
	}
	if result.Err != nil || result.Error != "" {
		m.tickErrors.Inc()
	} else if !result.At.IsZero() {
		m.lastSuccess.Set(float64(result.At.Unix()))
	}
	m.alarmsTotal.Add(float64(len(result.NewAlarms)))

	counts := make(map[models.DeviceStatus]int, len(statuses))
	for _, d := range result.Devices {
		counts[d.Status]++
	}
	for _, s := range statuses {
		m.devices.WithLabelValues(string(s)).Set(float64(counts[s]))
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
