// SPDX-License-Identifier: BSD-3-Clause

// Package metrics instruments the engine loop with Prometheus metrics
// on a private registry, using the prometheus.GaugeVec/Counter/
// Histogram types idiomatic to hwmon-adjacent exporters.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "coolercontrold"

// Registry holds every metric the engine loop publishes. It is built
// on its own prometheus.Registry rather than the global default, so a
// host process embedding the engine can expose it on whatever path
// (or not at all) without colliding with its own metrics.
type Registry struct {
	reg *prometheus.Registry

	TickDuration      prometheus.Histogram
	SafetyLatchTrips  *prometheus.CounterVec
	DeviceFailures    *prometheus.CounterVec
	LastDutyPct       *prometheus.GaugeVec
	LastTempC         *prometheus.GaugeVec
	TicksTotal        prometheus.Counter
}

// New builds a Registry with every metric registered.
func New() *Registry {
	reg := prometheus.NewRegistry()

	m := &Registry{
		reg: reg,
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Time spent processing one engine loop tick.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		SafetyLatchTrips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "safety_latch_trips_total",
			Help:      "Number of times the safety-latch watchdog forced a channel to 100% duty.",
		}, []string{"device_uid", "channel"}),
		DeviceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "device_failures_total",
			Help:      "Number of back-end calls that failed or timed out.",
		}, []string{"device_uid", "channel", "reason"}),
		LastDutyPct: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_duty_percent",
			Help:      "Last duty percentage successfully applied to a channel.",
		}, []string{"device_uid", "channel"}),
		LastTempC: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_temperature_celsius",
			Help:      "Last temperature reading recorded for a device sensor.",
		}, []string{"device_uid", "sensor"}),
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Total number of completed engine loop ticks.",
		}),
	}

	reg.MustRegister(
		m.TickDuration,
		m.SafetyLatchTrips,
		m.DeviceFailures,
		m.LastDutyPct,
		m.LastTempC,
		m.TicksTotal,
	)
	return m
}

// Registry exposes the underlying prometheus.Registry so a caller can
// wire it into promhttp.HandlerFor or another exposition path.
func (m *Registry) Registry() *prometheus.Registry { return m.reg }

// ObserveTick records one tick's processing duration and increments
// the tick counter.
func (m *Registry) ObserveTick(d time.Duration) {
	m.TickDuration.Observe(d.Seconds())
	m.TicksTotal.Inc()
}

// RecordDuty records the last duty percentage applied to a channel.
func (m *Registry) RecordDuty(deviceUID, channel string, dutyPct float64) {
	m.LastDutyPct.WithLabelValues(deviceUID, channel).Set(dutyPct)
}

// RecordTemp records the last temperature reading for a device sensor.
func (m *Registry) RecordTemp(deviceUID, sensor string, tempC float64) {
	m.LastTempC.WithLabelValues(deviceUID, sensor).Set(tempC)
}

// RecordSafetyLatchTrip increments the safety-latch trip counter for a
// channel.
func (m *Registry) RecordSafetyLatchTrip(deviceUID, channel string) {
	m.SafetyLatchTrips.WithLabelValues(deviceUID, channel).Inc()
}

// RecordDeviceFailure increments the device failure counter.
func (m *Registry) RecordDeviceFailure(deviceUID, channel, reason string) {
	m.DeviceFailures.WithLabelValues(deviceUID, channel, reason).Inc()
}
