// SPDX-License-Identifier: EPL-2.0

package telemetry

import (
	"errors"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ik5/beatmix/session"
)

const namespace = "beatmix"

// Metrics counts session events into Prometheus collectors.
type Metrics struct {
	events       *prometheus.CounterVec
	transitions  *prometheus.CounterVec
	overlap      prometheus.Histogram
	phaseError   prometheus.Histogram
	decodeErrors prometheus.Counter
	sessions     prometheus.Gauge

	mu     sync.Mutex
	active map[string]struct{}
}

// NewMetrics creates the collectors and registers them with reg. Collectors
// already registered by an earlier call are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Session events by type.",
		}, []string{"type"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Started transitions by beat matching and plan reason.",
		}, []string{"beat_matched", "reason"}),
		overlap: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transition_overlap_seconds",
			Help:      "Planned overlap of started transitions.",
			Buckets:   []float64{0.5, 1, 2, 4, 6, 8, 12, 16},
		}),
		phaseError: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transition_phase_error_beats",
			Help:      "Beat phase error at the midpoint of beat-matched transitions.",
			Buckets:   []float64{0.01, 0.02, 0.05, 0.1, 0.2, 0.5},
		}),
		decodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Tracks skipped because they could not be fetched or decoded.",
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Sessions that started a track and have not stopped.",
		}),
		active: make(map[string]struct{}),
	}

	var err error
	m.events, err = register(reg, m.events)
	if err != nil {
		return nil, err
	}
	m.transitions, err = register(reg, m.transitions)
	if err != nil {
		return nil, err
	}
	m.overlap, err = register(reg, m.overlap)
	if err != nil {
		return nil, err
	}
	m.phaseError, err = register(reg, m.phaseError)
	if err != nil {
		return nil, err
	}
	m.decodeErrors, err = register(reg, m.decodeErrors)
	if err != nil {
		return nil, err
	}
	m.sessions, err = register(reg, m.sessions)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) Emit(ev session.Event) {
	m.events.WithLabelValues(string(ev.Type)).Inc()

	switch ev.Type {
	case session.EventTransitionStarted:
		if p := ev.Plan; p != nil {
			m.transitions.WithLabelValues(strconv.FormatBool(p.BeatMatched), string(p.Reason)).Inc()
			m.overlap.Observe(p.Duration.Seconds())
			if p.BeatMatched {
				m.phaseError.Observe(p.PhaseError)
			}
		}
	case session.EventTrackStarted:
		m.track(ev.SessionID, true)
	case session.EventTrackSkippedDecodeError:
		m.decodeErrors.Inc()
	case session.EventSessionStopped:
		m.track(ev.SessionID, false)
	}
}

func (m *Metrics) track(id string, live bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, known := m.active[id]
	switch {
	case live && !known:
		m.active[id] = struct{}{}
		m.sessions.Inc()
	case !live && known:
		delete(m.active, id)
		m.sessions.Dec()
	}
}
