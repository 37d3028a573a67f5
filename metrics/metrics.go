package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "agentmarket"

// Drop reasons used as label values of messages_dropped_total.
const (
	DropUnknownReceiver = "unknown_receiver"
	DropMailboxClosed   = "mailbox_closed"
	DropUnmatched       = "unmatched"
)

// Metrics bundles every collector. All methods are safe on a nil receiver so
// components can be wired without metrics.
type Metrics struct {
	messagesSent      prometheus.Counter
	messagesDelivered prometheus.Counter
	messagesDropped   *prometheus.CounterVec
	behaviorPanics    *prometheus.CounterVec
	actorsActive      prometheus.Gauge

	auctionsOpened  prometheus.Counter
	auctionsClosed  *prometheus.CounterVec
	bidsAccepted    prometheus.Counter
	activeAuctions  prometheus.Gauge
	activeAgents    prometheus.Gauge
	tradedVolume    prometheus.Gauge
	observerDropped prometheus.Counter
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered, which is convenient in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		messagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "number of messages handed to the runtime",
		}),
		messagesDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_delivered_total",
			Help:      "number of per-receiver message deliveries into a mailbox",
		}),
		messagesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_dropped_total",
			Help:      "number of per-receiver deliveries that were dropped",
		}, []string{"reason"}),
		behaviorPanics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "behavior_panics_total",
			Help:      "number of recovered behavior panics",
		}, []string{"kind"}),
		actorsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "actors_active",
			Help:      "number of live actors",
		}),
		auctionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auctions_opened_total",
			Help:      "number of auctions created",
		}),
		auctionsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auctions_closed_total",
			Help:      "number of auctions closed by outcome",
		}, []string{"outcome"}),
		bidsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bids_accepted_total",
			Help:      "number of accepted bids",
		}),
		activeAuctions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "auctions_active",
			Help:      "number of open auctions",
		}),
		activeAgents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bidders_active",
			Help:      "number of registered bidders",
		}),
		tradedVolume: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "traded_volume",
			Help:      "total settled auction volume",
		}),
		observerDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observer_events_dropped_total",
			Help:      "number of presentation events shed by the dispatcher",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.messagesSent, m.messagesDelivered, m.messagesDropped, m.behaviorPanics, m.actorsActive,
			m.auctionsOpened, m.auctionsClosed, m.bidsAccepted, m.activeAuctions, m.activeAgents,
			m.tradedVolume, m.observerDropped,
		)
	}

	return m
}

// MessageSent counts a message handed to the runtime.
func (m *Metrics) MessageSent() {
	if m == nil {
		return
	}
	m.messagesSent.Inc()
}

// MessagesDelivered counts n successful mailbox deliveries.
func (m *Metrics) MessagesDelivered(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.messagesDelivered.Add(float64(n))
}

// MessagesDropped counts n dropped deliveries for reason.
func (m *Metrics) MessagesDropped(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.messagesDropped.WithLabelValues(reason).Add(float64(n))
}

// BehaviorPanicked counts a recovered panic in an actor of the given kind.
func (m *Metrics) BehaviorPanicked(kind string) {
	if m == nil {
		return
	}
	m.behaviorPanics.WithLabelValues(kind).Inc()
}

// SetActors records the number of live actors.
func (m *Metrics) SetActors(n int) {
	if m == nil {
		return
	}
	m.actorsActive.Set(float64(n))
}

// ObserverDropped counts a presentation event shed by the dispatcher.
func (m *Metrics) ObserverDropped() {
	if m == nil {
		return
	}
	m.observerDropped.Inc()
}
