package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// eventsPublished cuenta eventos aceptados por el dispatcher.
	// Labels:
	// - kind: FRIEND_REQUEST, COFFEE_BREAK_CREATED, ...
	eventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cwm",
			Subsystem: "notifications",
			Name:      "events_published_total",
			Help:      "Number of domain events accepted by the dispatcher",
		},
		[]string{"kind"},
	)

	// consumerFailures cuenta entregas a consumers que fallaron tras agotar reintentos.
	// Labels:
	// - consumer: nombre del consumer
	// - kind: tipo de evento
	consumerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cwm",
			Subsystem: "notifications",
			Name:      "consumer_failures_total",
			Help:      "Number of events a consumer dropped after exhausting retries",
		},
		[]string{"consumer", "kind"},
	)

	// consumeDuration mide cuánto tarda cada consumer por evento (incluye reintentos).
	consumeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cwm",
			Subsystem: "notifications",
			Name:      "consume_duration_seconds",
			Help:      "Duration of a consumer handling one event",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"consumer", "kind"},
	)

	// deliveries cuenta entregas por canal.
	// Labels:
	// - sink: log, redis, websocket, webhook, store
	// - status: success | failure
	deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cwm",
			Subsystem: "notifications",
			Name:      "deliveries_total",
			Help:      "Number of per-recipient notification deliveries by sink and status",
		},
		[]string{"sink", "status"},
	)

	// eventsDropped cuenta eventos que no entraron a la cola.
	// Labels:
	// - kind: tipo de evento
	// - reason: queue_full | closed | invalid
	eventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cwm",
			Subsystem: "notifications",
			Name:      "events_dropped_total",
			Help:      "Number of domain events rejected at publish time",
		},
		[]string{"kind", "reason"},
	)

	// recipientsDropped cuenta destinatarios salteados porque su lookup siguió fallando.
	recipientsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cwm",
			Subsystem: "notifications",
			Name:      "recipients_dropped_total",
			Help:      "Number of recipients skipped after exhausting directory lookup retries",
		},
		[]string{"kind"},
	)

	// recipientsResolved observa el tamaño del set de destinatarios por evento.
	recipientsResolved = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cwm",
			Subsystem: "notifications",
			Name:      "recipients_per_event",
			Help:      "Number of recipients resolved for an event",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"kind"},
	)
)

func IncEventsPublished(kind string) {
	eventsPublished.WithLabelValues(orUnknown(kind)).Inc()
}

func IncConsumerFailure(consumer, kind string) {
	consumerFailures.WithLabelValues(orUnknown(consumer), orUnknown(kind)).Inc()
}

func ObserveConsumeDuration(consumer, kind string, seconds float64) {
	consumeDuration.WithLabelValues(orUnknown(consumer), orUnknown(kind)).Observe(seconds)
}

// IncDelivery registra una entrega. ok=false cuenta como failure.
func IncDelivery(sink string, ok bool) {
	status := "success"
	if !ok {
		status = "failure"
	}
	deliveries.WithLabelValues(orUnknown(sink), status).Inc()
}

func ObserveRecipients(kind string, n int) {
	recipientsResolved.WithLabelValues(orUnknown(kind)).Observe(float64(n))
}

func IncEventsDropped(kind, reason string) {
	eventsDropped.WithLabelValues(orUnknown(kind), orUnknown(reason)).Inc()
}

func IncRecipientsDropped(kind string, n int) {
	recipientsDropped.WithLabelValues(orUnknown(kind)).Add(float64(n))
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
