package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "judgment"

func newBreakerCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resilience",
			Name:      "breaker_transitions_total",
			Help:      "Circuit breaker state transitions by operation.",
		},
		[]string{"service", "operation", "from", "to"},
	)
}

func breakerObserver(counter *prometheus.CounterVec, service string) func(operation, from, to string) {
	return func(operation, from, to string) {
		counter.WithLabelValues(service, operation, from, to).Inc()
	}
}
