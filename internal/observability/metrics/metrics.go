// Package metrics registers the service's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransitionsTotal counts committed state transitions by target state.
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cashout",
		Subsystem: "billing",
		Name:      "transitions_total",
		Help:      "Committed billing-request state transitions.",
	}, []string{"to_state"})

	// TransitionConflictsTotal counts transitions lost to a concurrent writer.
	TransitionConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cashout",
		Subsystem: "billing",
		Name:      "transition_conflicts_total",
		Help:      "Billing-request transitions that lost a concurrent state race.",
	})

	// RequestsCreatedTotal counts new billing requests by platform.
	RequestsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cashout",
		Subsystem: "billing",
		Name:      "requests_created_total",
		Help:      "Billing requests created, labelled by ad platform.",
	}, []string{"platform"})
)
