package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeCheckoutStarted  = "checkout_started"
	outcomeCompleted        = "completed"
	outcomeRedelivered      = "redelivered"
	outcomeUnknownSession   = "unknown_session"
	outcomeInvalidSignature = "invalid_signature"
	outcomeExpired          = "expired"
)

var (
	purchaseEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lms_purchase_events_total",
			Help: "Purchase lifecycle events by outcome",
		},
		[]string{"outcome"},
	)

	lectureViewsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lms_lecture_views_total",
			Help: "Total number of recorded lecture views",
		},
	)

	coursesCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lms_courses_completed_total",
			Help: "Total number of course completions",
		},
	)
)
