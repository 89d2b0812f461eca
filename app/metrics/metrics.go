// Package metrics defines prometheus collectors exposed on /metrics
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LifecycleScansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "repairdesk_lifecycle_scans_total",
		Help: "Total number of lifecycle scans over the job store.",
	})

	NotificationsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repairdesk_notifications_sent_total",
		Help: "Total number of customer notices delivered, by kind.",
	},
		[]string{"kind"},
	)

	NotificationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repairdesk_notification_errors_total",
		Help: "Total number of failed customer notice deliveries, by kind.",
	},
		[]string{"kind"},
	)

	JobsConfiscatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "repairdesk_jobs_confiscated_total",
		Help: "Total number of jobs moved to confiscated by the lifecycle engine.",
	})

	JobsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "repairdesk_jobs_created_total",
		Help: "Total number of jobs created.",
	})

	JobsCollectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "repairdesk_jobs_collected_total",
		Help: "Total number of jobs marked as collected.",
	})

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repairdesk_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)
)
