package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Marketplace metrics
var (
	AccountsRegistered = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accounts_registered_total",
			Help:      "Accounts created, by role",
		},
		[]string{"role"},
	)

	// LoginAttempts counts logins by outcome: success|invalid_credentials|error.
	LoginAttempts = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome",
		},
		[]string{"result"},
	)

	PostingsCreated = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "postings_created_total",
			Help:      "Internship postings created",
		},
	)

	PostingsDeleted = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "postings_deleted_total",
			Help:      "Internship postings deleted",
		},
	)

	PostingStatusChanges = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posting_status_changes_total",
			Help:      "Posting status transitions",
		},
		[]string{"from", "to"},
	)

	ApplicationsSubmitted = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "applications_submitted_total",
			Help:      "Applications submitted by students",
		},
	)

	ApplicationsRejectedDuplicate = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "applications_duplicate_total",
			Help:      "Apply attempts rejected because the student already applied",
		},
	)

	ApplicationStatusChanges = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "application_status_changes_total",
			Help:      "Application status updates, by new status",
		},
		[]string{"status"},
	)
)
