// Package observability provides metrics and tracing for the application.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RegistrationsTotal counts successful user registrations.
	RegistrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "photogram_registrations_total",
		Help: "Total number of successfully registered users",
	})

	// PostsCreatedTotal counts created posts.
	PostsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "photogram_posts_created_total",
		Help: "Total number of created posts",
	})

	// LikesTotal counts created likes.
	LikesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "photogram_likes_total",
		Help: "Total number of created likes",
	})

	// LikeConflictsTotal counts duplicate-like attempts rejected by the
	// uniqueness constraint.
	LikeConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "photogram_like_conflicts_total",
		Help: "Total number of duplicate like attempts",
	})

	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photogram_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records query latency by operation and table.
	// Observed from the GORM callbacks registered in the database package.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "photogram_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)
