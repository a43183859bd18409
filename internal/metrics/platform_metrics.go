package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/videohub/videohub-api/pkg/logger"
)

// PlatformMetrics интерфейс для метрик платформы
type PlatformMetrics interface {
	IncSubscriptionActivated(planName string)
	IncSubscriptionExtended(source string)
	IncSubscriptionDenied(reason string)
	ObserveSubscriptionDuration(planName string, durationSeconds float64)
	IncVideoUploaded(category string)
	IncVideoViewed(category string)
	IncUserRegistered()
}

type platformMetrics struct {
	log                   *logger.Logger
	subscriptionsActive   *prometheus.CounterVec
	subscriptionsExtended *prometheus.CounterVec
	subscriptionsDenied   *prometheus.CounterVec
	subscriptionDuration  *prometheus.HistogramVec
	videosUploaded        *prometheus.CounterVec
	videosViewed          *prometheus.CounterVec
	usersRegistered       prometheus.Counter
}

// NewPlatformMetrics создает новые метрики платформы
func NewPlatformMetrics(registry *prometheus.Registry, log *logger.Logger) PlatformMetrics {
	subscriptionsActive := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriptions_activated_total",
			Help: "The total number of subscription activations by plan",
		},
		[]string{"plan"},
	)

	subscriptionsExtended := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriptions_extended_total",
			Help: "The total number of subscription extensions by source",
		},
		[]string{"source"},
	)

	subscriptionsDenied := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriptions_denied_total",
			Help: "The total number of rejected subscription attempts by reason",
		},
		[]string{"reason"},
	)

	subscriptionDuration := promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "subscription_duration_seconds",
			Help:    "Purchased subscription durations distribution",
			Buckets: prometheus.ExponentialBuckets(3600, 4, 6), // час .. ~4 месяца
		},
		[]string{"plan"},
	)

	videosUploaded := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "videos_uploaded_total",
			Help: "The total number of uploaded videos by category",
		},
		[]string{"category"},
	)

	videosViewed := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "videos_viewed_total",
			Help: "The total number of recorded video views by category",
		},
		[]string{"category"},
	)

	usersRegistered := promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "users_registered_total",
			Help: "The total number of registered users",
		},
	)

	return &platformMetrics{
		log:                   log,
		subscriptionsActive:   subscriptionsActive,
		subscriptionsExtended: subscriptionsExtended,
		subscriptionsDenied:   subscriptionsDenied,
		subscriptionDuration:  subscriptionDuration,
		videosUploaded:        videosUploaded,
		videosViewed:          videosViewed,
		usersRegistered:       usersRegistered,
	}
}

// IncSubscriptionActivated увеличивает счетчик активаций подписок
func (m *platformMetrics) IncSubscriptionActivated(planName string) {
	m.subscriptionsActive.WithLabelValues(planName).Inc()
}

// IncSubscriptionExtended увеличивает счетчик продлений подписок
func (m *platformMetrics) IncSubscriptionExtended(source string) {
	m.subscriptionsExtended.WithLabelValues(source).Inc()
}

// IncSubscriptionDenied увеличивает счетчик отклоненных попыток подписки
func (m *platformMetrics) IncSubscriptionDenied(reason string) {
	m.subscriptionsDenied.WithLabelValues(reason).Inc()
}

// ObserveSubscriptionDuration записывает купленную длительность подписки
func (m *platformMetrics) ObserveSubscriptionDuration(planName string, durationSeconds float64) {
	m.subscriptionDuration.WithLabelValues(planName).Observe(durationSeconds)
}

// IncVideoUploaded увеличивает счетчик загруженных видео
func (m *platformMetrics) IncVideoUploaded(category string) {
	m.videosUploaded.WithLabelValues(category).Inc()
}

// IncVideoViewed увеличивает счетчик просмотров
func (m *platformMetrics) IncVideoViewed(category string) {
	m.videosViewed.WithLabelValues(category).Inc()
}

// IncUserRegistered увеличивает счетчик регистраций
func (m *platformMetrics) IncUserRegistered() {
	m.usersRegistered.Inc()
}
