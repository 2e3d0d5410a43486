package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookhaven/internal/domain"
	"github.com/vladislavdragonenkov/bookhaven/internal/httpapi"
	"github.com/vladislavdragonenkov/bookhaven/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/bookhaven/internal/metrics"
	"github.com/vladislavdragonenkov/bookhaven/internal/storefront"
)

// createStorefrontFactory собирает команды витрины для каждой новой сессии.
// Хранилище записей общее для всех сессий.
func createStorefrontFactory(
	deps *runtimeDependencies,
	records *storefront.DurableRecordStore,
	kafkaProducer *kafka.Producer,
	m *metrics.StorefrontMetrics,
	logger *log.Entry,
) httpapi.StorefrontFactory {
	var publisher domain.OrderEventPublisher
	if kafkaProducer != nil {
		publisher = kafkaProducer
	}

	return func(sessionID string) *storefront.Storefront {
		sessionLogger := logger.WithField("session_id", sessionID)
		cartStore := storefront.NewSessionCartStore(deps.sessions.ForSession(sessionID), sessionLogger, m)
		session := storefront.NewCartSession(cartStore, records,
			storefront.WithLogger(sessionLogger),
			storefront.WithMetrics(m),
			storefront.WithEventPublisher(publisher),
		)
		return storefront.NewStorefront(session, records,
			storefront.WithLogger(sessionLogger),
			storefront.WithMetrics(m),
		)
	}
}
