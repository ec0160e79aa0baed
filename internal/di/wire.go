//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"EuroLens/pkg/config"
	"EuroLens/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories and sources
		ProvideDrawStore,
		ProvideDrawPublisher,
		ProvideDrawAPIClient,
		ProvideDrawLoader,

		// Use cases
		ProvideStatsUseCase,
		ProvideTicketsUseCase,
		ProvideDrawSync,
		ProvideKafkaConsumer,
		ProvideKafkaDrawsHandler,

		// HTTP
		ProvideRateLimiter,
		ProvideLotteryHandler,
		ProvideHTTPServer,

		ProvideApp,
	)
	return &server.App{}, nil
}
