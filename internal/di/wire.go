//go:build wireinject
// +build wireinject

package di

import (
	"CurvePull/pkg/config"
	"CurvePull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideHTTPClient,
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideCache,

		// Repositories
		ProvideSources,
		ProvidePanelStore,
		ProvidePanelMirror,
		ProvideRunEvents,

		// Use cases
		ProvidePipeline,
		ProvidePanelService,

		// HTTP
		ProvidePanelHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
