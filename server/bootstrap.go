package server

import (
	"context"
	"fmt"

	"github.com/jrsteele09/swiftchat-web/internal/config"
	"github.com/jrsteele09/swiftchat-web/storage"
	"github.com/jrsteele09/swiftchat-web/storage/postgres"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

// Bootstrap builds the server's dependencies from configuration. The returned
// cleanup releases the database pool, if one was opened.
func Bootstrap(ctx context.Context, cfg config.Config) (Deps, func(), error) {
	cleanup := func() {}

	var durable storage.Backend
	if url := cfg.GetDatabaseURL(); url != "" {
		pool, err := postgres.Connect(ctx, url)
		if err != nil {
			return Deps{}, cleanup, fmt.Errorf("[server Bootstrap] %w", err)
		}
		cleanup = pool.Close
		durable = postgres.NewBackend(pool)
		log.Info().Msg("Browser storage: postgres")
	} else {
		durable = storage.NewInMemoryBackend()
		log.Warn().Msg("Browser storage: memory only, sessions are lost on restart")
	}

	if secret := cfg.GetStorageSealKey(); secret != "" {
		sealed, err := storage.NewSealedBackend(durable, secret)
		if err != nil {
			cleanup()
			return Deps{}, func() {}, fmt.Errorf("[server Bootstrap] %w", err)
		}
		durable = sealed
		log.Info().Msg("Browser storage: sealed at rest")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return Deps{
		Durable:    durable,
		Scoped:     storage.NewInMemoryBackend(),
		Registerer: reg,
		Gatherer:   reg,
	}, cleanup, nil
}
