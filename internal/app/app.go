package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mfreitas/crisischat-server/internal/auth"
	"github.com/mfreitas/crisischat-server/internal/config"
	"github.com/mfreitas/crisischat-server/internal/request"
	"github.com/mfreitas/crisischat-server/internal/room"
	"github.com/mfreitas/crisischat-server/internal/store"
	"github.com/mfreitas/crisischat-server/internal/store/file"
	"github.com/mfreitas/crisischat-server/internal/store/sqlite"
	transporttcp "github.com/mfreitas/crisischat-server/internal/transport/tcp"
)

// App wires together storage, rooms, the request ledger and the control
// channel.
type App struct {
	server *transporttcp.Server
	rooms  *room.Set
	ledger *request.Ledger
	store  store.Store
	log    *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := OpenStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("backend", cfg.StoreBackend).Msg("store initialized")

	registry := room.NewRegistry()
	rooms, err := room.NewSet(registry, st, logger)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init rooms: %w", err)
	}

	ledger := request.NewLedger(cfg.AnnounceInterval, rooms.Broadcast, logger)
	authService := auth.NewService(st)
	server := transporttcp.NewServer(cfg, authService, ledger, registry, st, rooms.Broadcast, logger)

	return &App{
		server: server,
		rooms:  rooms,
		ledger: ledger,
		store:  st,
		log:    logger,
	}, nil
}

// OpenStore builds the configured storage backend.
func OpenStore(cfg config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.StoreSQLite:
		return sqlite.New(cfg.DatabasePath)
	case config.StoreFile, "":
		return file.New(cfg.DataDir)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// Run starts every duty and blocks until context cancellation or a fatal
// listener error.
func (a *App) Run(ctx context.Context) error {
	a.rooms.Start()
	go a.ledger.Run(ctx)

	err := a.server.Run(ctx)

	a.cleanup()
	return err
}

// cleanup tears down rooms and closes the store.
func (a *App) cleanup() {
	a.rooms.Stop()
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
