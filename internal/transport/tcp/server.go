package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mfreitas/crisischat-server/internal/auth"
	"github.com/mfreitas/crisischat-server/internal/config"
	"github.com/mfreitas/crisischat-server/internal/request"
	"github.com/mfreitas/crisischat-server/internal/room"
	"github.com/mfreitas/crisischat-server/internal/store"
)

// Server owns the control-channel listener: one session goroutine per
// accepted connection, plus the periodic status report broadcast to every
// room.
type Server struct {
	cfg       config.Config
	auth      *auth.Service
	ledger    *request.Ledger
	registry  room.Registry
	history   store.RoomLog
	broadcast func(string)
	sessions  *Sessions
	log       *zerolog.Logger
}

// NewServer wires the control-channel server.
func NewServer(cfg config.Config, authService *auth.Service, ledger *request.Ledger, registry room.Registry, history store.RoomLog, broadcast func(string), logger *zerolog.Logger) *Server {
	return &Server{
		cfg:       cfg,
		auth:      authService,
		ledger:    ledger,
		registry:  registry,
		history:   history,
		broadcast: broadcast,
		sessions:  NewSessions(),
		log:       logger,
	}
}

// Run listens for control connections until the context is cancelled.
// Failing to open the listener is fatal: no connections can be served.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}

	s.log.Info().Str("addr", s.cfg.Addr).Msg("control channel listening")

	go s.report(ctx)
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Error().Err(err).Msg("failed to accept connection")
			continue
		}

		session := NewSession(conn, Deps{
			Auth:         s.auth,
			Ledger:       s.ledger,
			Registry:     s.registry,
			History:      s.history,
			Sessions:     s.sessions,
			Broadcast:    s.broadcast,
			HistoryLines: s.cfg.HistoryLines,
			Log:          s.log,
		})
		go func() {
			defer conn.Close()
			session.Run(ctx)
		}()
	}
}

// report broadcasts a server status block to every room at the configured
// interval. The system prefix keeps it out of persisted history.
func (s *Server) report(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.ReportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.broadcast(s.statusReport())
		}
	}
}

func (s *Server) statusReport() string {
	count, names := s.sessions.Online()

	var b strings.Builder
	b.WriteString(room.SystemPrefix + "-----------Server Data Report -----------\n")
	fmt.Fprintf(&b, "Number of users: %d\n", count)
	fmt.Fprintf(&b, "Users: [%s]\n", strings.Join(names, ","))
	fmt.Fprintf(&b, "Number of requests at the moment: %d\n", s.ledger.Len())
	b.WriteString("-------------------------------------------------")
	return b.String()
}
