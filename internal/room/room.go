package room

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mfreitas/crisischat-server/internal/access"
	"github.com/mfreitas/crisischat-server/internal/core"
	"github.com/mfreitas/crisischat-server/internal/store"
)

// SystemPrefix marks status broadcasts. Lines carrying it are relayed but
// never persisted to room history.
const SystemPrefix = "Sistema: "

const datagramBytes = 1024

// Room owns one multicast group: an inbound listener that bridges datagrams
// into the room log, and an outbound relay that drains the room's queue onto
// the wire. Rooms are created once at server start and live until shutdown.
type Room struct {
	tier    access.Level
	group   *net.UDPAddr
	recv    *net.UDPConn
	send    *net.UDPConn
	out     *core.Queue
	history store.RoomLog
	log     zerolog.Logger
}

// New resolves the tier's group from the registry, joins it, and prepares
// both duties. Start launches them.
func New(tier access.Level, reg Registry, history store.RoomLog, logger *zerolog.Logger) (*Room, error) {
	addr, ok := reg.Lookup(tier)
	if !ok {
		return nil, fmt.Errorf("no multicast group for tier %s", tier)
	}

	group, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve group %s: %w", addr, err)
	}

	recv, err := net.ListenMulticastUDP("udp4", nil, group)
	if err != nil {
		return nil, fmt.Errorf("join group %s: %w", addr, err)
	}

	send, err := net.DialUDP("udp4", nil, group)
	if err != nil {
		recv.Close()
		return nil, fmt.Errorf("dial group %s: %w", addr, err)
	}

	r := &Room{
		tier:    tier,
		group:   group,
		recv:    recv,
		send:    send,
		out:     core.NewQueue(),
		history: history,
		log:     logger.With().Str("room", tier.String()).Str("group", addr).Logger(),
	}
	return r, nil
}

// Tier returns the room's access tier.
func (r *Room) Tier() access.Level {
	return r.tier
}

// Enqueue pushes a line onto the room's outbound queue. It never blocks.
func (r *Room) Enqueue(line string) {
	r.out.Push(line)
}

// Start launches the listen and relay duties.
func (r *Room) Start() {
	r.log.Info().Msg("chat group started")
	go r.listen()
	go r.relay()
}

// Stop closes the queue and sockets, waking both duties. Remaining queued
// lines are dropped; multicast delivery is best effort anyway.
func (r *Room) Stop() {
	r.out.Close()
	if dropped := len(r.out.Drain()); dropped > 0 {
		r.log.Debug().Int("dropped", dropped).Msg("flushed undelivered lines on teardown")
	}
	r.recv.Close()
	r.send.Close()
}

// listen receives datagrams from the group and appends them to the room
// history. A single failed receive is logged and the duty continues; only a
// closed socket ends the loop.
func (r *Room) listen() {
	buf := make([]byte, datagramBytes)
	for {
		n, _, err := r.recv.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			r.log.Error().Err(err).Msg("failed to receive datagram")
			continue
		}
		r.handleInbound(string(buf[:n]))
	}
}

// handleInbound persists one received line unless it is a status broadcast.
func (r *Room) handleInbound(line string) {
	if strings.HasPrefix(line, SystemPrefix) {
		return
	}
	if err := r.history.Append(context.Background(), r.tier.String(), line); err != nil {
		r.log.Error().Err(err).Msg("failed to persist chat line")
	}
}

// relay pops lines from the outbound queue and sends each as one datagram.
// A failed send drops that line and the duty continues.
func (r *Room) relay() {
	for {
		line, ok := r.out.Pop()
		if !ok {
			return
		}
		if _, err := r.send.Write([]byte(line)); err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			r.log.Error().Err(err).Msg("failed to send datagram")
		}
	}
}
