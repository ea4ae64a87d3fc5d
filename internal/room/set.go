package room

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mfreitas/crisischat-server/internal/access"
	"github.com/mfreitas/crisischat-server/internal/store"
)

// Set is the fixed collection of rooms, exactly one per tier.
type Set struct {
	rooms map[access.Level]*Room
}

// NewSet creates one room per tier from the registry.
func NewSet(reg Registry, history store.RoomLog, logger *zerolog.Logger) (*Set, error) {
	rooms := make(map[access.Level]*Room, len(access.Levels))
	for _, tier := range access.Levels {
		r, err := New(tier, reg, history, logger)
		if err != nil {
			for _, started := range rooms {
				started.Stop()
			}
			return nil, fmt.Errorf("create room %s: %w", tier, err)
		}
		rooms[tier] = r
	}
	return &Set{rooms: rooms}, nil
}

// Start launches every room's duties.
func (s *Set) Start() {
	for _, r := range s.rooms {
		r.Start()
	}
}

// Stop tears every room down.
func (s *Set) Stop() {
	for _, r := range s.rooms {
		r.Stop()
	}
}

// Broadcast enqueues a line onto every room's outbound queue. Rooms observe
// it at independent times; the fan-out is not atomic across rooms.
func (s *Set) Broadcast(line string) {
	for _, r := range s.rooms {
		r.Enqueue(line)
	}
}

// Room returns the room for a tier.
func (s *Set) Room(level access.Level) (*Room, bool) {
	r, ok := s.rooms[level]
	return r, ok
}
