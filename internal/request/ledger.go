package request

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mfreitas/crisischat-server/internal/access"
)

// Resolution messages returned to the accepting member.
const (
	MsgInvalidType  = "Invalid request type"
	MsgOwnRequest   = "You cannot accept your own request"
	MsgNoPermission = "You dont have permission to accept this alert"
	MsgAlertEnded   = "Alert ended"
	MsgNotFound     = "Request not found"
)

// Ledger holds the set of open alert requests. Add, resolve and the
// periodic announcement all serialize on one mutex so no reader ever
// observes a half-applied mutation.
type Ledger struct {
	mu   sync.Mutex
	open []Request

	interval  time.Duration
	broadcast func(string)
	log       *zerolog.Logger
}

// NewLedger constructs an empty ledger. broadcast fans a line out to every
// room and is invoked by resolutions and by the announcement loop.
func NewLedger(interval time.Duration, broadcast func(string), logger *zerolog.Logger) *Ledger {
	return &Ledger{
		interval:  interval,
		broadcast: broadcast,
		log:       logger,
	}
}

// Add appends an open request. Permission was already checked by the
// session filing it.
func (l *Ledger) Add(t access.RequestType, requester string) {
	l.mu.Lock()
	l.open = append(l.open, Request{Requester: requester, Type: t})
	l.mu.Unlock()

	l.log.Info().Str("user", requester).Stringer("type", t).Msg("alert request filed")
}

// Resolve attempts to close one open request of the type named by token on
// behalf of user. The open set is scanned left to right, oldest first, and
// the first same-type entry encountered decides the outcome: a member can
// never resolve past their own pending request of that type, even when a
// resolvable entry from someone else sits behind it.
func (l *Ledger) Resolve(user string, level access.Level, token string) string {
	t, err := ParseType(token)
	if err != nil {
		return MsgInvalidType
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for i, req := range l.open {
		if req.Type != t {
			continue
		}
		if req.Requester == user {
			return MsgOwnRequest
		}
		if !access.CanResolve(level, t) {
			return MsgNoPermission
		}

		l.open = append(l.open[:i], l.open[i+1:]...)
		l.broadcast(fmt.Sprintf("[System]: Alert %s request accepted by %s", t, user))
		return MsgAlertEnded
	}
	return MsgNotFound
}

// Open returns a snapshot of the open requests, oldest first.
func (l *Ledger) Open() []Request {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Request, len(l.open))
	copy(out, l.open)
	return out
}

// Len returns the number of open requests.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.open)
}

// Announcements renders every open request as a human-readable block, or
// an empty string when nothing is pending.
func (l *Ledger) Announcements() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.open) == 0 {
		return ""
	}

	var b strings.Builder
	for i, req := range l.open {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[System]: Alert %s requested by %s needs to be accepted", req.Type, req.Requester)
	}
	return b.String()
}

// Run re-broadcasts the open set every interval so pending alerts stay
// visible to members who joined a room after the request was filed. Quiet
// cycles broadcast nothing.
func (l *Ledger) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if block := l.Announcements(); block != "" {
				l.broadcast(block)
			}
		}
	}
}
