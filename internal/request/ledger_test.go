package request

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mfreitas/crisischat-server/internal/access"
)

type captureBroadcast struct {
	mu    sync.Mutex
	lines []string
}

func (c *captureBroadcast) send(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, line)
}

func (c *captureBroadcast) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}

func newTestLedger(interval time.Duration) (*Ledger, *captureBroadcast) {
	sink := &captureBroadcast{}
	logger := zerolog.Nop()
	return NewLedger(interval, sink.send, &logger), sink
}

func TestParseType(t *testing.T) {
	cases := []struct {
		token string
		want  access.RequestType
	}{
		{"evac", access.Evacuation},
		{"EVAC", access.Evacuation},
		{"comms", access.Communication},
		{"res", access.Resources},
	}
	for _, tc := range cases {
		got, err := ParseType(tc.token)
		if err != nil || got != tc.want {
			t.Errorf("ParseType(%q) = %s, %v; want %s", tc.token, got, err, tc.want)
		}
	}

	if _, err := ParseType("fire"); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestResolveOwnRequestBlocked(t *testing.T) {
	ledger, sink := newTestLedger(time.Hour)

	ledger.Add(access.Resources, "alice")

	got := ledger.Resolve("alice", access.Alto, "res")
	if got != MsgOwnRequest {
		t.Fatalf("Resolve = %q, want %q", got, MsgOwnRequest)
	}
	if ledger.Len() != 1 {
		t.Fatalf("own-request rejection must leave the entry in place")
	}
	if len(sink.all()) != 0 {
		t.Fatalf("own-request rejection must not broadcast, got %v", sink.all())
	}
}

func TestResolveOwnRequestShadowsLaterEntries(t *testing.T) {
	// The scan is left-to-right and the first same-type entry decides:
	// alice's own pending request blocks her even though bob's request of
	// the same type sits behind it.
	ledger, _ := newTestLedger(time.Hour)

	ledger.Add(access.Evacuation, "alice")
	ledger.Add(access.Evacuation, "bob")

	if got := ledger.Resolve("alice", access.Alto, "evac"); got != MsgOwnRequest {
		t.Fatalf("Resolve = %q, want %q", got, MsgOwnRequest)
	}
	if ledger.Len() != 2 {
		t.Fatalf("nothing may be removed when the own-request check fires")
	}
}

func TestResolveEmptyLedgerNotFound(t *testing.T) {
	ledger, _ := newTestLedger(time.Hour)

	if got := ledger.Resolve("alice", access.Alto, "evac"); got != MsgNotFound {
		t.Fatalf("Resolve on empty ledger = %q, want %q", got, MsgNotFound)
	}
}

func TestResolveNonMatchingTypeNotFound(t *testing.T) {
	ledger, _ := newTestLedger(time.Hour)

	ledger.Add(access.Resources, "alice")

	if got := ledger.Resolve("bob", access.Alto, "evac"); got != MsgNotFound {
		t.Fatalf("Resolve = %q, want %q", got, MsgNotFound)
	}
	if ledger.Len() != 1 {
		t.Fatalf("failed resolution must not mutate the ledger")
	}
}

func TestResolveWithoutPermission(t *testing.T) {
	ledger, _ := newTestLedger(time.Hour)

	ledger.Add(access.Evacuation, "alice")

	if got := ledger.Resolve("bob", access.Medio, "evac"); got != MsgNoPermission {
		t.Fatalf("Resolve = %q, want %q", got, MsgNoPermission)
	}
	if ledger.Len() != 1 {
		t.Fatalf("denied resolution must leave the entry in place")
	}
}

func TestResolveRoundTrip(t *testing.T) {
	ledger, sink := newTestLedger(time.Hour)

	ledger.Add(access.Evacuation, "alice")

	if got := ledger.Resolve("chief", access.Alto, "evac"); got != MsgAlertEnded {
		t.Fatalf("Resolve = %q, want %q", got, MsgAlertEnded)
	}
	if ledger.Len() != 0 {
		t.Fatalf("successful resolution must empty the ledger")
	}

	lines := sink.all()
	if len(lines) != 1 {
		t.Fatalf("expected one broadcast, got %v", lines)
	}
	if !strings.Contains(lines[0], "EVACUATION") || !strings.Contains(lines[0], "chief") {
		t.Fatalf("broadcast must name the resolver and type, got %q", lines[0])
	}
}

func TestResolveRemovesExactlyOneEntry(t *testing.T) {
	ledger, _ := newTestLedger(time.Hour)

	ledger.Add(access.Resources, "alice")
	ledger.Add(access.Resources, "bob")

	if got := ledger.Resolve("carol", access.Baixo, "res"); got != MsgAlertEnded {
		t.Fatalf("Resolve = %q, want %q", got, MsgAlertEnded)
	}

	open := ledger.Open()
	if len(open) != 1 || open[0].Requester != "bob" {
		t.Fatalf("the first matching entry must be removed, remaining %v", open)
	}
}

func TestAnnouncementsRenderOpenRequests(t *testing.T) {
	ledger, _ := newTestLedger(time.Hour)

	if block := ledger.Announcements(); block != "" {
		t.Fatalf("empty ledger must render nothing, got %q", block)
	}

	ledger.Add(access.Communication, "alice")
	ledger.Add(access.Resources, "bob")

	block := ledger.Announcements()
	lines := strings.Split(block, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 announcement lines, got %v", lines)
	}
	if !strings.Contains(lines[0], "COMMUNICATION") || !strings.Contains(lines[0], "alice") {
		t.Fatalf("unexpected first announcement: %q", lines[0])
	}
	if !strings.Contains(lines[1], "RESOURCES") || !strings.Contains(lines[1], "bob") {
		t.Fatalf("unexpected second announcement: %q", lines[1])
	}
}

func TestRunBroadcastsPeriodically(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ledger, sink := newTestLedger(20 * time.Millisecond)
	go ledger.Run(ctx)

	// Quiet ledger: no broadcasts.
	time.Sleep(60 * time.Millisecond)
	if got := sink.all(); len(got) != 0 {
		t.Fatalf("quiet cycles must not broadcast, got %v", got)
	}

	ledger.Add(access.Evacuation, "alice")

	deadline := time.After(time.Second)
	for len(sink.all()) == 0 {
		select {
		case <-deadline:
			t.Fatalf("announcement loop never broadcast the open request")
		case <-time.After(10 * time.Millisecond):
		}
	}
	if block := sink.all()[0]; !strings.Contains(block, "alice") || !strings.Contains(block, "EVACUATION") {
		t.Fatalf("announcement must carry requester and type, got %q", block)
	}
}
