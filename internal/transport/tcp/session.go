package tcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mfreitas/crisischat-server/internal/access"
	"github.com/mfreitas/crisischat-server/internal/auth"
	"github.com/mfreitas/crisischat-server/internal/core"
	"github.com/mfreitas/crisischat-server/internal/request"
	"github.com/mfreitas/crisischat-server/internal/room"
	"github.com/mfreitas/crisischat-server/internal/store"
)

// Deps carries the collaborators a session needs.
type Deps struct {
	Auth         *auth.Service
	Ledger       *request.Ledger
	Registry     room.Registry
	History      store.RoomLog
	Sessions     *Sessions
	Broadcast    func(string)
	HistoryLines int
	Log          *zerolog.Logger
}

// Session is the control-channel state machine for one client connection:
// unauthenticated until a successful .login, back again on .logout, gone
// when the connection closes.
type Session struct {
	id      string
	conn    io.ReadWriter
	profile *core.Profile
	deps    Deps
	log     zerolog.Logger
}

// NewSession wraps an accepted connection.
func NewSession(conn io.ReadWriter, deps Deps) *Session {
	return &Session{
		id:   uuid.NewString(),
		conn: conn,
		deps: deps,
	}
}

// Run drives the session until the connection closes. The first line is the
// client-declared temporary name; every later line is a command or chat.
func (s *Session) Run(ctx context.Context) {
	scanner := bufio.NewScanner(s.conn)

	if !scanner.Scan() {
		return
	}
	name := strings.TrimSpace(scanner.Text())
	if name == "" {
		name = fmt.Sprintf("Guest-%d", rand.Intn(1000))
	}

	s.profile = core.NewProfile(name)
	s.log = s.deps.Log.With().Str("session", s.id).Str("user", name).Logger()

	s.deps.Sessions.Add(s)
	defer func() {
		s.deps.Sessions.Remove(s)
		s.log.Info().Msg("connection closed")
	}()

	s.log.Info().Msg("connection established")
	fmt.Fprintf(s.conn, "Welcome to the chat server %s\nPlease .login, .register or .help\n", name)

	for scanner.Scan() {
		s.handleLine(ctx, scanner.Text())
	}
}

func (s *Session) send(line string) {
	fmt.Fprintln(s.conn, line)
}

func (s *Session) handleLine(ctx context.Context, line string) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return
	}
	command := strings.ToLower(parts[0])

	if !s.profile.LoggedIn {
		s.handleUnauthenticated(ctx, command, parts)
		return
	}
	s.handleAuthenticated(ctx, command, parts)
}

func (s *Session) handleUnauthenticated(ctx context.Context, command string, parts []string) {
	switch command {
	case ".login":
		s.login(ctx, parts)
	case ".register":
		s.register(ctx, parts)
	case ".help":
		if len(parts) != 1 {
			s.send("Invalid command, use .help")
			return
		}
		s.send("Commands:\n.login <username> <password>\n.register <username> <password>\n.help")
	default:
		s.send("Please login or register")
	}
}

func (s *Session) handleAuthenticated(ctx context.Context, command string, parts []string) {
	switch command {
	case ".profile":
		if len(parts) != 1 {
			s.send("Invalid command, use .profile")
			return
		}
		s.send("--------- User Profile -----------")
		s.send(fmt.Sprintf("Username: %s\nAccess Level: %s", s.profile.Name, s.profile.Level))
	case ".logout":
		if len(parts) != 1 {
			s.send("Invalid command, use .logout")
			return
		}
		s.logout()
	case ".join":
		if len(parts) != 2 {
			s.send("Invalid room, use .join <convidado/baixo/medio/alto>")
			return
		}
		s.join(ctx, parts[1])
	case ".help":
		if len(parts) != 1 {
			s.send("Invalid command, use .help")
			return
		}
		s.send("--------- HELP MENU -----------")
		s.send("Commands available:\n.profile\n.logout\n.join <name>\n.help\n.online\n.request <evac/comms/res>\n.accept <evac/comms/res>\n.notify <message>")
	case ".online":
		if len(parts) != 1 {
			s.send("Invalid command, use .online")
			return
		}
		count, names := s.deps.Sessions.Online()
		s.send(fmt.Sprintf("Users(%d): [%s]", count, strings.Join(names, ",")))
	case ".request":
		if len(parts) < 2 {
			s.send("Invalid request, use .request <evac/comms/res>")
			return
		}
		s.fileRequest(parts[1])
	case ".accept":
		if len(parts) < 2 {
			s.send("Invalid request, use .accept <evac/comms/res>")
			return
		}
		s.acceptRequest(parts[1])
	case ".notify":
		if len(parts) < 2 {
			s.send("Invalid notify, use .notify <message>")
			return
		}
		message := fmt.Sprintf("[NOTIFICATION - %s]: %s", s.profile.Name, strings.Join(parts[1:], " "))
		s.send("Notification sent for all groups")
		s.deps.Broadcast(message)
	default:
		// Unrecognized commands are ignored once authenticated; plain chat
		// travels over the room's multicast group, not this channel.
	}
}

func (s *Session) login(ctx context.Context, parts []string) {
	if len(parts) != 3 {
		s.send("Invalid login, use .login <username> <password>")
		return
	}
	username, password := parts[1], parts[2]

	if s.deps.Sessions.IsLoggedIn(username) {
		s.send("User already logged in")
		return
	}

	level, err := s.deps.Auth.Verify(ctx, username, password)
	if err != nil {
		s.send("Invalid credentials")
		return
	}

	// The claim is the race arbiter: between the pre-check and here another
	// session may have logged in under the same name.
	if err := s.deps.Sessions.Claim(s, username); err != nil {
		s.send("User already logged in")
		return
	}

	s.profile.Login(username, level)
	s.log = s.deps.Log.With().Str("session", s.id).Str("user", username).Logger()

	s.send(fmt.Sprintf("userinfo %s Login_successfull._You_can_now_send_messages", username))
	s.send("Use .help to see available commands")
	s.enterRoom(ctx, access.Convidado, fmt.Sprintf("--------- Joined room %s -----------", access.Convidado))
	s.log.Info().Stringer("level", level).Msg("logged in, joined CONVIDADO")
}

func (s *Session) register(ctx context.Context, parts []string) {
	if len(parts) != 3 {
		s.send("Invalid register, use .register <username> <password>")
		return
	}

	err := s.deps.Auth.Register(ctx, parts[1], parts[2])
	switch {
	case err == nil:
		s.send("Registration successful. You can now log in.")
		s.log.Info().Str("new_user", parts[1]).Msg("new user registered")
	case errors.Is(err, auth.ErrUserExists):
		s.send("Username already exists. Please choose another one.")
	case errors.Is(err, auth.ErrInvalidUsername):
		s.send("Invalid username, use 3 to 32 characters without commas or spaces")
	case errors.Is(err, auth.ErrInvalidPassword):
		s.send("Invalid password, use at least 4 characters")
	default:
		s.log.Error().Err(err).Msg("registration failed")
		s.send("Registration failed, try again later")
	}
}

func (s *Session) logout() {
	s.deps.Sessions.Release(s, s.profile.Name)
	s.profile.Logout()
	s.send(fmt.Sprintf("userinfo %s Logout_successful.", s.profile.Name))
	s.send("chat off")
	s.log.Info().Msg("logged out")
}

func (s *Session) join(ctx context.Context, roomName string) {
	tierName := strings.ToUpper(roomName)
	if s.profile.CurrentRoom == tierName {
		s.send("You are already in room " + tierName)
		return
	}

	tier, err := access.ParseLevel(roomName)
	if err != nil || !access.CanEnter(s.profile.Level, tier) {
		s.send("Access denied to room " + tierName)
		s.log.Warn().
			Str("room", tierName).
			Stringer("level", s.profile.Level).
			Str("current_room", s.profile.CurrentRoom).
			Msg("room access denied")
		return
	}

	s.enterRoom(ctx, tier, fmt.Sprintf("--------- Joined %s -----------", tier))
	s.log.Info().Stringer("room", tier).Msg("joined room")
}

// enterRoom rebinds the profile's room, hands the client its multicast
// endpoint, and replays the tail of the room's history.
func (s *Session) enterRoom(ctx context.Context, tier access.Level, banner string) {
	host, port, ok := s.deps.Registry.Endpoint(tier)
	if !ok {
		s.send("Failed to join room " + tier.String())
		return
	}

	s.send(banner)
	s.profile.CurrentRoom = tier.String()
	s.send(fmt.Sprintf("chat %s %s", host, port))

	lines, err := s.deps.History.Tail(ctx, tier.String(), s.deps.HistoryLines)
	if err != nil {
		s.log.Error().Err(err).Stringer("room", tier).Msg("failed to load room history")
		return
	}
	for _, line := range lines {
		s.send(line)
	}
}

func (s *Session) fileRequest(token string) {
	t, err := request.ParseType(token)
	if err != nil {
		s.send(request.MsgInvalidType)
		return
	}
	if !access.CanRequest(s.profile.Level, t) {
		s.send("You dont have permission to request this alert")
		s.log.Warn().Stringer("type", t).Msg("alert request denied")
		return
	}
	s.deps.Ledger.Add(t, s.profile.Name)
	s.send(fmt.Sprintf("%s request sent, wait for someone to accept it", t))
}

func (s *Session) acceptRequest(token string) {
	result := s.deps.Ledger.Resolve(s.profile.Name, s.profile.Level, token)
	s.send(result)

	switch result {
	case request.MsgOwnRequest:
		s.log.Warn().Msg("tried to accept own request")
	case request.MsgNoPermission:
		s.log.Warn().Str("type", token).Msg("alert accept denied")
	case request.MsgAlertEnded:
		s.log.Info().Str("type", token).Msg("alert accepted")
	}
}
