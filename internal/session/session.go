package session

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/typedraw/typedraw-server/internal/game"
)

// ImageStore is the blob-storage collaborator: it persists submitted image
// bytes and hands back an opaque reference the views can point at.
type ImageStore interface {
	Store(gameID string, data []byte) (ref string, err error)
}

type Msg interface{ isSessionMsg() }

// Connect registers a transport client and its outbox. The client carries no
// player identity yet; that arrives with Access or Join.
type Connect struct {
	ClientID string
	Outbox   chan game.View
}

// Access binds the client to an existing player, or answers with the
// new-player view when the id is unknown. Never mutates game membership.
type Access struct {
	ClientID string
	PlayerID string
}

type Join struct {
	ClientID string
	PlayerID string
	Name     string
	Avatar   string
}

type Start struct{ ClientID string }

type SubmitText struct {
	ClientID string
	Text     string
}

type SubmitImage struct {
	ClientID string
	Data     []byte
}

type Disconnect struct{ ClientID string }

type GetState struct {
	Reply chan Snapshot
}

type Shutdown struct{}

func (Connect) isSessionMsg()     {}
func (Access) isSessionMsg()      {}
func (Join) isSessionMsg()        {}
func (Start) isSessionMsg()       {}
func (SubmitText) isSessionMsg()  {}
func (SubmitImage) isSessionMsg() {}
func (Disconnect) isSessionMsg()  {}
func (GetState) isSessionMsg()    {}
func (Shutdown) isSessionMsg()    {}

// Snapshot reflects internal state without data races; test-only.
type Snapshot struct {
	State      game.State
	Round      int
	NumPlayers int
	NumClients int
}

// Session is the actor owning one game: every message on the inbox is
// processed by a single goroutine, so round checks and matrix lookups never
// race. A player may have any number of connected clients; the session keeps
// the client->player binding and fans each player's view out to all of them.
type Session struct {
	inbox chan Msg
	g     *game.Game
	store ImageStore
	log   *zap.Logger

	outboxes      map[string]chan game.View
	clientPlayer  map[string]string
	playerClients map[string]map[string]struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

func NewSession(parent context.Context, g *game.Game, store ImageStore, log *zap.Logger) *Session {
	ctx, cancel := context.WithCancel(parent)

	s := &Session{
		inbox:         make(chan Msg, 64),
		g:             g,
		store:         store,
		log:           log.With(zap.String("game", g.ID())),
		outboxes:      make(map[string]chan game.View),
		clientPlayer:  make(map[string]string),
		playerClients: make(map[string]map[string]struct{}),
		ctx:           ctx,
		cancel:        cancel,
	}

	go s.loop()
	return s
}

func (s *Session) Inbox() chan<- Msg { return s.inbox }

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Connect:
				s.outboxes[msg.ClientID] = msg.Outbox

			case Access:
				s.handleAccess(msg)

			case Join:
				s.handleJoin(msg)

			case Start:
				s.handleStart(msg)

			case SubmitText:
				s.handleSubmitText(msg)

			case SubmitImage:
				s.handleSubmitImage(msg)

			case Disconnect:
				s.handleDisconnect(msg)

			case GetState:
				msg.Reply <- Snapshot{
					State:      s.g.State(),
					Round:      s.g.Round(),
					NumPlayers: len(s.g.Players()),
					NumClients: len(s.outboxes),
				}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

func (s *Session) handleAccess(msg Access) {
	p := s.g.FindPlayer(msg.PlayerID)
	if p == nil {
		s.log.Info("access by unknown player",
			zap.String("player", msg.PlayerID), zap.String("client", msg.ClientID))
		s.send(msg.ClientID, s.g.NewPlayerView())
		return
	}
	s.log.Info("new client for known player",
		zap.String("player", p.ID), zap.String("client", msg.ClientID))
	s.bind(msg.ClientID, p)
	s.pushPlayer(p)
}

func (s *Session) handleJoin(msg Join) {
	p, already, err := s.g.Join(msg.PlayerID, msg.Name, msg.Avatar)
	if err != nil {
		s.log.Info("join not possible",
			zap.String("player", msg.PlayerID), zap.String("state", string(s.g.State())))
		s.send(msg.ClientID, s.g.NewPlayerView())
		return
	}
	if already {
		s.log.Warn("player has already joined", zap.String("player", p.ID))
	} else {
		s.log.Info("player joined",
			zap.String("player", p.ID), zap.String("name", p.Name), zap.String("client", msg.ClientID))
	}
	s.bind(msg.ClientID, p)
	s.broadcast()
}

func (s *Session) handleStart(msg Start) {
	p := s.boundPlayer(msg.ClientID)
	if p == nil {
		s.log.Warn("start by unbound client", zap.String("client", msg.ClientID))
		s.send(msg.ClientID, s.g.NewPlayerView())
		return
	}

	switch err := s.g.Start(p); {
	case err == nil:
		s.log.Info("game started", zap.Int("players", len(s.g.Players())))
		s.broadcast()
	case errors.Is(err, game.ErrTooFewPlayers):
		s.log.Warn("cannot start with less than 2 players")
		s.broadcast()
	default:
		s.log.Warn("ignoring start", zap.String("player", p.ID), zap.Error(err))
		s.pushPlayer(p)
	}
}

func (s *Session) handleSubmitText(msg SubmitText) {
	p := s.boundPlayer(msg.ClientID)
	if p == nil {
		s.log.Warn("text from unbound client", zap.String("client", msg.ClientID))
		s.send(msg.ClientID, s.g.NewPlayerView())
		return
	}

	switch err := s.g.SubmitText(p, msg.Text); {
	case err == nil:
		s.broadcast()
	case errors.Is(err, game.ErrEmptyText):
		s.log.Error("empty text submission", zap.String("player", p.ID))
	default:
		s.log.Warn("ignoring text", zap.String("player", p.ID), zap.Error(err))
		s.pushPlayer(p)
	}
}

func (s *Session) handleSubmitImage(msg SubmitImage) {
	p := s.boundPlayer(msg.ClientID)
	if p == nil {
		s.log.Warn("image from unbound client", zap.String("client", msg.ClientID))
		s.send(msg.ClientID, s.g.NewPlayerView())
		return
	}

	if err := s.g.CanSubmitImage(p); err != nil {
		s.log.Warn("ignoring image", zap.String("player", p.ID), zap.Error(err))
		s.pushPlayer(p)
		return
	}

	// The store write is part of the critical section: the element must not
	// be recorded, and the round must not advance, if the bytes are lost.
	ref, err := s.store.Store(s.g.ID(), msg.Data)
	if err != nil {
		s.log.Error("storing image failed", zap.String("player", p.ID), zap.Error(err))
		return
	}

	if err := s.g.SubmitImage(p, ref); err != nil {
		s.log.Warn("ignoring image", zap.String("player", p.ID), zap.Error(err))
		s.pushPlayer(p)
		return
	}
	s.broadcast()
}

func (s *Session) handleDisconnect(msg Disconnect) {
	if out, ok := s.outboxes[msg.ClientID]; ok {
		close(out)
		delete(s.outboxes, msg.ClientID)
	}

	pid, bound := s.clientPlayer[msg.ClientID]
	if !bound {
		return
	}
	s.unbind(msg.ClientID, pid)

	p := s.g.FindPlayer(pid)
	if p == nil {
		return
	}
	if s.g.State() == game.StateWaiting && !p.Creator && len(s.playerClients[pid]) == 0 {
		// Guests with no connection left drop out of the waiting room. Once
		// the game has started a disconnected player stays in the round and
		// can resume by re-accessing with the same id.
		if s.g.RemovePlayer(p) {
			s.log.Info("player left the game", zap.String("player", pid))
			s.broadcast()
		}
	}
}

func (s *Session) bind(clientID string, p *game.Player) {
	if old, ok := s.clientPlayer[clientID]; ok && old != p.ID {
		s.unbind(clientID, old)
	}
	s.clientPlayer[clientID] = p.ID
	set, ok := s.playerClients[p.ID]
	if !ok {
		set = make(map[string]struct{})
		s.playerClients[p.ID] = set
	}
	set[clientID] = struct{}{}
}

func (s *Session) unbind(clientID, playerID string) {
	delete(s.clientPlayer, clientID)
	delete(s.playerClients[playerID], clientID)
	if len(s.playerClients[playerID]) == 0 {
		delete(s.playerClients, playerID)
	}
}

func (s *Session) boundPlayer(clientID string) *game.Player {
	pid, ok := s.clientPlayer[clientID]
	if !ok {
		return nil
	}
	return s.g.FindPlayer(pid)
}

// pushPlayer sends the player's current view to all of their clients.
func (s *Session) pushPlayer(p *game.Player) {
	view := s.g.ViewFor(p)
	for clientID := range s.playerClients[p.ID] {
		s.send(clientID, view)
	}
}

func (s *Session) broadcast() {
	for _, p := range s.g.Players() {
		s.pushPlayer(p)
	}
}

// send delivers fire-and-forget: a client whose outbox is full is dropped so
// it can never stall delivery to the others.
func (s *Session) send(clientID string, view game.View) {
	out, ok := s.outboxes[clientID]
	if !ok {
		return
	}
	select {
	case out <- view:
		// ok
	default:
		s.log.Warn("dropping slow client", zap.String("client", clientID))
		close(out)
		delete(s.outboxes, clientID)
		// The binding stays: the transport still delivers Disconnect for the
		// dead connection, and handleDisconnect runs the same waiting-room
		// removal as for any other connection loss.
	}
}

func (s *Session) shutdown() {
	for id, ch := range s.outboxes {
		close(ch)
		delete(s.outboxes, id)
	}
	s.cancel()
}
