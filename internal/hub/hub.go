package hub

import (
	"context"

	"go.uber.org/zap"

	"github.com/typedraw/typedraw-server/internal/game"
	"github.com/typedraw/typedraw-server/internal/session"
)

type HubMsg interface{ isHubMsg() }

type CreateGame struct {
	ID      string
	Creator game.Player // id, name, avatar; creator flag is set by the game
	Reply   chan *session.Session
}

type GetGame struct {
	ID    string
	Reply chan *session.Session
}

type RemoveGame struct {
	ID string
}

type ShutdownHub struct{}

func (CreateGame) isHubMsg()  {}
func (GetGame) isHubMsg()     {}
func (RemoveGame) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

// Hub is the registry actor mapping game ids to running sessions.
type Hub struct {
	inbox  chan HubMsg
	games  map[string]*session.Session
	store  session.ImageStore
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, store session.ImageStore, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		games:  make(map[string]*session.Session),
		store:  store,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateGame:
				if sess := h.games[msg.ID]; sess != nil {
					msg.Reply <- sess
					break
				}
				creator := msg.Creator
				g := game.New(msg.ID, &creator)
				sess := session.NewSession(h.ctx, g, h.store, h.log)
				h.games[msg.ID] = sess
				h.log.Info("game created",
					zap.String("game", msg.ID), zap.String("creator", creator.ID))
				msg.Reply <- sess

			case GetGame:
				msg.Reply <- h.games[msg.ID] // may be nil

			case RemoveGame:
				delete(h.games, msg.ID)

			case ShutdownHub:
				for _, sess := range h.games {
					sess.Inbox() <- session.Shutdown{}
				}
				clear(h.games)
				h.cancel()
			}
		}
	}
}
