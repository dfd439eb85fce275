package ws

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/typedraw/typedraw-server/internal/game"
	"github.com/typedraw/typedraw-server/internal/hub"
	"github.com/typedraw/typedraw-server/internal/session"
	"github.com/typedraw/typedraw-server/internal/types"
)

// Handler upgrades to a websocket and shuttles frames between the connection
// and the game's session actor. Text frames carry JSON actions; binary frames
// carry the image bytes for the current draw round. The session is resolved
// from the gameId in the first access (or join) action.
func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := randID(6)
		out := make(chan game.View, 8)

		var sess *session.Session
		defer func() {
			if sess != nil {
				sess.Inbox() <- session.Disconnect{ClientID: clientID}
			}
		}()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for view := range out {
				payload, _ := json.Marshal(view)
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop
		for {
			msgType, data, err := conn.Read(r.Context())
			if err != nil {
				// Treat clean close/going-away as normal:
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				// Otherwise, just exit (session.Disconnect in defer):
				return
			}

			if msgType == websocket.MessageBinary {
				if sess == nil {
					continue
				}
				sess.Inbox() <- session.SubmitImage{ClientID: clientID, Data: data}
				continue
			}

			var action types.ClientAction
			if err := json.Unmarshal(data, &action); err != nil {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"state":"error","error":"bad json"}`))
				continue
			}

			switch action.Action {
			case "access", "join":
				if sess == nil {
					sess = getSession(h, action.Content.GameID)
					if sess == nil {
						log.Info("action for unknown game",
							zap.String("game", action.Content.GameID), zap.String("client", clientID))
						_ = conn.Write(r.Context(), websocket.MessageText,
							[]byte(`{"state":"error","error":"game not found"}`))
						continue
					}
					sess.Inbox() <- session.Connect{ClientID: clientID, Outbox: out}
				}
				if action.Action == "access" {
					sess.Inbox() <- session.Access{ClientID: clientID, PlayerID: action.Content.PlayerID}
				} else {
					sess.Inbox() <- session.Join{
						ClientID: clientID,
						PlayerID: action.Content.PlayerID,
						Name:     action.Content.Name,
						Avatar:   action.Content.Avatar,
					}
				}

			case "start":
				if sess == nil {
					continue
				}
				sess.Inbox() <- session.Start{ClientID: clientID}

			case "type":
				if sess == nil {
					continue
				}
				if action.Content.Text == "" {
					_ = conn.Write(r.Context(), websocket.MessageText,
						[]byte(`{"state":"error","error":"empty text"}`))
					continue
				}
				sess.Inbox() <- session.SubmitText{ClientID: clientID, Text: action.Content.Text}

			default:
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"state":"error","error":"unknown action"}`))
			}
		}
	}
}

func getSession(h *hub.Hub, gameID string) *session.Session {
	if gameID == "" {
		return nil
	}
	reply := make(chan *session.Session, 1)
	h.Inbox() <- hub.GetGame{ID: gameID, Reply: reply}
	return <-reply
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
