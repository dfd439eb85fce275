package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"io"
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/typedraw/typedraw-server/internal/game"
	"github.com/typedraw/typedraw-server/internal/hub"
	"github.com/typedraw/typedraw-server/internal/session"
)

func GenerateGameID() (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"

	id := make([]byte, 10)
	for i := range id {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		id[i] = charset[num.Int64()]
	}
	return string(id), nil
}

// CreateGame allocates a fresh game id and registers a session with the
// requester as creator. The caller then connects to the websocket and sends
// an access action for the new game.
func CreateGame(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PlayerID     string `json:"playerId"`
			PlayerName   string `json:"playerName"`
			PlayerAvatar string `json:"playerAvatar"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerID == "" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		var id string
		for {
			candidate, err := GenerateGameID()
			if err != nil {
				http.Error(w, "failed to generate game id", http.StatusInternalServerError)
				return
			}
			reply := make(chan *session.Session, 1)
			h.Inbox() <- hub.GetGame{ID: candidate, Reply: reply}
			if <-reply == nil {
				id = candidate
				break
			}
			log.Warn("collision on game id, regenerating", zap.String("game", candidate))
		}

		reply := make(chan *session.Session, 1)
		h.Inbox() <- hub.CreateGame{
			ID: id,
			Creator: game.Player{
				ID:     req.PlayerID,
				Name:   req.PlayerName,
				Avatar: req.PlayerAvatar,
			},
			Reply: reply,
		}
		if <-reply == nil {
			http.Error(w, "failed to create game", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(struct {
			GameID string `json:"gameId"`
		}{GameID: id})
	}
}

func ServeImage(images ImageOpener, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "gameID")
		ref := chi.URLParam(r, "image")

		f, err := images.Open(gameID, ref)
		if err != nil {
			log.Info("image not found",
				zap.String("game", gameID), zap.String("image", ref), zap.Error(err))
			http.NotFound(w, r)
			return
		}
		defer f.Close()

		w.Header().Set("Content-Type", "image/png")
		_, _ = io.Copy(w, f)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
