package httpapi

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/typedraw/typedraw-server/internal/hub"
	"github.com/typedraw/typedraw-server/internal/ws"
)

// ImageOpener serves previously stored drawings.
type ImageOpener interface {
	Open(gameID, ref string) (io.ReadCloser, error)
}

func SetupRoutes(h *hub.Hub, images ImageOpener, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Public routes
	r.Post("/api/create", CreateGame(h, log))
	r.Get("/api/websocket", ws.Handler(h, log))
	r.Get("/api/image/{gameID}/{image}", ServeImage(images, log))
	r.Get("/healthz", Healthz)
	return r
}
