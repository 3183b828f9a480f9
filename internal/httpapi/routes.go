package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zunxo7/CandyMinigames-sub000/internal/auth"
	"github.com/zunxo7/CandyMinigames-sub000/internal/hub"
	"github.com/zunxo7/CandyMinigames-sub000/internal/ws"
)

func SetupRoutes(h *hub.Hub, authClient *auth.Client, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, log))
	r.Post("/admin/username", UpdateUsername(authClient, log))
	return r
}
