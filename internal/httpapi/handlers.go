package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/zunxo7/CandyMinigames-sub000/internal/auth"
)

type updateUsernameRequest struct {
	UserID      string `json:"userId"`
	NewUsername string `json:"newUsername"`
}

// UpdateUsername is the admin bridge: a privileged caller changes another
// user's login identifier in the external auth service. It is unrelated to
// the relay protocol and holds no state of its own.
func UpdateUsername(client *auth.Client, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !client.Configured() {
			http.Error(w, "auth service not configured", http.StatusServiceUnavailable)
			return
		}

		token := bearerToken(r)
		if token == "" {
			http.Error(w, "missing credentials", http.StatusUnauthorized)
			return
		}
		caller, err := client.GetUser(r.Context(), token)
		if err != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		var req updateUsernameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" || req.NewUsername == "" {
			http.Error(w, "userId and newUsername are required", http.StatusBadRequest)
			return
		}

		role, err := client.GetRole(r.Context(), caller.ID)
		if err != nil || role != "admin" {
			http.Error(w, "admin role required", http.StatusForbidden)
			return
		}

		if err := client.UpdateUsername(r.Context(), req.UserID, req.NewUsername); err != nil {
			log.Warn("username update failed",
				zap.String("callerID", caller.ID), zap.String("userID", req.UserID), zap.Error(err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		log.Info("username updated",
			zap.String("callerID", caller.ID), zap.String("userID", req.UserID))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
