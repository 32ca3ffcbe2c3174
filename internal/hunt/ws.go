package hunt

import (
	"log"
	"net/http"

	"github.com/SnapQuest/SQ-Backend/internal/live"
	"github.com/SnapQuest/SQ-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser origins are enforced by the CORS layer; the session cookie is
	// what actually gates the upgrade.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// LiveFeedHandler upgrades the connection and joins the caller to a group
// room. Same access rule as every other group-scoped route.
func LiveFeedHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentityFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groupID := chi.URLParam(r, "id")

	allowed, err := EnsureGroupAccess(identity, groupID)
	if err != nil {
		writeError(w, "Failed to join live feed", http.StatusInternalServerError)
		return
	}
	if !allowed {
		writeError(w, "You are not a member of this group", http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[live] upgrade failed: %v", err)
		return
	}

	live.NewClient(hub, conn, groupID, identity.UserID).Start()
}
