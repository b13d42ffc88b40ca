package websocket

import (
	"net/http"

	ws "github.com/coder/websocket"
)

// BusinessResolver maps a menu slug to its business id. ok is false when no
// business has that slug.
type BusinessResolver func(slug string) (id int64, ok bool, err error)

// HandleWebSocket upgrades GET /ws/menus/{slug} and runs the connection as a
// Hub client of that business.
func HandleWebSocket(hub *Hub, resolve BusinessResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID, ok, err := resolve(r.PathValue("slug"))
		if err != nil {
			hub.logger.Error("resolve business", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !ok {
			http.NotFound(w, r)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // public menus are embedded on other origins
		})
		if err != nil {
			hub.logger.Warn("accept", "error", err)
			return
		}

		client := NewClient(hub, conn, businessID)
		client.Run(r.Context())
	}
}
