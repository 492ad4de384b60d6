package feed

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/docstore"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the feed is read-only public data, same as the GET endpoints
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades GET /api/feed/{name} to a websocket, sends the current
// result set immediately, and then forwards every broadcast for the
// collection until the peer disconnects.
func Handler(hub *Hub, backend docstore.Backend, log logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		collection := chi.URLParam(r, "name")

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn(ctx, "websocket upgrade failed", "collection", collection, "error", err)
			return
		}

		ch, cancel := hub.Subscribe(collection)
		defer cancel()

		docs, err := backend.List(ctx, collection, docstore.ListOptions{})
		if err != nil {
			log.Error(ctx, "listing collection for feed", "collection", collection, "error", err)
			conn.Close()
			return
		}
		if docs == nil {
			docs = []docstore.Document{}
		}
		initial, err := json.Marshal(Snapshot{Collection: collection, Documents: docs})
		if err != nil {
			conn.Close()
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, initial); err != nil {
			conn.Close()
			return
		}

		// reader goroutine notices the peer going away
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		defer conn.Close()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}
}
