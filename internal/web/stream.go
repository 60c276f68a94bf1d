package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultStreamInterval = 100 * time.Millisecond
	streamWriteWait       = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleStream pushes a status message on connect and whenever the state
// sequence changes. done closes every stream when the server stops.
func handleStream(deps MirrorDeps, interval time.Duration, done <-chan struct{}) http.HandlerFunc {
	if interval <= 0 {
		interval = defaultStreamInterval
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if !websocket.IsWebSocketUpgrade(r) {
			writeAPIError(w, http.StatusBadRequest, "not_websocket", "websocket upgrade required")
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			deps.Logger.Errorf("web", "websocket upgrade: %v", err)
			return
		}
		defer conn.Close()
		deps.Logger.Infof("web", "stream client connected from %s", r.RemoteAddr)

		// Viewers never send data; reading handles control frames and
		// notices when the peer goes away.
		gone := make(chan struct{})
		go func() {
			defer close(gone)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
						deps.Logger.Errorf("web", "stream read: %v", err)
					}
					return
				}
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		var lastSeq uint64
		sent := false
		for {
			snap, seq := deps.State.SnapshotSeq()
			if !sent || seq != lastSeq {
				_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
				if err := conn.WriteJSON(newStatusResponse(snap, seq)); err != nil {
					deps.Logger.Errorf("web", "stream write: %v", err)
					return
				}
				lastSeq, sent = seq, true
			}
			select {
			case <-gone:
				deps.Logger.Infof("web", "stream client %s left", r.RemoteAddr)
				return
			case <-done:
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping"),
					time.Now().Add(streamWriteWait))
				return
			case <-ticker.C:
			}
		}
	}
}
