package main

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/awminer/miner"
)

// statusPushInterval is how often a connected dashboard receives a fresh
// snapshot.
const statusPushInterval = 2 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// serveStatusSocket streams status snapshots to one dashboard connection
// until the client goes away.
func serveStatusSocket(w http.ResponseWriter, r *http.Request, orch *miner.Orchestrator) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(statusPushInterval)
	defer ticker.Stop()

	if err := conn.WriteJSON(orch.Snapshot()); err != nil {
		return
	}
	for {
		select {
		case <-closed:
			return
		case <-ticker.C:
			if err := conn.WriteJSON(orch.Snapshot()); err != nil {
				return
			}
		}
	}
}
