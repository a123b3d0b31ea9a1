package inspector

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/zeuscene/internal/core/observability/log"
	"github.com/zeusync/zeuscene/internal/core/scene"
	"github.com/zeusync/zeuscene/pkg/generic"
)

const writeTimeout = 5 * time.Second

var bufferPool = generic.NewPool(
	func() *bytes.Buffer { return new(bytes.Buffer) },
	func(b *bytes.Buffer) { b.Reset() },
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type clientSet struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func newClientSet() *clientSet {
	return &clientSet{clients: make(map[*websocket.Conn]bool)}
}

func (c *clientSet) add(conn *websocket.Conn) {
	c.mu.Lock()
	c.clients[conn] = true
	c.mu.Unlock()
}

func (c *clientSet) remove(conn *websocket.Conn) {
	c.mu.Lock()
	delete(c.clients, conn)
	c.mu.Unlock()
}

func (c *clientSet) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.clients)
}

// broadcast encodes snap once and writes it under the set lock so each
// connection has one writer.
func (c *clientSet) broadcast(snap scene.Snapshot, logger log.Log) int {
	buf := bufferPool.Get()
	defer bufferPool.Put(buf)
	if err := json.NewEncoder(buf).Encode(snap); err != nil {
		logger.Error("encode snapshot", log.Error(err))
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	sent := 0
	for conn := range c.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, buf.Bytes()); err != nil {
			logger.Debug("dropping inspector client", log.String("remote", conn.RemoteAddr().String()), log.Error(err))
			delete(c.clients, conn)
			_ = conn.Close()
			continue
		}
		sent++
	}
	return sent
}

func (c *clientSet) closeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for conn := range c.clients {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "inspector stopping"),
			time.Now().Add(time.Second))
		_ = conn.Close()
		delete(c.clients, conn)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.authorize(r); err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err = conn.WriteJSON(s.source.Snapshot()); err != nil {
		_ = conn.Close()
		return
	}
	s.clients.add(conn)
	s.logger.Debug("inspector client connected", log.String("remote", conn.RemoteAddr().String()))

	// Inbound messages are ignored; reading detects the close.
	for {
		if _, _, err = conn.NextReader(); err != nil {
			break
		}
	}
	s.clients.remove(conn)
	_ = conn.Close()
}
