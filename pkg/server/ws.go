package server

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/entrhq/periscope/pkg/relay"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // cross-origin policy is the front-line proxy's job
	},
}

// wsConn serializes writes to one client. The relay worker and the read
// loop can both push messages, and gorilla connections allow only one
// concurrent writer.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) send(e relay.Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(e)
}

// handleWebSocket upgrades the connection and pumps commands into the
// relay until the client goes away.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warnf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	s.registry.Register(id)
	defer s.registry.Unregister(id)
	s.logger.Infof("client connected: %s", id)

	wc := &wsConn{conn: conn}
	reply := func(e relay.Envelope) {
		if err := wc.send(e); err != nil {
			// The client may have disconnected while its command was
			// still queued; nothing to do but note it.
			s.logger.Debugf("send to %s failed: %v", id, err)
		}
	}

	for {
		var cmd relay.Envelope
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warnf("client %s read error: %v", id, err)
			} else {
				s.logger.Infof("client disconnected: %s", id)
			}
			return
		}

		s.relay.Submit(id, cmd, reply)
	}
}
