// Package signal is the websocket transport adapter: it upgrades the
// handshake, resolves the connection identity once and pumps frames
// between the socket and the orchestrator.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Parley/internal/app"
	"github.com/dkeye/Parley/internal/config"
	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

type ChatWSController struct {
	Orch         *app.Orchestrator
	Typing       *EventRateLimiter
	sendBuffer   int
	writeTimeout time.Duration
}

func NewChatWSController(orch *app.Orchestrator, cfg *config.Config) *ChatWSController {
	return &ChatWSController{
		Orch:         orch,
		Typing:       NewEventRateLimiter(cfg.TypingLimit, cfg.TypingInterval),
		sendBuffer:   cfg.SendBuffer,
		writeTimeout: cfg.WriteTimeout,
	}
}

type WsChatConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsChatConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsChatConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *ChatWSController) HandleChat(ctx context.Context, c *gin.Context) {
	// Each transport session gets its own id. The client token is a
	// browser-scoped cookie, so two tabs share it; keying the registry
	// on it would make the second connection shadow the first.
	sid := core.SessionID(uuid.NewString())
	username := ResolveIdentity(c)
	log.Info().
		Str("module", "signal").
		Str("sid", string(sid)).
		Str("client_token", c.GetString("client_token")).
		Str("username", username).
		Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &WsChatConn{
		conn: ws,
		send: make(chan core.Frame, ctl.sendBuffer),
	}

	user := domain.NewUser(domain.UserID(sid), username)
	sess := core.NewMemberSession(user, conn)
	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Registry.Bind(sid, user, sess, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn)
}
