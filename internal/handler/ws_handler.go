package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/praxia/medprep-backend/internal/config"
	"github.com/praxia/medprep-backend/internal/middleware"
	ws "github.com/praxia/medprep-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams engine messages to connected clients.
type WSHandler struct {
	rdb      *redis.Client
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:      rdb,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// EngineStream godoc
// WS /ws/v1/engine/stream
// Upgrades to WebSocket and forwards every engine emission (patch
// messages and analysis reports) as it is published.
func (h *WSHandler) EngineStream(c *gin.Context) {
	if middleware.GetClaims(c) == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	sub := h.rdb.Subscribe(ctx, config.StoreKey.EventsChannel)
	defer sub.Close()

	h.log.Debug().Msg("engine stream client connected")
	h.stream(ctx, conn, sub.Channel())
	h.log.Debug().Msg("engine stream client disconnected")
}

// stream runs one client session. The select loop is the connection's
// only writer: the reader goroutine never writes, it hands pings over a
// channel so a pong can never interleave with an engine event frame.
func (h *WSHandler) stream(ctx context.Context, conn *websocket.Conn, events <-chan *redis.Message) {
	done := make(chan struct{})
	pings := make(chan struct{}, 8)

	// Reader: only pings come from the client; anything else is
	// ignored. A read error ends the session. Pings beyond the buffer
	// are dropped, not queued; they are keepalives.
	go func() {
		defer close(done)
		for {
			var env ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &env); err != nil {
				return
			}
			if env.Action == ws.ActionPing {
				select {
				case pings <- struct{}{}:
				default:
				}
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-pings:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				h.log.Debug().Err(err).Msg("engine stream pong failed")
				return
			}
		case msg, ok := <-events:
			if !ok {
				return
			}
			err := ws.WriteTyped(conn, ws.EngineEventResponse{
				Event:   ws.EventEngine,
				Payload: []byte(msg.Payload),
			})
			if err != nil {
				h.log.Debug().Err(err).Msg("engine stream write failed")
				return
			}
		}
	}
}
