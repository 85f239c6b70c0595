package http

import (
	"context"
	"net/http"
	"time"

	"github.com/dkeye/MillenniumEye/internal/app/orch"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// stateFeed pushes an orchestrator snapshot on connect and after every
// channel state change.
func (ctl *controller) stateFeed(c *gin.Context) {
	sid := c.GetString("client_token")
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "adapters.http").Str("sid", sid).Msg("state feed connected")

	updates, unsubscribe := ctl.orch.Subscribe()
	ctx, cancel := context.WithCancel(ctl.ctx)

	go ctl.readPump(ctx, cancel, ws, sid)
	go func() {
		defer unsubscribe()
		ctl.writePump(ctx, ws, updates, sid)
	}()
}

func (ctl *controller) writePump(ctx context.Context, ws *websocket.Conn, updates <-chan orch.Status, sid string) {
	ticker := time.NewTicker(ctl.pingPeriod)
	defer func() {
		ticker.Stop()
		_ = ws.Close()
	}()

	if err := ctl.write(ws, ctl.orch.Snapshot()); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("sid", sid).Msg("writePump initial snapshot")
		return
	}
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "adapters.http").Str("sid", sid).Msg("writePump ctx done")
			_ = ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
			return
		case st, ok := <-updates:
			if !ok {
				log.Warn().Str("module", "adapters.http").Str("sid", sid).Msg("writePump feed closed")
				_ = ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "slow consumer"), time.Now().Add(writeWait))
				return
			}
			if err := ctl.write(ws, st); err != nil {
				log.Error().Err(err).Str("module", "adapters.http").Str("sid", sid).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Debug().Err(err).Str("module", "adapters.http").Str("sid", sid).Msg("writePump ping")
				return
			}
		}
	}
}

func (ctl *controller) write(ws *websocket.Conn, st orch.Status) error {
	if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return ws.WriteJSON(st)
}

// readPump only watches for close and pongs; clients send nothing.
func (ctl *controller) readPump(ctx context.Context, cancel context.CancelFunc, ws *websocket.Conn, sid string) {
	defer func() {
		log.Info().Str("module", "adapters.http").Str("sid", sid).Msg("readPump closing")
		cancel()
	}()

	pongWait := ctl.pingPeriod * 10 / 9
	ws.SetReadLimit(ctl.readLimit)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if ctx.Err() != nil {
			return
		}
		if _, _, err := ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Str("module", "adapters.http").Str("sid", sid).Msg("readPump read error")
			}
			return
		}
	}
}
