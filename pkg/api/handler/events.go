package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/LENAX/plan-engine/pkg/core/events"
	"github.com/LENAX/plan-engine/pkg/logx"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// EventHandler 通过WebSocket推送事件总线上的项目事件
type EventHandler struct {
	bus      events.Bus
	log      logx.Logger
	upgrader websocket.Upgrader
}

// NewEventHandler 创建EventHandler
func NewEventHandler(bus events.Bus, log logx.Logger) *EventHandler {
	return &EventHandler{
		bus: bus,
		log: log.With(logx.String("component", "ws")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Stream 订阅事件并逐条以JSON推送，可用 ?project_id= 过滤
// GET /api/v1/events/ws
func (h *EventHandler) Stream(c *gin.Context) {
	projectID := c.Query("project_id")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade已经写回了错误响应
		h.log.Warn("⚠️ websocket upgrade failed", logx.Err(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	ch, err := h.bus.Subscribe(ctx)
	if err != nil {
		h.log.Error("❌ subscribe events failed", logx.Err(err))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscribe failed"),
			time.Now().Add(writeWait))
		return
	}

	// 读循环只处理pong和关闭帧，客户端断开时取消订阅
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.log.Debug("🔌 websocket client connected", logx.String("project_id", projectID))
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeWait))
				return
			}
			if projectID != "" && event.ProjectID != projectID {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				h.log.Debug("websocket write failed", logx.Err(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
