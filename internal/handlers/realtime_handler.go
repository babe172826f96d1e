package handlers

import (
	"log/slog"
	"strings"

	"github.com/Bdsolutionconsulting/linkhood/internal/dto"
	"github.com/Bdsolutionconsulting/linkhood/internal/realtime"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const (
	localsTables = "realtime_tables"
	localsFilter = "realtime_filter"
)

type RealtimeHandler struct {
	hub *realtime.Hub
}

func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// Upgrade validates the subscription before the protocol switch so bad
// requests get a plain JSON error.
func (h *RealtimeHandler) Upgrade(c *fiber.Ctx) error {
	tables := queryTables(c)
	if err := realtime.ValidateTables(tables); err != nil {
		return dto.Fail(c, fiber.StatusBadRequest, err.Error())
	}
	filter, err := realtime.ParseFilter(c.Query("filter"))
	if err != nil {
		return dto.Fail(c, fiber.StatusBadRequest, err.Error())
	}
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	c.Locals(localsTables, tables)
	c.Locals(localsFilter, filter)
	return c.Next()
}

// Stream forwards notices until either side goes away.
func (h *RealtimeHandler) Stream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		tables, _ := conn.Locals(localsTables).([]string)
		filter, _ := conn.Locals(localsFilter).(*realtime.Filter)

		sub := h.hub.Subscribe(tables, filter)
		defer sub.Close()

		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					sub.Close()
					return
				}
			}
		}()

		for notice := range sub.C() {
			if err := conn.WriteJSON(notice); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					slog.Warn("realtime write failed", "resource", notice.Table, "error", err)
				}
				return
			}
		}
	})
}

// queryTables accepts both ?table=a&table=b and ?table=a,b.
func queryTables(c *fiber.Ctx) []string {
	var tables []string
	for _, raw := range c.Context().QueryArgs().PeekMulti("table") {
		for _, t := range strings.Split(string(raw), ",") {
			if t = strings.TrimSpace(t); t != "" {
				tables = append(tables, t)
			}
		}
	}
	return tables
}
