package transport

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"landingCms/internal/modules/homepage/domain"
	"landingCms/internal/modules/homepage/infrastructure"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewWebsocketHandler serves /ws/homepage. A view receives system.connected, then a
// homepage.snapshot, then one homepage.updated per committed change.
func NewWebsocketHandler(hub *infrastructure.Hub, relay *infrastructure.LiveViewRelay, commands *infrastructure.CommandProcessor, siteID string, sendBuffer int) echo.HandlerFunc {
	return func(c echo.Context) error {
		site := strings.TrimSpace(c.QueryParam("siteId"))
		if site == "" {
			site = siteID
		}
		if site != siteID {
			slog.Warn("ws rejected: unknown site", slog.String("siteId", site), slog.String("ip", c.RealIP()))
			return echo.NewHTTPError(http.StatusNotFound, "site "+site+" is not served here")
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			slog.Error("ws upgrade failed", slog.String("ip", c.RealIP()), slog.Any("error", err))
			return err
		}

		sessionID := uuid.NewString()
		client := infrastructure.NewClient(hub, conn, sessionID, site, sendBuffer, commands)
		hub.AttachClient(client, []string{domain.TopicHomepageUpdated})

		go client.WritePump()
		go client.ReadPump()

		client.SendDomainMessage(domain.BuildSystemMessage(domain.ActionConnected, map[string]any{
			"sessionId": sessionID,
			"siteId":    site,
			"topics":    []string{domain.TopicHomepageSnapshot, domain.TopicHomepageUpdated},
		}, time.Now()))
		relay.SendSnapshot(c.Request().Context(), client)

		slog.Info("ws connected", slog.String("sessionId", sessionID), slog.String("siteId", site), slog.String("ip", c.RealIP()))
		return nil
	}
}
