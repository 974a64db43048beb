package management

import (
	"context"
	"net/http"
	neturl "net/url"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	ws "github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"recharge-mcp-go/internal/events"
	"recharge-mcp-go/internal/monitoring"
)

const (
	wsReadDeadline  = 90 * time.Second
	wsPingInterval  = 30 * time.Second
	wsWriteDeadline = 10 * time.Second
	wsSendBuffer    = 64
)

var streamTopics = []string{
	events.TopicConfigUpdated,
	events.TopicSessionCreated,
	events.TopicCredentialInvalidated,
	events.TopicCredentialsPurged,
}

func eventsUpgrader() ws.Upgrader {
	allowedEnv := strings.TrimSpace(os.Getenv("MANAGEMENT_ALLOWED_ORIGINS"))
	var allowed []string
	for _, p := range strings.Split(allowedEnv, ",") {
		if p = strings.TrimSpace(p); p != "" {
			allowed = append(allowed, p)
		}
	}
	return ws.Upgrader{CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := neturl.Parse(origin)
		if err != nil {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		for _, a := range allowed {
			if strings.EqualFold(a, origin) || strings.EqualFold(a, u.Host) {
				return true
			}
			if au, err2 := neturl.Parse(a); err2 == nil && au.Host != "" && strings.EqualFold(au.Host, u.Host) {
				return true
			}
		}
		return false
	}}
}

// StreamEvents upgrades to a websocket and forwards hub events to the
// client until it disconnects.
func (h *Handler) StreamEvents(c *gin.Context) {
	if h.hub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event hub unavailable"})
		return
	}
	upgrader := eventsUpgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	defer conn.Close()

	monitoring.EventStreamClients.Inc()
	defer monitoring.EventStreamClients.Dec()

	// Buffered forwarding channel so a slow client never blocks the hub.
	send := make(chan events.Event, wsSendBuffer)
	var unsubs []func()
	for _, topic := range streamTopics {
		unsubs = append(unsubs, h.hub.Subscribe(topic, func(_ context.Context, ev events.Event) {
			select {
			case send <- ev:
			default:
			}
		}))
	}
	defer func() {
		for _, u := range unsubs {
			u()
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(ws.PingMessage, []byte("ping"), time.Now().Add(wsWriteDeadline)); err != nil {
				return
			}
		case ev := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
			if err := conn.WriteJSON(ev); err != nil {
				log.WithError(err).Debug("event stream write failed, dropping client")
				return
			}
		}
	}
}
