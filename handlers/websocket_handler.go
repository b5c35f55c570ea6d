package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/clubstack/league-system/live"
	"github.com/clubstack/league-system/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// В продакшене здесь должна быть проверка Origin.
		return true
	},
}

type WebSocketHandler struct {
	hub           *live.Hub
	tenantService services.TenantService
}

func NewWebSocketHandler(hub *live.Hub, tenantService services.TenantService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:           hub,
		tenantService: tenantService,
	}
}

// ServeWs подписывает клиента на ленту событий арендатора.
// Клиент подключается к /ws/tenants/{tenantID}.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tenantID, err := getUUIDFromURL(r, "tenantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if _, err := h.tenantService.GetTenantByID(r.Context(), tenantID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader.Upgrade сам отправляет HTTP-ошибку клиенту.
		slog.Error("failed to upgrade websocket connection", "tenant_id", tenantID, "error", err)
		return
	}

	client := &live.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: tenantID.String(),
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
