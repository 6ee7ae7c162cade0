package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	ws "github.com/wavefeed/wavefeed-be/internal/websocket"
)

// WebSocketHandler upgrades HTTP connections for live feed updates.
type WebSocketHandler struct {
	hub *ws.Hub
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(hub *ws.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins (consider tightening this in production).
		return true
	},
}

// Serve handles the WebSocket connection request. Connections on
// /ws/feed receive every feed update; connections on /ws/posts/{id}
// receive updates for that post only.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	postID := chi.URLParam(r, "id")

	client := ws.NewClient(h.hub, conn, postID)
	h.hub.Register <- client

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		client.WritePump()
	}()
	go func() {
		defer wg.Done()
		client.ReadPump(h.handleIncomingWSMessage)
	}()

	// Cleanup on disconnect.
	go func() {
		wg.Wait()
		h.hub.Unregister <- client
	}()
}

// handleIncomingWSMessage processes messages received from a websocket
// client. The feed is read-only; clients may only manage their post
// subscriptions.
func (h *WebSocketHandler) handleIncomingWSMessage(client *ws.Client, message []byte) {
	var msg ws.Message
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Error().Err(err).Bytes("message", message).Msg("Error decoding websocket message")
		return
	}

	postID := h.payloadPostID(msg)

	// Replies go through the hub, which owns the client's Send channel.
	// Writing to Send directly races with the hub closing it for
	// dropped clients.
	switch msg.Action {
	case "subscribe_post":
		if postID == "" {
			h.hub.SendTo(client, ws.NewErrorMessage("Missing postId in payload"))
			return
		}
		h.hub.Subscribe(client, postID)
	case "unsubscribe_post":
		if postID == "" {
			h.hub.SendTo(client, ws.NewErrorMessage("Missing postId in payload"))
			return
		}
		h.hub.Unsubscribe(client, postID)
	default:
		log.Warn().Str("action", msg.Action).Msg("Unknown websocket action received")
		h.hub.SendTo(client, ws.NewErrorMessage("Unknown action: "+msg.Action))
	}
}

func (h *WebSocketHandler) payloadPostID(msg ws.Message) string {
	payload, ok := msg.Payload.(map[string]interface{})
	if !ok {
		return ""
	}
	postID, _ := payload["postId"].(string)
	return postID
}
