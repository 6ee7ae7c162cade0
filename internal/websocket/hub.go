package websocket

import "github.com/rs/zerolog/log"

// Hub maintains the set of active clients and delivers feed updates to
// them. Clients connected on the global feed route receive every
// update; clients connected on a post route (or subscribed later)
// receive only updates for that post.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Feed updates from the services.
	publish chan update

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// A map of post IDs to a set of clients subscribed to it.
	subscriptions map[string]map[*Client]bool

	// Subscription changes from connected clients.
	subscribe   chan subscription
	unsubscribe chan subscription

	// Replies addressed to a single client. All deliveries into a
	// client's Send channel happen on the hub loop, which is also the
	// only place Send is ever closed.
	direct chan directMessage
}

type directMessage struct {
	client *Client
	data   []byte
}

type update struct {
	postID string
	data   []byte
}

type subscription struct {
	client *Client
	postID string
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		publish:       make(chan update, 64),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		subscriptions: make(map[string]map[*Client]bool),
		subscribe:     make(chan subscription),
		unsubscribe:   make(chan subscription),
		direct:        make(chan directMessage),
	}
}

// Run starts the Hub's message processing loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			log.Info().Int("total_clients", len(h.clients)).Msg("Client connected")
			// If the client connected on a post route, subscribe them.
			if client.PostID != "" {
				h.addSubscription(client, client.PostID)
			}
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.removeSubscription(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case sub := <-h.subscribe:
			if _, ok := h.clients[sub.client]; ok {
				h.addSubscription(sub.client, sub.postID)
			}
		case sub := <-h.unsubscribe:
			if subs, ok := h.subscriptions[sub.postID]; ok {
				delete(subs, sub.client)
				if len(subs) == 0 {
					delete(h.subscriptions, sub.postID)
				}
			}
		case dm := <-h.direct:
			// Dropped clients have a closed Send; skip them.
			if _, ok := h.clients[dm.client]; ok {
				h.send(dm.client, dm.data)
			}
		case u := <-h.publish:
			subs := h.subscriptions[u.postID]
			for client := range h.clients {
				if client.PostID != "" {
					continue // post-scoped clients handled below
				}
				if subs[client] {
					continue // subscribed as well; deliver once below
				}
				h.send(client, u.data)
			}
			for client := range subs {
				h.send(client, u.data)
			}
		}
	}
}

func (h *Hub) send(client *Client, data []byte) {
	select {
	case client.Send <- data:
	default:
		close(client.Send)
		delete(h.clients, client)
		h.removeSubscription(client)
	}
}

// Publish queues a feed update for delivery. Best-effort: if the hub
// is saturated the update is dropped rather than blocking a request.
func (h *Hub) Publish(postID string, data []byte) {
	select {
	case h.publish <- update{postID: postID, data: data}:
	default:
		log.Warn().Str("post_id", postID).Msg("Feed update dropped, hub saturated")
	}
}

// SendTo delivers a message to a single client via the hub loop.
// Safe to call with a client the hub has already dropped.
func (h *Hub) SendTo(client *Client, data []byte) {
	h.direct <- directMessage{client: client, data: data}
}

// Subscribe adds a client to a post's subscription set.
func (h *Hub) Subscribe(client *Client, postID string) {
	h.subscribe <- subscription{client: client, postID: postID}
}

// Unsubscribe removes a client from a post's subscription set.
func (h *Hub) Unsubscribe(client *Client, postID string) {
	h.unsubscribe <- subscription{client: client, postID: postID}
}

func (h *Hub) addSubscription(client *Client, postID string) {
	if h.subscriptions[postID] == nil {
		h.subscriptions[postID] = make(map[*Client]bool)
	}
	h.subscriptions[postID][client] = true
}

func (h *Hub) removeSubscription(client *Client) {
	for postID, subs := range h.subscriptions {
		if _, ok := subs[client]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.subscriptions, postID)
			}
		}
	}
}
