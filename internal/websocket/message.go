package websocket

import "encoding/json"

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// NewMessage marshals an action/payload pair for delivery to clients.
func NewMessage(action string, payload interface{}) []byte {
	data, err := json.Marshal(Message{Action: action, Payload: payload})
	if err != nil {
		return nil
	}
	return data
}

// NewErrorMessage builds an error message for a client.
func NewErrorMessage(msg string) []byte {
	return NewMessage("error", map[string]string{"msg": msg})
}
