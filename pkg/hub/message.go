// Package hub fans tracking events and preview frames out to websocket
// clients through a single broadcast goroutine.
package hub

// MessageType indicates the websocket message format
type MessageType int

const (
	// JSONMessage is a JSON-encoded event
	JSONMessage MessageType = iota
	// BinaryMessage is an encoded preview frame
	BinaryMessage
)

// Message is one payload queued for every client
type Message struct {
	Type MessageType
	Data []byte
}

// NewJSONMessage wraps pre-encoded JSON
func NewJSONMessage(data []byte) Message {
	return Message{Type: JSONMessage, Data: data}
}

// NewBinaryMessage wraps binary data such as a JPEG frame
func NewBinaryMessage(data []byte) Message {
	return Message{Type: BinaryMessage, Data: data}
}
