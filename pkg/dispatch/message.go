package dispatch

// Message is one inbound invocation from the host.
type Message struct {
	// ID correlates the invocation with its result or error.
	ID string `json:"id" mapstructure:"id"`

	// Payload is the value written by a Writer. Queriers ignore it.
	Payload any `json:"payload,omitempty" mapstructure:"payload"`

	// HasPayload distinguishes an absent payload from an explicit null.
	HasPayload bool `json:"-" mapstructure:"-"`
}

// NewMessage returns a message carrying payload.
func NewMessage(id string, payload any) Message {
	return Message{ID: id, Payload: payload, HasPayload: true}
}
