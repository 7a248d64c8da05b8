package commsutil

import (
	"encoding/json"
	"fmt"

	comms "github.com/nats-io/nats.go"
)

const codecLogPrefix = "commsutil:codec"

// Reply is the body of every host bridge response.
type Reply struct {
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// EncodePayload serializes a value to JSON bytes.
func EncodePayload(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%s - encode: %w", codecLogPrefix, err)
	}
	return data, nil
}

// DecodePayload deserializes JSON bytes into the given target.
func DecodePayload(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s - decode: %w", codecLogPrefix, err)
	}
	return nil
}

// NewReply builds the Reply for a handler result.
func NewReply(data any, err error) Reply {
	if err != nil {
		return Reply{OK: false, Error: err.Error()}
	}
	return Reply{OK: true, Data: data}
}

// Respond answers msg with NewReply(data, err). Messages without a reply
// subject are ignored.
func Respond(msg *comms.Msg, data any, err error) error {
	if msg.Reply == "" {
		return nil
	}
	body, encErr := EncodePayload(NewReply(data, err))
	if encErr != nil {
		body, _ = EncodePayload(NewReply(nil, encErr))
	}
	if err := msg.Respond(body); err != nil {
		return fmt.Errorf("%s - respond on %s: %w", codecLogPrefix, msg.Reply, err)
	}
	return nil
}
