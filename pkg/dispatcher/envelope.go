// Package dispatcher routes requests posted by page script to registered
// native handlers and delivers the responses back to the originating window.
package dispatcher

import (
	"encoding/json"
	"fmt"
)

const envelopeLogPrefix = "dispatcher:envelope"

// Response status codes.
const (
	StatusOK    int32 = 0
	StatusError int32 = -1
)

// MessageOK is the message paired with StatusOK.
const MessageOK = "ok"

// Request is the envelope page script sends: [window, method, args].
type Request struct {
	Window uint8
	Method string
	Args   Args
}

// UnmarshalJSON decodes the three-element array form. A missing or null
// argument list is treated as empty.
func (r *Request) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("%s - request is not an array: %w", envelopeLogPrefix, err)
	}
	if len(parts) < 2 || len(parts) > 3 {
		return fmt.Errorf("%s - request has %d elements, want 3", envelopeLogPrefix, len(parts))
	}
	var out Request
	if err := json.Unmarshal(parts[0], &out.Window); err != nil {
		return fmt.Errorf("%s - request window: %w", envelopeLogPrefix, err)
	}
	if err := json.Unmarshal(parts[1], &out.Method); err != nil {
		return fmt.Errorf("%s - request method: %w", envelopeLogPrefix, err)
	}
	if len(parts) == 3 {
		if err := json.Unmarshal(parts[2], &out.Args); err != nil {
			return fmt.Errorf("%s - request args: %w", envelopeLogPrefix, err)
		}
	}
	if out.Args == nil {
		out.Args = Args{}
	}
	*r = out
	return nil
}

// MarshalJSON encodes the three-element array form.
func (r Request) MarshalJSON() ([]byte, error) {
	args := r.Args
	if args == nil {
		args = Args{}
	}
	return json.Marshal([]any{r.Window, r.Method, args})
}

// OK builds a success response for r.
func (r Request) OK(payload any) Response {
	return Response{Window: r.Window, Status: StatusOK, Message: MessageOK, Payload: payload}
}

// Err builds a failure response for r.
func (r Request) Err(status int32, message string) Response {
	return Response{Window: r.Window, Status: status, Message: message}
}

// Response is delivered to page script as [window, status, message, payload].
type Response struct {
	Window  uint8
	Status  int32
	Message string
	Payload any
}

// MarshalJSON encodes the four-element array form.
func (r Response) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{r.Window, r.Status, r.Message, r.Payload})
}

// UnmarshalJSON decodes the four-element array form. Payload is left as
// decoded by encoding/json.
func (r *Response) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("%s - response is not an array: %w", envelopeLogPrefix, err)
	}
	if len(parts) != 4 {
		return fmt.Errorf("%s - response has %d elements, want 4", envelopeLogPrefix, len(parts))
	}
	var out Response
	if err := json.Unmarshal(parts[0], &out.Window); err != nil {
		return fmt.Errorf("%s - response window: %w", envelopeLogPrefix, err)
	}
	if err := json.Unmarshal(parts[1], &out.Status); err != nil {
		return fmt.Errorf("%s - response status: %w", envelopeLogPrefix, err)
	}
	if err := json.Unmarshal(parts[2], &out.Message); err != nil {
		return fmt.Errorf("%s - response message: %w", envelopeLogPrefix, err)
	}
	if err := json.Unmarshal(parts[3], &out.Payload); err != nil {
		return fmt.Errorf("%s - response payload: %w", envelopeLogPrefix, err)
	}
	*r = out
	return nil
}

// Succeeded reports whether the status is StatusOK.
func (r Response) Succeeded() bool {
	return r.Status == StatusOK
}
