package dispatcher

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const argsLogPrefix = "dispatcher:args"

// ErrMissingArgument is returned when a required positional argument is absent.
var ErrMissingArgument = errors.New("missing argument")

// Args is the positional argument list of a request. Handlers decode what
// they need; trailing arguments may be omitted by the caller.
type Args []json.RawMessage

// Len returns the number of arguments supplied.
func (a Args) Len() int {
	return len(a)
}

// At decodes argument i into v. Absent or null arguments are an error.
func (a Args) At(i int, v any) error {
	present, err := a.Optional(i, v)
	if err != nil {
		return err
	}
	if !present {
		return fmt.Errorf("%s - argument %d: %w", argsLogPrefix, i, ErrMissingArgument)
	}
	return nil
}

// Single decodes the first argument into v.
func (a Args) Single(v any) error {
	return a.At(0, v)
}

// Optional decodes argument i into v when it is present and not null, and
// reports whether it was.
func (a Args) Optional(i int, v any) (bool, error) {
	if i < 0 || i >= len(a) {
		return false, nil
	}
	raw := bytes.TrimSpace(a[i])
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("%s - argument %d: %w", argsLogPrefix, i, err)
	}
	return true, nil
}

// WindowOr decodes an optional window id at i, falling back to def.
func (a Args) WindowOr(i int, def uint8) (uint8, error) {
	id := def
	if _, err := a.Optional(i, &id); err != nil {
		return 0, err
	}
	return id, nil
}
