// Package ident allocates the small one-byte ids used for windows, shortcuts,
// menu items and tray icons.
package ident

import (
	"errors"
	"fmt"
)

const logPrefix = "ident:counter"

// Capacity is the number of distinct ids a Counter can hand out.
const Capacity = 256

// ErrCapacityExhausted is returned when every id in the space is in use.
var ErrCapacityExhausted = errors.New("id space exhausted")

// Counter is an advancing cursor over the uint8 id space. It is not safe for
// concurrent use; callers guard it with the same lock that guards the map of
// live ids.
type Counter struct {
	next uint8
}

// New returns a Counter starting at id 0.
func New() *Counter {
	return &Counter{}
}

// Next returns the first id at or after the cursor (wrapping) for which inUse
// reports false, and advances the cursor past it.
func (c *Counter) Next(inUse func(id uint8) bool) (uint8, error) {
	id := c.next
	for i := 0; i < Capacity; i++ {
		if !inUse(id) {
			c.next = id + 1
			return id, nil
		}
		id++
	}
	return 0, fmt.Errorf("%s - %w", logPrefix, ErrCapacityExhausted)
}

// NextFree is Next over the keys of a map.
func NextFree[V any](c *Counter, live map[uint8]V) (uint8, error) {
	return c.Next(func(id uint8) bool {
		_, ok := live[id]
		return ok
	})
}

// Merge packs an owner window id and an item id into one 16-bit id.
func Merge(owner, item uint8) uint16 {
	return uint16(owner)<<8 | uint16(item)
}

// Split reverses Merge.
func Split(merged uint16) (owner, item uint8) {
	return uint8(merged >> 8), uint8(merged)
}
