package protocol

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// EncodeEvent serializes an event for the wire.
func EncodeEvent(ev Event) ([]byte, error) {
	data, err := msgpack.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", ev.Type, err)
	}
	return data, nil
}

// DecodeEvent parses a wire payload produced by EncodeEvent.
func DecodeEvent(data []byte) (Event, error) {
	var ev Event
	if err := msgpack.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	return ev, nil
}
