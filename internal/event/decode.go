package event

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNilPayload is returned when an event arrives without a payload
var ErrNilPayload = errors.New("event has no payload")

// DecodePayload returns the payload as T. Events published in-process already
// hold the typed struct; payloads read back from the dead-letter file are maps
// and go through a JSON round-trip.
func DecodePayload[T any](input interface{}) (T, error) {
	var result T
	if input == nil {
		return result, ErrNilPayload
	}
	if v, ok := input.(T); ok {
		return v, nil
	}
	if p, ok := input.(*T); ok && p != nil {
		return *p, nil
	}
	data, err := json.Marshal(input)
	if err != nil {
		return result, fmt.Errorf("encode payload %T: %w", input, err)
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("decode payload into %T: %w", result, err)
	}
	return result, nil
}
