package protocol

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// json is a drop-in replacement for encoding/json with better performance
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrMalformedFrame marks inbound frames that cannot be decoded into an
// Envelope. The frame is dropped; the connection itself stays usable.
var ErrMalformedFrame = errors.New("malformed frame")

// wireEnvelope is the authority's JSON shape. Field names are part of the
// wire contract and must not change.
type wireEnvelope struct {
	Kind    string         `json:"type"`
	Text    string         `json:"content"`
	Payload map[string]any `json:"data"`
}

// Encode serializes an outbound envelope. The payload is always emitted as an
// object, never null, so every consumer version sees the same frame shape.
// A marshal failure means the payload held a non-serializable value, which is
// a programming error on the caller's side.
func Encode(kind, text string, payload map[string]any) ([]byte, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(wireEnvelope{Kind: kind, Text: text, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return data, nil
}

// Decode parses raw wire bytes into an Envelope.
//
// The frame must be a JSON object carrying a string "type"; everything else
// is lenient. "content" falls back to the legacy "message" field because
// older authority builds still emit it on the pre-auth frame, and a missing
// or non-object "data" becomes an empty payload. Errors wrap
// ErrMalformedFrame; callers drop the frame and keep reading.
func Decode(data []byte) (Envelope, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return Envelope{}, fmt.Errorf("%w: parse: %v", ErrMalformedFrame, err)
	}

	rec, ok := root.(map[string]any)
	if !ok {
		return Envelope{}, fmt.Errorf("%w: top-level value is %T, not an object", ErrMalformedFrame, root)
	}

	kind := ""
	if v, present := rec["type"]; present {
		s, ok := v.(string)
		if !ok {
			return Envelope{}, fmt.Errorf("%w: field %q is %T, not a string", ErrMalformedFrame, "type", v)
		}
		kind = s
	}

	text, _ := rec["content"].(string)
	if text == "" {
		text, _ = rec["message"].(string)
	}

	payload, _ := rec["data"].(map[string]any)
	if payload == nil {
		payload = map[string]any{}
	}

	return Envelope{Kind: kind, Text: text, Payload: payload}, nil
}
