package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
)

const bufferTag = "Buffer"

// Bytes is a binary payload that keeps its type through a JSON round trip.
//
// Struct fields that hold key material should use Bytes rather than []byte:
// plain []byte fields marshal to an untagged base64 string and decode back
// as text in generic trees.
type Bytes []byte

type taggedBuffer struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// MarshalJSON writes the tagged buffer object.
func (b Bytes) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	return json.Marshal(taggedBuffer{
		Type: bufferTag,
		Data: base64.StdEncoding.EncodeToString(b),
	})
}

// UnmarshalJSON accepts the tagged buffer object, a bare base64 string, or null.
func (b *Bytes) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = nil
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return decodeErr("bytes: %w", err)
		}
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return decodeErr("bytes: %w", err)
		}
		*b = raw
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return decodeErr("bytes: %w", err)
	}
	raw, ok, err := reviveBuffer(obj)
	if err != nil {
		return err
	}
	if !ok {
		return decodeErr("bytes: object is not a tagged buffer")
	}
	*b = raw
	return nil
}
