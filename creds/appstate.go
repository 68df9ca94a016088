package creds

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/MrEthical07/authstate/codec"
)

// AppStateSyncKeyFingerprint identifies the key a sync patch was encrypted with.
type AppStateSyncKeyFingerprint struct {
	RawID         uint32   `json:"rawId,omitempty"`
	CurrentIndex  uint32   `json:"currentIndex,omitempty"`
	DeviceIndexes []uint32 `json:"deviceIndexes,omitempty"`
}

// AppStateSyncKeyData is the domain form of an app-state-sync-key record.
type AppStateSyncKeyData struct {
	KeyData     codec.Bytes                 `json:"keyData,omitempty"`
	Fingerprint *AppStateSyncKeyFingerprint `json:"fingerprint,omitempty"`
	Timestamp   Int64                       `json:"timestamp,omitempty"`
}

// AppStateSyncKeyFromValue converts a generic decoded app-state-sync-key
// value into *AppStateSyncKeyData. Values that already have that type are
// returned unchanged.
func AppStateSyncKeyFromValue(value any) (any, error) {
	switch v := value.(type) {
	case *AppStateSyncKeyData:
		return v, nil
	case AppStateSyncKeyData:
		return &v, nil
	case map[string]any:
	default:
		return nil, fmt.Errorf("app state sync key: unexpected value type %T", value)
	}

	text, err := codec.Encode(value)
	if err != nil {
		return nil, fmt.Errorf("app state sync key: %w", err)
	}
	var out AppStateSyncKeyData
	if err := codec.DecodeInto(text, &out); err != nil {
		return nil, fmt.Errorf("app state sync key: %w", err)
	}
	return &out, nil
}

// Int64 decodes from either a JSON number or a decimal string, since 64-bit
// timestamps are written as strings by some producers.
type Int64 int64

func (n *Int64) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		*n = Int64(v)
		return nil
	}
	var f json.Number
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	v, err := f.Int64()
	if err != nil {
		fv, ferr := f.Float64()
		if ferr != nil {
			return err
		}
		v = int64(fv)
	}
	*n = Int64(v)
	return nil
}
