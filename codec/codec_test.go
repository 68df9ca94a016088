package codec

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestRoundTripNestedBinary(t *testing.T) {
	values := []any{
		nil,
		"plain",
		float64(42),
		true,
		[]byte{0, 1, 2, 255},
		map[string]any{
			"keyPair": map[string]any{
				"public":  []byte{5, 6, 7},
				"private": []byte{8, 9},
			},
			"keyId": float64(1),
			"list": []any{
				[]byte("deep"),
				map[string]any{"inner": []any{[]byte{1}, "x"}},
			},
		},
		[]any{[]byte{}, float64(3), nil},
	}

	for i, v := range values {
		enc, err := Encode(v)
		if err != nil {
			t.Fatalf("case %d: encode: %v", i, err)
		}
		got, err := Decode(enc)
		if err != nil {
			t.Fatalf("case %d: decode %q: %v", i, enc, err)
		}
		if !reflect.DeepEqual(got, v) {
			t.Fatalf("case %d: round trip mismatch\nwant %#v\ngot  %#v", i, v, got)
		}
	}
}

func TestRoundTripTypedContainers(t *testing.T) {
	type label string
	buf := []byte{9}

	cases := []struct {
		name string
		in   any
		want any
	}{
		{
			name: "slice of byte slices",
			in:   map[string]any{"list": [][]byte{{1, 2, 3}}},
			want: map[string]any{"list": []any{[]byte{1, 2, 3}}},
		},
		{
			name: "slice of maps",
			in:   map[string]any{"maps": []map[string]any{{"k": []byte{4, 5}}}},
			want: map[string]any{"maps": []any{map[string]any{"k": []byte{4, 5}}}},
		},
		{
			name: "typed byte map",
			in:   map[string]any{"typed": map[string][]byte{"x": {6}}},
			want: map[string]any{"typed": map[string]any{"x": []byte{6}}},
		},
		{
			name: "nested typed maps",
			in:   map[string]map[string]any{"outer": {"inner": []byte{7}}},
			want: map[string]any{"outer": map[string]any{"inner": []byte{7}}},
		},
		{
			name: "named key type and array",
			in:   map[label][2][]byte{"a": {{8}, nil}},
			want: map[string]any{"a": []any{[]byte{8}, nil}},
		},
		{
			name: "pointer to byte slice",
			in:   []*[]byte{&buf},
			want: []any{[]byte{9}},
		},
		{
			name: "byte array stays numeric",
			in:   [2]byte{1, 2},
			want: []any{float64(1), float64(2)},
		},
	}

	for _, tc := range cases {
		enc, err := Encode(tc.in)
		if err != nil {
			t.Fatalf("%s: encode: %v", tc.name, err)
		}
		got, err := Decode(enc)
		if err != nil {
			t.Fatalf("%s: decode %q: %v", tc.name, enc, err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: round trip mismatch\nwire %s\nwant %#v\ngot  %#v", tc.name, enc, tc.want, got)
		}
	}
}

func TestEncodeTagsBinary(t *testing.T) {
	enc, err := Encode(map[string]any{"k": []byte("hi")})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `{"k":{"type":"Buffer","data":"aGk="}}`
	if enc != want {
		t.Fatalf("expected %s, got %s", want, enc)
	}
}

func TestDecodeLegacyBufferForms(t *testing.T) {
	cases := map[string][]byte{
		`{"type":"Buffer","data":[1,2,3]}`: {1, 2, 3},
		`{"buffer":true,"value":"AQI="}`:   {1, 2},
		`{"type":"Buffer","data":null}`:    {},
	}
	for in, want := range cases {
		got, err := Decode(in)
		if err != nil {
			t.Fatalf("decode %s: %v", in, err)
		}
		b, ok := got.([]byte)
		if !ok || !bytes.Equal(b, want) {
			t.Fatalf("decode %s: expected %v, got %#v", in, want, got)
		}
	}
}

func TestDecodeMalformed(t *testing.T) {
	inputs := []string{
		"",
		"{not json",
		`{"type":"Buffer","data":"%%%"}`,
		`{"type":"Buffer","data":[1,300]}`,
		`{"type":"Buffer","data":[1.5]}`,
		`{"a":{"type":"Buffer","data":{}}}`,
	}
	for _, in := range inputs {
		_, err := Decode(in)
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Fatalf("decode %q: expected DecodeError, got %v", in, err)
		}
	}
}

type keyPair struct {
	Public  Bytes `json:"public"`
	Private Bytes `json:"private"`
}

func TestDecodeIntoTypedBytes(t *testing.T) {
	in := keyPair{Public: Bytes{1, 2}, Private: Bytes{3}}
	enc, err := Encode(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(enc, `"type":"Buffer"`) {
		t.Fatalf("expected tagged buffer in %s", enc)
	}

	var out keyPair
	if err := DecodeInto(enc, &out); err != nil {
		t.Fatalf("decode into: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("expected %#v, got %#v", in, out)
	}

	// Generic decode of the same text yields []byte leaves.
	generic, err := Decode(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	m := generic.(map[string]any)
	if _, ok := m["public"].([]byte); !ok {
		t.Fatalf("expected []byte leaf, got %T", m["public"])
	}
}

func TestDecodeIntoAcceptsBase64StringAndNull(t *testing.T) {
	var out keyPair
	if err := DecodeInto(`{"public":"AQI=","private":null}`, &out); err != nil {
		t.Fatalf("decode into: %v", err)
	}
	if !bytes.Equal(out.Public, []byte{1, 2}) || out.Private != nil {
		t.Fatalf("unexpected result %#v", out)
	}
}

func TestDecodeIntoMalformed(t *testing.T) {
	var out keyPair
	err := DecodeInto(`{"public":{"type":"Buffer","data":"!!"}}`, &out)
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if err := DecodeInto(`[`, &out); !errors.As(err, &de) {
		t.Fatalf("expected DecodeError for truncated input, got %v", err)
	}
}
