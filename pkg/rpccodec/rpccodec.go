// Package rpccodec supplies the JSON wire codec shared by the Engine's
// grpc-go server/client and the Gateway's connect-go server. Without a
// protoc/buf toolchain to generate binary protobuf codecs, this package
// stands in for that step: it registers a named content-subtype with
// grpc-go and a matching connect.Codec, so both frameworks still carry
// real HTTP/2 framing, streaming, and deadline semantics — only the
// byte-level encoding differs from what protoc would have produced.
package rpccodec

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// Name is the content-subtype/codec name used on both sides of the wire:
// grpc-go advertises it as "application/grpc+json", connect-go as
// "application/json".
const Name = "json"

// Codec implements both google.golang.org/grpc/encoding.Codec and
// connectrpc.com/connect.Codec — the two interfaces have identical
// method sets (Name/Marshal/Unmarshal), so one type satisfies both
// without an adapter.
type Codec struct{}

// Marshal encodes v as JSON.
func (Codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes JSON data into v.
func (Codec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Name reports the codec's content-subtype name.
func (Codec) Name() string {
	return Name
}

func init() {
	encoding.RegisterCodec(Codec{})
}
