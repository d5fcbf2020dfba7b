// Package grpcjson registers a JSON codec for gRPC so services can exchange
// the shared Go contracts directly, without generated protobuf types.
//
// Clients select it per call with grpc.CallContentSubtype(grpcjson.Name); the
// server picks it from the request content type.
package grpcjson

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// Name is the content subtype: requests travel as application/grpc+json.
const Name = "json"

// Codec marshals gRPC messages with encoding/json.
type Codec struct{}

func (Codec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (Codec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (Codec) Name() string {
	return Name
}

func init() {
	encoding.RegisterCodec(Codec{})
}
