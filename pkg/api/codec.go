// Package api defines the feeledger RPC surface: message types, procedure
// names, handler constructors and typed clients for the Connect protocol.
//
// Messages are plain Go structs encoded as JSON. Amounts are decimal strings
// ("700.00") so no precision is lost on the wire.
//
// The codec registers under the name "json" but it is not protojson: field
// names are snake_case struct tags, there is no protobuf schema, and generated
// protobuf clients cannot talk to these services. Use the typed clients in
// this package, or any client that speaks the Connect protocol with plain
// application/json bodies.
package api

import "encoding/json"

// JSONCodec encodes messages with encoding/json under the "json" codec name,
// so Connect serves and sends them as application/json.
type JSONCodec struct{}

// Name implements connect.Codec.
func (JSONCodec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (JSONCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal implements connect.Codec.
func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
