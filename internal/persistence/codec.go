package persistence

import (
	"encoding/json"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/agentik/internal/engine"
	"github.com/talgya/agentik/internal/schema"
)

// Shared codecs; EncodeAll and DecodeAll are safe for concurrent use.
var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

// encodeWorld stores a world as zstd-compressed JSON.
func encodeWorld(w *engine.World) ([]byte, error) {
	raw, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	return encoder.EncodeAll(raw, nil), nil
}

// decodeWorld reverses encodeWorld, rejecting payloads that do not match the
// world schema.
func decodeWorld(payload []byte) (*engine.World, error) {
	raw, err := decoder.DecodeAll(payload, nil)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(raw); err != nil {
		return nil, err
	}
	var w engine.World
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	if err := w.Normalize(); err != nil {
		return nil, err
	}
	return &w, nil
}
