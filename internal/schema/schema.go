// Package schema validates world documents that enter the process from
// outside: imported fortresses and rows read back from the store.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed world.schema.json
var worldSchemaSource string

var worldSchema = jsonschema.MustCompileString("world.schema.json", worldSchemaSource)

// Validate checks raw JSON against the world schema.
func Validate(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("decode world: %w", err)
	}
	if err := worldSchema.Validate(doc); err != nil {
		return fmt.Errorf("validate world: %w", err)
	}
	return nil
}

// Source returns the schema document, e.g. for clients that validate locally.
func Source() []byte {
	return []byte(worldSchemaSource)
}
