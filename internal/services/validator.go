package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Request payload schema names expected under the schemas directory.
const (
	SchemaMatchRequest = "match_request"
	SchemaStatusUpdate = "status_update"
	SchemaHeartbeat    = "heartbeat"
)

// ErrValidation can be used with errors.Is to detect payload validation
// failures.
var ErrValidation = errors.New("validation failed")

// Validator checks API request payloads against JSON schemas loaded from a
// directory at startup. Handlers treat a nil *Validator as "validation
// disabled" so a missing schemas directory degrades gracefully.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// NewValidator loads and compiles every *.json schema file from schemaDir.
// The schema name is the file name with the extension and an optional
// version suffix stripped (status_update.v1.json -> status_update).
func NewValidator(schemaDir string) (*Validator, error) {
	entries, err := os.ReadDir(schemaDir)
	if err != nil {
		return nil, fmt.Errorf("read schema dir %q: %w", schemaDir, err)
	}
	schemas := make(map[string]*jsonschema.Schema)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		name = strings.TrimSuffix(name, ".v1")
		path := filepath.Join(schemaDir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", path, err)
		}
		id := "https://potentialgenie.dev/schemas/" + name
		schemas[name], err = jsonschema.CompileString(id, string(data))
		if err != nil {
			return nil, fmt.Errorf("compile schema %q: %w", name, err)
		}
	}
	return &Validator{schemas: schemas}, nil
}

// Validate checks payload against the named schema. Returns an error
// wrapping ErrValidation when the payload does not conform, or a plain
// error for unknown schema names and malformed JSON.
func (v *Validator) Validate(name string, payload json.RawMessage) error {
	schema, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}
	var doc interface{}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
