// Package schema provides JSON Schema generation for the core's persisted
// formats (settings, consent grants, audit records) so front ends can
// validate state files without importing the Go types.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/ShaheerHaq03/Desktop-AI-Assistant/application/config"
	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/entities"
)

// Generate creates a JSON Schema (Draft 2020-12) from a Go struct.
func Generate(v interface{}) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(v)

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return jsonBytes, nil
}

// known maps schema names to prototype values of the persisted formats.
var known = map[string]interface{}{
	"settings":      config.Settings{},
	"consent-grant": entities.ConsentGrant{},
	"audit-record":  entities.AuditRecord{},
}

// For returns the schema for one of the persisted formats.
func For(name string) ([]byte, error) {
	v, ok := known[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema: %q", name)
	}
	return Generate(v)
}

// List returns the available schema names.
func List() []string {
	names := make([]string, 0, len(known))
	for name := range known {
		names = append(names, name)
	}
	return names
}
