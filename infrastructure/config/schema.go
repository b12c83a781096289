package config

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"

	domainconfig "github.com/felixgeelhaar/agent-router/domain/config"
)

// SchemaID is the $id of the generated configuration schema.
const SchemaID = "https://github.com/felixgeelhaar/agent-router/router-config.schema.json"

var durationType = reflect.TypeOf(domainconfig.Duration(0))

// GenerateSchema reflects the JSON Schema of RouterConfig.
func GenerateSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == durationType {
				return &jsonschema.Schema{
					Type:        "string",
					Pattern:     `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`,
					Description: "Go duration string, e.g. 30s or 1m30s",
				}
			}
			return nil
		},
	}

	s := r.Reflect(&domainconfig.RouterConfig{})
	s.ID = jsonschema.ID(SchemaID)
	s.Title = "Agent Router Configuration"
	s.Description = "Model handler chain and tool server connections"
	return s
}

// SchemaJSON returns the indented schema document.
func SchemaJSON() (string, error) {
	data, err := json.MarshalIndent(GenerateSchema(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema: %w", err)
	}
	return string(data), nil
}
