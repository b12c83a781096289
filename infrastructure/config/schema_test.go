package config

import (
	"encoding/json"
	"testing"
)

func TestGenerateSchema(t *testing.T) {
	s := GenerateSchema()
	if s.Title != "Agent Router Configuration" {
		t.Errorf("Title = %s", s.Title)
	}
	if string(s.ID) != SchemaID {
		t.Errorf("ID = %s, want %s", s.ID, SchemaID)
	}

	out, err := SchemaJSON()
	if err != nil {
		t.Fatalf("SchemaJSON() error = %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}
	props, ok := doc["properties"].(map[string]any)
	if !ok {
		t.Fatalf("schema has no properties: %s", out)
	}
	for _, key := range []string{"handlers", "connections", "connect", "resolution", "agents"} {
		if _, ok := props[key]; !ok {
			t.Errorf("schema missing property %q", key)
		}
	}

	connect := props["connect"].(map[string]any)["properties"].(map[string]any)
	timeout := connect["timeout"].(map[string]any)
	if timeout["type"] != "string" {
		t.Errorf("connect.timeout type = %v, want string", timeout["type"])
	}
}
