package schema

import (
	"encoding/json"
	"io/fs"
	"strings"
	"testing"
)

// TestEmbeddedSchemasAreValidJSON verifies that all embedded schema files are valid JSON objects.
func TestEmbeddedSchemasAreValidJSON(t *testing.T) {
	t.Parallel()

	entries, err := fs.ReadDir(FS, ".")
	if err != nil {
		t.Fatalf("failed to read embedded FS: %v", err)
	}

	schemaCount := 0
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".schema.json") {
			continue
		}
		schemaCount++

		t.Run(entry.Name(), func(t *testing.T) {
			t.Parallel()

			data, err := FS.ReadFile(entry.Name())
			if err != nil {
				t.Fatalf("failed to read %s: %v", entry.Name(), err)
			}

			var v any
			if err := json.Unmarshal(data, &v); err != nil {
				t.Fatalf("%s is not valid JSON: %v", entry.Name(), err)
			}
			obj, ok := v.(map[string]any)
			if !ok {
				t.Fatalf("%s root is not an object", entry.Name())
			}
			if _, ok := obj["properties"]; !ok {
				t.Errorf("%s declares no properties", entry.Name())
			}
		})
	}

	if schemaCount == 0 {
		t.Error("no schema files found in embedded FS")
	}
}

// TestExpectedSchemasExist verifies that all required schema files are embedded.
func TestExpectedSchemasExist(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"config.schema.json", "expectations.schema.json"} {
		if _, err := FS.ReadFile(name); err != nil {
			t.Errorf("schema %s not embedded: %v", name, err)
		}
	}
}
