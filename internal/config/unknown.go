package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// sections maps top-level keys holding objects to their struct types so
// unknown nested keys can be reported too.
var sections = map[string]reflect.Type{
	"suites":   reflect.TypeOf(SuitesConfig{}),
	"compiler": reflect.TypeOf(CompilerConfig{}),
	"launcher": reflect.TypeOf(LauncherConfig{}),
	"report":   reflect.TypeOf(ReportConfig{}),
}

// detectUnknownFields compares raw JSON with known struct fields.
// Called after a successful parse, so re-parse failures are not expected.
func detectUnknownFields(data []byte) []string {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return []string{"internal: failed to re-parse config for unknown field detection"}
	}

	var warnings []string
	known := getJSONFields(reflect.TypeOf(Config{}))
	for _, key := range sortedKeys(raw) {
		if key == "$schema" {
			continue
		}
		if !known[key] {
			warnings = append(warnings, fmt.Sprintf("unknown field %q at root level (ignored)", key))
			continue
		}
		if typ, ok := sections[key]; ok {
			warnings = append(warnings, checkSection(key, raw[key], typ)...)
		}
	}
	return warnings
}

func checkSection(name string, data json.RawMessage, typ reflect.Type) []string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	var warnings []string
	known := getJSONFields(typ)
	for _, key := range sortedKeys(fields) {
		if !known[key] {
			warnings = append(warnings, fmt.Sprintf("unknown field %q in %s (ignored)", key, name))
		}
	}
	return warnings
}

// getJSONFields returns the set of JSON field names for a struct type.
func getJSONFields(t reflect.Type) map[string]bool {
	fields := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		if name, _, _ := strings.Cut(tag, ","); name != "" {
			fields[name] = true
		}
	}
	return fields
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
