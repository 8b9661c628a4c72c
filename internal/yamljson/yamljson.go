// Package yamljson moves documents between YAML and JSON with gopkg.in/yaml.v2.
package yamljson

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v2"
)

// IsJSON reports whether data looks like a JSON object.
func IsJSON(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimSpace(data), []byte("{"))
}

// ToJSON converts a YAML (or JSON) document into JSON.
func ToJSON(data []byte) ([]byte, error) {
	if IsJSON(data) {
		return data, nil
	}
	var v interface{}
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return json.Marshal(Normalize(v))
}

// ToYAML converts a JSON document into YAML, keeping the key order.
func ToYAML(data []byte) ([]byte, error) {
	var doc yaml.MapSlice
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

// Normalize turns the map[interface{}]interface{} values of yaml.v2 into map[string]interface{}.
func Normalize(v interface{}) interface{} {
	switch t := v.(type) {

	case map[interface{}]interface{}:

		m := make(map[string]interface{}, len(t))
		for k, v := range t {
			m[fmt.Sprint(k)] = Normalize(v)
		}
		return m

	case yaml.MapSlice:

		m := make(map[string]interface{}, len(t))
		for _, item := range t {
			m[fmt.Sprint(item.Key)] = Normalize(item.Value)
		}
		return m

	case []interface{}:

		for i := range t {
			t[i] = Normalize(t[i])
		}
		return t

	}
	return v
}
