package extract

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"

	"github.com/zjrosen/automator/internal/workflow"
)

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
)

// Schema returns the JSON schema of the create_automation parameters,
// reflected from the workflow model. The returned value is shared; do not
// modify it.
func Schema() *jsonschema.Schema {
	schemaOnce.Do(func() {
		r := &jsonschema.Reflector{
			DoNotReference: true,
			ExpandedStruct: true,
		}
		s := r.Reflect(&workflow.Automation{})
		s.Version = ""
		s.ID = ""
		schema = s
	})
	return schema
}

// SchemaJSON returns Schema encoded as indented JSON.
func SchemaJSON() ([]byte, error) {
	return json.MarshalIndent(Schema(), "", "  ")
}

// schemaMap returns the schema as a generic JSON object.
func schemaMap() map[string]any {
	data, err := json.Marshal(Schema())
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]any{}
	}
	return m
}

// geminiSchema converts the schema to the OpenAPI subset Gemini accepts:
// upper-case type names, no additionalProperties, and an explicit empty
// properties object for free-form objects.
func geminiSchema() map[string]any {
	return toGemini(schemaMap())
}

func toGemini(node map[string]any) map[string]any {
	out := make(map[string]any, len(node))
	for k, v := range node {
		switch k {
		case "$schema", "$id", "additionalProperties":
			continue
		case "type":
			if s, ok := v.(string); ok {
				out[k] = strings.ToUpper(s)
				continue
			}
			out[k] = v
		case "properties":
			props, _ := v.(map[string]any)
			converted := make(map[string]any, len(props))
			for name, p := range props {
				if pm, ok := p.(map[string]any); ok {
					converted[name] = toGemini(pm)
				}
			}
			out[k] = converted
		case "items":
			if im, ok := v.(map[string]any); ok {
				out[k] = toGemini(im)
				continue
			}
			out[k] = v
		default:
			out[k] = v
		}
	}
	if out["type"] == "OBJECT" {
		if _, ok := out["properties"]; !ok {
			out["properties"] = map[string]any{}
		}
	}
	return out
}
