package mcpserver

import (
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/zjrosen/automator/internal/extract"
)

// updateToolSchema is the input schema of update_automation: an index and
// a complete automation in the same shape create_automation produces.
func updateToolSchema() (json.RawMessage, error) {
	props := jsonschema.NewProperties()
	props.Set("index", &jsonschema.Schema{
		Type:        "integer",
		Minimum:     json.Number("0"),
		Description: "Zero-based position as returned by list_automations",
	})
	props.Set("automation", extract.Schema())

	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   []string{"index", "automation"},
	}
	return json.Marshal(schema)
}
