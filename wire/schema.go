package wire

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SchemaValidationError reports a parameter record that failed its
// per-method schema.
type SchemaValidationError struct {
	Method  string `json:"method"`
	Details string `json:"details"`
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("schema validation failed for %s: %s", e.Method, e.Details)
}

// Per-method Draft-7 parameter schemas for every recognized view→host
// method. Unknown methods are not listed here; the router answers those
// with method-not-found.
var paramSchemas = map[string]string{
	MethodInitialize: `{
		"type": "object",
		"required": ["protocolVersion", "appInfo", "appCapabilities"],
		"properties": {
			"protocolVersion": {"type": "string"},
			"appInfo": {
				"type": "object",
				"required": ["name", "version"],
				"properties": {
					"name": {"type": "string"},
					"version": {"type": "string"}
				}
			},
			"appCapabilities": {"type": "object"}
		}
	}`,
	MethodInitialized: `{"type": "object"}`,
	MethodOpenLink: `{
		"type": "object",
		"required": ["url"],
		"properties": {"url": {"type": "string", "minLength": 1}}
	}`,
	MethodMessage: `{
		"type": "object",
		"required": ["role", "content"],
		"properties": {"role": {"type": "string", "minLength": 1}}
	}`,
	MethodRequestDisplayMode: `{
		"type": "object",
		"required": ["mode"],
		"properties": {"mode": {"type": "string", "enum": ["inline", "fullscreen", "pip"]}}
	}`,
	MethodUpdateModelContext: `{
		"type": "object",
		"properties": {
			"content": {"type": "array"},
			"structuredContent": {}
		}
	}`,
	MethodSizeChanged: `{
		"type": "object",
		"required": ["width", "height"],
		"properties": {
			"width": {"type": "integer", "minimum": 0},
			"height": {"type": "integer", "minimum": 0}
		}
	}`,
}

var compiledSchemas = compileParamSchemas()

func compileParamSchemas() map[string]*gojsonschema.Schema {
	compiled := make(map[string]*gojsonschema.Schema, len(paramSchemas))
	for method, src := range paramSchemas {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
		if err != nil {
			panic(fmt.Sprintf("invalid builtin schema for %s: %v", method, err))
		}
		compiled[method] = schema
	}
	return compiled
}

// ValidateParams checks an inbound envelope's params against the schema for
// its method. Methods without a registered schema validate trivially.
// A nil params field is validated as an empty object, matching the
// reference protocol where omitted params means {}.
func ValidateParams(env *Envelope) error {
	schema, ok := compiledSchemas[env.Method]
	if !ok {
		return nil
	}

	params := env.Params
	if len(params) == 0 {
		params = []byte("{}")
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(params))
	if err != nil {
		return &SchemaValidationError{Method: env.Method, Details: err.Error()}
	}
	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return &SchemaValidationError{Method: env.Method, Details: strings.Join(details, "; ")}
	}
	return nil
}
