package spec

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const requestSchema = `{
  "type": "object",
  "required": ["Method", "Endpoint"],
  "properties": {
    "Name": {"type": "string"},
    "Method": {
      "type": "string",
      "pattern": "^((?i)(GET|POST|PUT|PATCH|DELETE|HEAD|OPTIONS)|\\$\\{.+\\})$"
    },
    "Endpoint": {"type": "string"},
    "Define": {"type": "object"},
    "PathParams": {"type": "object"},
    "QueryParams": {"type": "object"},
    "Headers": {"type": "object"},
    "JsonBody": {},
    "FormParams": {"type": "object"},
    "TextBody": {"type": "string"},
    "MultipartData": {"type": "object"},
    "Status": {
      "oneOf": [
        {"type": "integer", "minimum": 100, "maximum": 599},
        {"type": "string"}
      ]
    },
    "Captures": {"type": "object", "additionalProperties": {"type": "string"}},
    "Asserts": {"type": "object", "additionalProperties": {"type": "string"}},
    "PreExec": {"type": "string"},
    "PostExec": {"type": "string"},
    "Options": {
      "type": "object",
      "properties": {
        "timeout": {"oneOf": [{"type": "number", "minimum": 0}, {"type": "string"}]},
        "insecure": {"oneOf": [{"type": "boolean"}, {"type": "string"}]}
      }
    }
  }
}`

const suiteSchema = `{
  "type": "object",
  "required": ["Requests"],
  "properties": {
    "Name": {"type": "string"},
    "Configs": {"type": "array", "items": {"type": "string"}},
    "Vars": {"type": "object"},
    "DataSources": {
      "oneOf": [
        {"type": "string"},
        {"type": "array", "items": {"type": "string"}}
      ]
    },
    "Requests": {"type": "array", "items": {"type": "string"}, "minItems": 1},
    "Options": {
      "type": "object",
      "properties": {
        "timeout": {"type": "number", "minimum": 0},
        "insecure": {"type": "boolean"},
        "rate": {"type": "number", "minimum": 0}
      }
    },
    "ReportPath": {"type": "string"}
  }
}`

// ValidateRequestDoc checks a parsed request document against the request
// schema. Placeholders are still unresolved at this point, so only structure
// is checked, not values.
func ValidateRequestDoc(doc map[string]any) error {
	return validate(doc, requestSchema)
}

// ValidateSuiteDoc checks a parsed suite document against the suite schema.
func ValidateSuiteDoc(doc map[string]any) error {
	return validate(doc, suiteSchema)
}

func validate(doc map[string]any, schema string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var msgs []string
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
