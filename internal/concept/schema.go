package concept

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// documentSchema describes a concept file. Structural rules that JSON
// Schema cannot express (unique ids, quiz answers) live in Validate.
const documentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["schemaVersion", "root"],
  "additionalProperties": false,
  "properties": {
    "schemaVersion": {"type": "string", "pattern": "^v[0-9]+\\.[0-9]+\\.[0-9]+$"},
    "root": {"$ref": "#/$defs/node"}
  },
  "$defs": {
    "node": {
      "type": "object",
      "required": ["id", "name"],
      "additionalProperties": false,
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "name": {"type": "string", "minLength": 1},
        "description": {"type": "string"},
        "link": {"type": "string"},
        "isApplication": {"type": "boolean"},
        "quiz": {
          "type": "object",
          "required": ["question", "options", "correctAnswer"],
          "additionalProperties": false,
          "properties": {
            "question": {"type": "string", "minLength": 1},
            "options": {"type": "array", "minItems": 2, "items": {"type": "string"}},
            "correctAnswer": {"type": "string"}
          }
        },
        "children": {"type": "array", "items": {"$ref": "#/$defs/node"}}
      }
    }
  }
}`

const schemaURL = "schema://orbit/concepts.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func documentValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var def any
		if err := json.Unmarshal([]byte(documentSchema), &def); err != nil {
			compileErr = fmt.Errorf("parse concept schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// validateSchema checks a generic decoded document (as produced by
// encoding/json into any) against the concept file schema.
func validateSchema(doc any) error {
	s, err := documentValidator()
	if err != nil {
		return err
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
