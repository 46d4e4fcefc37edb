package api

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/xeipuuv/gojsonschema"
)

var productSchemaString = `{
	"type": "object",
	"required": ["images", "name", "price", "quantity"],
	"properties": {
		"images": {
			"type": "array",
			"items": { "type": "string" }
		},
		"name": { "type": "string", "minLength": 1 },
		"description": { "type": "string" },
		"price": { "type": ["string", "number"] },
		"quantity": { "type": ["string", "number"] }
	}
}`

var productSchema = gojsonschema.NewStringLoader(productSchemaString)

// validateProductPayload validates the product subdocument against the
// product schema
func validateProductPayload(payload *productPayload) error {
	document, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	result, err := gojsonschema.Validate(productSchema, gojsonschema.NewBytesLoader(document))
	if err != nil {
		return err
	}
	if !result.Valid() {
		return fmt.Errorf("invalid product: %v", result.Errors())
	}
	return nil
}
