// Package validation checks user-supplied preference payloads against a
// JSON schema before they reach the store.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "vigia/internal/common/errors"
)

const preferencesSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["rent", "condo", "bedrooms", "parkingSpots", "locations"],
  "additionalProperties": false,
  "properties": {
    "userId": {"type": "string"},
    "rent": {"$ref": "#/definitions/priceRange"},
    "condo": {"$ref": "#/definitions/priceRange"},
    "bedrooms": {"type": "integer", "minimum": 0},
    "parkingSpots": {"type": "integer", "minimum": 0},
    "amenities": {
      "type": "array",
      "items": {"type": "string", "minLength": 1}
    },
    "locations": {
      "type": "array",
      "items": {"$ref": "#/definitions/locationRule"}
    }
  },
  "definitions": {
    "priceRange": {
      "type": "object",
      "required": ["min", "max"],
      "additionalProperties": false,
      "properties": {
        "min": {"type": "number", "minimum": 0},
        "max": {"type": "number", "minimum": 0}
      }
    },
    "locationRule": {
      "type": "object",
      "required": ["id", "kind", "target", "maxTime", "travelMode"],
      "additionalProperties": false,
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "kind": {"enum": ["generic", "specific"]},
        "target": {"type": "string", "minLength": 1},
        "maxTime": {"type": "integer", "minimum": 1},
        "travelMode": {"enum": ["driving", "walking", "bicycling"]},
        "departureTime": {
          "type": "string",
          "pattern": "^([01][0-9]|2[0-3]):[0-5][0-9]$"
        }
      }
    }
  }
}`

var compiledSchema = gojsonschema.NewStringLoader(preferencesSchema)

// ValidatePreferences checks a raw preference filter document. Violations
// come back as a single PREFERENCE_VALIDATION_FAILED error listing every
// failed field.
func ValidatePreferences(payload []byte) error {
	result, err := gojsonschema.Validate(compiledSchema, gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return apperrors.NewPreferenceValidationFailed(err.Error())
	}
	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return apperrors.NewPreferenceValidationFailed(strings.Join(details, "; "))
}
