// internal/workers/segmentation/segment-candidates/validation.go
package segmentcandidates

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	commonerrors "talentads-workers/internal/common/errors"
)

// inputSchema constrains the raw process variables before any work starts.
// Strategy names are checked separately so an unknown one surfaces as
// INVALID_STRATEGY rather than a generic input violation.
var inputSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"strategy": map[string]interface{}{
			"type": "string",
		},
		"k": map[string]interface{}{
			"type":    "integer",
			"minimum": 2,
			"maximum": 50,
		},
		"eps": map[string]interface{}{
			"type":             "number",
			"exclusiveMinimum": 0,
		},
		"minPoints": map[string]interface{}{
			"type":    "integer",
			"minimum": 1,
		},
		"requestedBy": map[string]interface{}{
			"type": "string",
		},
	},
}

// ValidateInput checks the unmarshalled process variables against the
// input schema and returns an INVALID_INPUT error listing every violation.
func ValidateInput(variables map[string]interface{}) error {
	schemaLoader := gojsonschema.NewGoLoader(inputSchema)
	documentLoader := gojsonschema.NewGoLoader(variables)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return commonerrors.NewInvalidInputError(fmt.Sprintf("schema validation error: %v", err))
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return commonerrors.NewInvalidInputError(strings.Join(violations, "; "))
}
