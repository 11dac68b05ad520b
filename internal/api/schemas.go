// internal/api/schemas.go
package api

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"

	commonerrors "candidate-pipeline/internal/common/errors"
)

// JSON request bodies are validated against these schemas before binding, so
// malformed payloads fail with a precise message instead of a zero-valued
// struct slipping through.

const evaluationRequestSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["roleId"],
	"additionalProperties": false,
	"properties": {
		"roleId": {"type": "string", "minLength": 1},
		"applicantIds": {
			"type": "array",
			"items": {"type": "string", "minLength": 1}
		}
	}
}`

const statusUpdateSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["status"],
	"additionalProperties": false,
	"properties": {
		"status": {
			"type": "string",
			"enum": ["submitted", "reviewed", "interviewing", "hired", "rejected"]
		}
	}
}`

var (
	evaluationRequestLoader = gojsonschema.NewStringLoader(evaluationRequestSchema)
	statusUpdateLoader      = gojsonschema.NewStringLoader(statusUpdateSchema)
)

func validateAgainst(schema gojsonschema.JSONLoader, body []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return commonerrors.NewValidationError("request body is not valid JSON")
	}
	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		details = append(details, e.String())
	}
	return commonerrors.NewValidationError(strings.Join(details, "; "))
}
