// Package intake decodes caller-supplied property attributes.
package intake

import (
	_ "embed"
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "PropertyProspector/internal/errors"
	"PropertyProspector/internal/model"
)

//go:embed attributes.schema.json
var schemaJSON []byte

var attributesSchema = mustSchema(schemaJSON)

func mustSchema(doc []byte) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		panic("intake: invalid attributes schema: " + err.Error())
	}
	return s
}

// DecodeAttributes validates a JSON document against the attributes schema and decodes it.
// Schema violations are reported as one VALIDATION_FAILED error listing every problem.
func DecodeAttributes(data []byte) (model.PropertyAttributes, error) {
	var attrs model.PropertyAttributes

	result, err := attributesSchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return attrs, apperrors.NewValidationError("document", err.Error())
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return attrs, apperrors.NewValidationError("document", strings.Join(problems, "; "))
	}

	if err := json.Unmarshal(data, &attrs); err != nil {
		return attrs, apperrors.NewValidationError("document", err.Error())
	}
	return attrs, nil
}
