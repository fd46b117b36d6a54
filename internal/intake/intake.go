// Package intake decodes public application payloads into applicant records.
package intake

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/lead-intake/pkg/affordability"
	"github.com/iwvelando/lead-intake/pkg/validation"
	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidPayload is wrapped by every error Decode returns.
var ErrInvalidPayload = errors.New("invalid application payload")

//go:embed schema.json
var schemaJSON []byte

var applicationSchema = mustCompileSchema(schemaJSON)

func mustCompileSchema(raw []byte) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("intake: invalid embedded schema: %v", err))
	}
	return schema
}

// PayloadError lists every problem found in a payload.
type PayloadError struct {
	Problems []string
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidPayload, strings.Join(e.Problems, "; "))
}

// Unwrap lets errors.Is match ErrInvalidPayload.
func (e *PayloadError) Unwrap() error {
	return ErrInvalidPayload
}

// Decode validates data against the application schema and maps it to an
// ApplicantRecord. Only the income variant named by income.type is kept;
// omitted numbers decode as zero and omitted flags as false.
func Decode(data []byte) (affordability.ApplicantRecord, error) {
	var record affordability.ApplicantRecord

	result, err := applicationSchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return record, &PayloadError{Problems: []string{fmt.Sprintf("malformed JSON: %v", err)}}
	}
	if !result.Valid() {
		problems := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			problems[i] = desc.String()
		}
		return record, &PayloadError{Problems: problems}
	}

	if err := json.Unmarshal(data, &record); err != nil {
		return record, &PayloadError{Problems: []string{err.Error()}}
	}

	if err := validation.ValidateRequired(record.Personal); err != nil {
		return record, &PayloadError{Problems: []string{err.Error()}}
	}

	return record, nil
}
