// Package schemas provides JSON Schema validation for payloads accepted by the API.
package schemas

import (
	"fmt"
	"strings"
	"sync"

	rootschemas "github.com/jonathan/profile-bff/schemas"
	"github.com/xeipuuv/gojsonschema"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError is one schema violation. Field is the dotted path into the
// payload, "(root)" for the document itself; Rule is the failed keyword
// such as "enum" or "required".
type FieldError struct {
	Field   string
	Rule    string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	parts := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var (
	profileUpdateOnce   sync.Once
	profileUpdateSchema *gojsonschema.Schema
	profileUpdateErr    error
)

// compiledProfileUpdate compiles the embedded profile update schema once.
func compiledProfileUpdate() (*gojsonschema.Schema, error) {
	profileUpdateOnce.Do(func() {
		data, err := rootschemas.Load(rootschemas.ProfileUpdate)
		if err != nil {
			profileUpdateErr = &SchemaLoadError{Path: rootschemas.ProfileUpdate, Message: "schema not embedded", Cause: err}
			return
		}
		profileUpdateSchema, err = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			profileUpdateErr = &SchemaLoadError{Path: rootschemas.ProfileUpdate, Message: "schema does not compile", Cause: err}
		}
	})
	return profileUpdateSchema, profileUpdateErr
}

// ValidateProfileUpdate validates a profile update payload against the embedded schema.
func ValidateProfileUpdate(doc []byte) error {
	schema, err := compiledProfileUpdate()
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		// The schema is known good, so a failure here means the document is not JSON.
		return &ValidationError{Errors: []FieldError{{Field: "(root)", Rule: "json", Message: "invalid JSON: " + err.Error()}}}
	}
	return toValidationError(result)
}

func toValidationError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	fields := make([]FieldError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		fields = append(fields, FieldError{Field: field, Rule: desc.Type(), Message: desc.Description()})
	}
	return &ValidationError{Errors: fields}
}
