// ABOUTME: Input validation for API request bodies and path parameters
// ABOUTME: JSON Schema validation with cached compiled schemas, reported as per-field errors

package services

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/markalston/agent-dashboard/models"
)

// idPattern matches task and notification ids accepted in URL paths.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.:-]{0,127}$`)

// sanitizeForLog removes control characters from strings to prevent log injection
// when including user input in error messages
func sanitizeForLog(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}

// ValidateID validates that a path id has a safe format.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("invalid id format: %s", sanitizeForLog(id))
	}
	return nil
}

// SchemaValidator validates JSON documents against JSON schemas.
type SchemaValidator struct {
	schemaCache *lru.Cache[string, *jsonschema.Schema]
	printer     *message.Printer
}

// NewSchemaValidator creates a validator with LRU caching for compiled schemas.
func NewSchemaValidator(cacheSize int) (*SchemaValidator, error) {
	cache, err := lru.New[string, *jsonschema.Schema](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create schema cache: %w", err)
	}
	return &SchemaValidator{
		schemaCache: cache,
		printer:     message.NewPrinter(language.English),
	}, nil
}

// Validate checks body against schemaJSON. A non-empty slice means the document
// is invalid; an error means the schema itself is broken. An empty body is
// validated as an empty object.
func (v *SchemaValidator) Validate(schemaJSON string, body []byte) ([]models.FieldError, error) {
	schema, err := v.schema(schemaJSON)
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return []models.FieldError{{Path: "", Message: "Invalid JSON body"}}, nil
	}

	err = schema.Validate(doc)
	if err == nil {
		return nil, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("validate document: %w", err)
	}

	details := v.fieldErrors(ve, nil)
	sort.SliceStable(details, func(i, j int) bool {
		return details[i].Path < details[j].Path
	})
	return details, nil
}

// Precompile compiles and caches a schema so broken schemas fail at startup.
func (v *SchemaValidator) Precompile(schemaJSON string) error {
	_, err := v.schema(schemaJSON)
	return err
}

func (v *SchemaValidator) schema(schemaJSON string) (*jsonschema.Schema, error) {
	if cached, found := v.schemaCache.Get(schemaJSON); found {
		return cached, nil
	}
	schema, err := compileSchema(schemaJSON)
	if err != nil {
		return nil, err
	}
	v.schemaCache.Add(schemaJSON, schema)
	return schema, nil
}

// compileSchema compiles a JSON schema string into a schema object
func compileSchema(schemaJSON string) (*jsonschema.Schema, error) {
	parsed, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse schema JSON: %w", err)
	}

	// A compiler per schema keeps resource URLs from colliding.
	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft2020)

	const schemaURL = "body.json"
	if err := compiler.AddResource(schemaURL, parsed); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}

	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// fieldErrors flattens the leaves of a validation error tree.
func (v *SchemaValidator) fieldErrors(ve *jsonschema.ValidationError, out []models.FieldError) []models.FieldError {
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			out = v.fieldErrors(cause, out)
		}
		return out
	}

	switch k := ve.ErrorKind.(type) {
	case *kind.Required:
		for _, missing := range k.Missing {
			out = append(out, models.FieldError{
				Path:    joinPath(ve.InstanceLocation, missing),
				Message: "Required",
			})
		}
	case *kind.AdditionalProperties:
		for _, prop := range k.Properties {
			out = append(out, models.FieldError{
				Path:    joinPath(ve.InstanceLocation, prop),
				Message: "Unrecognized field",
			})
		}
	default:
		out = append(out, models.FieldError{
			Path:    joinPath(ve.InstanceLocation),
			Message: ve.ErrorKind.LocalizedString(v.printer),
		})
	}
	return out
}

// joinPath builds a dot path from an instance location (["items","0"] -> "items.0").
func joinPath(location []string, extra ...string) string {
	parts := make([]string, 0, len(location)+len(extra))
	for _, part := range append(append([]string{}, location...), extra...) {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ".")
}
