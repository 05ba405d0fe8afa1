// Package schema derives JSON Schemas from Go parameter structs and validates
// loosely typed tool input against them before it is decoded.
//
// Schemas are strict: unknown properties are rejected and required fields are
// declared with `jsonschema:"required"` tags. Field documentation comes from
// `jsonschema_description` tags so the same text reaches every host framework.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	jsv "github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const resourceName = "params.json"

var printer = message.NewPrinter(language.English)

// Schema is a compiled parameter contract for one operation.
type Schema struct {
	name     string
	document map[string]any
	compiled *jsv.Schema
}

// For reflects T into a compiled schema. T must be a struct type.
func For[T any]() (*Schema, error) {
	var zero T
	typ := reflect.TypeOf(zero)
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: %T is not a struct", zero)
	}
	reflector := jsonschema.Reflector{
		Anonymous:                  true,
		DoNotReference:             true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		RequiredFromJSONSchemaTags: true,
	}
	raw, err := json.Marshal(reflector.Reflect(&zero))
	if err != nil {
		return nil, fmt.Errorf("schema: marshal %s: %w", typ.Name(), err)
	}
	return FromJSON(typ.Name(), raw)
}

// MustFor is For for package-level schema variables.
func MustFor[T any]() *Schema {
	s, err := For[T]()
	if err != nil {
		panic(err)
	}
	return s
}

// FromJSON compiles a hand written schema document.
func FromJSON(name string, raw []byte) (*Schema, error) {
	var document map[string]any
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, fmt.Errorf("schema: decode %s: %w", name, err)
	}
	doc, err := jsv.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("schema: decode %s: %w", name, err)
	}
	c := jsv.NewCompiler()
	if err := c.AddResource(resourceName, doc); err != nil {
		return nil, fmt.Errorf("schema: add %s: %w", name, err)
	}
	compiled, err := c.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("schema: compile %s: %w", name, err)
	}
	return &Schema{name: name, document: document, compiled: compiled}, nil
}

// Name returns the Go type name the schema was derived from.
func (s *Schema) Name() string { return s.name }

// Map returns a copy of the schema document without the meta keywords, in the
// shape MCP and function-calling hosts expect for an input schema.
func (s *Schema) Map() map[string]any {
	out := make(map[string]any, len(s.document))
	for k, v := range s.document {
		if k == "$schema" || k == "$id" {
			continue
		}
		out[k] = v
	}
	if _, ok := out["type"]; !ok {
		out["type"] = "object"
	}
	return out
}

// MarshalJSON renders the host-facing document.
func (s *Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Map())
}

// Validate checks raw against the schema. Empty input and JSON null are
// treated as an empty object.
func (s *Schema) Validate(raw json.RawMessage) error {
	raw = normalizeEmpty(raw)
	inst, err := jsv.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &ValidationError{Issues: []string{"parameters are not valid JSON: " + err.Error()}}
	}
	if err := s.compiled.Validate(inst); err != nil {
		var verr *jsv.ValidationError
		if errors.As(err, &verr) {
			return &ValidationError{Issues: collectIssues(verr)}
		}
		return &ValidationError{Issues: []string{err.Error()}}
	}
	return nil
}

// Decode validates raw and decodes it into a fresh T. Fields that are absent
// from raw keep their zero value, so optional fields should be pointers.
func Decode[T any](s *Schema, raw json.RawMessage) (T, error) {
	var out T
	if err := s.Validate(raw); err != nil {
		return out, err
	}
	dec := json.NewDecoder(bytes.NewReader(normalizeEmpty(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, &ValidationError{Issues: []string{err.Error()}}
	}
	return out, nil
}

func normalizeEmpty(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return json.RawMessage("{}")
	}
	return trimmed
}

// ValidationError lists every schema violation found in one input.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "invalid parameters: " + strings.Join(e.Issues, "; ")
}

func collectIssues(verr *jsv.ValidationError) []string {
	var issues []string
	var walk func(*jsv.ValidationError)
	walk = func(v *jsv.ValidationError) {
		if len(v.Causes) == 0 {
			location := "/" + strings.Join(v.InstanceLocation, "/")
			issues = append(issues, fmt.Sprintf("%s: %s", location, v.ErrorKind.LocalizedString(printer)))
			return
		}
		for _, cause := range v.Causes {
			walk(cause)
		}
	}
	walk(verr)
	if len(issues) == 0 {
		issues = append(issues, verr.Error())
	}
	return issues
}
