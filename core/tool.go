package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
)

// ToolDescriptor is a function schema offered to the model service.
type ToolDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

var schemaReflector = &jsonschema.Reflector{
	// the model service rejects "additionalProperties": false
	AllowAdditionalProperties: true,
}

// GetSchema reflects obj, a pointer to a struct, into a JSON schema object.
// Fields whose json tag lacks omitempty are listed as required.
func GetSchema(obj interface{}) (*jsonschema.Schema, error) {
	if reflect.ValueOf(obj).Kind() != reflect.Ptr {
		return nil, errors.New("object must be a pointer")
	}
	pointsToValue := reflect.Indirect(reflect.ValueOf(obj))
	if pointsToValue.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%s not supported as an input", pointsToValue.Kind())
	}

	var schema *jsonschema.Schema
	for _, v := range schemaReflector.Reflect(obj).Definitions {
		schema = v
	}
	if schema == nil {
		return nil, fmt.Errorf("no schema definition for %T", obj)
	}
	return schema, nil
}

// StructToJSONSchema renders the schema of obj as JSON.
func StructToJSONSchema(obj interface{}) ([]byte, error) {
	schema, err := GetSchema(obj)
	if err != nil {
		return nil, err
	}
	return json.Marshal(schema)
}

func ReplaceLabels(template string, replacements map[string]string) string {
	for key, value := range replacements {
		placeholder := "{{" + key + "}}"
		template = strings.ReplaceAll(template, placeholder, value)
	}
	return template
}
