package diagram

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Schema is the JSON Schema for diagram files. YAML documents are checked
// against the same schema.
//
//go:embed diagram.schema.json
var Schema []byte

var schemaLoader = gojsonschema.NewBytesLoader(Schema)

// ErrSchema reports a document that does not match Schema.
var ErrSchema = errors.New("schema violation")

// CheckSchema validates raw file contents against Schema. Unlike Parse it
// rejects unknown fields and wrongly typed values, which the decoders
// would otherwise drop or zero. All violations are listed in the error.
func CheckSchema(data []byte, f Format) error {
	var doc gojsonschema.JSONLoader
	switch f {
	case FormatJSON:
		doc = gojsonschema.NewBytesLoader(data)
	case FormatYAML:
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("parse yaml: %w", err)
		}
		doc = gojsonschema.NewGoLoader(v)
	default:
		return fmt.Errorf("unknown diagram format")
	}

	result, err := gojsonschema.Validate(schemaLoader, doc)
	if err != nil {
		return fmt.Errorf("schema validate: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrSchema, strings.Join(msgs, "; "))
}
