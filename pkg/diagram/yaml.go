package diagram

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseYAML parses and validates a diagram from YAML.
func ParseYAML(data []byte) (*Diagram, error) {
	var f fileDiagram
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	d := fromFile(f)
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// ToYAML encodes a diagram as YAML with two-space indentation.
func ToYAML(d *Diagram) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toFile(d)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
