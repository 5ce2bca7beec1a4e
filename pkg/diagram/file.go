package diagram

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format identifies a diagram file encoding.
type Format int

const (
	FormatUnknown Format = iota
	FormatJSON
	FormatYAML
)

// FormatFor returns the encoding implied by a file name's extension.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatUnknown
}

// Parse decodes data in the given format.
func Parse(data []byte, f Format) (*Diagram, error) {
	switch f {
	case FormatJSON:
		return ParseJSON(data)
	case FormatYAML:
		return ParseYAML(data)
	}
	return nil, fmt.Errorf("unknown diagram format")
}

// Encode encodes d in the given format. JSON output is indented.
func Encode(d *Diagram, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return ToJSON(d, true)
	case FormatYAML:
		return ToYAML(d)
	}
	return nil, fmt.Errorf("unknown diagram format")
}

// ReadFile loads a diagram, choosing the codec from the extension.
func ReadFile(path string) (*Diagram, error) {
	f := FormatFor(path)
	if f == FormatUnknown {
		return nil, fmt.Errorf("%s: unsupported extension %q", path, filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := Parse(data, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// WriteFile saves a diagram, choosing the codec from the extension.
func WriteFile(path string, d *Diagram) error {
	f := FormatFor(path)
	if f == FormatUnknown {
		return fmt.Errorf("%s: unsupported extension %q", path, filepath.Ext(path))
	}
	data, err := Encode(d, f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
