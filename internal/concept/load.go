package concept

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// SupportedMajor is the concept document major version this build reads.
const SupportedMajor = "v1"

// Format is the encoding of a concept document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks a format by file extension. Anything that is not
// .json is read as YAML, which is a superset of JSON anyway.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

//go:embed data/concepts.yaml
var defaultDocument []byte

// Default returns a fresh copy of the concept map bundled with orbit.
func Default() *Node {
	doc, err := Decode(defaultDocument, FormatYAML)
	if err != nil {
		panic(fmt.Sprintf("concept: bundled concept map is invalid: %v", err))
	}
	return doc.Root
}

// Load reads, validates and decodes the concept file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read concepts %s: %w", path, err)
	}
	doc, err := Decode(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("load concepts %s: %w", path, err)
	}
	return doc, nil
}

// Decode parses a concept document. The document is first normalized to
// JSON so both formats go through the same schema check, then its version
// and tree structure are validated.
func Decode(data []byte, format Format) (*Document, error) {
	raw, err := toJSON(data, format)
	if err != nil {
		return nil, err
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if err := validateSchema(generic); err != nil {
		return nil, err
	}

	var doc Document
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	if err := checkVersion(doc.SchemaVersion); err != nil {
		return nil, err
	}
	if err := Validate(doc.Root); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Encode renders doc in the given format.
func Encode(doc *Document, format Format) ([]byte, error) {
	if format == FormatJSON {
		return json.MarshalIndent(doc, "", "  ")
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func checkVersion(v string) error {
	if !semver.IsValid(v) {
		return fmt.Errorf("invalid schemaVersion %q", v)
	}
	if major := semver.Major(v); major != SupportedMajor {
		return fmt.Errorf("unsupported schemaVersion %s (this build reads %s.x.y)", v, SupportedMajor)
	}
	return nil
}

func toJSON(data []byte, format Format) ([]byte, error) {
	if format == FormatJSON {
		return data, nil
	}
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if generic == nil {
		return nil, fmt.Errorf("parse yaml: empty document")
	}
	raw, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("normalize yaml: %w", err)
	}
	return raw, nil
}
