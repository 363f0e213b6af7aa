package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// CategoryGroup is one top-level entry of a use-case source file.
type CategoryGroup struct {
	Name     string
	UseCases []UseCase
}

// Catalog is the ordered mapping of category name to use cases read from a
// use-case source file. Category order follows the document.
type Catalog struct {
	Groups []CategoryGroup
}

// Len returns the total number of use cases across all categories.
func (c Catalog) Len() int {
	n := 0
	for _, g := range c.Groups {
		n += len(g.UseCases)
	}
	return n
}

// Categories returns category names in document order.
func (c Catalog) Categories() []string {
	names := make([]string, 0, len(c.Groups))
	for _, g := range c.Groups {
		names = append(names, g.Name)
	}
	return names
}

// set replaces an existing category in place or appends a new one.
func (c *Catalog) set(name string, cases []UseCase) {
	if cases == nil {
		cases = []UseCase{}
	}
	for i := range c.Groups {
		if c.Groups[i].Name == name {
			c.Groups[i].UseCases = cases
			return
		}
	}
	c.Groups = append(c.Groups, CategoryGroup{Name: name, UseCases: cases})
}

// MarshalJSON encodes the catalog as a JSON object preserving category order.
func (c Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, g := range c.Groups {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(g.Name)
		if err != nil {
			return nil, err
		}
		cases := g.UseCases
		if cases == nil {
			cases = []UseCase{}
		}
		val, err := json.Marshal(cases)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object of category -> use-case list, keeping key order.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	parsed, err := ParseCatalog(data)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCatalog decodes a JSON use-case document. The top level must be an
// object whose values are arrays of use cases. A repeated category keeps its
// first position and its last value.
func ParseCatalog(data []byte) (Catalog, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to parse use cases: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return Catalog{}, fmt.Errorf("failed to parse use cases: top level must be an object of category -> use cases")
	}

	var cat Catalog
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Catalog{}, fmt.Errorf("failed to parse use cases: %w", err)
		}
		name, ok := keyTok.(string)
		if !ok {
			return Catalog{}, fmt.Errorf("failed to parse use cases: unexpected token %v", keyTok)
		}
		var cases []UseCase
		if err := dec.Decode(&cases); err != nil {
			return Catalog{}, fmt.Errorf("failed to parse use cases for category %q: %w", name, err)
		}
		cat.set(name, cases)
	}

	if _, err := dec.Token(); err != nil {
		return Catalog{}, fmt.Errorf("failed to parse use cases: %w", err)
	}
	if _, err := dec.Token(); err == nil {
		return Catalog{}, fmt.Errorf("failed to parse use cases: trailing data after document")
	}
	return cat, nil
}

// ParseCatalogYAML decodes a YAML use-case document with the same shape as
// the JSON form.
func ParseCatalogYAML(data []byte) (Catalog, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Catalog{}, fmt.Errorf("failed to parse use cases: %w", err)
	}
	if len(root.Content) == 0 {
		return Catalog{}, nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return Catalog{}, fmt.Errorf("failed to parse use cases: top level must be a mapping of category -> use cases")
	}

	var cat Catalog
	for i := 0; i+1 < len(doc.Content); i += 2 {
		name := doc.Content[i].Value
		var cases []UseCase
		if err := doc.Content[i+1].Decode(&cases); err != nil {
			return Catalog{}, fmt.Errorf("failed to parse use cases for category %q: %w", name, err)
		}
		cat.set(name, cases)
	}
	return cat, nil
}

// LoadCatalog reads a use-case source file. Files ending in .yaml or .yml are
// decoded as YAML; everything else as JSON.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to read use cases: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseCatalogYAML(data)
	default:
		return ParseCatalog(data)
	}
}
