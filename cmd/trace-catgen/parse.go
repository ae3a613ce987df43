package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RawCategoryTable is the category list loaded from YAML.
type RawCategoryTable struct {
	Categories []RawCategory `yaml:"categories"`
}

// RawCategory is one trace category.
type RawCategory struct {
	Name string `yaml:"name"` // "TLS_CIPHER"
	Doc  string `yaml:"doc"`  // completes "CategoryX traces ..."
}

// ParseCategoryTable parses and validates a category table.
func ParseCategoryTable(data []byte) (*RawCategoryTable, error) {
	var table RawCategoryTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parsing category table: %w", err)
	}
	if err := table.validate(); err != nil {
		return nil, err
	}
	return &table, nil
}

// LoadCategoryTable reads and parses a category table file.
func LoadCategoryTable(path string) (*RawCategoryTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseCategoryTable(data)
}

func (t *RawCategoryTable) validate() error {
	if len(t.Categories) == 0 {
		return fmt.Errorf("no categories defined")
	}
	if !strings.EqualFold(t.Categories[0].Name, "ANY") {
		return fmt.Errorf("first category must be ANY, got %q", t.Categories[0].Name)
	}

	seen := make(map[string]int, len(t.Categories))
	goNames := make(map[string]string, len(t.Categories))
	for i, c := range t.Categories {
		if c.Name == "" {
			return fmt.Errorf("category %d: missing name", i)
		}
		if !validName(c.Name) {
			return fmt.Errorf("category %q: name must be upper case letters, digits and underscores", c.Name)
		}
		key := strings.ToUpper(c.Name)
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("category %q: duplicate of category %d", c.Name, prev)
		}
		seen[key] = i

		goName := categoryGoName(c.Name)
		if other, ok := goNames[goName]; ok {
			return fmt.Errorf("categories %q and %q both map to %s", other, c.Name, goName)
		}
		goNames[goName] = c.Name
	}
	return nil
}

func validName(name string) bool {
	if name[0] == '_' || name[len(name)-1] == '_' || strings.Contains(name, "__") {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return name[0] < '0' || name[0] > '9'
}
