package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Column describes a single column of an allowed table.
type Column struct {
	Name        string `yaml:"name" json:"name"`
	Type        string `yaml:"type" json:"type"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Nullable    bool   `yaml:"nullable,omitempty" json:"nullable"`
}

// Table describes an allowed table and its exposed columns.
type Table struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Columns     []Column `yaml:"columns" json:"columns"`
}

// Database groups the allowed tables of one logical database.
type Database struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	Tables      []Table `yaml:"tables" json:"tables"`
}

// Catalog is the full allow-list as declared in the catalog file.
type Catalog struct {
	Databases []Database `yaml:"databases"`
}

// textColumnTypes are the column types eligible for free-text search.
var textColumnTypes = map[string]bool{
	"TEXT":     true,
	"VARCHAR":  true,
	"VARCHAR2": true,
	"CHAR":     true,
	"CLOB":     true,
}

// Load reads and parses a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %q: %w", path, err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %q: %w", path, err)
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog %q: %w", path, err)
	}

	return &c, nil
}

// validate rejects catalogs with missing identifiers or empty tables.
func (c *Catalog) validate() error {
	if len(c.Databases) == 0 {
		return fmt.Errorf("catalog declares no databases")
	}
	for _, db := range c.Databases {
		if db.ID == "" {
			return fmt.Errorf("database without id")
		}
		for _, tbl := range db.Tables {
			if tbl.Name == "" {
				return fmt.Errorf("database %q: table without name", db.ID)
			}
			if len(tbl.Columns) == 0 {
				return fmt.Errorf("database %q: table %q declares no columns", db.ID, tbl.Name)
			}
			for _, col := range tbl.Columns {
				if col.Name == "" {
					return fmt.Errorf("database %q: table %q: column without name", db.ID, tbl.Name)
				}
			}
		}
	}
	return nil
}
