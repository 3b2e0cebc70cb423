package dataset

import (
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/crimescope/pkg/errors"
)

// Taxonomy maps parent categories to their ordered child subcategories.
type Taxonomy struct {
	parents  []string
	children map[string][]string
}

// NewTaxonomy builds a taxonomy from a parent → children map. Parents are
// sorted; child order is preserved.
func NewTaxonomy(m map[string][]string) *Taxonomy {
	t := &Taxonomy{children: make(map[string][]string, len(m))}
	for p, c := range m {
		t.parents = append(t.parents, p)
		t.children[p] = slices.Clone(c)
	}
	sort.Strings(t.parents)
	return t
}

// Parents returns the parent categories in sorted order.
func (t *Taxonomy) Parents() []string {
	if t == nil {
		return nil
	}
	return slices.Clone(t.parents)
}

// Children returns the children of parent in declared order.
func (t *Taxonomy) Children(parent string) []string {
	if t == nil {
		return nil
	}
	return slices.Clone(t.children[parent])
}

// ParentOf returns the first parent listing child.
func (t *Taxonomy) ParentOf(child string) (string, bool) {
	if t == nil {
		return "", false
	}
	for _, p := range t.parents {
		if slices.Contains(t.children[p], child) {
			return p, true
		}
	}
	return "", false
}

// Map returns a copy of the parent → children map.
func (t *Taxonomy) Map() map[string][]string {
	m := make(map[string][]string, len(t.children))
	for p, c := range t.children {
		m[p] = slices.Clone(c)
	}
	return m
}

// DecodeTaxonomy parses a taxonomy resource. Names ending in .yaml or .yml
// are read as YAML, everything else as JSON.
func DecodeTaxonomy(name string, data []byte) (*Taxonomy, error) {
	var m map[string][]string
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrap(errors.ErrCodeDecode, err, "decode taxonomy %s", name)
		}
	default:
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrap(errors.ErrCodeDecode, err, "decode taxonomy %s", name)
		}
	}
	return NewTaxonomy(m), nil
}
