package catalog

import (
	"errors"
	"fmt"
)

const (
	CatalogFileName = "CATALOG"
	CurrentFileName = "CURRENT"
	CurrentVersion  = 1
)

// ErrRunsetNotFound is returned when a catalog has no runset with the
// requested name.
var ErrRunsetNotFound = errors.New("runset not found")

// Catalog describes the published runs at one point in time. Catalogs
// are immutable once written; Save publishes a new numbered catalog
// blob and flips the CURRENT pointer to it.
type Catalog struct {
	Version int               `json:"version"`
	ID      uint64            `json:"id"`
	Runsets map[string]Runset `json:"runsets,omitempty"`
}

// Runset is a named family of runs whose intersection forms one
// relation.
type Runset struct {
	Runs []Run `json:"runs"`
}

// Run points at one immutable segment, with the stats a planner needs
// without opening it.
type Run struct {
	Path   string `json:"path"` // Relative to the blob store root
	Count  uint64 `json:"count"`
	MinKey uint64 `json:"min_key"`
	MaxKey uint64 `json:"max_key"`
}

// Runset returns the named runset.
func (c *Catalog) Runset(name string) (Runset, error) {
	rs, ok := c.Runsets[name]
	if !ok {
		return Runset{}, fmt.Errorf("%w: %q", ErrRunsetNotFound, name)
	}
	return rs, nil
}

// AddRun appends a run to the named runset, creating the runset on
// first use.
func (c *Catalog) AddRun(runset string, r Run) {
	if c.Runsets == nil {
		c.Runsets = make(map[string]Runset)
	}
	rs := c.Runsets[runset]
	rs.Runs = append(rs.Runs, r)
	c.Runsets[runset] = rs
}
