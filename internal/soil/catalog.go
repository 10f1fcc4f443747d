// SPDX-License-Identifier: Apache-2.0

package soil

import (
	"fmt"
	"maps"
	"slices"
)

// Catalog holds the reference target vector of every depth class.
// It is built once and only handed out as copies.
type Catalog struct {
	targets map[DepthClass]map[ParameterCode]float64
}

// NewCatalog copies targets into a Catalog. The default depth class must be present.
func NewCatalog(targets map[DepthClass]map[ParameterCode]float64) (*Catalog, error) {
	if _, ok := targets[DefaultDepth]; !ok {
		return nil, fmt.Errorf("reference catalog has no targets for default depth %q", DefaultDepth)
	}
	c := &Catalog{targets: make(map[DepthClass]map[ParameterCode]float64, len(targets))}
	for depth, vector := range targets {
		c.targets[depth] = maps.Clone(vector)
	}
	return c, nil
}

// Targets returns the reference vector for depth, falling back to the
// default depth class when depth is unknown.
func (c *Catalog) Targets(depth DepthClass) map[ParameterCode]float64 {
	vector, ok := c.targets[depth]
	if !ok {
		vector = c.targets[DefaultDepth]
	}
	return maps.Clone(vector)
}

// Depths lists the depth classes present in the catalog.
func (c *Catalog) Depths() []DepthClass {
	return slices.Sorted(maps.Keys(c.targets))
}
