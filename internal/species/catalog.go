// Package species holds the species code to display name table. It is loaded
// once at startup and read-only afterwards.
package species

import (
	"fmt"
	"maps"
	"slices"

	"fellinglicence/internal/conditions/models"
	dErrors "fellinglicence/pkg/domain-errors"
)

// Catalog maps species codes to display names.
type Catalog struct {
	names map[string]string
}

// NewCatalog copies entries; later changes to the map do not leak in.
func NewCatalog(entries map[string]string) *Catalog {
	return &Catalog{names: maps.Clone(entries)}
}

func (c *Catalog) Name(code string) (string, bool) {
	if c == nil {
		return "", false
	}
	name, ok := c.names[code]
	return name, ok
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

// Codes returns the catalog codes in sorted order.
func (c *Catalog) Codes() []string {
	if c == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(c.names))
}

// Entries returns a copy of the table.
func (c *Catalog) Entries() map[string]string {
	if c == nil {
		return map[string]string{}
	}
	return maps.Clone(c.names)
}

// PrepareOperations returns copies of ops with each species display name
// taken from the catalog. The input slice and its species lists are left
// untouched. An unknown code is an input error.
func PrepareOperations(ops []models.RestockingOperation, catalog *Catalog) ([]models.RestockingOperation, error) {
	out := make([]models.RestockingOperation, len(ops))
	for i, op := range ops {
		species := make([]models.RestockingSpecies, len(op.Species))
		for j, s := range op.Species {
			name, ok := catalog.Name(s.Code)
			if !ok {
				return nil, dErrors.New(dErrors.CodeInvalidInput,
					fmt.Sprintf("unknown species code %q in compartment %s", s.Code, op.RestockingCompartmentName()))
			}
			s.Name = name
			species[j] = s
		}
		op.Species = species
		out[i] = op
	}
	return out, nil
}
