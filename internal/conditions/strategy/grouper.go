package strategy

import (
	"slices"
	"strconv"
	"strings"

	"fellinglicence/internal/conditions/models"
	id "fellinglicence/pkg/domain"
)

// EquivalenceKey identifies operations that produce the same condition text.
// It is comparable and used directly as a map key.
type EquivalenceKey struct {
	fellingType      models.FellingOperationType
	proposalType     models.RestockingProposalType
	openSpace        float64
	density          float64
	species          string
	naturalRegen     float64
	withNaturalRegen bool
}

// KeyFunc computes the equivalence key of an operation for one strategy.
type KeyFunc func(op models.RestockingOperation) EquivalenceKey

// DefaultKey compares felling type, open space, the species set, density and
// proposal type. Natural regeneration percentage only takes part for
// restock-by-natural-regeneration, where it is part of the condition wording.
func DefaultKey(op models.RestockingOperation) EquivalenceKey {
	key := EquivalenceKey{
		fellingType:  op.FellingOperationType,
		proposalType: op.RestockingProposalType,
		openSpace:    op.PercentOpenSpace,
		density:      op.RestockingDensity,
		species:      speciesSetKey(op.Species),
	}
	if op.RestockingProposalType == models.RestockingProposalRestockByNaturalRegeneration {
		key.naturalRegen = op.PercentNaturalRegeneration
		key.withNaturalRegen = true
	}
	return key
}

// speciesSetKey is an order-independent encoding of the species composition.
// Repeated identical entries count once.
func speciesSetKey(species []models.RestockingSpecies) string {
	entries := make([]string, len(species))
	for i, s := range species {
		entries[i] = strconv.Quote(s.Code) + "|" + strconv.Quote(s.Name) + "|" +
			strconv.FormatFloat(s.Percentage, 'g', -1, 64)
	}
	slices.Sort(entries)
	return strings.Join(slices.Compact(entries), ";")
}

// Grouper partitions operations into equivalence groups.
type Grouper struct {
	key KeyFunc
}

func NewGrouper(key KeyFunc) *Grouper {
	if key == nil {
		key = DefaultKey
	}
	return &Grouper{key: key}
}

// Group returns non-empty groups in first-seen order; members keep input order.
func (g *Grouper) Group(ops []models.RestockingOperation) [][]models.RestockingOperation {
	index := make(map[EquivalenceKey]int, len(ops))
	var groups [][]models.RestockingOperation
	for _, op := range ops {
		k := g.key(op)
		if i, ok := index[k]; ok {
			groups[i] = append(groups[i], op)
			continue
		}
		index[k] = len(groups)
		groups = append(groups, []models.RestockingOperation{op})
	}
	return groups
}

// CompartmentIDs is the union of the group's restocking compartment ids in
// first-seen order.
func CompartmentIDs(group []models.RestockingOperation) []id.CompartmentID {
	ids := make([]id.CompartmentID, 0, len(group))
	for _, op := range group {
		if !slices.Contains(ids, op.RestockingCompartmentID) {
			ids = append(ids, op.RestockingCompartmentID)
		}
	}
	return ids
}
