// Package strategy decides which licence condition applies to a restocking
// operation and renders its text. Each Strategy owns a family of restocking
// proposal types; operations owned by no strategy produce no condition.
package strategy

import (
	"errors"
	"fmt"

	"fellinglicence/internal/conditions/models"
	dErrors "fellinglicence/pkg/domain-errors"
)

// ErrOwnershipViolation means a strategy was handed an operation it does not own.
var ErrOwnershipViolation = errors.New("operation not owned by strategy")

// Strategy is one restocking proposal family.
type Strategy interface {
	Name() string
	AppliesToOperation(op models.RestockingOperation) bool
	CalculateCondition(ops []models.RestockingOperation) ([]models.CalculatedCondition, error)
}

// proposalStrategy implements Strategy for a fixed set of proposal types.
type proposalStrategy struct {
	name     string
	owns     map[models.RestockingProposalType]struct{}
	template Template
	grouper  *Grouper
	// regeneration, when set, replaces the natural regeneration summary.
	regeneration string
}

func newProposalStrategy(name string, tmpl Template, regeneration string, owns ...models.RestockingProposalType) proposalStrategy {
	set := make(map[models.RestockingProposalType]struct{}, len(owns))
	for _, t := range owns {
		set[t] = struct{}{}
	}
	return proposalStrategy{
		name:         name,
		owns:         set,
		template:     tmpl,
		grouper:      NewGrouper(DefaultKey),
		regeneration: regeneration,
	}
}

func (s proposalStrategy) Name() string { return s.name }

func (s proposalStrategy) AppliesToOperation(op models.RestockingOperation) bool {
	_, ok := s.owns[op.RestockingProposalType]
	return ok
}

// CalculateCondition groups ops into equivalence classes and renders one
// condition per class. Every op must already be owned by this strategy.
func (s proposalStrategy) CalculateCondition(ops []models.RestockingOperation) ([]models.CalculatedCondition, error) {
	for _, op := range ops {
		if !s.AppliesToOperation(op) {
			return nil, dErrors.Wrap(ErrOwnershipViolation, dErrors.CodeInternal,
				fmt.Sprintf("%s strategy cannot calculate %s for compartment %s",
					s.name, op.RestockingProposalType, op.RestockingCompartmentName()))
		}
	}

	groups := s.grouper.Group(ops)
	conditions := make([]models.CalculatedCondition, 0, len(groups))
	for _, group := range groups {
		condition, err := renderGroup(s.template, group, s.regeneration)
		if err != nil {
			return nil, fmt.Errorf("%s strategy: %w", s.name, err)
		}
		conditions = append(conditions, condition)
	}
	return conditions, nil
}

// Planting covers every proposal that restocks by planting trees.
type Planting struct{ proposalStrategy }

func NewPlanting(tmpl Template) *Planting {
	return &Planting{newProposalStrategy("planting", tmpl, "",
		models.RestockingProposalPlantAnAlternativeArea,
		models.RestockingProposalPlantAlternativeAreaWithIndividualTrees,
		models.RestockingProposalReplantTheFelledArea,
		models.RestockingProposalRestockWithIndividualTrees,
	)}
}

// NaturalRegeneration covers restock-by-natural-regeneration.
type NaturalRegeneration struct{ proposalStrategy }

func NewNaturalRegeneration(tmpl Template) *NaturalRegeneration {
	return &NaturalRegeneration{newProposalStrategy("natural_regeneration", tmpl, "",
		models.RestockingProposalRestockByNaturalRegeneration,
	)}
}

// CoppiceRegrowth covers restock-with-coppice-regrowth. Its regeneration
// summary is always the fixed coppice wording.
type CoppiceRegrowth struct{ proposalStrategy }

func NewCoppiceRegrowth(tmpl Template) *CoppiceRegrowth {
	return &CoppiceRegrowth{newProposalStrategy("coppice_regrowth", tmpl, coppiceRegrowthText,
		models.RestockingProposalRestockWithCoppiceRegrowth,
	)}
}

// DefaultStrategies returns the configured strategies in evaluation order.
func DefaultStrategies(templates Templates) []Strategy {
	return []Strategy{
		NewPlanting(templates[KeyPlanting]),
		NewNaturalRegeneration(templates[KeyNaturalRegeneration]),
		NewCoppiceRegrowth(templates[KeyCoppiceRegrowth]),
	}
}
