package models

import (
	"fmt"
	"math"

	id "fellinglicence/pkg/domain"
	dErrors "fellinglicence/pkg/domain-errors"
)

// FellingOperationType is the kind of felling the restocking follows.
type FellingOperationType string

const (
	FellingOperationNone                   FellingOperationType = "none"
	FellingOperationClearFelling           FellingOperationType = "clear_felling"
	FellingOperationFellingOfCoppice       FellingOperationType = "felling_of_coppice"
	FellingOperationFellingIndividualTrees FellingOperationType = "felling_individual_trees"
	FellingOperationRegenerationFelling    FellingOperationType = "regeneration_felling"
	FellingOperationThinning               FellingOperationType = "thinning"
)

func (t FellingOperationType) IsValid() bool {
	switch t {
	case FellingOperationNone, FellingOperationClearFelling, FellingOperationFellingOfCoppice,
		FellingOperationFellingIndividualTrees, FellingOperationRegenerationFelling, FellingOperationThinning:
		return true
	}
	return false
}

// RestockingProposalType is how the applicant proposes to restock after felling.
type RestockingProposalType string

const (
	RestockingProposalNone                                    RestockingProposalType = "none"
	RestockingProposalCreateDesignedOpenGround                RestockingProposalType = "create_designed_open_ground"
	RestockingProposalDoNotIntendToRestock                    RestockingProposalType = "do_not_intend_to_restock"
	RestockingProposalPlantAnAlternativeArea                  RestockingProposalType = "plant_an_alternative_area"
	RestockingProposalNaturalColonisation                     RestockingProposalType = "natural_colonisation"
	RestockingProposalPlantAlternativeAreaWithIndividualTrees RestockingProposalType = "plant_an_alternative_area_with_individual_trees"
	RestockingProposalReplantTheFelledArea                    RestockingProposalType = "replant_the_felled_area"
	RestockingProposalRestockByNaturalRegeneration            RestockingProposalType = "restock_by_natural_regeneration"
	RestockingProposalRestockWithCoppiceRegrowth              RestockingProposalType = "restock_with_coppice_regrowth"
	RestockingProposalRestockWithIndividualTrees              RestockingProposalType = "restock_with_individual_trees"
)

func (t RestockingProposalType) IsValid() bool {
	switch t {
	case RestockingProposalNone, RestockingProposalCreateDesignedOpenGround, RestockingProposalDoNotIntendToRestock,
		RestockingProposalPlantAnAlternativeArea, RestockingProposalNaturalColonisation,
		RestockingProposalPlantAlternativeAreaWithIndividualTrees, RestockingProposalReplantTheFelledArea,
		RestockingProposalRestockByNaturalRegeneration, RestockingProposalRestockWithCoppiceRegrowth,
		RestockingProposalRestockWithIndividualTrees:
		return true
	}
	return false
}

// RestockingSpecies is one species line of a restocking proposal.
type RestockingSpecies struct {
	Code       string
	Name       string
	Percentage float64
}

// RestockingOperation is one proposed restocking action tied to a felling
// operation within a submitted compartment. The engine treats it as read-only.
type RestockingOperation struct {
	RestockingCompartmentID      id.CompartmentID
	RestockingCompartmentNumber  string
	RestockingSubCompartmentName string
	FellingCompartmentNumber     string
	FellingSubCompartmentName    string
	FellingOperationType         FellingOperationType
	RestockingProposalType       RestockingProposalType
	RestockingDensity            float64
	PercentOpenSpace             float64
	PercentNaturalRegeneration   float64
	TotalRestockingArea          float64
	Species                      []RestockingSpecies
}

// RestockingCompartmentName is the display name, e.g. "12" + "b" -> "12b".
func (o RestockingOperation) RestockingCompartmentName() string {
	return o.RestockingCompartmentNumber + o.RestockingSubCompartmentName
}

// Validate checks the ranges the engine relies on.
func (o RestockingOperation) Validate() error {
	if o.RestockingCompartmentID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "restocking compartment id is required")
	}
	if !o.FellingOperationType.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("invalid felling operation type: %q", o.FellingOperationType))
	}
	if !o.RestockingProposalType.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("invalid restocking proposal type: %q", o.RestockingProposalType))
	}
	if !isFiniteNonNegative(o.RestockingDensity) {
		return dErrors.New(dErrors.CodeInvalidInput, "restocking density must be a finite, non-negative number")
	}
	if !isFiniteNonNegative(o.TotalRestockingArea) {
		return dErrors.New(dErrors.CodeInvalidInput, "total restocking area must be a finite, non-negative number")
	}
	if !isPercentage(o.PercentOpenSpace) {
		return dErrors.New(dErrors.CodeInvalidInput, "percent open space must be between 0 and 100")
	}
	if !isPercentage(o.PercentNaturalRegeneration) {
		return dErrors.New(dErrors.CodeInvalidInput, "percent natural regeneration must be between 0 and 100")
	}
	for _, s := range o.Species {
		if s.Code == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "species code is required")
		}
		if !isPercentage(s.Percentage) {
			return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("species %s percentage must be between 0 and 100", s.Code))
		}
	}
	return nil
}

// NaN fails every comparison, so it must be ruled out explicitly.
func isFiniteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

func isPercentage(v float64) bool {
	return v >= 0 && v <= 100
}
