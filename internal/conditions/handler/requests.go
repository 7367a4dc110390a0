package handler

import (
	"fmt"
	"strings"

	"fellinglicence/internal/conditions/models"
	id "fellinglicence/pkg/domain"
	dErrors "fellinglicence/pkg/domain-errors"
)

const (
	maxOperations = 500
	maxSpecies    = 50
)

// CalculateRequest is the HTTP request body for
// POST /applications/{applicationID}/conditions/calculate.
type CalculateRequest struct {
	Operations []OperationRequest `json:"operations"`

	parsed []models.RestockingOperation
}

type OperationRequest struct {
	RestockingCompartmentID      string           `json:"restocking_compartment_id"`
	RestockingCompartmentNumber  string           `json:"restocking_compartment_number"`
	RestockingSubCompartmentName string           `json:"restocking_sub_compartment_name"`
	FellingCompartmentNumber     string           `json:"felling_compartment_number"`
	FellingSubCompartmentName    string           `json:"felling_sub_compartment_name"`
	FellingOperationType         string           `json:"felling_operation_type"`
	RestockingProposalType       string           `json:"restocking_proposal_type"`
	RestockingDensity            float64          `json:"restocking_density"`
	PercentOpenSpace             float64          `json:"percent_open_space"`
	PercentNaturalRegeneration   float64          `json:"percent_natural_regeneration"`
	TotalRestockingArea          float64          `json:"total_restocking_area"`
	Species                      []SpeciesRequest `json:"species"`
}

// SpeciesRequest carries only the code; display names come from the catalog.
type SpeciesRequest struct {
	Code       string  `json:"code"`
	Percentage float64 `json:"percentage"`
}

// Validate parses the body into restocking operations.
// Implements httputil.Validatable.
func (r *CalculateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Operations) > maxOperations {
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("at most %d operations are allowed", maxOperations))
	}

	r.parsed = make([]models.RestockingOperation, 0, len(r.Operations))
	for i, o := range r.Operations {
		op, err := o.toModel()
		if err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("operations[%d]: %v", i, err))
		}
		r.parsed = append(r.parsed, op)
	}
	return nil
}

// ParsedOperations returns the validated operations.
func (r *CalculateRequest) ParsedOperations() []models.RestockingOperation {
	return r.parsed
}

func (o OperationRequest) toModel() (models.RestockingOperation, error) {
	compartmentID, err := id.ParseCompartmentID(strings.TrimSpace(o.RestockingCompartmentID))
	if err != nil {
		return models.RestockingOperation{}, err
	}
	if len(o.Species) > maxSpecies {
		return models.RestockingOperation{}, fmt.Errorf("at most %d species are allowed", maxSpecies)
	}

	op := models.RestockingOperation{
		RestockingCompartmentID:      compartmentID,
		RestockingCompartmentNumber:  strings.TrimSpace(o.RestockingCompartmentNumber),
		RestockingSubCompartmentName: strings.TrimSpace(o.RestockingSubCompartmentName),
		FellingCompartmentNumber:     strings.TrimSpace(o.FellingCompartmentNumber),
		FellingSubCompartmentName:    strings.TrimSpace(o.FellingSubCompartmentName),
		FellingOperationType:         models.FellingOperationType(strings.TrimSpace(o.FellingOperationType)),
		RestockingProposalType:       models.RestockingProposalType(strings.TrimSpace(o.RestockingProposalType)),
		RestockingDensity:            o.RestockingDensity,
		PercentOpenSpace:             o.PercentOpenSpace,
		PercentNaturalRegeneration:   o.PercentNaturalRegeneration,
		TotalRestockingArea:          o.TotalRestockingArea,
	}
	if op.RestockingCompartmentNumber == "" {
		return models.RestockingOperation{}, fmt.Errorf("restocking_compartment_number is required")
	}
	for _, s := range o.Species {
		op.Species = append(op.Species, models.RestockingSpecies{
			Code:       strings.ToUpper(strings.TrimSpace(s.Code)),
			Percentage: s.Percentage,
		})
	}
	if err := op.Validate(); err != nil {
		return models.RestockingOperation{}, err
	}
	return op, nil
}
