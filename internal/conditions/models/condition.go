package models

import (
	"time"

	id "fellinglicence/pkg/domain"
)

// ConditionParameter is one input behind a rendered condition. Parameters
// derived from the operations are keyed by placeholder name ("species",
// "density", ...) and carry a Value. Positional parameters declared by a
// template are keyed by their index ("0", "1") and carry only a DefaultValue
// until a reviewer fills them in.
type ConditionParameter struct {
	Key          string  `json:"key"`
	Value        *string `json:"value,omitempty"`
	DefaultValue string  `json:"default_value,omitempty"`
	Description  string  `json:"description"`
}

// CalculatedCondition is one licence condition covering one or more
// restocking compartments whose operations were found equivalent.
type CalculatedCondition struct {
	AppliesToCompartmentIDs []id.CompartmentID
	ConditionName           string
	ConditionsText          []string
	Parameters              []ConditionParameter
}

// ConditionsResult is the outcome of a calculation or a retrieval.
type ConditionsResult struct {
	Conditions []CalculatedCondition
}

// ConditionRecord is the persisted form of a CalculatedCondition.
type ConditionRecord struct {
	ID                      id.ConditionID
	ApplicationID           id.ApplicationID
	AppliesToCompartmentIDs []id.CompartmentID
	ConditionName           string
	ConditionsText          []string
	Parameters              []ConditionParameter
	CreatedAt               time.Time
}

// NewConditionRecord builds a record for persistence.
func NewConditionRecord(applicationID id.ApplicationID, c CalculatedCondition, now time.Time) ConditionRecord {
	return ConditionRecord{
		ID:                      id.NewConditionID(),
		ApplicationID:           applicationID,
		AppliesToCompartmentIDs: append([]id.CompartmentID(nil), c.AppliesToCompartmentIDs...),
		ConditionName:           c.ConditionName,
		ConditionsText:          append([]string(nil), c.ConditionsText...),
		Parameters:              append([]ConditionParameter(nil), c.Parameters...),
		CreatedAt:               now,
	}
}

// ToCondition maps a persisted record back to the calculated shape.
func (r ConditionRecord) ToCondition() CalculatedCondition {
	return CalculatedCondition{
		AppliesToCompartmentIDs: r.AppliesToCompartmentIDs,
		ConditionName:           r.ConditionName,
		ConditionsText:          r.ConditionsText,
		Parameters:              r.Parameters,
	}
}
