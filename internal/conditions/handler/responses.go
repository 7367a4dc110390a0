package handler

import (
	"fellinglicence/internal/conditions/models"
	id "fellinglicence/pkg/domain"
)

// ConditionsResponse is returned by both calculate and retrieve.
type ConditionsResponse struct {
	ApplicationID string              `json:"application_id"`
	Draft         *bool               `json:"draft,omitempty"`
	Conditions    []ConditionResponse `json:"conditions"`
}

type ConditionResponse struct {
	AppliesToCompartmentIDs []string                    `json:"applies_to_compartment_ids"`
	ConditionName           string                      `json:"condition_name"`
	ConditionsText          []string                    `json:"conditions_text"`
	Parameters              []models.ConditionParameter `json:"parameters"`
}

// FromResult maps a service result to the response body.
func FromResult(applicationID id.ApplicationID, result *models.ConditionsResult, draft *bool) ConditionsResponse {
	resp := ConditionsResponse{
		ApplicationID: applicationID.String(),
		Draft:         draft,
		Conditions:    make([]ConditionResponse, 0, len(result.Conditions)),
	}
	for _, c := range result.Conditions {
		ids := make([]string, len(c.AppliesToCompartmentIDs))
		for i, cid := range c.AppliesToCompartmentIDs {
			ids[i] = cid.String()
		}
		params := c.Parameters
		if params == nil {
			params = []models.ConditionParameter{}
		}
		resp.Conditions = append(resp.Conditions, ConditionResponse{
			AppliesToCompartmentIDs: ids,
			ConditionName:           c.ConditionName,
			ConditionsText:          c.ConditionsText,
			Parameters:              params,
		})
	}
	return resp
}
