package strategy

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"fellinglicence/internal/conditions/models"
)

const coppiceRegrowthText = "coppice regrowth"

// rendered holds the values substituted for the recognised tokens.
type rendered struct {
	species      string
	density      string
	compartments string
	regeneration string
}

func (r rendered) value(token string) string {
	switch token {
	case TokenSpecies:
		return r.species
	case TokenDensity:
		return r.density
	case TokenCompartments:
		return r.compartments
	case TokenRegeneration:
		return r.regeneration
	}
	return ""
}

// renderGroup builds the condition for one equivalence group. regeneration
// overrides the natural regeneration text when non-empty.
func renderGroup(tmpl Template, group []models.RestockingOperation, regeneration string) (models.CalculatedCondition, error) {
	if err := tmpl.Validate(); err != nil {
		return models.CalculatedCondition{}, err
	}

	first := group[0]
	values := rendered{
		species:      FormatSpecies(first.Species),
		density:      FormatDensity(first.RestockingDensity),
		compartments: FormatCompartments(group),
		regeneration: regeneration,
	}
	if values.regeneration == "" {
		values.regeneration = FormatNaturalRegeneration(first.PercentNaturalRegeneration)
	}

	text := make([]string, len(tmpl.Segments))
	var params []models.ConditionParameter
	for i, seg := range tmpl.Segments {
		name, ok := recognisedTokens[seg]
		if !ok {
			text[i] = seg
			continue
		}
		v := values.value(seg)
		text[i] = v
		params = append(params, models.ConditionParameter{
			Key:         name,
			Value:       &v,
			Description: tokenDescriptions[seg],
		})
	}
	for _, p := range tmpl.Parameters {
		params = append(params, models.ConditionParameter{
			Key:          strconv.Itoa(p.Index),
			DefaultValue: p.DefaultValue,
			Description:  p.Description,
		})
	}

	return models.CalculatedCondition{
		AppliesToCompartmentIDs: CompartmentIDs(group),
		ConditionName:           tmpl.Name,
		ConditionsText:          text,
		Parameters:              params,
	}, nil
}

var tokenDescriptions = map[string]string{
	TokenSpecies:      "Species mix",
	TokenDensity:      "Restocking density",
	TokenCompartments: "Restocking compartments",
	TokenRegeneration: "Regeneration method",
}

// FormatSpecies renders "NN.NN% Name" per species ordered by code. All but the
// last entry are joined with ", " and the last is appended directly with no
// separator; consumers compare this text byte for byte, so the shape is fixed.
func FormatSpecies(species []models.RestockingSpecies) string {
	if len(species) == 0 {
		return ""
	}
	sorted := slices.Clone(species)
	slices.SortStableFunc(sorted, func(a, b models.RestockingSpecies) int {
		return strings.Compare(a.Code, b.Code)
	})

	parts := make([]string, len(sorted))
	for i, s := range sorted {
		parts[i] = fmt.Sprintf("%.2f%% %s", s.Percentage, s.Name)
	}
	last := len(parts) - 1
	return strings.Join(parts[:last], ", ") + parts[last]
}

// FormatDensity renders "{density} stems per Ha" in shortest decimal form.
func FormatDensity(density float64) string {
	return strconv.FormatFloat(density, 'f', -1, 64) + " stems per Ha"
}

// FormatCompartments renders "compartment {number}" from the restocking
// compartment numbers of the group. Sub-compartment names are not part of the
// wording; distinct numbers are listed in first-seen order.
func FormatCompartments(group []models.RestockingOperation) string {
	var numbers []string
	for _, op := range group {
		if !slices.Contains(numbers, op.RestockingCompartmentNumber) {
			numbers = append(numbers, op.RestockingCompartmentNumber)
		}
	}
	return "compartment " + strings.Join(numbers, ", ")
}

// FormatNaturalRegeneration renders "NN.NN% natural regeneration".
func FormatNaturalRegeneration(percent float64) string {
	return fmt.Sprintf("%.2f%% natural regeneration", percent)
}
