package strategy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fellinglicence/internal/conditions/models"
	id "fellinglicence/pkg/domain"
	dErrors "fellinglicence/pkg/domain-errors"
)

func operation(proposal models.RestockingProposalType, compartment string) models.RestockingOperation {
	return models.RestockingOperation{
		RestockingCompartmentID:     id.CompartmentID(uuid.New()),
		RestockingCompartmentNumber: compartment,
		FellingCompartmentNumber:    compartment,
		FellingOperationType:        models.FellingOperationClearFelling,
		RestockingProposalType:      proposal,
		RestockingDensity:           2500,
		PercentOpenSpace:            10,
		PercentNaturalRegeneration:  20,
		TotalRestockingArea:         1.5,
		Species: []models.RestockingSpecies{
			{Code: "OAK", Name: "Oak", Percentage: 60},
			{Code: "ASH", Name: "Ash", Percentage: 40},
		},
	}
}

func allProposalTypes() []models.RestockingProposalType {
	return []models.RestockingProposalType{
		models.RestockingProposalNone,
		models.RestockingProposalCreateDesignedOpenGround,
		models.RestockingProposalDoNotIntendToRestock,
		models.RestockingProposalPlantAnAlternativeArea,
		models.RestockingProposalNaturalColonisation,
		models.RestockingProposalPlantAlternativeAreaWithIndividualTrees,
		models.RestockingProposalReplantTheFelledArea,
		models.RestockingProposalRestockByNaturalRegeneration,
		models.RestockingProposalRestockWithCoppiceRegrowth,
		models.RestockingProposalRestockWithIndividualTrees,
	}
}

// =============================================================================
// Ownership
// =============================================================================

func TestAppliesToOperation(t *testing.T) {
	strategies := DefaultStrategies(DefaultTemplates())

	expectedOwner := map[models.RestockingProposalType]string{
		models.RestockingProposalPlantAnAlternativeArea:                  "planting",
		models.RestockingProposalPlantAlternativeAreaWithIndividualTrees: "planting",
		models.RestockingProposalReplantTheFelledArea:                    "planting",
		models.RestockingProposalRestockWithIndividualTrees:              "planting",
		models.RestockingProposalRestockByNaturalRegeneration:            "natural_regeneration",
		models.RestockingProposalRestockWithCoppiceRegrowth:              "coppice_regrowth",
	}

	for _, proposal := range allProposalTypes() {
		t.Run(string(proposal), func(t *testing.T) {
			op := operation(proposal, "1")
			var owners []string
			for _, s := range strategies {
				if s.AppliesToOperation(op) {
					owners = append(owners, s.Name())
				}
			}

			want, owned := expectedOwner[proposal]
			if !owned {
				assert.Empty(t, owners, "no strategy owns %s", proposal)
				return
			}
			assert.Equal(t, []string{want}, owners, "exactly one strategy owns %s", proposal)
		})
	}
}

func TestCalculateCondition_OwnershipViolation(t *testing.T) {
	planting := NewPlanting(DefaultTemplates()[KeyPlanting])

	_, err := planting.CalculateCondition([]models.RestockingOperation{
		operation(models.RestockingProposalReplantTheFelledArea, "1"),
		operation(models.RestockingProposalRestockWithCoppiceRegrowth, "2"),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOwnershipViolation)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	assert.Contains(t, err.Error(), "compartment 2")
}

// =============================================================================
// Rendering
// =============================================================================

func TestFormatSpecies(t *testing.T) {
	t.Run("sorted by code, last appended without separator", func(t *testing.T) {
		got := FormatSpecies([]models.RestockingSpecies{
			{Code: "OAK", Name: "Oak", Percentage: 60.0},
			{Code: "ASH", Name: "Ash", Percentage: 40.0},
		})
		assert.Equal(t, "40.00% Ash60.00% Oak", got)
	})

	t.Run("three species", func(t *testing.T) {
		got := FormatSpecies([]models.RestockingSpecies{
			{Code: "SP", Name: "Scots pine", Percentage: 50},
			{Code: "BI", Name: "Birch", Percentage: 25.5},
			{Code: "OAK", Name: "Oak", Percentage: 24.5},
		})
		assert.Equal(t, "25.50% Birch, 24.50% Oak50.00% Scots pine", got)
	})

	t.Run("single species", func(t *testing.T) {
		got := FormatSpecies([]models.RestockingSpecies{{Code: "OAK", Name: "Oak", Percentage: 100}})
		assert.Equal(t, "100.00% Oak", got)
	})

	t.Run("no species", func(t *testing.T) {
		assert.Equal(t, "", FormatSpecies(nil))
	})

	t.Run("does not reorder the caller's slice", func(t *testing.T) {
		species := []models.RestockingSpecies{
			{Code: "OAK", Name: "Oak", Percentage: 60},
			{Code: "ASH", Name: "Ash", Percentage: 40},
		}
		FormatSpecies(species)
		assert.Equal(t, "OAK", species[0].Code)
	})
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "2500 stems per Ha", FormatDensity(2500))
	assert.Equal(t, "1100.5 stems per Ha", FormatDensity(1100.5))
	assert.Equal(t, "20.00% natural regeneration", FormatNaturalRegeneration(20))
	assert.Equal(t, "7.25% natural regeneration", FormatNaturalRegeneration(7.25))

	a := operation(models.RestockingProposalReplantTheFelledArea, "3")
	a.RestockingSubCompartmentName = "a"
	sibling := operation(models.RestockingProposalReplantTheFelledArea, "3")
	sibling.RestockingSubCompartmentName = "b"
	b := operation(models.RestockingProposalReplantTheFelledArea, "4")
	assert.Equal(t, "compartment 3", FormatCompartments([]models.RestockingOperation{a}),
		"sub-compartment name is not rendered")
	assert.Equal(t, "compartment 3", FormatCompartments([]models.RestockingOperation{a, sibling}))
	assert.Equal(t, "compartment 3, 4", FormatCompartments([]models.RestockingOperation{a, b, sibling}))
}

func TestCalculateCondition_Segments(t *testing.T) {
	templates := DefaultTemplates()

	t.Run("planting renders natural regeneration percentage", func(t *testing.T) {
		op := operation(models.RestockingProposalReplantTheFelledArea, "7")
		conditions, err := NewPlanting(templates[KeyPlanting]).CalculateCondition([]models.RestockingOperation{op})
		require.NoError(t, err)
		require.Len(t, conditions, 1)

		c := conditions[0]
		require.Len(t, c.ConditionsText, 6)
		assert.Equal(t, "40.00% Ash60.00% Oak", c.ConditionsText[0])
		assert.Equal(t, "2500 stems per Ha", c.ConditionsText[1])
		assert.Equal(t, "compartment 7", c.ConditionsText[2])
		assert.Equal(t, "20.00% natural regeneration", c.ConditionsText[3])
		assert.Equal(t, templates[KeyPlanting].Segments[4], c.ConditionsText[4])
		assert.Equal(t, templates[KeyPlanting].Segments[5], c.ConditionsText[5])
		assert.Equal(t, []id.CompartmentID{op.RestockingCompartmentID}, c.AppliesToCompartmentIDs)
		assert.Equal(t, "Restock by planting", c.ConditionName)
	})

	t.Run("coppice renders fixed regeneration wording", func(t *testing.T) {
		op := operation(models.RestockingProposalRestockWithCoppiceRegrowth, "8")
		conditions, err := NewCoppiceRegrowth(templates[KeyCoppiceRegrowth]).CalculateCondition([]models.RestockingOperation{op})
		require.NoError(t, err)
		require.Len(t, conditions, 1)
		assert.Equal(t, "coppice regrowth", conditions[0].ConditionsText[3])
		assert.Contains(t, conditions[0].ConditionsText[4], "{0}", "positional placeholder passes through verbatim")
	})

	t.Run("parameters capture rendered inputs and template defaults", func(t *testing.T) {
		op := operation(models.RestockingProposalRestockByNaturalRegeneration, "9")
		conditions, err := NewNaturalRegeneration(templates[KeyNaturalRegeneration]).CalculateCondition([]models.RestockingOperation{op})
		require.NoError(t, err)
		require.Len(t, conditions, 1)

		params := conditions[0].Parameters
		require.Len(t, params, 5)
		assert.Equal(t, "species", params[0].Key)
		require.NotNil(t, params[0].Value)
		assert.Equal(t, "40.00% Ash60.00% Oak", *params[0].Value)
		assert.Equal(t, "regeneration", params[3].Key)
		assert.Equal(t, "0", params[4].Key)
		assert.Nil(t, params[4].Value)
		assert.Equal(t, "5", params[4].DefaultValue)
	})

	t.Run("empty input yields no conditions", func(t *testing.T) {
		conditions, err := NewPlanting(templates[KeyPlanting]).CalculateCondition(nil)
		require.NoError(t, err)
		assert.Empty(t, conditions)
	})
}

func TestCalculateCondition_MalformedTemplate(t *testing.T) {
	cases := map[string]Template{
		"no segments":          {Name: "broken"},
		"unknown named token":  {Name: "broken", Segments: []string{"{specie}"}},
		"undeclared parameter": {Name: "broken", Segments: []string{TokenSpecies, "within {3} years"}},
	}
	for name, tmpl := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewPlanting(tmpl).CalculateCondition([]models.RestockingOperation{
				operation(models.RestockingProposalReplantTheFelledArea, "1"),
			})
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
		})
	}
}

// =============================================================================
// Merging
// =============================================================================

func TestCalculateCondition_MergesEquivalentOperations(t *testing.T) {
	templates := DefaultTemplates()

	a := operation(models.RestockingProposalReplantTheFelledArea, "1")
	b := operation(models.RestockingProposalReplantTheFelledArea, "2")
	b.Species = []models.RestockingSpecies{a.Species[1], a.Species[0]}
	c := operation(models.RestockingProposalReplantTheFelledArea, "3")

	conditions, err := NewPlanting(templates[KeyPlanting]).CalculateCondition([]models.RestockingOperation{a, b, c})
	require.NoError(t, err)
	require.Len(t, conditions, 1)
	assert.Equal(t,
		[]id.CompartmentID{a.RestockingCompartmentID, b.RestockingCompartmentID, c.RestockingCompartmentID},
		conditions[0].AppliesToCompartmentIDs)
	assert.Equal(t, "compartment 1, 2, 3", conditions[0].ConditionsText[2])
}

func TestCalculateCondition_NaturalRegenerationPercentage(t *testing.T) {
	templates := DefaultTemplates()

	tests := []struct {
		name     string
		proposal models.RestockingProposalType
		strategy Strategy
		want     int
	}{
		{"natural regeneration keeps percentages apart", models.RestockingProposalRestockByNaturalRegeneration,
			NewNaturalRegeneration(templates[KeyNaturalRegeneration]), 2},
		{"planting ignores percentage", models.RestockingProposalPlantAnAlternativeArea,
			NewPlanting(templates[KeyPlanting]), 1},
		{"coppice ignores percentage", models.RestockingProposalRestockWithCoppiceRegrowth,
			NewCoppiceRegrowth(templates[KeyCoppiceRegrowth]), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := operation(tt.proposal, "1")
			b := operation(tt.proposal, "2")
			b.PercentNaturalRegeneration = a.PercentNaturalRegeneration + 15

			conditions, err := tt.strategy.CalculateCondition([]models.RestockingOperation{a, b})
			require.NoError(t, err)
			assert.Len(t, conditions, tt.want)
		})
	}
}
