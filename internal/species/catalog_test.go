package species

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fellinglicence/internal/conditions/models"
	id "fellinglicence/pkg/domain"
	dErrors "fellinglicence/pkg/domain-errors"
)

func TestCatalog(t *testing.T) {
	entries := map[string]string{"OK": "Oak", "AH": "Ash"}
	catalog := NewCatalog(entries)
	entries["OK"] = "changed"

	name, ok := catalog.Name("OK")
	assert.True(t, ok)
	assert.Equal(t, "Oak", name, "catalog is isolated from the source map")
	_, ok = catalog.Name("ZZ")
	assert.False(t, ok)
	assert.Equal(t, []string{"AH", "OK"}, catalog.Codes())
	assert.Equal(t, 2, catalog.Len())

	var empty *Catalog
	assert.Zero(t, empty.Len())
	_, ok = empty.Name("OK")
	assert.False(t, ok)
}

func TestPrepareOperations(t *testing.T) {
	catalog := NewCatalog(map[string]string{"OK": "Oak", "AH": "Ash"})
	ops := []models.RestockingOperation{{
		RestockingCompartmentID:     id.CompartmentID(uuid.New()),
		RestockingCompartmentNumber: "4",
		Species: []models.RestockingSpecies{
			{Code: "OK", Percentage: 60},
			{Code: "AH", Name: "stale", Percentage: 40},
		},
	}}

	t.Run("embeds display names without touching input", func(t *testing.T) {
		prepared, err := PrepareOperations(ops, catalog)
		require.NoError(t, err)
		assert.Equal(t, "Oak", prepared[0].Species[0].Name)
		assert.Equal(t, "Ash", prepared[0].Species[1].Name)
		assert.Equal(t, "", ops[0].Species[0].Name)
		assert.Equal(t, "stale", ops[0].Species[1].Name)
	})

	t.Run("unknown code", func(t *testing.T) {
		bad := []models.RestockingOperation{{
			RestockingCompartmentNumber: "7",
			Species:                     []models.RestockingSpecies{{Code: "ZZ", Percentage: 100}},
		}}
		_, err := PrepareOperations(bad, catalog)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		assert.Contains(t, err.Error(), `"ZZ"`)
	})
}

func TestLoad_FallsBackToDefault(t *testing.T) {
	catalog, err := Load(context.Background(), Sources{})
	require.NoError(t, err)
	name, ok := catalog.Name("SS")
	assert.True(t, ok)
	assert.Equal(t, "Sitka spruce", name)
}
