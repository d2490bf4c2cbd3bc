package services

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCatalogMakesSorted(t *testing.T) {
	makes := CatalogMakes()
	assert.NotEmpty(t, makes)
	assert.True(t, sort.StringsAreSorted(makes))
	assert.Contains(t, makes, "Toyota")
	assert.Contains(t, makes, "Ford")
}

func TestCatalogModels(t *testing.T) {
	models := CatalogModels("Toyota")
	assert.NotEmpty(t, models)
	assert.Contains(t, models, "Camry")

	assert.Nil(t, CatalogModels("Yugo"))
}

func TestCatalogYears(t *testing.T) {
	years := CatalogYears()
	assert.NotEmpty(t, years)
	// Newest first, down to the oldest supported model year.
	assert.Equal(t, time.Now().Year()+1, years[0])
	assert.Equal(t, 1990, years[len(years)-1])
}

func TestCatalogHasModel(t *testing.T) {
	assert.True(t, CatalogHasModel("Honda", "Civic"))
	assert.False(t, CatalogHasModel("Honda", "Mustang"))
	assert.False(t, CatalogHasModel("Yugo", "45"))
}
