package services

import (
	"sort"
	"time"
)

// vehicleCatalog is the static make/model table behind the booking form's
// cascading vehicle pickers. It only needs to cover what shows up in the
// field; anything else goes in free text on the vehicle record.
var vehicleCatalog = map[string][]string{
	"Chevrolet":  {"Silverado 1500", "Equinox", "Malibu", "Tahoe", "Traverse"},
	"Dodge":      {"Charger", "Challenger", "Durango", "Ram 1500"},
	"Ford":       {"F-150", "Escape", "Explorer", "Focus", "Fusion", "Mustang"},
	"GMC":        {"Sierra 1500", "Terrain", "Acadia", "Yukon"},
	"Honda":      {"Accord", "Civic", "CR-V", "Odyssey", "Pilot"},
	"Hyundai":    {"Elantra", "Sonata", "Santa Fe", "Tucson"},
	"Jeep":       {"Cherokee", "Grand Cherokee", "Wrangler", "Compass"},
	"Kia":        {"Forte", "Optima", "Sorento", "Sportage"},
	"Nissan":     {"Altima", "Maxima", "Rogue", "Sentra", "Titan"},
	"Subaru":     {"Crosstrek", "Forester", "Impreza", "Outback"},
	"Toyota":     {"4Runner", "Camry", "Corolla", "Highlander", "RAV4", "Tacoma", "Tundra"},
	"Volkswagen": {"Golf", "Jetta", "Passat", "Tiguan"},
}

const catalogOldestYear = 1990

// CatalogMakes returns the supported makes, sorted.
func CatalogMakes() []string {
	names := make([]string, 0, len(vehicleCatalog))
	for name := range vehicleCatalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CatalogModels returns the models for a make, or nil when the make is
// unknown.
func CatalogModels(makeName string) []string {
	entries, ok := vehicleCatalog[makeName]
	if !ok {
		return nil
	}
	out := make([]string, len(entries))
	copy(out, entries)
	return out
}

// CatalogYears returns the selectable model years, newest first. Next
// year's models ship mid-year, so the range runs one past the current year.
func CatalogYears() []int {
	newest := time.Now().Year() + 1
	years := make([]int, 0, newest-catalogOldestYear+1)
	for y := newest; y >= catalogOldestYear; y-- {
		years = append(years, y)
	}
	return years
}

// CatalogHasModel reports whether make/model is a known catalog pair.
func CatalogHasModel(makeName, model string) bool {
	for _, m := range vehicleCatalog[makeName] {
		if m == model {
			return true
		}
	}
	return false
}
