package properties

import "strings"

// Category is a listing classification served by the category views.
type Category int

const (
	CategoryResidential Category = iota + 1
	CategoryCommercial
)

// storedCategories holds the propertyType strings existing records carry for each
// category. The residential spelling is the historical stored value and must stay
// byte-for-byte identical or the category view stops matching existing records.
var storedCategories = map[Category]string{
	CategoryResidential: "Resedentil",
	CategoryCommercial:  "Commercial",
}

// Stored returns the propertyType value records in this category carry.
func (c Category) Stored() string {
	return storedCategories[c]
}

func (c Category) String() string {
	switch c {
	case CategoryResidential:
		return "residential"
	case CategoryCommercial:
		return "commercial"
	default:
		return "unknown"
	}
}

// ParseCategory resolves a category name, case-insensitively.
func ParseCategory(name string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "residential":
		return CategoryResidential, true
	case "commercial":
		return CategoryCommercial, true
	default:
		return 0, false
	}
}
