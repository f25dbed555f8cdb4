package properties

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/JaimeStill/estate/pkg/query"
)

// Filter holds optional exact-match constraints. A nil field is unconstrained,
// so the zero Filter matches every record.
type Filter struct {
	PropertyType *string  `json:"propertyType,omitempty"`
	BuilderName  *string  `json:"builderName,omitempty"`
	Area         *float64 `json:"area,omitempty"`
	BHK          *int     `json:"bhk,omitempty"`
	Price        *float64 `json:"price,omitempty"`
}

// Apply adds the filter's conditions to a query builder.
func (f Filter) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("propertyType", f.PropertyType).
		WhereEquals("builderName", f.BuilderName).
		WhereEquals("area", f.Area).
		WhereEquals("bhk", f.BHK).
		WhereEquals("price", f.Price)
}

// Matches reports whether p satisfies every constraint in f.
func (f Filter) Matches(p Property) bool {
	if f.PropertyType != nil && p.PropertyType != *f.PropertyType {
		return false
	}
	if f.BuilderName != nil && p.BuilderName != *f.BuilderName {
		return false
	}
	if f.Area != nil && (p.Area == nil || *p.Area != *f.Area) {
		return false
	}
	if f.BHK != nil && (p.BHK == nil || *p.BHK != *f.BHK) {
		return false
	}
	if f.Price != nil && (p.Price == nil || *p.Price != *f.Price) {
		return false
	}
	return true
}

// Key renders the filter canonically for use in cache keys.
func (f Filter) Key() string {
	var parts []string
	if f.PropertyType != nil {
		parts = append(parts, "propertyType="+*f.PropertyType)
	}
	if f.BuilderName != nil {
		parts = append(parts, "builderName="+*f.BuilderName)
	}
	if f.Area != nil {
		parts = append(parts, "area="+strconv.FormatFloat(*f.Area, 'g', -1, 64))
	}
	if f.BHK != nil {
		parts = append(parts, "bhk="+strconv.Itoa(*f.BHK))
	}
	if f.Price != nil {
		parts = append(parts, "price="+strconv.FormatFloat(*f.Price, 'g', -1, 64))
	}
	return strings.Join(parts, "&")
}

// FilterFromQuery extracts filter constraints from URL query parameters.
// Empty parameters are unconstrained; malformed numbers are ErrValidation.
func FilterFromQuery(values url.Values) (Filter, error) {
	var f Filter

	if s := values.Get("propertyType"); s != "" {
		f.PropertyType = &s
	}
	if s := values.Get("builderName"); s != "" {
		f.BuilderName = &s
	}

	criteria, err := SearchCriteriaFromValues(values)
	if err != nil {
		return Filter{}, err
	}
	f.Area = criteria.Area
	f.BHK = criteria.BHK
	f.Price = criteria.Price

	return f, nil
}

// SearchCriteria is the {area, bhk, price} subset accepted by the search view.
type SearchCriteria struct {
	Area  *float64 `json:"area,omitempty"`
	BHK   *int     `json:"bhk,omitempty"`
	Price *float64 `json:"price,omitempty"`
}

// Filter returns a Filter constraining only the supplied criteria.
// Adding a criterion can only narrow the result set.
func (c SearchCriteria) Filter() Filter {
	return Filter{
		Area:  c.Area,
		BHK:   c.BHK,
		Price: c.Price,
	}
}

// SearchCriteriaFromValues parses criteria from text values. Absent or empty
// values are unconstrained.
func SearchCriteriaFromValues(values url.Values) (SearchCriteria, error) {
	var (
		c   SearchCriteria
		err error
	)

	if c.Area, err = parseFloat("area", values.Get("area")); err != nil {
		return SearchCriteria{}, err
	}
	if c.BHK, err = parseInt("bhk", values.Get("bhk")); err != nil {
		return SearchCriteria{}, err
	}
	if c.Price, err = parseFloat("price", values.Get("price")); err != nil {
		return SearchCriteria{}, err
	}

	return c, nil
}

// SearchCriteriaFromJSON parses criteria from a JSON object whose values may be
// numbers or numeric text.
func SearchCriteriaFromJSON(data []byte) (SearchCriteria, error) {
	values, err := decodeJSONValues(data)
	if err != nil {
		return SearchCriteria{}, err
	}
	return SearchCriteriaFromValues(values)
}
