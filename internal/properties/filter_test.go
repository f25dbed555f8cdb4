package properties_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/JaimeStill/estate/internal/properties"
)

func TestFilterFromQuery(t *testing.T) {
	f, err := properties.FilterFromQuery(url.Values{
		"propertyType": {"Commercial"},
		"bhk":          {"3"},
		"area":         {""},
	})
	if err != nil {
		t.Fatalf("FilterFromQuery() error = %v", err)
	}

	if f.PropertyType == nil || *f.PropertyType != "Commercial" {
		t.Errorf("PropertyType = %v", f.PropertyType)
	}
	if f.BHK == nil || *f.BHK != 3 {
		t.Errorf("BHK = %v", f.BHK)
	}
	if f.Area != nil || f.Price != nil || f.BuilderName != nil {
		t.Error("absent parameters were constrained")
	}

	if _, err := properties.FilterFromQuery(url.Values{"price": {"cheap"}}); !errors.Is(err, properties.ErrValidation) {
		t.Errorf("bad price error = %v, want ErrValidation", err)
	}
}

func TestSearchCriteriaFromJSON(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantArea  *float64
		wantBHK   *int
		wantPrice *float64
	}{
		{"empty object", `{}`, nil, nil, nil},
		{"numbers", `{"area":1200,"bhk":2}`, ptr(1200.0), ptr(2), nil},
		{"numeric text", `{"price":"4500000"}`, nil, nil, ptr(4500000.0)},
		{"empty strings absent", `{"area":"","bhk":"","price":""}`, nil, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := properties.SearchCriteriaFromJSON([]byte(tt.body))
			if err != nil {
				t.Fatalf("SearchCriteriaFromJSON() error = %v", err)
			}
			if !eqPtr(c.Area, tt.wantArea) || !eqPtr(c.BHK, tt.wantBHK) || !eqPtr(c.Price, tt.wantPrice) {
				t.Errorf("criteria = %+v", c)
			}

			f := c.Filter()
			if f.PropertyType != nil || f.BuilderName != nil {
				t.Error("search criteria constrained non-search fields")
			}
		})
	}
}

func TestFilterKeyCanonical(t *testing.T) {
	a := properties.Filter{BHK: ptr(2), Area: ptr(1200.0)}
	b := properties.Filter{Area: ptr(1200.0), BHK: ptr(2)}
	if a.Key() != b.Key() {
		t.Errorf("equal filters produced keys %q and %q", a.Key(), b.Key())
	}
	if a.Key() == (properties.Filter{BHK: ptr(2)}).Key() {
		t.Error("different filters produced the same key")
	}
}

func TestFilterMatchesNilAttributes(t *testing.T) {
	f := properties.Filter{BHK: ptr(2)}
	if f.Matches(properties.Property{}) {
		t.Error("record without bhk matched bhk constraint")
	}
	if !(properties.Filter{}).Matches(properties.Property{}) {
		t.Error("empty filter rejected a record")
	}
}

func ptr[T any](v T) *T { return &v }

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
