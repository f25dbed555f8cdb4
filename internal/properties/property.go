// Package properties implements the property-record domain: listing records,
// their single feature image, and the filtered views served to clients.
package properties

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Property is a real-estate listing record.
type Property struct {
	ID                  uuid.UUID `json:"id"`
	PropertyTitle       string    `json:"propertyTitle"`
	PropertyType        string    `json:"propertyType"`
	PropertyDescription string    `json:"propertyDescription"`
	BuilderName         string    `json:"builderName"`
	PropertyID          string    `json:"propertyID"`
	ParentProperty      string    `json:"parentProperty"`
	Status              string    `json:"status"`
	Label               string    `json:"label"`
	Material            string    `json:"material"`
	Location            string    `json:"location"`
	PinCode             string    `json:"pinCode"`
	BuiltDimentions     string    `json:"builtDimentions"`
	Rooms               *int      `json:"rooms"`
	Bedsroom            *int      `json:"bedsroom"`
	Kitchen             *int      `json:"kitchen"`
	BHK                 *int      `json:"bhk"`
	YearBuilt           *int      `json:"yearBuilt"`
	TotalhomeArea       *float64  `json:"totalhomeArea"`
	OpenArea            *float64  `json:"openArea"`
	Price               *float64  `json:"price"`
	Area                *float64  `json:"area"`
	Amenities           []string  `json:"amenities"`
	FeatureImage        string    `json:"featureImage"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// Clone returns a copy that shares no memory with p.
func (p Property) Clone() Property {
	c := p
	c.Rooms = clonePtr(p.Rooms)
	c.Bedsroom = clonePtr(p.Bedsroom)
	c.Kitchen = clonePtr(p.Kitchen)
	c.BHK = clonePtr(p.BHK)
	c.YearBuilt = clonePtr(p.YearBuilt)
	c.TotalhomeArea = clonePtr(p.TotalhomeArea)
	c.OpenArea = clonePtr(p.OpenArea)
	c.Price = clonePtr(p.Price)
	c.Area = clonePtr(p.Area)
	c.Amenities = slices.Clone(p.Amenities)
	if c.Amenities == nil {
		c.Amenities = []string{}
	}
	return c
}

// Upload is an image file received with a create or update request.
type Upload struct {
	Filename string
	Data     []byte
}

// CreateCommand carries the attributes and optional image for a new record.
type CreateCommand struct {
	Patch Patch
	Image *Upload
}

// UpdateCommand carries the supplied attributes and optional replacement image
// for an existing record. Attributes absent from Patch are left unchanged, and
// FeatureImage only changes when Image is set.
type UpdateCommand struct {
	Patch Patch
	Image *Upload
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
