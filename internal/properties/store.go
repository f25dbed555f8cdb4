package properties

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/estate/pkg/pagination"
	"github.com/JaimeStill/estate/pkg/query"
)

// Store is the durable record collection behind the property system.
// Implementations return ErrNotFound for missing ids and leave other
// failures unwrapped; the system classifies them.
type Store interface {
	// Insert assigns the id and timestamps and persists rec.
	Insert(ctx context.Context, rec Property) (*Property, error)
	Get(ctx context.Context, id uuid.UUID) (*Property, error)
	// Find returns the records matching f in store-native order.
	Find(ctx context.Context, f Filter) ([]Property, error)
	FindPage(ctx context.Context, f Filter, page pagination.PageRequest) (*pagination.PageResult[Property], error)
	// Update replaces the mutable attributes of the record with rec's and refreshes UpdatedAt.
	Update(ctx context.Context, id uuid.UUID, rec Property) (*Property, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

// sortable lists the fields page requests may sort by.
var sortable = map[string]bool{
	"propertyTitle": true,
	"propertyType":  true,
	"builderName":   true,
	"location":      true,
	"status":        true,
	"bhk":           true,
	"rooms":         true,
	"yearBuilt":     true,
	"price":         true,
	"area":          true,
	"createdAt":     true,
	"updatedAt":     true,
}

var defaultSort = query.SortField{Field: "createdAt"}

// sortOrder keeps the sortable fields of a page request, falling back to insertion order.
func sortOrder(fields []query.SortField) []query.SortField {
	kept := make([]query.SortField, 0, len(fields))
	for _, f := range fields {
		if sortable[f.Field] {
			kept = append(kept, f)
		}
	}
	if len(kept) == 0 {
		return []query.SortField{defaultSort}
	}
	return kept
}
