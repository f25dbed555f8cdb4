package properties

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/estate/pkg/pagination"
)

// System defines the public contract for property record operations.
type System interface {
	// Handler builds the HTTP handler. admin wraps the mutating routes.
	Handler(maxUploadSize int64, admin func(http.Handler) http.Handler) *Handler

	Create(ctx context.Context, cmd CreateCommand) (*Property, error)
	Find(ctx context.Context, id uuid.UUID) (*Property, error)
	List(ctx context.Context) ([]Property, error)
	Page(ctx context.Context, page pagination.PageRequest, filter Filter) (*pagination.PageResult[Property], error)
	Count(ctx context.Context) (int, error)
	Category(ctx context.Context, c Category) ([]Property, error)
	Search(ctx context.Context, criteria SearchCriteria) ([]Property, error)
	ByBuilder(ctx context.Context, name string) ([]Property, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Property, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Reconcile removes stored images no record references and reports
	// records whose image is missing. It is a maintenance operation.
	Reconcile(ctx context.Context, opts ReconcileOptions) (*ReconcileReport, error)
}
