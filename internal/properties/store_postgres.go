package properties

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/estate/pkg/pagination"
	"github.com/JaimeStill/estate/pkg/query"
	"github.com/JaimeStill/estate/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "properties", "p").
	Project("id", "id").
	Project("property_title", "propertyTitle").
	Project("property_type", "propertyType").
	Project("property_description", "propertyDescription").
	Project("builder_name", "builderName").
	Project("property_ref", "propertyID").
	Project("parent_property", "parentProperty").
	Project("status", "status").
	Project("label", "label").
	Project("material", "material").
	Project("location", "location").
	Project("pin_code", "pinCode").
	Project("built_dimentions", "builtDimentions").
	Project("rooms", "rooms").
	Project("bedsroom", "bedsroom").
	Project("kitchen", "kitchen").
	Project("bhk", "bhk").
	Project("year_built", "yearBuilt").
	Project("totalhome_area", "totalhomeArea").
	Project("open_area", "openArea").
	Project("price", "price").
	Project("area", "area").
	Project("amenities", "amenities").
	Project("feature_image", "featureImage").
	Project("created_at", "createdAt").
	Project("updated_at", "updatedAt")

// writeColumns are the mutable columns, in the order writeArgs binds them.
var writeColumns = []string{
	"property_title",
	"property_type",
	"property_description",
	"builder_name",
	"property_ref",
	"parent_property",
	"status",
	"label",
	"material",
	"location",
	"pin_code",
	"built_dimentions",
	"rooms",
	"bedsroom",
	"kitchen",
	"bhk",
	"year_built",
	"totalhome_area",
	"open_area",
	"price",
	"area",
	"amenities",
	"feature_image",
}

type postgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a Store over the properties table.
func NewPostgresStore(db *sql.DB) Store {
	return &postgresStore{db: db}
}

func (s *postgresStore) Insert(ctx context.Context, rec Property) (*Property, error) {
	args, err := writeArgs(uuid.New(), rec)
	if err != nil {
		return nil, err
	}

	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	q := fmt.Sprintf(
		"INSERT INTO %s AS %s (id, %s) VALUES (%s) RETURNING %s",
		projection.Table(),
		projection.Alias(),
		strings.Join(writeColumns, ", "),
		strings.Join(placeholders, ", "),
		projection.Columns(),
	)

	p, err := repository.QueryOne(ctx, s.db, q, args, scanProperty)
	if err != nil {
		return nil, repository.MapError(err, nil, nil, ErrValidation)
	}
	return &p, nil
}

func (s *postgresStore) Get(ctx context.Context, id uuid.UUID) (*Property, error) {
	q, args := query.NewBuilder(projection).BuildSingle("id", id)

	p, err := repository.QueryOne(ctx, s.db, q, args, scanProperty)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, nil, ErrValidation)
	}
	return &p, nil
}

func (s *postgresStore) Find(ctx context.Context, f Filter) ([]Property, error) {
	q, args := f.Apply(query.NewBuilder(projection, defaultSort)).Build()

	props, err := repository.QueryMany(ctx, s.db, q, args, scanProperty)
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}
	return props, nil
}

func (s *postgresStore) FindPage(ctx context.Context, f Filter, page pagination.PageRequest) (*pagination.PageResult[Property], error) {
	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "propertyTitle", "location", "builderName")

	f.Apply(qb).OrderByFields(sortOrder(page.Sort))

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count properties: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	props, err := repository.QueryMany(ctx, s.db, pageSQL, pageArgs, scanProperty)
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}

	result := pagination.NewPageResult(props, total, page.Page, page.PageSize)
	return &result, nil
}

func (s *postgresStore) Update(ctx context.Context, id uuid.UUID, rec Property) (*Property, error) {
	args, err := writeArgs(id, rec)
	if err != nil {
		return nil, err
	}

	sets := make([]string, len(writeColumns))
	for i, col := range writeColumns {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+2)
	}

	q := fmt.Sprintf(
		"UPDATE %s AS %s SET %s, updated_at = NOW() WHERE %s = $1 RETURNING %s",
		projection.Table(),
		projection.Alias(),
		strings.Join(sets, ", "),
		projection.Column("id"),
		projection.Columns(),
	)

	p, err := repository.QueryOne(ctx, s.db, q, args, scanProperty)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, nil, ErrValidation)
	}
	return &p, nil
}

func (s *postgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(
		ctx, s.db,
		fmt.Sprintf("DELETE FROM %s WHERE id = $1", projection.Table()),
		id,
	)
	return repository.MapError(err, ErrNotFound, nil, ErrValidation)
}

func (s *postgresStore) Count(ctx context.Context) (int, error) {
	q, args := query.NewBuilder(projection).BuildCount()

	var n int
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count properties: %w", err)
	}
	return n, nil
}

func writeArgs(id uuid.UUID, p Property) ([]any, error) {
	amenities := p.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	tags, err := json.Marshal(amenities)
	if err != nil {
		return nil, fmt.Errorf("encode amenities: %w", err)
	}

	return []any{
		id,
		p.PropertyTitle,
		p.PropertyType,
		p.PropertyDescription,
		p.BuilderName,
		p.PropertyID,
		p.ParentProperty,
		p.Status,
		p.Label,
		p.Material,
		p.Location,
		p.PinCode,
		p.BuiltDimentions,
		p.Rooms,
		p.Bedsroom,
		p.Kitchen,
		p.BHK,
		p.YearBuilt,
		p.TotalhomeArea,
		p.OpenArea,
		p.Price,
		p.Area,
		string(tags),
		p.FeatureImage,
	}, nil
}

func scanProperty(s repository.Scanner) (Property, error) {
	var (
		p    Property
		tags []byte
	)

	err := s.Scan(
		&p.ID,
		&p.PropertyTitle,
		&p.PropertyType,
		&p.PropertyDescription,
		&p.BuilderName,
		&p.PropertyID,
		&p.ParentProperty,
		&p.Status,
		&p.Label,
		&p.Material,
		&p.Location,
		&p.PinCode,
		&p.BuiltDimentions,
		&p.Rooms,
		&p.Bedsroom,
		&p.Kitchen,
		&p.BHK,
		&p.YearBuilt,
		&p.TotalhomeArea,
		&p.OpenArea,
		&p.Price,
		&p.Area,
		&tags,
		&p.FeatureImage,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return p, err
	}

	p.Amenities = []string{}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &p.Amenities); err != nil {
			return p, fmt.Errorf("decode amenities: %w", err)
		}
	}

	return p, nil
}
