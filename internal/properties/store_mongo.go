package properties

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/JaimeStill/estate/pkg/pagination"
	"github.com/JaimeStill/estate/pkg/query"
)

// document is the stored shape of a Property. Ids are kept as their string form
// so records stay readable from the mongo shell.
type document struct {
	ID                  string    `bson:"_id,omitempty"`
	PropertyTitle       string    `bson:"propertyTitle"`
	PropertyType        string    `bson:"propertyType"`
	PropertyDescription string    `bson:"propertyDescription"`
	BuilderName         string    `bson:"builderName"`
	PropertyID          string    `bson:"propertyID"`
	ParentProperty      string    `bson:"parentProperty"`
	Status              string    `bson:"status"`
	Label               string    `bson:"label"`
	Material            string    `bson:"material"`
	Location            string    `bson:"location"`
	PinCode             string    `bson:"pinCode"`
	BuiltDimentions     string    `bson:"builtDimentions"`
	Rooms               *int      `bson:"rooms"`
	Bedsroom            *int      `bson:"bedsroom"`
	Kitchen             *int      `bson:"kitchen"`
	BHK                 *int      `bson:"bhk"`
	YearBuilt           *int      `bson:"yearBuilt"`
	TotalhomeArea       *float64  `bson:"totalhomeArea"`
	OpenArea            *float64  `bson:"openArea"`
	Price               *float64  `bson:"price"`
	Area                *float64  `bson:"area"`
	Amenities           []string  `bson:"amenities"`
	FeatureImage        string    `bson:"featureImage"`
	CreatedAt           time.Time `bson:"createdAt,omitempty"`
	UpdatedAt           time.Time `bson:"updatedAt"`
}

func toDocument(p Property) document {
	amenities := p.Amenities
	if amenities == nil {
		amenities = []string{}
	}

	return document{
		PropertyTitle:       p.PropertyTitle,
		PropertyType:        p.PropertyType,
		PropertyDescription: p.PropertyDescription,
		BuilderName:         p.BuilderName,
		PropertyID:          p.PropertyID,
		ParentProperty:      p.ParentProperty,
		Status:              p.Status,
		Label:               p.Label,
		Material:            p.Material,
		Location:            p.Location,
		PinCode:             p.PinCode,
		BuiltDimentions:     p.BuiltDimentions,
		Rooms:               p.Rooms,
		Bedsroom:            p.Bedsroom,
		Kitchen:             p.Kitchen,
		BHK:                 p.BHK,
		YearBuilt:           p.YearBuilt,
		TotalhomeArea:       p.TotalhomeArea,
		OpenArea:            p.OpenArea,
		Price:               p.Price,
		Area:                p.Area,
		Amenities:           amenities,
		FeatureImage:        p.FeatureImage,
	}
}

func (d document) property() (Property, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return Property{}, fmt.Errorf("decode property id %q: %w", d.ID, err)
	}

	p := Property{
		ID:                  id,
		PropertyTitle:       d.PropertyTitle,
		PropertyType:        d.PropertyType,
		PropertyDescription: d.PropertyDescription,
		BuilderName:         d.BuilderName,
		PropertyID:          d.PropertyID,
		ParentProperty:      d.ParentProperty,
		Status:              d.Status,
		Label:               d.Label,
		Material:            d.Material,
		Location:            d.Location,
		PinCode:             d.PinCode,
		BuiltDimentions:     d.BuiltDimentions,
		Rooms:               d.Rooms,
		Bedsroom:            d.Bedsroom,
		Kitchen:             d.Kitchen,
		BHK:                 d.BHK,
		YearBuilt:           d.YearBuilt,
		TotalhomeArea:       d.TotalhomeArea,
		OpenArea:            d.OpenArea,
		Price:               d.Price,
		Area:                d.Area,
		Amenities:           d.Amenities,
		FeatureImage:        d.FeatureImage,
		CreatedAt:           d.CreatedAt.UTC(),
		UpdatedAt:           d.UpdatedAt.UTC(),
	}
	if p.Amenities == nil {
		p.Amenities = []string{}
	}

	return p, nil
}

type mongoStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongoStore creates a Store over a MongoDB collection.
func NewMongoStore(coll *mongo.Collection) Store {
	return &mongoStore{
		coll: coll,
		now:  time.Now,
	}
}

func (s *mongoStore) Insert(ctx context.Context, rec Property) (*Property, error) {
	now := s.now().UTC().Truncate(time.Millisecond)

	doc := toDocument(rec)
	doc.ID = uuid.New().String()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert property: %w", err)
	}

	p, err := doc.property()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *mongoStore) Get(ctx context.Context, id uuid.UUID) (*Property, error) {
	var doc document
	err := s.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find property %s: %w", id, err)
	}

	p, err := doc.property()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *mongoStore) Find(ctx context.Context, f Filter) ([]Property, error) {
	opts := options.Find().SetSort(mongoSort(nil))
	return s.find(ctx, mongoFilter(f, nil), opts)
}

func (s *mongoStore) FindPage(ctx context.Context, f Filter, page pagination.PageRequest) (*pagination.PageResult[Property], error) {
	filter := mongoFilter(f, page.Search)

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count properties: %w", err)
	}

	opts := options.Find().
		SetSort(mongoSort(page.Sort)).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.PageSize))

	props, err := s.find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	result := pagination.NewPageResult(props, int(total), page.Page, page.PageSize)
	return &result, nil
}

func (s *mongoStore) Update(ctx context.Context, id uuid.UUID, rec Property) (*Property, error) {
	doc := toDocument(rec)
	doc.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated document
	err := s.coll.
		FindOneAndUpdate(ctx, bson.M{"_id": id.String()}, bson.M{"$set": doc}, opts).
		Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update property %s: %w", id, err)
	}

	p, err := updated.property()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *mongoStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("delete property %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoStore) Count(ctx context.Context) (int, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count properties: %w", err)
	}
	return int(n), nil
}

func (s *mongoStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]Property, error) {
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}
	defer cur.Close(ctx)

	props := make([]Property, 0)
	for cur.Next(ctx) {
		var doc document
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode property: %w", err)
		}
		p, err := doc.property()
		if err != nil {
			return nil, err
		}
		props = append(props, p)
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate properties: %w", err)
	}

	return props, nil
}

func mongoFilter(f Filter, search *string) bson.M {
	filter := bson.M{}

	if f.PropertyType != nil {
		filter["propertyType"] = *f.PropertyType
	}
	if f.BuilderName != nil {
		filter["builderName"] = *f.BuilderName
	}
	if f.Area != nil {
		filter["area"] = *f.Area
	}
	if f.BHK != nil {
		filter["bhk"] = *f.BHK
	}
	if f.Price != nil {
		filter["price"] = *f.Price
	}

	if search != nil && *search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(*search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"propertyTitle": pattern},
			bson.M{"location": pattern},
			bson.M{"builderName": pattern},
		}
	}

	return filter
}

// mongoSort orders by the sortable fields requested, with _id as the final tiebreaker.
func mongoSort(fields []query.SortField) bson.D {
	order := sortOrder(fields)
	sort := make(bson.D, 0, len(order)+1)
	for _, f := range order {
		dir := 1
		if f.Descending {
			dir = -1
		}
		sort = append(sort, bson.E{Key: f.Field, Value: dir})
	}
	return append(sort, bson.E{Key: "_id", Value: 1})
}
