package properties

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/estate/pkg/pagination"
)

type memoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]Property
	order   []uuid.UUID
	now     func() time.Time
}

// NewMemoryStore creates a process-local Store. Records are returned in insertion order.
func NewMemoryStore() Store {
	return &memoryStore{
		records: make(map[uuid.UUID]Property),
		now:     time.Now,
	}
}

func (s *memoryStore) Insert(ctx context.Context, rec Property) (*Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	rec = rec.Clone()
	rec.ID = uuid.New()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	s.records[rec.ID] = rec
	s.order = append(s.order, rec.ID)

	out := rec.Clone()
	return &out, nil
}

func (s *memoryStore) Get(ctx context.Context, id uuid.UUID) (*Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}

	out := rec.Clone()
	return &out, nil
}

func (s *memoryStore) Find(ctx context.Context, f Filter) ([]Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.match(f, nil), nil
}

func (s *memoryStore) FindPage(ctx context.Context, f Filter, page pagination.PageRequest) (*pagination.PageResult[Property], error) {
	s.mu.RLock()
	matched := s.match(f, page.Search)
	s.mu.RUnlock()

	order := sortOrder(page.Sort)
	slices.SortStableFunc(matched, func(a, b Property) int {
		for _, field := range order {
			c := compareField(a, b, field.Field)
			if field.Descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})

	total := len(matched)
	start := max(min(page.Offset(), total), 0)
	end := min(start+page.PageSize, total)

	result := pagination.NewPageResult(matched[start:end], total, page.Page, page.PageSize)
	return &result, nil
}

func (s *memoryStore) Update(ctx context.Context, id uuid.UUID, rec Property) (*Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}

	rec = rec.Clone()
	rec.ID = id
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = s.now().UTC()
	s.records[id] = rec

	out := rec.Clone()
	return &out, nil
}

func (s *memoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}

	delete(s.records, id)
	s.order = slices.DeleteFunc(s.order, func(v uuid.UUID) bool { return v == id })
	return nil
}

func (s *memoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records), nil
}

// match must be called with s.mu held.
func (s *memoryStore) match(f Filter, search *string) []Property {
	out := make([]Property, 0, len(s.order))
	for _, id := range s.order {
		rec := s.records[id]
		if !f.Matches(rec) || !containsSearch(rec, search) {
			continue
		}
		out = append(out, rec.Clone())
	}
	return out
}

func containsSearch(p Property, search *string) bool {
	if search == nil || *search == "" {
		return true
	}
	needle := strings.ToLower(*search)
	for _, hay := range []string{p.PropertyTitle, p.Location, p.BuilderName} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

func compareField(a, b Property, field string) int {
	switch field {
	case "propertyTitle":
		return strings.Compare(a.PropertyTitle, b.PropertyTitle)
	case "propertyType":
		return strings.Compare(a.PropertyType, b.PropertyType)
	case "builderName":
		return strings.Compare(a.BuilderName, b.BuilderName)
	case "location":
		return strings.Compare(a.Location, b.Location)
	case "status":
		return strings.Compare(a.Status, b.Status)
	case "bhk":
		return comparePtr(a.BHK, b.BHK)
	case "rooms":
		return comparePtr(a.Rooms, b.Rooms)
	case "yearBuilt":
		return comparePtr(a.YearBuilt, b.YearBuilt)
	case "price":
		return comparePtr(a.Price, b.Price)
	case "area":
		return comparePtr(a.Area, b.Area)
	case "createdAt":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updatedAt":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return 0
	}
}

// comparePtr orders nil after every value, as Postgres does for ascending NULLs.
func comparePtr[T cmp.Ordered](a, b *T) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return cmp.Compare(*a, *b)
	}
}
