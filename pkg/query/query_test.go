package query_test

import (
	"reflect"
	"testing"

	"github.com/JaimeStill/estate/pkg/query"
)

func testProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "properties", "p").
		Project("id", "id").
		Project("property_title", "propertyTitle").
		Project("bhk", "bhk").
		Project("price", "price").
		Project("created_at", "createdAt")
}

const selectAll = "SELECT p.id, p.property_title, p.bhk, p.price, p.created_at FROM public.properties p"

func ptr(s string) *string { return &s }

func TestProjectionMap(t *testing.T) {
	p := testProjection()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"table", p.Table(), "public.properties"},
		{"from", p.From(), "public.properties p"},
		{"alias", p.Alias(), "p"},
		{"columns", p.Columns(), "p.id, p.property_title, p.bhk, p.price, p.created_at"},
		{"mapped column", p.Column("propertyTitle"), "p.property_title"},
		{"unmapped passthrough", p.Column("unknown"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}

	if !p.Has("bhk") || p.Has("password") {
		t.Error("Has() does not reflect projected fields")
	}
}

func TestParseSortFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []query.SortField
	}{
		{"empty string", "", nil},
		{"single ascending", "price", []query.SortField{{Field: "price"}}},
		{"single descending", "-createdAt", []query.SortField{{Field: "createdAt", Descending: true}}},
		{
			"mixed with spaces and empty parts",
			" price ,, -createdAt ",
			[]query.SortField{{Field: "price"}, {Field: "createdAt", Descending: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := query.ParseSortFields(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSortFields(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBuilder(t *testing.T) {
	bhk := 3
	var nilPrice *float64

	tests := []struct {
		name     string
		build    func() (string, []any)
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "plain select",
			build:   query.NewBuilder(testProjection()).Build,
			wantSQL: selectAll,
		},
		{
			name:    "count",
			build:   query.NewBuilder(testProjection()).BuildCount,
			wantSQL: "SELECT COUNT(*) FROM public.properties p",
		},
		{
			name: "single by id",
			build: func() (string, []any) {
				return query.NewBuilder(testProjection()).BuildSingle("id", "abc")
			},
			wantSQL:  selectAll + " WHERE p.id = $1",
			wantArgs: []any{"abc"},
		},
		{
			name: "equals skips nil pointers",
			build: query.NewBuilder(testProjection()).
				WhereEquals("bhk", &bhk).
				WhereEquals("price", nilPrice).
				Build,
			wantSQL:  selectAll + " WHERE p.bhk = $1",
			wantArgs: []any{&bhk},
		},
		{
			name: "search across fields",
			build: query.NewBuilder(testProjection()).
				WhereSearch(ptr("villa"), "propertyTitle", "id").
				Build,
			wantSQL:  selectAll + " WHERE (p.property_title ILIKE $1 OR p.id ILIKE $2)",
			wantArgs: []any{"%villa%", "%villa%"},
		},
		{
			name: "empty search skipped",
			build: query.NewBuilder(testProjection()).
				WhereSearch(ptr(""), "propertyTitle").
				Build,
			wantSQL: selectAll,
		},
		{
			name: "default sort",
			build: query.NewBuilder(testProjection(), query.SortField{Field: "createdAt", Descending: true}).
				Build,
			wantSQL: selectAll + " ORDER BY p.created_at DESC",
		},
		{
			name: "explicit sort drops unprojected fields",
			build: query.NewBuilder(testProjection(), query.SortField{Field: "id"}).
				OrderByFields([]query.SortField{{Field: "price", Descending: true}, {Field: "1; DROP TABLE x"}}).
				Build,
			wantSQL: selectAll + " ORDER BY p.price DESC",
		},
		{
			name: "page binds limit and offset after conditions",
			build: func() (string, []any) {
				return query.NewBuilder(testProjection(), query.SortField{Field: "id"}).
					WhereEquals("bhk", 2).
					BuildPage(3, 25)
			},
			wantSQL:  selectAll + " WHERE p.bhk = $1 ORDER BY p.id ASC LIMIT $2 OFFSET $3",
			wantArgs: []any{2, 25, 50},
		},
		{
			name: "count with conditions",
			build: query.NewBuilder(testProjection()).
				WhereEquals("bhk", 2).
				BuildCount,
			wantSQL:  "SELECT COUNT(*) FROM public.properties p WHERE p.bhk = $1",
			wantArgs: []any{2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := tt.build()
			if sql != tt.wantSQL {
				t.Errorf("sql:\ngot  %s\nwant %s", sql, tt.wantSQL)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("args = %v, want %v", args, tt.wantArgs)
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Errorf("args[%d] = %v, want %v", i, args[i], tt.wantArgs[i])
				}
			}
		})
	}
}
