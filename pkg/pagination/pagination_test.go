package pagination_test

import (
	"encoding/json"
	"math"
	"net/url"
	"strings"
	"testing"

	"github.com/JaimeStill/estate/pkg/pagination"
	"github.com/JaimeStill/estate/pkg/query"
)

func defaultConfig() pagination.Config {
	return pagination.Config{DefaultPageSize: 12, MaxPageSize: 100}
}

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := pagination.Config{}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.DefaultPageSize != 12 || cfg.MaxPageSize != 100 {
			t.Errorf("got %+v, want {12 100}", cfg)
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_PAGE_SIZE", "50")
		t.Setenv("TEST_MAX_PAGE", "200")

		cfg := pagination.Config{}
		err := cfg.Finalize(&pagination.Env{
			DefaultPageSize: "TEST_PAGE_SIZE",
			MaxPageSize:     "TEST_MAX_PAGE",
		})
		if err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.DefaultPageSize != 50 || cfg.MaxPageSize != 200 {
			t.Errorf("got %+v, want {50 200}", cfg)
		}
	})

	t.Run("default exceeds max", func(t *testing.T) {
		cfg := pagination.Config{DefaultPageSize: 200, MaxPageSize: 100}
		err := cfg.Finalize(nil)
		if err == nil || !strings.Contains(err.Error(), "cannot exceed") {
			t.Errorf("error = %v, want default_page_size cannot exceed max_page_size", err)
		}
	})
}

func TestConfigMerge(t *testing.T) {
	base := defaultConfig()
	base.Merge(&pagination.Config{DefaultPageSize: 24})

	if base.DefaultPageSize != 24 {
		t.Errorf("DefaultPageSize = %d, want 24", base.DefaultPageSize)
	}
	if base.MaxPageSize != 100 {
		t.Errorf("MaxPageSize = %d, want 100 (unchanged)", base.MaxPageSize)
	}
}

func TestPageRequestNormalize(t *testing.T) {
	cfg := defaultConfig()

	tests := []struct {
		name         string
		req          pagination.PageRequest
		wantPage     int
		wantPageSize int
		wantOffset   int
	}{
		{"zero values get defaults", pagination.PageRequest{}, 1, 12, 0},
		{"negative page corrected", pagination.PageRequest{Page: -1, PageSize: 10}, 1, 10, 0},
		{"page size clamped to max", pagination.PageRequest{Page: 2, PageSize: 500}, 2, 100, 100},
		{"valid values preserved", pagination.PageRequest{Page: 3, PageSize: 25}, 3, 25, 50},
		{"page capped before offset overflows", pagination.PageRequest{Page: math.MaxInt, PageSize: 12}, math.MaxInt / 12, 12, (math.MaxInt/12 - 1) * 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Normalize(cfg)
			if tt.req.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", tt.req.Page, tt.wantPage)
			}
			if tt.req.PageSize != tt.wantPageSize {
				t.Errorf("PageSize = %d, want %d", tt.req.PageSize, tt.wantPageSize)
			}
			if got := tt.req.Offset(); got != tt.wantOffset {
				t.Errorf("Offset() = %d, want %d", got, tt.wantOffset)
			}
		})
	}
}

func TestPageRequestFromQuery(t *testing.T) {
	cfg := defaultConfig()

	t.Run("all params present", func(t *testing.T) {
		req := pagination.PageRequestFromQuery(url.Values{
			"page":      {"2"},
			"page_size": {"15"},
			"search":    {" villa "},
			"sort":      {"price,-createdAt"},
		}, cfg)

		if req.Page != 2 || req.PageSize != 15 {
			t.Errorf("page/size = %d/%d, want 2/15", req.Page, req.PageSize)
		}
		if req.Search == nil || *req.Search != "villa" {
			t.Errorf("Search = %v, want villa", req.Search)
		}
		if got := req.Sort.String(); got != "price,-createdAt" {
			t.Errorf("Sort = %q, want price,-createdAt", got)
		}
	})

	t.Run("huge page keeps a non-negative offset", func(t *testing.T) {
		req := pagination.PageRequestFromQuery(url.Values{"page": {"4611686018427387904"}}, cfg)

		if got := req.Offset(); got < 0 {
			t.Errorf("Offset() = %d, want non-negative", got)
		}
	})

	t.Run("empty params get defaults", func(t *testing.T) {
		req := pagination.PageRequestFromQuery(url.Values{"search": {"  "}}, cfg)

		if req.Page != 1 || req.PageSize != 12 {
			t.Errorf("page/size = %d/%d, want 1/12", req.Page, req.PageSize)
		}
		if req.Search != nil {
			t.Errorf("Search = %v, want nil", *req.Search)
		}
	})
}

func TestPageRequestValuesRoundTrip(t *testing.T) {
	cfg := defaultConfig()
	search := "lake view"
	req := pagination.PageRequest{
		Page:     4,
		PageSize: 10,
		Search:   &search,
		Sort:     pagination.SortFields{{Field: "price", Descending: true}},
	}

	values := req.Values()
	if got := values.Encode(); got != "page=4&page_size=10&search=lake+view&sort=-price" {
		t.Errorf("Encode() = %q", got)
	}

	back := pagination.PageRequestFromQuery(values, cfg)
	if back.Page != 4 || back.PageSize != 10 || *back.Search != search || back.Sort.String() != "-price" {
		t.Errorf("round trip = %+v", back)
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name           string
		total          int
		pageSize       int
		wantTotalPages int
	}{
		{"exact division", 100, 20, 5},
		{"remainder", 101, 20, 6},
		{"single page", 5, 20, 1},
		{"empty result", 0, 20, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := pagination.NewPageResult([]string{"a"}, tt.total, 1, tt.pageSize)
			if result.TotalPages != tt.wantTotalPages {
				t.Errorf("TotalPages = %d, want %d", result.TotalPages, tt.wantTotalPages)
			}
			if result.Total != tt.total {
				t.Errorf("Total = %d, want %d", result.Total, tt.total)
			}
		})
	}

	if result := pagination.NewPageResult[string](nil, 0, 1, 20); result.Data == nil {
		t.Error("Data should be empty slice, not nil")
	}
}

func TestSortFieldsUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"string form", `"price,-createdAt"`},
		{"array form", `[{"Field":"price","Descending":false},{"Field":"createdAt","Descending":true}]`},
	}

	want := []query.SortField{{Field: "price"}, {Field: "createdAt", Descending: true}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sf pagination.SortFields
			if err := json.Unmarshal([]byte(tt.input), &sf); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if len(sf) != len(want) {
				t.Fatalf("length = %d, want %d", len(sf), len(want))
			}
			for i := range want {
				if sf[i] != want[i] {
					t.Errorf("sf[%d] = %v, want %v", i, sf[i], want[i])
				}
			}
		})
	}
}
