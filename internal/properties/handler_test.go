package properties_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/estate/internal/properties"
	"github.com/JaimeStill/estate/pkg/routes"
)

func newMux(t *testing.T, f *fixture, admin func(http.Handler) http.Handler) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	routes.Register(mux, f.sys.Handler(1<<20, admin).Routes())
	return mux
}

func multipartBody(t *testing.T, fields map[string][]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vs := range fields {
		for _, v := range vs {
			if err := mw.WriteField(k, v); err != nil {
				t.Fatalf("write field: %v", err)
			}
		}
	}
	if image != nil {
		fw, err := mw.CreateFormFile("featureImage", "front.png")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(image)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func TestHandlerCreateMultipart(t *testing.T) {
	f := newFixture(t)
	mux := newMux(t, f, nil)

	body, ct := multipartBody(t, map[string][]string{
		"propertyTitle": {"Garden Villa"},
		"propertyType":  {"Resedentil"},
		"bhk":           {"3"},
		"amenities":     {"pool", "gym"},
	}, pngBytes(t))

	req := httptest.NewRequest(http.MethodPost, "/property/propertyDetails", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}

	p := decode[properties.Property](t, rec)
	if p.FeatureImage == "" || !f.exists(t, p.FeatureImage) {
		t.Errorf("FeatureImage = %q, want a stored asset", p.FeatureImage)
	}
	if p.BHK == nil || *p.BHK != 3 || len(p.Amenities) != 2 {
		t.Errorf("record = %+v", p)
	}
}

func TestHandlerCreateJSON(t *testing.T) {
	f := newFixture(t)
	mux := newMux(t, f, nil)

	req := httptest.NewRequest(http.MethodPost, "/property/propertyDetails", strings.NewReader(`{"propertyTitle":"Loft","price":"abc"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "price") {
		t.Errorf("error body %q does not name the field", rec.Body.String())
	}
}

func TestHandlerReadRoutes(t *testing.T) {
	f := newFixture(t)
	mux := newMux(t, f, nil)

	res := f.create(t, patch("propertyType", "Resedentil", "builderName", "Lodha", "area", "1200"), nil)
	f.create(t, patch("propertyType", "Commercial", "builderName", "Tata"), nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		count  int
	}{
		{"list", "GET", "/property/properties", "", 200, 2},
		{"residential", "GET", "/property/residential_properties", "", 200, 1},
		{"commercial", "GET", "/property/Commercial_properties", "", 200, 1},
		{"builder", "GET", "/property/properties/builderName/Lodha", "", 200, 1},
		{"builder none", "GET", "/property/properties/builderName/Nobody", "", 200, 0},
		{"filter", "POST", "/property/filter_properties", `{"area":"1200"}`, 200, 1},
		{"filter empty", "POST", "/property/filter_properties", `{}`, 200, 2},
		{"filter bad", "POST", "/property/filter_properties", `{"bhk":"many"}`, 400, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.count < 0 {
				return
			}
			got := decode[[]properties.Property](t, rec)
			if len(got) != tt.count {
				t.Errorf("records = %d, want %d", len(got), tt.count)
			}
		})
	}

	req := httptest.NewRequest("GET", "/property/properties/"+res.ID.String(), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || decode[properties.Property](t, rec).ID != res.ID {
		t.Errorf("find status = %d", rec.Code)
	}
}

func TestHandlerCountAndPage(t *testing.T) {
	f := newFixture(t)
	mux := newMux(t, f, nil)

	for _, title := range []string{"a", "b", "c"} {
		f.create(t, patch("propertyTitle", title, "bhk", "2"), nil)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/property/property-count", nil))
	if got := decode[properties.CountResponse](t, rec); got.TotalProperties != 3 {
		t.Errorf("totalProperties = %d, want 3", got.TotalProperties)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/property/properties/page?page=2&page_size=2&bhk=2&sort=-propertyTitle", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("page status = %d", rec.Code)
	}

	var page struct {
		Data       []properties.Property `json:"data"`
		Total      int                   `json:"total"`
		TotalPages int                   `json:"total_pages"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Total != 3 || page.TotalPages != 2 || len(page.Data) != 1 || page.Data[0].PropertyTitle != "a" {
		t.Errorf("page = %+v", page)
	}
}

func TestHandlerUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	mux := newMux(t, f, nil)

	orig := f.create(t, patch("propertyTitle", "before"), &properties.Upload{Filename: "a.png", Data: pngBytes(t)})

	body, ct := multipartBody(t, map[string][]string{"propertyTitle": {"after"}}, pngBytes(t))
	req := httptest.NewRequest(http.MethodPut, "/property/propertyDetails/"+orig.ID.String(), body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d (body %s)", rec.Code, rec.Body.String())
	}
	updated := decode[properties.Property](t, rec)
	if updated.PropertyTitle != "after" || updated.FeatureImage == orig.FeatureImage {
		t.Errorf("updated = %+v", updated)
	}
	if f.exists(t, orig.FeatureImage) {
		t.Error("replaced asset still stored")
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/property/propertyDetails/"+orig.ID.String(), nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/property/properties/"+orig.ID.String(), nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("find after delete status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/property/propertyDetails/not-a-uuid", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("delete bad id status = %d, want 400", rec.Code)
	}
}

func TestHandlerAdminGate(t *testing.T) {
	f := newFixture(t)
	deny := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
	}
	mux := newMux(t, f, deny)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodPost, "/property/propertyDetails", http.StatusForbidden},
		{http.MethodPut, "/property/propertyDetails/00000000-0000-0000-0000-000000000001", http.StatusForbidden},
		{http.MethodDelete, "/property/propertyDetails/00000000-0000-0000-0000-000000000001", http.StatusForbidden},
		{http.MethodGet, "/property/properties", http.StatusOK},
		{http.MethodGet, "/property/property-count", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandlerRejectsOversizedBody(t *testing.T) {
	f := newFixture(t)
	mux := newMux(t, f, nil)

	big := bytes.Repeat([]byte("a"), 3<<20)
	body, ct := multipartBody(t, map[string][]string{"propertyTitle": {"x"}}, big)

	req := httptest.NewRequest(http.MethodPost, "/property/propertyDetails", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if n := f.assetCount(t); n != 0 {
		t.Errorf("assets stored = %d, want 0", n)
	}
}
