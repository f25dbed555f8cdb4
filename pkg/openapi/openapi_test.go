package openapi_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/estate/pkg/openapi"
)

func TestNewSpec(t *testing.T) {
	spec := openapi.NewSpec("Test API", "1.0.0")

	if spec.OpenAPI != "3.1.0" {
		t.Errorf("openapi version: got %s, want 3.1.0", spec.OpenAPI)
	}
	if spec.Info.Title != "Test API" || spec.Info.Version != "1.0.0" {
		t.Errorf("info: got %+v", spec.Info)
	}
	if spec.Components == nil || spec.Components.Schemas["Error"] == nil {
		t.Fatal("components should carry the Error schema")
	}
	if spec.Paths == nil {
		t.Fatal("paths should not be nil")
	}
}

func TestAddOperation(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")
	get := &openapi.Operation{Summary: "get"}
	put := &openapi.Operation{Summary: "put"}

	spec.AddOperation(http.MethodGet, "/items/{id}", get)
	spec.AddOperation(http.MethodPut, "/items/{id}", put)
	spec.AddOperation(http.MethodPatch, "/items/{id}", &openapi.Operation{})

	item := spec.Paths["/items/{id}"]
	if item == nil {
		t.Fatal("path not added")
	}
	if item.Get != get || item.Put != put {
		t.Errorf("operations not attached: %+v", item)
	}
	if item.Post != nil || item.Delete != nil {
		t.Error("unexpected operations set")
	}
}

func TestHelpers(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"schema ref", openapi.SchemaRef("Property").Ref, "#/components/schemas/Property"},
		{"response ref", openapi.ResponseRef("NotFound").Ref, "#/components/responses/NotFound"},
		{"json body", openapi.RequestBodyJSON("Patch", true).Content["application/json"].Schema.Ref, "#/components/schemas/Patch"},
		{"json response", openapi.ResponseJSON("ok", "Property").Content["application/json"].Schema.Ref, "#/components/schemas/Property"},
		{"array items", openapi.ResponseArray("ok", "Property").Content["application/json"].Schema.Items.Ref, "#/components/schemas/Property"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %s, want %s", tt.got, tt.want)
			}
		})
	}
}

func TestPathParam(t *testing.T) {
	p := openapi.PathParam("id", "uuid", "Property ID")

	if p.In != "path" || !p.Required {
		t.Errorf("path params should be required: %+v", p)
	}
	if p.Schema.Type != "string" || p.Schema.Format != "uuid" {
		t.Errorf("schema: got type=%s format=%s", p.Schema.Type, p.Schema.Format)
	}
}

func TestServeSpec(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")
	spec.AddServer("/api")

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	rec := httptest.NewRecorder()
	openapi.ServeSpec(data)(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)

	var got map[string]any
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("body is not json: %v", err)
	}
	if got["openapi"] != "3.1.0" {
		t.Errorf("openapi = %v", got["openapi"])
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Setenv("TEST_OPENAPI_TITLE", "Listings")

	cfg := &openapi.Config{}
	if err := cfg.Finalize(&openapi.ConfigEnv{Title: "TEST_OPENAPI_TITLE"}); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if cfg.Title != "Listings" {
		t.Errorf("Title = %q, want env override", cfg.Title)
	}
	if cfg.Description == "" {
		t.Error("Description default not applied")
	}
}
