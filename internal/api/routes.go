package api

import (
	"net/http"

	"github.com/JaimeStill/estate/internal/config"
	"github.com/JaimeStill/estate/internal/properties"
	"github.com/JaimeStill/estate/pkg/openapi"
	"github.com/JaimeStill/estate/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	groups := []routes.Group{
		domain.Properties.Handler(
			cfg.API.MaxUploadSizeBytes(),
			runtime.Auth.RequireAdmin(),
		).Routes(),
		newUploadsHandler(domain.Assets, runtime.Logger).routes(),
	}

	routes.Register(mux, groups...)

	spec, err := buildSpec(cfg, groups)
	if err != nil {
		runtime.Logger.Error("openapi document unavailable", "error", err)
		return
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(spec))
}

func buildSpec(cfg *config.Config, groups []routes.Group) ([]byte, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)
	spec.Components.AddSchemas(properties.Schemas())

	routes.Describe(spec, groups...)

	return openapi.MarshalJSON(spec)
}
