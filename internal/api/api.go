// Package api assembles the API module with the property domain and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/estate/internal/config"
	"github.com/JaimeStill/estate/pkg/middleware"
	"github.com/JaimeStill/estate/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, runtime *Runtime, domain *Domain) *module.Module {
	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.Recover(runtime.Logger))
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m
}
