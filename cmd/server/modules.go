package main

import (
	"encoding/json"
	"net/http"

	"github.com/JaimeStill/estate/internal/api"
	"github.com/JaimeStill/estate/internal/config"
	"github.com/JaimeStill/estate/internal/infrastructure"
	"github.com/JaimeStill/estate/pkg/module"
)

// Modules holds the mounted HTTP modules and the domain they serve.
type Modules struct {
	API    *module.Module
	Domain *api.Domain
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) *Modules {
	runtime := api.NewRuntime(cfg, infra)
	domain := api.NewDomain(runtime)

	return &Modules{
		API:    api.NewModule(cfg, runtime, domain),
		Domain: domain,
	}
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Check(infra.Checkers()...) {
			writeStatus(w, http.StatusServiceUnavailable, "not ready")
			return
		}
		if infra.Degraded() {
			writeStatus(w, http.StatusOK, "degraded")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})

	return router
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}
