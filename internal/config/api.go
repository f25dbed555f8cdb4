package config

import (
	"fmt"

	"github.com/JaimeStill/estate/pkg/formatting"
	"github.com/JaimeStill/estate/pkg/middleware"
	"github.com/JaimeStill/estate/pkg/openapi"
	"github.com/JaimeStill/estate/pkg/pagination"
)

const (
	EnvAPIBasePath      = "ESTATE_API_BASE_PATH"
	EnvAPIMaxUploadSize = "ESTATE_API_MAX_UPLOAD_SIZE"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "ESTATE_CORS_ENABLED",
	Origins:          "ESTATE_CORS_ORIGINS",
	AllowedMethods:   "ESTATE_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "ESTATE_CORS_ALLOWED_HEADERS",
	AllowCredentials: "ESTATE_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "ESTATE_CORS_MAX_AGE",
}

var openAPIEnv = &openapi.ConfigEnv{
	Title:       "ESTATE_OPENAPI_TITLE",
	Description: "ESTATE_OPENAPI_DESCRIPTION",
}

var paginationEnv = &pagination.Env{
	DefaultPageSize: "ESTATE_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "ESTATE_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, upload limits, CORS, pagination, and API description settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
	OpenAPI       openapi.Config        `toml:"openapi"`
}

// MaxUploadSizeBytes returns the parsed image upload limit. Finalize guarantees it parses.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxUploadSize)
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.OpenAPI.Finalize(openAPIEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	mergeString(&c.BasePath, overlay.BasePath)
	mergeString(&c.MaxUploadSize, overlay.MaxUploadSize)

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "5MB"
	}
}

func (c *APIConfig) loadEnv() {
	envString(EnvAPIBasePath, &c.BasePath)
	envString(EnvAPIMaxUploadSize, &c.MaxUploadSize)
}

func (c *APIConfig) validate() error {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	return nil
}
