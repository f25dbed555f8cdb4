package api

import (
	"github.com/JaimeStill/estate/internal/assets"
	"github.com/JaimeStill/estate/internal/properties"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Assets     assets.System
	Properties properties.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	images := assets.New(
		runtime.Storage,
		runtime.MaxUploadSize,
		runtime.Logger,
	)

	props := properties.New(
		runtime.Records,
		images,
		runtime.Logger,
		runtime.Pagination,
		properties.WithCache(runtime.Cache),
	)

	return &Domain{
		Assets:     images,
		Properties: props,
	}
}
