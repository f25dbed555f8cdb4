package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/estate/internal/assets"
	"github.com/JaimeStill/estate/pkg/handlers"
	"github.com/JaimeStill/estate/pkg/openapi"
	"github.com/JaimeStill/estate/pkg/routes"
)

// uploadsHandler serves stored property images by reference.
type uploadsHandler struct {
	images assets.System
	logger *slog.Logger
}

func newUploadsHandler(images assets.System, logger *slog.Logger) *uploadsHandler {
	return &uploadsHandler{
		images: images,
		logger: logger.With("handler", "uploads"),
	}
}

func (h *uploadsHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/uploads",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{ref}", Handler: h.serve, OpenAPI: serveSpec},
		},
	}
}

var serveSpec = &openapi.Operation{
	Tags:    []string{"Uploads"},
	Summary: "Download a property image",
	Parameters: []*openapi.Parameter{
		openapi.PathParam("ref", "", "Image reference from a record's featureImage"),
	},
	Responses: map[int]*openapi.Response{
		200: {Description: "Image bytes"},
		404: openapi.ResponseRef("NotFound"),
	},
}

func (h *uploadsHandler) serve(w http.ResponseWriter, r *http.Request) {
	blob, err := h.images.Open(r.Context(), r.PathValue("ref"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, assets.ErrNotFound) {
			status = http.StatusNotFound
		}
		handlers.RespondError(w, h.logger, status, err)
		return
	}
	defer blob.Body.Close()

	w.Header().Set("Content-Type", blob.ContentType)
	if blob.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(blob.ContentLength, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, blob.Body); err != nil {
		h.logger.Warn("upload stream interrupted", "ref", r.PathValue("ref"), "error", err)
	}
}
