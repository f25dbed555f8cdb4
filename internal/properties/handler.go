package properties

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/JaimeStill/estate/pkg/formatting"
	"github.com/JaimeStill/estate/pkg/handlers"
	"github.com/JaimeStill/estate/pkg/pagination"
	"github.com/JaimeStill/estate/pkg/routes"
)

// imageField is the multipart field carrying the feature image.
const imageField = "featureImage"

// multipartMemory bounds the form bytes held in memory; the rest spills to disk.
const multipartMemory = 8 << 20

// Handler provides HTTP endpoints for property operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
	admin         func(http.Handler) http.Handler
}

// CountResponse is the body of the count endpoint.
type CountResponse struct {
	TotalProperties int `json:"totalProperties"`
}

// NewHandler creates a Handler. admin guards the mutating routes; nil leaves them open.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
	admin func(http.Handler) http.Handler,
) *Handler {
	if admin == nil {
		admin = func(next http.Handler) http.Handler { return next }
	}

	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "properties"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
		admin:         admin,
	}
}

// Routes returns the route group definition for property endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/property",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/property-count", Handler: h.Count, OpenAPI: Spec.Count},
			{Method: "GET", Pattern: "/properties", Handler: h.List, OpenAPI: Spec.List},
			{Method: "GET", Pattern: "/properties/page", Handler: h.Page, OpenAPI: Spec.Page},
			{Method: "GET", Pattern: "/properties/{id}", Handler: h.Find, OpenAPI: Spec.Find},
			{Method: "GET", Pattern: "/properties/builderName/{name}", Handler: h.ByBuilder, OpenAPI: Spec.ByBuilder},
			{Method: "GET", Pattern: "/residential_properties", Handler: h.category(CategoryResidential), OpenAPI: Spec.Residential},
			{Method: "GET", Pattern: "/Commercial_properties", Handler: h.category(CategoryCommercial), OpenAPI: Spec.Commercial},
			{Method: "POST", Pattern: "/filter_properties", Handler: h.Search, OpenAPI: Spec.Search},
		},
		Children: []routes.Group{
			{
				Middleware: []func(http.Handler) http.Handler{h.admin},
				Routes: []routes.Route{
					{Method: "POST", Pattern: "/propertyDetails", Handler: h.Create, OpenAPI: Spec.Create},
					{Method: "PUT", Pattern: "/propertyDetails/{id}", Handler: h.Update, OpenAPI: Spec.Update},
					{Method: "DELETE", Pattern: "/propertyDetails/{id}", Handler: h.Delete, OpenAPI: Spec.Delete},
				},
			},
		},
	}
}

// Create registers a property from a multipart form, urlencoded form, or JSON body.
// A multipart featureImage file becomes the record's image.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	patch, image, err := h.readPayload(w, r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	p, err := h.sys.Create(r.Context(), CreateCommand{Patch: patch, Image: image})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, p)
}

// Count returns the total number of records.
func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	n, err := h.sys.Count(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, CountResponse{TotalProperties: n})
}

// List returns every record.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.respondList(w)(h.sys.List(r.Context()))
}

// Page returns a page of records with optional search, sort, and filter query parameters.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	filter, err := FilterFromQuery(values)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	page := pagination.PageRequestFromQuery(values, h.pagination)

	result, err := h.sys.Page(r.Context(), page, filter)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single record by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	p, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, p)
}

// ByBuilder returns the records whose builderName matches the path parameter exactly.
func (h *Handler) ByBuilder(w http.ResponseWriter, r *http.Request) {
	h.respondList(w)(h.sys.ByBuilder(r.Context(), r.PathValue("name")))
}

// Search returns the records matching the supplied subset of {area, bhk, price}.
// The body may be JSON or a form; values may be numbers or numeric text.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	criteria, err := h.readCriteria(w, r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.respondList(w)(h.sys.Search(r.Context(), criteria))
}

// Update applies the supplied attributes to a record, replacing its image when
// a featureImage file accompanies the request.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	patch, image, err := h.readPayload(w, r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	p, err := h.sys.Update(r.Context(), id, UpdateCommand{Patch: patch, Image: image})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, p)
}

// Delete removes a record by its UUID path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) category(c Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.respondList(w)(h.sys.Category(r.Context(), c))
	}
}

func (h *Handler) respondList(w http.ResponseWriter) func([]Property, error) {
	return func(props []Property, err error) {
		if err != nil {
			handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
			return
		}
		if props == nil {
			props = []Property{}
		}
		handlers.RespondJSON(w, http.StatusOK, props)
	}
}

// readPayload decodes the request body into a Patch and an optional image.
func (h *Handler) readPayload(w http.ResponseWriter, r *http.Request) (Patch, *Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.bodyLimit())

	switch mediaType(r) {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return Patch{}, nil, h.bodyError(err)
		}
		image, err := formImage(r)
		if err != nil {
			return Patch{}, nil, err
		}
		return PatchFromValues(url.Values(r.MultipartForm.Value)), image, nil

	case "application/json":
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return Patch{}, nil, h.bodyError(err)
		}
		patch, err := PatchFromJSON(data)
		return patch, nil, err

	default:
		if err := r.ParseForm(); err != nil {
			return Patch{}, nil, h.bodyError(err)
		}
		return PatchFromValues(r.PostForm), nil, nil
	}
}

func (h *Handler) readCriteria(w http.ResponseWriter, r *http.Request) (SearchCriteria, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.bodyLimit())

	switch mediaType(r) {
	case "application/json":
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return SearchCriteria{}, h.bodyError(err)
		}
		if len(data) == 0 {
			return SearchCriteria{}, nil
		}
		return SearchCriteriaFromJSON(data)

	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return SearchCriteria{}, h.bodyError(err)
		}
		return SearchCriteriaFromValues(url.Values(r.MultipartForm.Value))

	default:
		if err := r.ParseForm(); err != nil {
			return SearchCriteria{}, h.bodyError(err)
		}
		return SearchCriteriaFromValues(r.Form)
	}
}

// bodyLimit allows the image plus headroom for the form fields.
func (h *Handler) bodyLimit() int64 {
	return h.maxUploadSize + 1<<20
}

func (h *Handler) bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: request body exceeds %s", ErrValidation, formatting.FormatBytes(tooLarge.Limit, 1))
	}
	return fmt.Errorf("%w: malformed request body: %v", ErrValidation, err)
}

func formImage(r *http.Request) (*Upload, error) {
	file, header, err := r.FormFile(imageField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrValidation, imageField, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrValidation, imageField, err)
	}

	return &Upload{Filename: header.Filename, Data: data}, nil
}

func mediaType(r *http.Request) string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return mt
}

func parseID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid property id %q", ErrValidation, r.PathValue("id"))
	}
	return id, nil
}
