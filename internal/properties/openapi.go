package properties

import (
	"maps"

	"github.com/JaimeStill/estate/pkg/openapi"
)

type docs struct {
	Count       *openapi.Operation
	List        *openapi.Operation
	Page        *openapi.Operation
	Find        *openapi.Operation
	ByBuilder   *openapi.Operation
	Residential *openapi.Operation
	Commercial  *openapi.Operation
	Search      *openapi.Operation
	Create      *openapi.Operation
	Update      *openapi.Operation
	Delete      *openapi.Operation
}

var tags = []string{"Properties"}

var idParam = openapi.PathParam("id", "uuid", "Property ID")

var listResponses = map[int]*openapi.Response{
	200: openapi.ResponseArray("Matching properties", "Property"),
	500: openapi.ResponseRef("ServerError"),
}

var adminResponses = map[int]*openapi.Response{
	401: openapi.ResponseRef("Unauthorized"),
	403: openapi.ResponseRef("Forbidden"),
}

func withAdmin(responses map[int]*openapi.Response) map[int]*openapi.Response {
	maps.Copy(responses, adminResponses)
	return responses
}

// payloadBody documents the create and update body. Multipart requests may carry
// the image in the featureImage file field.
var payloadBody = &openapi.RequestBody{
	Required: true,
	Content: map[string]*openapi.MediaType{
		"multipart/form-data":               {Schema: openapi.SchemaRef("PropertyForm")},
		"application/x-www-form-urlencoded": {Schema: openapi.SchemaRef("PropertyPatch")},
		"application/json":                  {Schema: openapi.SchemaRef("PropertyPatch")},
	},
}

// Spec documents each property route.
var Spec = docs{
	Count: &openapi.Operation{
		Tags:    tags,
		Summary: "Count properties",
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Record count", "PropertyCount"),
			500: openapi.ResponseRef("ServerError"),
		},
	},
	List: &openapi.Operation{
		Tags:      tags,
		Summary:   "List all properties",
		Responses: listResponses,
	},
	Page: &openapi.Operation{
		Tags:    tags,
		Summary: "Page through properties",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number (1-indexed)", false),
			openapi.QueryParam("page_size", "integer", "Results per page", false),
			openapi.QueryParam("search", "string", "Substring match over title, location and builder", false),
			openapi.QueryParam("sort", "string", "Comma-separated sort fields, - prefix for descending", false),
			openapi.QueryParam("propertyType", "string", "Exact property type", false),
			openapi.QueryParam("builderName", "string", "Exact builder name", false),
			openapi.QueryParam("area", "number", "Exact area", false),
			openapi.QueryParam("bhk", "integer", "Exact BHK count", false),
			openapi.QueryParam("price", "number", "Exact price", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Property page", "PropertyPage"),
			400: openapi.ResponseRef("BadRequest"),
			500: openapi.ResponseRef("ServerError"),
		},
	},
	Find: &openapi.Operation{
		Tags:       tags,
		Summary:    "Find a property by ID",
		Parameters: []*openapi.Parameter{idParam},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Property", "Property"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	ByBuilder: &openapi.Operation{
		Tags:       tags,
		Summary:    "List properties by builder",
		Parameters: []*openapi.Parameter{openapi.PathParam("name", "", "Exact builder name")},
		Responses:  listResponses,
	},
	Residential: &openapi.Operation{
		Tags:      tags,
		Summary:   "List residential properties",
		Responses: listResponses,
	},
	Commercial: &openapi.Operation{
		Tags:      tags,
		Summary:   "List commercial properties",
		Responses: listResponses,
	},
	Search: &openapi.Operation{
		Tags:        tags,
		Summary:     "Search by area, BHK and price",
		Description: "Supplied criteria must all match exactly. Empty values are ignored.",
		RequestBody: openapi.RequestBodyJSON("SearchCriteria", false),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseArray("Matching properties", "Property"),
			400: openapi.ResponseRef("BadRequest"),
			500: openapi.ResponseRef("ServerError"),
		},
	},
	Create: &openapi.Operation{
		Tags:        tags,
		Summary:     "Create a property",
		RequestBody: payloadBody,
		Responses: withAdmin(map[int]*openapi.Response{
			201: openapi.ResponseJSON("Created property", "Property"),
			400: openapi.ResponseRef("BadRequest"),
			500: openapi.ResponseRef("ServerError"),
		}),
	},
	Update: &openapi.Operation{
		Tags:        tags,
		Summary:     "Update a property",
		Description: "Only supplied attributes change. A new featureImage replaces the stored one.",
		Parameters:  []*openapi.Parameter{idParam},
		RequestBody: payloadBody,
		Responses: withAdmin(map[int]*openapi.Response{
			200: openapi.ResponseJSON("Updated property", "Property"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			500: openapi.ResponseRef("ServerError"),
		}),
	},
	Delete: &openapi.Operation{
		Tags:       tags,
		Summary:    "Delete a property and its image",
		Parameters: []*openapi.Parameter{idParam},
		Responses: withAdmin(map[int]*openapi.Response{
			204: {Description: "Property deleted"},
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			500: openapi.ResponseRef("ServerError"),
		}),
	},
}

// Schemas returns the component schemas referenced by Spec.
func Schemas() map[string]*openapi.Schema {
	text := func(desc string) *openapi.Schema { return &openapi.Schema{Type: "string", Description: desc} }
	integer := &openapi.Schema{Type: "integer"}
	number := &openapi.Schema{Type: "number"}

	attributes := map[string]*openapi.Schema{
		"propertyTitle":       text("Listing title"),
		"propertyType":        text("Category name, for example Resedentil or Commercial"),
		"propertyDescription": text(""),
		"builderName":         text(""),
		"propertyID":          text("Client-supplied reference"),
		"parentProperty":      text(""),
		"status":              text(""),
		"label":               text(""),
		"material":            text(""),
		"location":            text(""),
		"pinCode":             text(""),
		"builtDimentions":     text(""),
		"rooms":               integer,
		"bedsroom":            integer,
		"kitchen":             integer,
		"bhk":                 integer,
		"yearBuilt":           integer,
		"totalhomeArea":       number,
		"openArea":            number,
		"price":               number,
		"area":                number,
		"amenities":           {Type: "array", Items: &openapi.Schema{Type: "string"}},
	}

	record := map[string]*openapi.Schema{
		"id":           {Type: "string", Format: "uuid"},
		"featureImage": text("Image reference served under /uploads"),
		"createdAt":    {Type: "string", Format: "date-time"},
		"updatedAt":    {Type: "string", Format: "date-time"},
	}
	maps.Copy(record, attributes)

	form := map[string]*openapi.Schema{
		"featureImage": {Type: "string", Format: "binary"},
	}
	maps.Copy(form, attributes)
	form["amenities"] = text("Comma-separated amenity tags")

	return map[string]*openapi.Schema{
		"Property":      {Type: "object", Properties: record},
		"PropertyPatch": {Type: "object", Properties: attributes},
		"PropertyForm":  {Type: "object", Properties: form},
		"PropertyCount": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"totalProperties": integer,
			},
		},
		"PropertyPage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data":        {Type: "array", Items: openapi.SchemaRef("Property")},
				"total":       integer,
				"page":        integer,
				"page_size":   integer,
				"total_pages": integer,
			},
		},
		"SearchCriteria": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"area":  number,
				"bhk":   integer,
				"price": number,
			},
		},
	}
}
