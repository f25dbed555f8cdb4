package routes

import "github.com/JaimeStill/estate/pkg/openapi"

// Describe adds every documented route in groups to spec. Paths are relative to
// the document's server URL, so they carry the same prefixes Register uses.
func Describe(spec *openapi.Spec, groups ...Group) {
	for _, group := range groups {
		describeGroup(spec, "", group)
	}
}

func describeGroup(spec *openapi.Spec, parentPrefix string, group Group) {
	fullPrefix := parentPrefix + group.Prefix

	for _, route := range group.Routes {
		if route.OpenAPI == nil {
			continue
		}
		spec.AddOperation(route.Method, fullPrefix+route.Pattern, route.OpenAPI)
	}
	for _, child := range group.Children {
		describeGroup(spec, fullPrefix, child)
	}
}
