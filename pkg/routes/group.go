package routes

import (
	"net/http"

	"github.com/JaimeStill/estate/pkg/middleware"
)

// Group organizes routes under a common prefix. Middleware wraps every route in the
// group and its children, outermost first.
type Group struct {
	Prefix     string
	Middleware []func(http.Handler) http.Handler
	Routes     []Route
	Children   []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		registerGroup(mux, "", nil, group)
	}
}

func registerGroup(mux *http.ServeMux, parentPrefix string, parentMW []func(http.Handler) http.Handler, group Group) {
	fullPrefix := parentPrefix + group.Prefix

	stack := make([]func(http.Handler) http.Handler, 0, len(parentMW)+len(group.Middleware))
	stack = append(stack, parentMW...)
	stack = append(stack, group.Middleware...)

	for _, route := range group.Routes {
		pattern := route.Method + " " + fullPrefix + route.Pattern
		mux.Handle(pattern, wrap(route.Handler, stack))
	}
	for _, child := range group.Children {
		registerGroup(mux, fullPrefix, stack, child)
	}
}

func wrap(h http.Handler, stack []func(http.Handler) http.Handler) http.Handler {
	return middleware.Chain(stack...)(h)
}
