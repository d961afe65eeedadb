package routes

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/hookstudio/internal/httpserver/deps"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type entry struct {
	name string
	reg  Registrar
}

var registry []entry

// Register adds a route group. Each file registers itself from init, so names
// must be unique.
func Register(name string, reg Registrar) {
	for _, e := range registry {
		if e.name == name {
			panic(fmt.Sprintf("routes: %q registered twice", name))
		}
	}
	registry = append(registry, entry{name: name, reg: reg})
}

// RegisterAll mounts every group on r. Called once from httpserver.Router.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, e := range registry {
		e.reg(r, d)
	}
}
