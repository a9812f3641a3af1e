package api

import (
	"sync"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

var (
	mu      sync.Mutex
	locked  bool
	modules []ModuleFunc
	routes  []RouteFunc
)

// --- /api group modules (authenticated, DB-dependent) ---

// ModuleFunc registers routes on the /api group with DB access.
type ModuleFunc func(g *echo.Group, db *gorm.DB)

// RegisterModule registers an API module. Call from init() in API packages.
func RegisterModule(fn ModuleFunc) {
	mu.Lock()
	defer mu.Unlock()
	if locked {
		panic("api/registry: modules locked (register only during init)")
	}
	modules = append(modules, fn)
}

// ApplyModules calls all registered /api modules. Locks the registry.
func ApplyModules(g *echo.Group, db *gorm.DB) {
	mu.Lock()
	list := modules
	locked = true
	mu.Unlock()
	for _, fn := range list {
		fn(g, db)
	}
}

// --- Root-level routes (public: health, etc.) ---

// RouteFunc registers routes on the root Echo instance.
type RouteFunc func(e *echo.Echo, db *gorm.DB)

// RegisterRoute registers a root-level route module. Call from init().
func RegisterRoute(fn RouteFunc) {
	mu.Lock()
	defer mu.Unlock()
	if locked {
		panic("api/registry: routes locked (register only during init)")
	}
	routes = append(routes, fn)
}

// RegisterGET is shorthand for registering a simple GET route on root.
func RegisterGET(path string, handler echo.HandlerFunc) {
	RegisterRoute(func(e *echo.Echo, _ *gorm.DB) {
		e.GET(path, handler)
	})
}

// ApplyRoutes calls all registered root-level routes.
func ApplyRoutes(e *echo.Echo, db *gorm.DB) {
	mu.Lock()
	list := routes
	mu.Unlock()
	for _, fn := range list {
		fn(e, db)
	}
}
