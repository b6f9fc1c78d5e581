package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"veritas-backend/internal/apierr"
	"veritas-backend/internal/handlers"
	"veritas-backend/internal/metrics"
	"veritas-backend/internal/middleware"
)

// Route binds a method and path to a handler. Method "*" matches any method.
type Route struct {
	Method  string
	Path    string
	Handler http.Handler
}

// Options are the optional parts of the router.
type Options struct {
	// FrontendURL is the single origin allowed by CORS. Empty disables CORS.
	FrontendURL string
	Metrics     *metrics.Collector
}

// Routes returns the route table in registration order.
func Routes(boundary *apierr.Boundary, chatHandler *handlers.ChatHandler, metricsHandler http.Handler) []Route {
	routes := []Route{
		{http.MethodGet, "/", http.HandlerFunc(handlers.Health)},
		{http.MethodPost, "/chat/", boundary.Handle(chatHandler.Complete)},
		{http.MethodPost, "/chat/trial", boundary.Handle(chatHandler.Trial)},
	}
	if metricsHandler != nil {
		routes = append(routes, Route{http.MethodGet, "/metrics", metricsHandler})
	}

	// The API group is a catch-all and must stay last.
	routes = append(routes, Route{"*", "/api/*", boundary.Handle(func(w http.ResponseWriter, r *http.Request) error {
		return apierr.NewHTTPError(http.StatusNotFound, fmt.Sprintf("no API route for %s %s", r.Method, r.URL.Path))
	})})
	return routes
}

// ValidateOrder rejects a table in which a catch-all route precedes a more
// specific one; such a route would never be reached.
func ValidateOrder(routes []Route) error {
	for i, catchAll := range routes {
		if !strings.HasSuffix(catchAll.Path, "/*") {
			continue
		}
		prefix := strings.TrimSuffix(catchAll.Path, "*")
		for _, later := range routes[i+1:] {
			if strings.HasPrefix(later.Path, prefix) && !strings.HasSuffix(later.Path, "/*") {
				return fmt.Errorf("route %s %s is registered after catch-all %s", later.Method, later.Path, catchAll.Path)
			}
		}
		if prefix == "/" && i != len(routes)-1 {
			return fmt.Errorf("catch-all %s must be the last route", catchAll.Path)
		}
	}
	return nil
}

// New builds the HTTP handler.
func New(
	logger *zap.Logger,
	boundary *apierr.Boundary,
	chatHandler *handlers.ChatHandler,
	opts Options,
) (http.Handler, error) {
	var metricsHandler http.Handler
	var observer middleware.RequestObserver
	if opts.Metrics != nil {
		metricsHandler = opts.Metrics.Handler()
		observer = opts.Metrics
	}

	routes := Routes(boundary, chatHandler, metricsHandler)
	if err := ValidateOrder(routes); err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger, observer))
	r.Use(chimiddleware.Recoverer)
	if opts.FrontendURL != "" {
		r.Use(middleware.CORS(opts.FrontendURL))
	}

	r.NotFound(boundary.Handle(func(w http.ResponseWriter, r *http.Request) error {
		return apierr.NewHTTPError(http.StatusNotFound, fmt.Sprintf("%s not found", r.URL.Path))
	}))
	r.MethodNotAllowed(boundary.Handle(func(w http.ResponseWriter, r *http.Request) error {
		return apierr.NewHTTPError(http.StatusMethodNotAllowed, fmt.Sprintf("%s is not allowed on %s", r.Method, r.URL.Path))
	}))

	for _, route := range routes {
		if route.Method == "*" {
			r.Handle(route.Path, route.Handler)
			continue
		}
		r.Method(route.Method, route.Path, route.Handler)
	}

	return r, nil
}
