package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/swiftchat-web/gateway"
	"github.com/jrsteele09/swiftchat-web/internal/config"
	"github.com/jrsteele09/swiftchat-web/internal/metrics"
	"github.com/jrsteele09/swiftchat-web/session"
	"github.com/jrsteele09/swiftchat-web/storage"
	"github.com/jrsteele09/swiftchat-web/tokens"
	"github.com/jrsteele09/swiftchat-web/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Deps are the long-lived resources a Server is built on
type Deps struct {
	// Durable holds browser storage that survives restarts (Postgres or memory)
	Durable storage.Backend
	// Scoped holds browser storage that is dropped with the browser context's controller
	Scoped storage.Backend
	// Registerer and Gatherer default to a fresh prometheus registry
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	// Transport overrides the outbound transport to the backend
	Transport http.RoundTripper
}

type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	roles     users.Roles
	durable   storage.Backend
	scoped    storage.Backend
	transport http.RoundTripper
	registry  *session.Registry
	limiter   *RateLimiter
	metrics   *metrics.Collector
	gatherer  prometheus.Gatherer
}

func New(config config.Config, deps Deps) (*Server, error) {
	if deps.Durable == nil && deps.Scoped == nil {
		return nil, fmt.Errorf("[Server New] no browser storage configured")
	}
	if deps.Registerer == nil {
		reg := prometheus.NewRegistry()
		deps.Registerer, deps.Gatherer = reg, reg
	}

	s := &Server{
		env:       config.GetEnv(),
		mux:       http.NewServeMux(),
		config:    config,
		roles:     users.RolesFrom(config),
		durable:   deps.Durable,
		scoped:    deps.Scoped,
		transport: deps.Transport,
		metrics:   metrics.NewCollector(deps.Registerer),
		gatherer:  deps.Gatherer,
	}
	s.registry = session.NewRegistry(s.controllerFactory, config.GetIdleSessionTTL(),
		session.WithEvictHook(s.purgeScoped),
		session.WithRegistryRecorder(s.metrics),
	)
	s.limiter = NewRateLimiter(RateLimiterConfig{
		PerMinute:       config.GetAuthSubmitsPerMinute(),
		CleanupInterval: config.GetIdleSessionTTL(),
	}, s.metrics)

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

// Close stops the background loops
func (s *Server) Close() {
	s.registry.Stop()
	s.limiter.Stop()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colourMethod(method), path)
}

// storesFor binds the token and user stores to one browser context's storage partition
func (s *Server) storesFor(browserID string) (*tokens.Store, *users.Store) {
	durable := storage.NewArea(s.durable, browserID)
	scoped := storage.NewArea(s.scoped, browserID)
	return tokens.NewStore(durable, scoped), users.NewStore(durable, scoped, s.roles)
}

// gatewayFor builds a backend client that authenticates as the given browser context
func (s *Server) gatewayFor(browserID string) *gateway.Client {
	tokenStore, userStore := s.storesFor(browserID)
	return s.newGateway(tokenStore, userStore)
}

func (s *Server) newGateway(tokenStore *tokens.Store, userStore *users.Store) *gateway.Client {
	return gateway.New(s.config.GetAPIBaseURL(), tokenStore, userStore,
		gateway.WithTimeout(s.config.GetRequestTimeout()),
		gateway.WithTransport(s.transport),
		gateway.WithRecorder(s.metrics),
	)
}

func (s *Server) controllerFactory(browserID string) *session.Controller {
	tokenStore, userStore := s.storesFor(browserID)
	return session.NewController(browserID, tokenStore, userStore, s.newGateway(tokenStore, userStore),
		session.WithRecorder(s.metrics),
		session.WithResolveTimeout(s.config.GetRequestTimeout()),
	)
}

// purgeScoped drops the session-scoped partition of an evicted browser context
func (s *Server) purgeScoped(browserID string) {
	purger, ok := s.scoped.(storage.Purger)
	if !ok {
		return
	}
	if err := purger.Purge(context.Background(), browserID); err != nil {
		log.Warn().Err(err).Str("browser", browserID).Msg("Failed to purge session storage")
	}
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
