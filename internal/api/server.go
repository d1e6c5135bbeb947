package api

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/smazurov/alsaprobe/internal/api/models"
	"github.com/smazurov/alsaprobe/internal/audio"
	"github.com/smazurov/alsaprobe/internal/events"
	"github.com/smazurov/alsaprobe/internal/logging"
	"github.com/smazurov/alsaprobe/internal/probe"
	"github.com/smazurov/alsaprobe/internal/version"
)

// Prober runs one probe pass over every card. *probe.CardProbe satisfies it.
type Prober interface {
	Run(ctx context.Context) ([]probe.ProbeResult, error)
}

// Options configures the API server.
type Options struct {
	// Backend names the audio subsystem backend, reported by /api/health.
	Backend string

	Prober   Prober
	EventBus *events.Bus

	// ListPCM lists PCM devices. Defaults to audio.ListPCM.
	ListPCM func() ([]audio.Device, error)

	// PrometheusHandler is mounted at /metrics when set.
	PrometheusHandler http.Handler

	// Basic auth is enforced on the probe and stream endpoints when both are set.
	AuthUsername string
	AuthPassword string
}

// Server is the read-only HTTP API over the probe.
type Server struct {
	api        huma.API
	mux        *http.ServeMux
	httpServer *http.Server
	options    *Options
	prober     Prober
	eventBus   *events.Bus
	listPCM    func() ([]audio.Device, error)
	logger     *slog.Logger
}

// NewServer creates a new API server with Huma v2 using Go 1.22+ native routing.
func NewServer(opts *Options) *Server {
	mux := http.NewServeMux()

	corsConfig := DefaultCORSConfig()
	AddCORSHandler(mux, corsConfig)

	config := huma.DefaultConfig("alsaprobe API", version.String())
	config.Info.Description = "Read-only sound card probe: card names, mixer lifecycle status codes and PCM capabilities"
	// Empty servers list will make OpenAPI use relative paths, working with any host
	config.Servers = []*huma.Server{}
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"basicAuth": {
			Type:   "http",
			Scheme: "basic",
		},
	}

	api := humago.New(mux, config)

	listPCM := opts.ListPCM
	if listPCM == nil {
		listPCM = audio.ListPCM
	}

	server := &Server{
		api:      api,
		mux:      mux,
		options:  opts,
		prober:   opts.Prober,
		eventBus: opts.EventBus,
		listPCM:  listPCM,
		logger:   logging.GetLogger("api"),
	}
	server.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	api.UseMiddleware(NewCORSMiddleware(corsConfig))
	api.UseMiddleware(HTTPLoggingMiddleware)
	if opts.AuthUsername != "" && opts.AuthPassword != "" {
		api.UseMiddleware(server.basicAuthMiddleware(opts.AuthUsername, opts.AuthPassword))
	}

	if opts.PrometheusHandler != nil {
		mux.Handle("GET /metrics", opts.PrometheusHandler)
	}

	server.registerRoutes()
	return server
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// API returns the Huma API instance.
func (s *Server) API() huma.API {
	return s.api
}

// Serve accepts connections on ln until Stop is called.
func (s *Server) Serve(ln net.Listener) error {
	addr := ln.Addr().String()
	s.logger.Info("Starting API server", "addr", addr)
	s.logger.Info("OpenAPI documentation available", "url", "http://"+addr+"/docs")
	return s.httpServer.Serve(ln)
}

// Stop shuts the server down, waiting for in-flight requests until ctx is done.
// Open SSE streams end when their request contexts are cancelled.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return s.httpServer.Close()
	}
	return nil
}

// basicAuthMiddleware checks HTTP basic credentials on operations that
// declare a security requirement. SSE clients may pass the base64 pair in
// the "auth" query parameter.
func (s *Server) basicAuthMiddleware(username, password string) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		op := ctx.Operation()
		if op != nil && len(op.Security) == 0 {
			next(ctx)
			return
		}

		user, pass, ok := credentials(ctx)
		if !ok {
			ctx.SetHeader("WWW-Authenticate", `Basic realm="alsaprobe"`)
			huma.WriteErr(s.api, ctx, http.StatusUnauthorized, "Authentication required")
			return
		}
		userOK := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1
		if !userOK || !passOK {
			ctx.SetHeader("WWW-Authenticate", `Basic realm="alsaprobe"`)
			huma.WriteErr(s.api, ctx, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		next(ctx)
	}
}

// credentials extracts a user/password pair from the Authorization header or
// the auth query parameter.
func credentials(ctx huma.Context) (string, string, bool) {
	encoded := ctx.Query("auth")
	if header := ctx.Header("Authorization"); header != "" {
		const prefix = "Basic "
		if !strings.HasPrefix(header, prefix) {
			return "", "", false
		}
		encoded = header[len(prefix):]
	}
	if encoded == "" {
		return "", "", false
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", false
	}
	return strings.Cut(string(decoded), ":")
}

// registerRoutes sets up all API endpoints.
func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health",
		Description: "Check API health status",
		Tags:        []string{"system"},
		Security:    []map[string][]string{}, // Empty security = no auth required
	}, func(_ context.Context, _ *struct{}) (*models.HealthResponse, error) {
		return &models.HealthResponse{
			Body: models.HealthData{
				Status:  "ok",
				Message: "API is healthy",
				Backend: s.options.Backend,
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Description: "Get application version information",
		Tags:        []string{"system"},
		Security:    []map[string][]string{},
	}, func(_ context.Context, _ *struct{}) (*models.VersionResponse, error) {
		info := version.Get()
		return &models.VersionResponse{
			Body: models.VersionData{
				Version:   info.Version,
				GitCommit: info.GitCommit,
				BuildDate: info.BuildDate,
				BuildID:   info.BuildID,
				GoVersion: info.GoVersion,
				Compiler:  info.Compiler,
				Platform:  info.Platform,
			},
		}, nil
	})

	s.registerCardRoutes()
	s.registerPCMRoutes()
	if s.eventBus != nil {
		s.registerSSERoutes()
		s.registerLogRoutes()
	}
}

// withAuth returns security requirement for basic auth.
func withAuth() []map[string][]string {
	return []map[string][]string{
		{"basicAuth": {}},
	}
}
