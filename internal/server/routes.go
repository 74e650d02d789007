package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/tabula/tabula/internal/agent"
	"github.com/tabula/tabula/internal/config"
	"github.com/tabula/tabula/internal/dataset"
	"github.com/tabula/tabula/internal/handler"
	"github.com/tabula/tabula/internal/middleware"
	"github.com/tabula/tabula/internal/security"
	"github.com/tabula/tabula/internal/service"
)

// NewQueryService seeds the configured table and builds the query service,
// with the intent agent when it is configured. The CLI shares this path.
func NewQueryService(cfg *config.Config) (*service.QueryService, *dataset.Catalog, error) {
	catalog := dataset.NewCatalog()
	catalog.Register(cfg.DatasetTable, dataset.SeedLoader(cfg.DatasetRows, cfg.DatasetSeed))
	if err := catalog.Warm(); err != nil {
		return nil, nil, fmt.Errorf("load dataset: %w", err)
	}

	var opts []service.Option
	if cfg.LLMEnabled() {
		intentAgent := agent.NewIntentAgent(agent.Config{
			APIKey:  cfg.AnthropicAPIKey,
			BaseURL: cfg.AnthropicBaseURL,
			Model:   cfg.AnthropicModel,
			Timeout: cfg.AgentTimeout,
		}, catalog, cfg.DatasetTable)
		opts = append(opts, service.WithTranslator(intentAgent))
	} else if cfg.EnableLLMExtraction {
		log.Warn().Msg("ANTHROPIC_API_KEY not set - intent agent disabled")
	}

	return service.NewQueryService(catalog, cfg.DatasetTable, opts...), catalog, nil
}

func (s *Server) setupRoutes() (http.Handler, error) {
	cfg := s.cfg

	// ─── Services ───────────────────────────────────────────────────────────────
	querySvc, catalog, err := NewQueryService(cfg)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("table", cfg.DatasetTable).
		Int("rows", cfg.DatasetRows).
		Bool("intent_agent", cfg.LLMEnabled()).
		Bool("auth_enabled", cfg.EnableAuth).
		Bool("audit_logging", cfg.EnableAuditLogging).
		Int("rate_limit_per_minute", cfg.RateLimitPerMinute).
		Msg("service configuration")

	if cfg.EnableAuth && len(cfg.APIKeys) == 0 {
		log.Warn().Msg("WARNING: auth enabled but no API keys configured - all API requests will be rejected")
	}

	auditLogger := security.NewAuditLogger(cfg.EnableAuditLogging)

	// ─── Handlers ────────────────────────────────────────────────────────────────
	healthH := handler.NewHealthHandler(catalog, cfg.DatasetTable, cfg.LLMEnabled())
	tablesH := handler.NewTablesHandler(catalog)
	queryH := handler.NewQueryHandler(querySvc, auditLogger, cfg.APIKeyHeader)

	// ─── Router ──────────────────────────────────────────────────────────────────
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins, cfg.APIKeyHeader)))

	// Public routes
	r.Get("/health", healthH.Health)
	r.Get("/", healthH.Health)

	// Limited before auth: unknown keys share their IP's bucket.
	var identify func(*http.Request) string
	if cfg.EnableAuth {
		identify = middleware.KeyIdentity(cfg.APIKeys, cfg.APIKeyHeader)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, identify))
		if cfg.EnableAuth {
			r.Use(middleware.Auth(cfg.APIKeys, cfg.APIKeyHeader))
		}

		r.Route(cfg.APIPrefix, func(r chi.Router) {
			r.Post("/validate", queryH.Validate)
			r.Post("/explain", queryH.Explain)
			r.Post("/query", queryH.Query)

			r.Get("/tables", tablesH.ListTables)
			r.Get("/tables/{table}", tablesH.GetTable)
		})
	})

	return r, nil
}
