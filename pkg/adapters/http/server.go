package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/aretw0/wikicard"
	"github.com/aretw0/wikicard/api"
	"github.com/aretw0/wikicard/internal/logging"
	"github.com/aretw0/wikicard/internal/sysinfo"
	"github.com/aretw0/wikicard/pkg/buildinfo"
	"github.com/aretw0/wikicard/pkg/domain"
)

// TraceHeader carries the caller's trace id. One is generated when absent.
const TraceHeader = "X-Trace-Id"

// Bot is the subset of wikicard.Bot served over HTTP.
type Bot interface {
	RandomArticle(ctx context.Context, traceID string) (*domain.Article, error)
	Article(ctx context.Context, title, traceID string) (*domain.Article, error)
	Seen(ctx context.Context, id string) (bool, error)
	RandomCard(ctx context.Context, theme *domain.Theme, traceID string) (*wikicard.Card, error)
	TitleCard(ctx context.Context, title string, theme *domain.Theme, traceID string) (*wikicard.Card, error)
}

// Recorder counts served requests by route pattern.
type Recorder interface {
	RecordHTTP(route string, code int)
}

// Server holds the handlers of the HTTP API.
type Server struct {
	Bot     Bot
	logger  *slog.Logger
	metrics http.Handler
	rec     Recorder
	timeout time.Duration
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts handler on /metrics and counts requests with rec.
func WithMetrics(handler http.Handler, rec Recorder) Option {
	return func(s *Server) {
		s.metrics = handler
		s.rec = rec
	}
}

// WithRequestTimeout bounds each request, rendering included.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.timeout = d
	}
}

// NewHandler creates the HTTP handler for the bot.
func NewHandler(bot Bot, opts ...Option) http.Handler {
	s := &Server{
		Bot:     bot,
		logger:  logging.NewNop(),
		timeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)
	if s.timeout > 0 {
		r.Use(middleware.Timeout(s.timeout))
	}

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/status", s.GetStatus)
	r.Get("/wikipedia/random", s.GetRandomArticle)
	r.Get("/wikipedia/summary/{title}", s.GetArticleSummary)
	r.Get("/cards/random.png", s.GetRandomCard)
	r.Get("/cards/{file}", s.GetTitleCard)
	r.Get("/history/{id}", s.GetHistory)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	// Swagger UI
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(api.Spec())
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+TraceHeader)
		w.Header().Set("Access-Control-Expose-Headers", TraceHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type traceKey struct{}

// instrument assigns the trace id, logs the request and counts it by route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		w.Header().Set(TraceHeader, traceID)

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), traceKey{}, traceID)))

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if s.rec != nil {
			s.rec.RecordHTTP(route, status)
		}
		s.logger.Debug("HTTP request",
			"trace_id", traceID,
			"method", r.Method,
			"route", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func traceIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>wikicard API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := api.GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	} else if err != nil {
		s.logger.Error("Failed to load OpenAPI spec", "err", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         buildinfo.Name + "-http",
		"version":     buildinfo.Version,
		"api_version": apiVersion,
		"uptime":      sysinfo.FormatUptime(sysinfo.Uptime()),
	})
}

// GetStatus handles the GET /status request.
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sysinfo.Collect(r.Context()))
}

// GetRandomArticle handles the GET /wikipedia/random request.
func (s *Server) GetRandomArticle(w http.ResponseWriter, r *http.Request) {
	traceID := traceIDFrom(r.Context())
	article, err := s.Bot.RandomArticle(r.Context(), traceID)
	if err != nil {
		s.writeError(w, traceID, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// GetArticleSummary handles the GET /wikipedia/summary/{title} request.
func (s *Server) GetArticleSummary(w http.ResponseWriter, r *http.Request) {
	traceID := traceIDFrom(r.Context())
	title, err := pathParam(r, "title")
	if err != nil || title == "" {
		s.writeBadRequest(w, traceID, "invalid title")
		return
	}

	article, err := s.Bot.Article(r.Context(), title, traceID)
	if err != nil {
		s.writeError(w, traceID, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// GetRandomCard handles the GET /cards/random.png request.
func (s *Server) GetRandomCard(w http.ResponseWriter, r *http.Request) {
	traceID := traceIDFrom(r.Context())
	theme, err := domain.ParseTheme(r.URL.Query().Get("theme"))
	if err != nil {
		s.writeBadRequest(w, traceID, err.Error())
		return
	}

	c, err := s.Bot.RandomCard(r.Context(), &theme, traceID)
	if err != nil {
		s.writeError(w, traceID, err)
		return
	}
	writePNG(w, c)
}

// GetTitleCard handles the GET /cards/{title}.png request.
func (s *Server) GetTitleCard(w http.ResponseWriter, r *http.Request) {
	traceID := traceIDFrom(r.Context())
	file, err := pathParam(r, "file")
	if err != nil || !strings.HasSuffix(file, ".png") {
		http.NotFound(w, r)
		return
	}
	title := strings.TrimSuffix(file, ".png")
	if title == "" {
		s.writeBadRequest(w, traceID, "invalid title")
		return
	}
	theme, err := domain.ParseTheme(r.URL.Query().Get("theme"))
	if err != nil {
		s.writeBadRequest(w, traceID, err.Error())
		return
	}

	c, err := s.Bot.TitleCard(r.Context(), title, &theme, traceID)
	if err != nil {
		s.writeError(w, traceID, err)
		return
	}
	writePNG(w, c)
}

// GetHistory handles the GET /history/{id} request.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	traceID := traceIDFrom(r.Context())
	id, err := pathParam(r, "id")
	if err != nil || id == "" {
		s.writeBadRequest(w, traceID, "invalid id")
		return
	}

	seen, err := s.Bot.Seen(r.Context(), id)
	if err != nil {
		s.writeError(w, traceID, domain.NewError(domain.KindSourceUnavailable, "history_lookup", "history store unavailable", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "seen": seen})
}

// -- Helpers --

type errorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	TraceID string `json:"trace_id,omitempty"`
}

// StatusFor maps a domain error to an HTTP status code.
// An expired deadline wins over the kind it was reported as.
func StatusFor(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindSourceUnavailable:
		return http.StatusBadGateway
	case domain.KindExhaustedRetries:
		return http.StatusServiceUnavailable
	case domain.KindRenderFailed:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// publicMessage is the text clients see. Upstream and renderer details stay in the log.
func publicMessage(err error, status int) string {
	if status == http.StatusGatewayTimeout {
		return "request timed out"
	}
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return "article not found"
	case domain.KindSourceUnavailable:
		return "wikipedia is unavailable, try again later"
	case domain.KindExhaustedRetries:
		return "no unseen article found, try again"
	case domain.KindRenderFailed:
		return "card could not be rendered"
	default:
		return "internal error"
	}
}

func (s *Server) writeError(w http.ResponseWriter, traceID string, err error) {
	status := StatusFor(err)
	if status >= 500 {
		s.logger.Error("Request failed", "trace_id", traceID, "status", status, "err", err)
	} else {
		s.logger.Warn("Request failed", "trace_id", traceID, "status", status, "err", err)
	}
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	writeJSON(w, status, errorResponse{
		Error:   publicMessage(err, status),
		Kind:    domain.KindOf(err).String(),
		TraceID: traceID,
	})
}

func (s *Server) writeBadRequest(w http.ResponseWriter, traceID, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Kind: "bad_request", TraceID: traceID})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "err", err)
	}
}

func writePNG(w http.ResponseWriter, c *wikicard.Card) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Wikicard-Page-Id", c.Article.ID)
	w.Header().Set("X-Wikicard-Layout", string(c.Spec.Layout))
	w.WriteHeader(http.StatusOK)
	w.Write(c.PNG)
}

func pathParam(r *http.Request, name string) (string, error) {
	return url.PathUnescape(chi.URLParam(r, name))
}
