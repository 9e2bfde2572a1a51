package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/wikicard"
	"github.com/aretw0/wikicard/internal/logging"
	"github.com/aretw0/wikicard/internal/sysinfo"
	"github.com/aretw0/wikicard/pkg/buildinfo"
	"github.com/aretw0/wikicard/pkg/domain"
)

// ArticleResponse aligns with the OpenAPI Article schema so every adapter returns the same shape.
type ArticleResponse struct {
	ID          string        `json:"id" jsonschema_description:"Opaque page identifier"`
	Title       string        `json:"title" jsonschema_description:"Article title"`
	Extract     string        `json:"extract" jsonschema_description:"Whitespace-normalized plain text summary"`
	ExtractHTML string        `json:"extract_html" jsonschema_description:"Summary with source markup"`
	Image       *domain.Image `json:"image,omitempty" jsonschema_description:"Lead image, when present"`
	Seen        bool          `json:"seen" jsonschema_description:"Whether the article was already distributed"`
}

// Bot is the subset of wikicard.Bot used by the MCP server.
type Bot interface {
	RandomArticle(ctx context.Context, traceID string) (*domain.Article, error)
	Article(ctx context.Context, title, traceID string) (*domain.Article, error)
	Seen(ctx context.Context, id string) (bool, error)
	RandomCard(ctx context.Context, theme *domain.Theme, traceID string) (*wikicard.Card, error)
	TitleCard(ctx context.Context, title string, theme *domain.Theme, traceID string) (*wikicard.Card, error)
}

// Server exposes the Bot as an MCP server.
type Server struct {
	bot       Bot
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(bot Bot, opts ...Option) *Server {
	s := &Server{
		bot:       bot,
		mcpServer: server.NewMCPServer("wikicard-mcp", buildinfo.Version),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, mostly for in-process clients in tests.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: random_article
	randomTool := mcp.NewTool("random_article",
		mcp.WithDescription("Fetch a random Wikipedia article summary that has not been distributed yet. Does not mark it as distributed."),
		mcp.WithOutputSchema[ArticleResponse](),
	)
	s.mcpServer.AddTool(randomTool, mcp.NewStructuredToolHandler(s.handleRandomArticle))

	// TOOL: article_summary
	summaryTool := mcp.NewTool("article_summary",
		mcp.WithDescription("Fetch the summary of a Wikipedia article by title."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Exact article title, e.g. \"Alan Turing\"")),
		mcp.WithOutputSchema[ArticleResponse](),
	)
	s.mcpServer.AddTool(summaryTool, mcp.NewStructuredToolHandler(s.handleArticleSummary))

	// TOOL: render_card
	renderTool := mcp.NewTool("render_card",
		mcp.WithDescription("Render an article as a PNG card and mark it as distributed. Without a title a random unseen article is used."),
		mcp.WithString("title", mcp.Description("Article title (optional)")),
		mcp.WithString("theme", mcp.Description("Card theme"), mcp.Enum(string(domain.ThemeLight), string(domain.ThemeDark))),
	)
	s.mcpServer.AddTool(renderTool, s.handleRenderCard)
}

func (s *Server) handleRandomArticle(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ArticleResponse, error) {
	traceID := uuid.NewString()
	article, err := s.bot.RandomArticle(ctx, traceID)
	if err != nil {
		return ArticleResponse{}, describe(err)
	}
	return toResponse(*article, false), nil
}

func (s *Server) handleArticleSummary(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ArticleResponse, error) {
	title, _ := args["title"].(string)
	if title == "" {
		return ArticleResponse{}, errors.New("title is required")
	}

	traceID := uuid.NewString()
	article, err := s.bot.Article(ctx, title, traceID)
	if err != nil {
		return ArticleResponse{}, describe(err)
	}
	seen, err := s.bot.Seen(ctx, article.ID)
	if err != nil {
		s.logger.Warn("MCP: history lookup failed", "trace_id", traceID, "err", err)
	}
	return toResponse(*article, seen), nil
}

func (s *Server) handleRenderCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := request.GetString("title", "")
	theme, err := domain.ParseTheme(request.GetString("theme", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	traceID := uuid.NewString()
	var c *wikicard.Card
	if title == "" {
		c, err = s.bot.RandomCard(ctx, &theme, traceID)
	} else {
		c, err = s.bot.TitleCard(ctx, title, &theme, traceID)
	}
	if err != nil {
		s.logger.Error("MCP: render_card failed", "trace_id", traceID, "err", err)
		return mcp.NewToolResultError(describe(err).Error()), nil
	}

	return mcp.NewToolResultImage(
		fmt.Sprintf("%s (%s, %s)", c.Article.Title, c.Spec.Layout, c.Spec.Theme),
		base64.StdEncoding.EncodeToString(c.PNG),
		"image/png",
	), nil
}

func (s *Server) registerResources() {
	// EXPOSE: wikicard://status
	s.mcpServer.AddResource(mcp.NewResource("wikicard://status", "Service status",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(sysinfo.Collect(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to encode status: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "wikicard://status",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

func toResponse(a domain.Article, seen bool) ArticleResponse {
	return ArticleResponse{
		ID:          a.ID,
		Title:       a.Title,
		Extract:     a.ExtractPlain,
		ExtractHTML: a.ExtractHTML,
		Image:       a.Image,
		Seen:        seen,
	}
}

// describe turns a domain error into a message fit for an agent.
func describe(err error) error {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return fmt.Errorf("article not found: %v", err)
	case domain.KindExhaustedRetries:
		return fmt.Errorf("no unseen article available right now, try again: %v", err)
	case domain.KindSourceUnavailable:
		return fmt.Errorf("wikipedia is unreachable: %v", err)
	case domain.KindRenderFailed:
		return fmt.Errorf("card rendering failed: %v", err)
	default:
		return err
	}
}
