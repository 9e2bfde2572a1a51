package acquisition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/wikicard/internal/logging"
	"github.com/aretw0/wikicard/pkg/domain"
	"github.com/aretw0/wikicard/pkg/ports"
)

// DefaultMaxAttempts is the dedup budget of FetchRandom.
const DefaultMaxAttempts = 5

const (
	opFetchRandom  = "fetch_random"
	opFetchByTitle = "fetch_by_title"
)

// Recorder receives acquisition metrics. Implementations must be safe for concurrent use.
type Recorder interface {
	RecordAttempt()
	RecordDuplicate()
	RecordFetch(op string, kind domain.ErrorKind, d time.Duration)
	RecordHistoryWrite(ok bool)
}

// Service fetches novel articles. It holds its collaborators by reference and no mutable state.
type Service struct {
	source      ports.ArticleSource
	history     ports.HistoryStore
	maxAttempts int
	logger      *slog.Logger
	recorder    Recorder
	now         func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithLogger configures a logger for the Service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMaxAttempts overrides the dedup budget. Values below 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithMetrics enables metrics recording.
func WithMetrics(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithClock sets the time source used to stamp history records.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a Service reading from source and checking against history.
func New(source ports.ArticleSource, history ports.HistoryStore, opts ...Option) *Service {
	s := &Service{
		source:      source,
		history:     history,
		maxAttempts: DefaultMaxAttempts,
		logger:      logging.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchRandom returns a random article whose ID is not in the history store.
//
// Each attempt is a fresh independent draw. A duplicate moves on to the next attempt
// immediately; a source or history failure ends the call with domain.ErrSourceUnavailable.
// After MaxAttempts duplicates the call fails with domain.ErrExhaustedRetries.
func (s *Service) FetchRandom(ctx context.Context, traceID string) (*domain.Article, error) {
	start := time.Now()

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		attemptStart := time.Now()
		s.logger.Debug("Fetching random article",
			"trace_id", traceID,
			"attempt", attempt,
			"max_attempts", s.maxAttempts,
		)
		if s.recorder != nil {
			s.recorder.RecordAttempt()
		}

		article, err := s.source.Random(ctx)
		if err == nil && article == nil {
			err = errors.New("source returned no article")
		}
		if err != nil {
			s.logger.Error("Error fetching random article", "trace_id", traceID, "attempt", attempt, "err", err)
			return nil, s.fail(opFetchRandom, start, domain.NewError(
				domain.KindSourceUnavailable, opFetchRandom, "failed to fetch random article", err))
		}

		seen, err := s.history.Exists(ctx, article.ID)
		if err != nil {
			s.logger.Error("Error checking history", "trace_id", traceID, "page_id", article.ID, "err", err)
			return nil, s.fail(opFetchRandom, start, domain.NewError(
				domain.KindSourceUnavailable, opFetchRandom, "failed to check history", err))
		}

		if seen {
			s.logger.Warn("Article already distributed, drawing again",
				"trace_id", traceID,
				"page_id", article.ID,
				"title", article.Title,
				"attempt", attempt,
			)
			if s.recorder != nil {
				s.recorder.RecordDuplicate()
			}
			continue
		}

		s.logger.Debug("Random article fetched",
			"trace_id", traceID,
			"page_id", article.ID,
			"title", article.Title,
			"duration_ms", time.Since(attemptStart).Milliseconds(),
		)
		if s.recorder != nil {
			s.recorder.RecordFetch(opFetchRandom, domain.KindUnknown, time.Since(start))
		}
		normalized := normalizeArticle(*article)
		return &normalized, nil
	}

	s.logger.Error("No unseen article found", "trace_id", traceID, "attempts", s.maxAttempts)
	return nil, s.fail(opFetchRandom, start, domain.NewError(
		domain.KindExhaustedRetries, opFetchRandom,
		fmt.Sprintf("no unseen article after %d attempts", s.maxAttempts), nil))
}

// FetchByTitle returns the named article without deduplication.
// The title is cleaned by SanitizeTitle first; a title that cannot name a page
// fails like an unknown one.
// It fails with domain.ErrNotFound when the source does not know the title
// and with domain.ErrSourceUnavailable on any other failure.
func (s *Service) FetchByTitle(ctx context.Context, title, traceID string) (*domain.Article, error) {
	start := time.Now()
	s.logger.Debug("Fetching article by title", "trace_id", traceID, "title", title)

	clean, err := SanitizeTitle(title)
	if err != nil {
		s.logger.Warn("Rejected article title", "trace_id", traceID, "err", err)
		return nil, s.fail(opFetchByTitle, start, domain.NewError(
			domain.KindNotFound, opFetchByTitle, fmt.Sprintf("invalid title %q", title), err))
	}
	title = clean

	article, err := s.source.ByTitle(ctx, title)
	if err == nil && article == nil {
		err = errors.New("source returned no article")
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("Article not found", "trace_id", traceID, "title", title)
			return nil, s.fail(opFetchByTitle, start, domain.NewError(
				domain.KindNotFound, opFetchByTitle, fmt.Sprintf("no article titled %q", title), err))
		}
		s.logger.Error("Error fetching article", "trace_id", traceID, "title", title, "err", err)
		return nil, s.fail(opFetchByTitle, start, domain.NewError(
			domain.KindSourceUnavailable, opFetchByTitle, fmt.Sprintf("failed to fetch %q", title), err))
	}

	s.logger.Debug("Article fetched",
		"trace_id", traceID,
		"page_id", article.ID,
		"title", article.Title,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if s.recorder != nil {
		s.recorder.RecordFetch(opFetchByTitle, domain.KindUnknown, time.Since(start))
	}
	normalized := normalizeArticle(*article)
	return &normalized, nil
}

// RecordDistributed marks an article as distributed.
// Store failures are logged and absorbed: the user-facing action already succeeded.
func (s *Service) RecordDistributed(ctx context.Context, id, title, traceID string) {
	err := s.history.Record(ctx, domain.NewHistoryRecord(id, title, s.now()))
	if s.recorder != nil {
		s.recorder.RecordHistoryWrite(err == nil)
	}
	if err != nil {
		s.logger.Error("Error saving article to history",
			"trace_id", traceID,
			"page_id", id,
			"title", title,
			"err", err,
		)
		return
	}
	s.logger.Debug("Article saved to history", "trace_id", traceID, "page_id", id, "title", title)
}

// MaxAttempts returns the dedup budget.
func (s *Service) MaxAttempts() int {
	return s.maxAttempts
}

func (s *Service) fail(op string, start time.Time, err *domain.Error) error {
	if s.recorder != nil {
		s.recorder.RecordFetch(op, err.Kind, time.Since(start))
	}
	return err
}
