package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"fidakune/internal/snapshot"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// maxDocumentBytes bounds a downloaded snapshot.
const maxDocumentBytes = 32 << 20

type BreakerSettings struct {
	MaxFailures uint32
	OpenTimeout time.Duration
}

// HTTPSource downloads JSON snapshots. Consecutive failures open a circuit breaker so a dead
// endpoint is skipped quickly on later reloads.
type HTTPSource struct {
	VocabularyURL string
	GraphURL      string

	client  *http.Client
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewHTTPSource(vocabularyURL, graphURL string, timeout time.Duration, bs BreakerSettings, logger *zap.Logger) *HTTPSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bs.MaxFailures == 0 {
		bs.MaxFailures = 3
	}
	st := gobreaker.Settings{
		Name:    "snapshot-http",
		Timeout: bs.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bs.MaxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
	return &HTTPSource{
		VocabularyURL: vocabularyURL,
		GraphURL:      graphURL,
		client:        &http.Client{},
		timeout:       timeout,
		cb:            gobreaker.NewCircuitBreaker(st),
		logger:        logger,
	}
}

func (s *HTTPSource) Name() string {
	return "http"
}

func (s *HTTPSource) LoadVocabulary(ctx context.Context) (*snapshot.Vocabulary, error) {
	if s.VocabularyURL == "" {
		return nil, ErrNotProvided
	}
	data, err := s.fetch(ctx, s.VocabularyURL)
	if err != nil {
		return nil, err
	}
	return snapshot.DecodeVocabulary(data)
}

func (s *HTTPSource) LoadGraph(ctx context.Context) (*snapshot.Graph, error) {
	if s.GraphURL == "" {
		return nil, ErrNotProvided
	}
	data, err := s.fetch(ctx, s.GraphURL)
	if err != nil {
		return nil, err
	}
	return snapshot.DecodeGraph(data)
}

func (s *HTTPSource) fetch(ctx context.Context, url string) ([]byte, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	body, err := s.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
		}
		return io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("fetched snapshot", zap.String("url", url))
	return body.([]byte), nil
}
