package slack

import (
	"context"
	"log/slog"
	"time"
)

// ServiceConfig holds the parameters needed to construct a Service.
type ServiceConfig struct {
	Token        string
	Channel      string
	DashboardURL string
}

// Service posts sandbox failure-streak alerts to Slack. It implements
// sandbox.FailureStreakObserver.
//
// Nil-safe: ObserveFailureStreak is a no-op when the Service is nil, so
// callers can wire it unconditionally even when Slack isn't configured.
type Service struct {
	client       *Client
	dashboardURL string
	logger       *slog.Logger
}

// NewService creates a new Slack notification service.
// Returns nil if Token or Channel is empty.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Token == "" || cfg.Channel == "" {
		return nil
	}
	return &Service{
		client:       NewClient(cfg.Token, cfg.Channel),
		dashboardURL: cfg.DashboardURL,
		logger:       slog.Default().With("component", "slack-service"),
	}
}

// NewServiceWithClient creates a Service backed by a pre-built Client.
// Useful for testing with a mock API server.
func NewServiceWithClient(client *Client, dashboardURL string) *Service {
	return &Service{
		client:       client,
		dashboardURL: dashboardURL,
		logger:       slog.Default().With("component", "slack-service"),
	}
}

// ObserveFailureStreak sends a Slack alert for the current consecutive
// sandbox-failure count. Fail-open: errors are logged, never returned.
func (s *Service) ObserveFailureStreak(streak int64) {
	if s == nil {
		return
	}

	blocks := BuildFailureStreakMessage(streak, s.dashboardURL)
	if err := s.client.PostMessage(context.Background(), blocks, 5*time.Second); err != nil {
		s.logger.Error("failed to send Slack failure-streak alert", "streak", streak, "error", err)
	}
}
