package service

import (
	"context"

	"github.com/discussion-activity-api/internal/config"
	"github.com/discussion-activity-api/internal/metrics"
	"github.com/discussion-activity-api/internal/models"
	"github.com/discussion-activity-api/internal/repository"
	"github.com/rs/zerolog"
)

// DiscussionService defines the discussion listing operations
type DiscussionService interface {
	ColumnHeader() string
	ThreadLink(ctx context.Context, pageID string, count *int) (*models.ThreadLink, error)
	ListThreads(ctx context.Context, q models.ThreadQuery) ([]models.ThreadSummary, error)
	ListRecentComments(ctx context.Context, q models.CommentQuery) (*models.RecentComments, error)
	IsModerator(user models.RequestUser) bool
}

// Services holds all service interfaces
type Services struct {
	Discussion DiscussionService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, m *metrics.Metrics, log zerolog.Logger) (*Services, error) {
	phrases, err := LoadPhrases(cfg.Discussion.LangFile)
	if err != nil {
		return nil, err
	}

	return &Services{
		Discussion: newDiscussionService(repos, cfg, phrases, m, log),
	}, nil
}
