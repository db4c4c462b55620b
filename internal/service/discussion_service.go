package service

import (
	"context"
	"errors"
	"time"

	"github.com/discussion-activity-api/internal/config"
	"github.com/discussion-activity-api/internal/metrics"
	"github.com/discussion-activity-api/internal/models"
	"github.com/discussion-activity-api/internal/repository"
	"github.com/rs/zerolog"
)

const (
	queryThreads  = "threads"
	queryComments = "comments"
	queryLink     = "link"
)

// discussionService is the concrete implementation of DiscussionService
type discussionService struct {
	repos   *repository.Repositories
	cfg     config.DiscussionConfig
	auth    config.AuthConfig
	phrases Phrases
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// newDiscussionService creates a new DiscussionService
func newDiscussionService(repos *repository.Repositories, cfg *config.Config, phrases Phrases, m *metrics.Metrics, log zerolog.Logger) *discussionService {
	return &discussionService{
		repos:   repos,
		cfg:     cfg.Discussion,
		auth:    cfg.Auth,
		phrases: phrases,
		metrics: m,
		log:     log.With().Str("service", "discussion").Logger(),
	}
}

// loadRecord returns the comment record of a page, or nil when it is absent
// or cannot be read
func (s *discussionService) loadRecord(ctx context.Context, query, pageID string) *models.PageCommentRecord {
	record, err := s.repos.Comments.Load(ctx, pageID)
	if err != nil {
		reason := metrics.SkipMissing
		if errors.Is(err, models.ErrMalformedRecord) {
			reason = metrics.SkipMalformed
		}
		s.log.Debug().Err(err).Str("page", pageID).Msg("Comment record unavailable")
		s.skip(query, reason)
		return nil
	}
	if record == nil {
		s.skip(query, metrics.SkipMissing)
	}
	return record
}

// canRead reports whether user may read the page; lookup failures deny
func (s *discussionService) canRead(ctx context.Context, query string, user models.RequestUser, pageID string) (models.Permission, bool) {
	perm, err := s.repos.ACL.PermissionLevel(ctx, user, pageID)
	if err != nil {
		s.log.Debug().Err(err).Str("page", pageID).Msg("Permission lookup failed")
		s.skip(query, metrics.SkipPermission)
		return models.PermNone, false
	}
	if perm < models.PermRead {
		s.skip(query, metrics.SkipPermission)
		return perm, false
	}
	return perm, true
}

func (s *discussionService) skip(query, reason string) {
	s.metrics.Skipped.WithLabelValues(query, reason).Inc()
}

func (s *discussionService) observe(query string, start time.Time, results int) {
	s.metrics.QueryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
	s.metrics.QueryResults.WithLabelValues(query).Observe(float64(results))
}

// IsModerator reports whether user is a manager or in a moderator group
func (s *discussionService) IsModerator(user models.RequestUser) bool {
	if user.Name == "" {
		return false
	}
	return IsMember(s.auth.ManagerGroups, user) || IsMember(s.cfg.ModeratorGroups, user)
}
