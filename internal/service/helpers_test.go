package service_test

import (
	"testing"
	"time"

	"github.com/discussion-activity-api/internal/config"
	"github.com/discussion-activity-api/internal/metrics"
	"github.com/discussion-activity-api/internal/mocks"
	"github.com/discussion-activity-api/internal/models"
	"github.com/discussion-activity-api/internal/service"
	"github.com/rs/zerolog"
)

func ts(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func newComment(id, parent string, show bool, created int64) *models.Comment {
	return &models.Comment{
		ID:       id,
		ParentID: parent,
		Show:     show,
		Author:   models.Author{Name: "author-" + id},
		XHTML:    "<p>text of <em>" + id + "</em></p>",
		Created:  ts(created),
	}
}

func change(date int64, typ models.ChangeType, pageID, commentID string) *models.ChangelogRecord {
	return &models.ChangelogRecord{
		Date:    ts(date),
		IP:      "127.0.0.1",
		Type:    typ,
		PageID:  pageID,
		User:    "alice",
		Summary: "",
		Extra:   commentID,
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Discussion: config.DiscussionConfig{
			DefaultPageSize: 20,
			PageBaseURL:     "/doku.php",
			ModeratorGroups: "@mods, carol",
		},
		Auth: config.AuthConfig{ManagerGroups: "@admin"},
	}
}

func newTestService(t testing.TB, m *mocks.MockRepositories, cfg *config.Config) service.DiscussionService {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	services, err := service.NewServices(m.Repositories(), cfg, metrics.New(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewServices failed: %v", err)
	}
	return services.Discussion
}

func intPtr(n int) *int {
	return &n
}
