package mocks

import (
	"context"

	"github.com/discussion-activity-api/internal/models"
)

// MockDiscussionService is a mock implementation of DiscussionService
type MockDiscussionService struct {
	Header     string
	Links      map[string]*models.ThreadLink
	Threads    []models.ThreadSummary
	Recent     *models.RecentComments
	Moderators map[string]bool
	Error      error

	ThreadQueries  []models.ThreadQuery
	CommentQueries []models.CommentQuery
	LinkCounts     []*int
}

func NewMockDiscussionService() *MockDiscussionService {
	return &MockDiscussionService{
		Header:     "Discussion",
		Links:      make(map[string]*models.ThreadLink),
		Threads:    []models.ThreadSummary{},
		Recent:     &models.RecentComments{Comments: []models.CommentSummary{}},
		Moderators: make(map[string]bool),
	}
}

func (m *MockDiscussionService) ColumnHeader() string {
	return m.Header
}

func (m *MockDiscussionService) ThreadLink(ctx context.Context, pageID string, count *int) (*models.ThreadLink, error) {
	m.LinkCounts = append(m.LinkCounts, count)
	if m.Error != nil {
		return nil, m.Error
	}
	if link, ok := m.Links[pageID]; ok {
		return link, nil
	}
	return &models.ThreadLink{Empty: true}, nil
}

func (m *MockDiscussionService) ListThreads(ctx context.Context, q models.ThreadQuery) ([]models.ThreadSummary, error) {
	m.ThreadQueries = append(m.ThreadQueries, q)
	if m.Error != nil {
		return nil, m.Error
	}
	return m.Threads, nil
}

func (m *MockDiscussionService) ListRecentComments(ctx context.Context, q models.CommentQuery) (*models.RecentComments, error) {
	m.CommentQueries = append(m.CommentQueries, q)
	if m.Error != nil {
		return nil, m.Error
	}
	return m.Recent, nil
}

func (m *MockDiscussionService) IsModerator(user models.RequestUser) bool {
	return m.Moderators[user.Name]
}
