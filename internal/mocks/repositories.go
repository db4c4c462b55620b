package mocks

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/discussion-activity-api/internal/models"
	"github.com/discussion-activity-api/internal/repository"
)

// MockPage is a page held by MockPageRepository
type MockPage struct {
	Meta   models.PageMeta
	Hidden bool
}

// MockPageRepository is a mock implementation of PageRepository
type MockPageRepository struct {
	Pages        map[string]*MockPage
	ListError    error
	HiddenError  error
	ExistsCalls  int
	MetaCalls    int
	ListedRoots  []string
	ExtraListing []string // returned in addition to Pages, e.g. duplicates
}

func NewMockPageRepository() *MockPageRepository {
	return &MockPageRepository{
		Pages: make(map[string]*MockPage),
	}
}

// Add registers a page with a title
func (m *MockPageRepository) Add(id, title string) *MockPage {
	page := &MockPage{Meta: models.PageMeta{Title: title}}
	m.Pages[id] = page
	return page
}

func (m *MockPageRepository) ListPages(ctx context.Context, root string) ([]string, error) {
	m.ListedRoots = append(m.ListedRoots, root)
	if m.ListError != nil {
		return nil, m.ListError
	}
	var ids []string
	for id := range m.Pages {
		if root == "" || strings.HasPrefix(id, root+":") {
			ids = append(ids, id)
		}
	}
	return append(ids, m.ExtraListing...), nil
}

func (m *MockPageRepository) Exists(ctx context.Context, id string) (bool, error) {
	m.ExistsCalls++
	_, exists := m.Pages[id]
	return exists, nil
}

func (m *MockPageRepository) Locate(id string) string {
	return filepath.Join("/data/pages", strings.ReplaceAll(id, ":", "/")) + ".txt"
}

func (m *MockPageRepository) Metadata(ctx context.Context, id string) (*models.PageMeta, error) {
	m.MetaCalls++
	page, ok := m.Pages[id]
	if !ok {
		return nil, nil
	}
	meta := page.Meta
	return &meta, nil
}

func (m *MockPageRepository) IsHidden(ctx context.Context, id string) (bool, error) {
	if m.HiddenError != nil {
		return false, m.HiddenError
	}
	page, ok := m.Pages[id]
	return ok && page.Hidden, nil
}

// MockACLChecker is a mock implementation of ACLChecker
type MockACLChecker struct {
	Default models.Permission
	Levels  map[string]models.Permission // per page id
	Error   error
}

func NewMockACLChecker() *MockACLChecker {
	return &MockACLChecker{
		Default: models.PermRead,
		Levels:  make(map[string]models.Permission),
	}
}

func (m *MockACLChecker) PermissionLevel(ctx context.Context, user models.RequestUser, id string) (models.Permission, error) {
	if m.Error != nil {
		return models.PermNone, m.Error
	}
	if level, ok := m.Levels[id]; ok {
		return level, nil
	}
	return m.Default, nil
}

// MockCommentRecordRepository is a mock implementation of CommentRecordRepository
type MockCommentRecordRepository struct {
	Records   map[string]*models.PageCommentRecord
	Errors    map[string]error
	LoadCalls int
}

func NewMockCommentRecordRepository() *MockCommentRecordRepository {
	return &MockCommentRecordRepository{
		Records: make(map[string]*models.PageCommentRecord),
		Errors:  make(map[string]error),
	}
}

func (m *MockCommentRecordRepository) Load(ctx context.Context, pageID string) (*models.PageCommentRecord, error) {
	m.LoadCalls++
	if err := m.Errors[pageID]; err != nil {
		return nil, err
	}
	return m.Records[pageID], nil
}

// MockChangelog is a mock implementation of ChangelogReader.
// Lines are stored oldest first.
type MockChangelog struct {
	Lines   []string
	Error   error
	Visited int
}

func NewMockChangelog(lines ...string) *MockChangelog {
	return &MockChangelog{Lines: lines}
}

// Append adds a record as the newest line
func (m *MockChangelog) Append(rec *models.ChangelogRecord) {
	m.Lines = append(m.Lines, rec.String())
}

func (m *MockChangelog) Backward(ctx context.Context, visit func(line string) bool) error {
	if m.Error != nil {
		return m.Error
	}
	for i := len(m.Lines) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.Visited++
		if !visit(m.Lines[i]) {
			return nil
		}
	}
	return nil
}

// MockRepositories bundles one mock per collaborator
type MockRepositories struct {
	Pages     *MockPageRepository
	ACL       *MockACLChecker
	Comments  *MockCommentRecordRepository
	Changelog *MockChangelog
}

func NewMockRepositories() *MockRepositories {
	return &MockRepositories{
		Pages:     NewMockPageRepository(),
		ACL:       NewMockACLChecker(),
		Comments:  NewMockCommentRecordRepository(),
		Changelog: NewMockChangelog(),
	}
}

// Repositories exposes the mocks through the repository interfaces
func (m *MockRepositories) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Pages:     m.Pages,
		ACL:       m.ACL,
		Comments:  m.Comments,
		Changelog: m.Changelog,
	}
}
