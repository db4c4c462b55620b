package repository

import (
	"context"
	"fmt"

	"github.com/discussion-activity-api/internal/config"
	"github.com/discussion-activity-api/internal/database"
	"github.com/discussion-activity-api/internal/models"
	"github.com/redis/go-redis/v9"
)

// PageRepository defines page traversal, existence and metadata lookups
type PageRepository interface {
	ListPages(ctx context.Context, root string) ([]string, error)
	Exists(ctx context.Context, id string) (bool, error)
	Locate(id string) string
	Metadata(ctx context.Context, id string) (*models.PageMeta, error)
	IsHidden(ctx context.Context, id string) (bool, error)
}

// ACLChecker resolves the permission level of a user on a page
type ACLChecker interface {
	PermissionLevel(ctx context.Context, user models.RequestUser, id string) (models.Permission, error)
}

// CommentRecordRepository loads per-page comment records.
// Load returns (nil, nil) when the page has no record.
type CommentRecordRepository interface {
	Load(ctx context.Context, pageID string) (*models.PageCommentRecord, error)
}

// ChangelogReader exposes the comment changelog newest-first.
// Iteration stops as soon as visit returns false.
type ChangelogReader interface {
	Backward(ctx context.Context, visit func(line string) bool) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	Pages     PageRepository
	ACL       ACLChecker
	Comments  CommentRecordRepository
	Changelog ChangelogReader
}

// New creates all repositories with the given database connection and the
// configured changelog backend
func New(db *database.DB, rdb *redis.Client, cfg *config.Config) (*Repositories, error) {
	pages, err := NewPageRepo(db, cfg.Discussion.DataDir, cfg.Discussion.HiddenPages)
	if err != nil {
		return nil, err
	}

	var changelog ChangelogReader
	switch cfg.Discussion.ChangelogBackend {
	case config.ChangelogPostgres:
		changelog = NewPostgresChangelog(db)
	case config.ChangelogFile:
		changelog = NewFileChangelog(cfg.Discussion.MetaDir)
	case config.ChangelogRedis:
		if rdb == nil {
			return nil, fmt.Errorf("redis changelog backend requires a redis client")
		}
		changelog = NewRedisChangelog(rdb, cfg.Redis.ChangelogKey)
	default:
		return nil, fmt.Errorf("unknown changelog backend: %s", cfg.Discussion.ChangelogBackend)
	}

	return &Repositories{
		Pages:     pages,
		ACL:       NewACLRepo(db),
		Comments:  NewCommentRecordRepo(db),
		Changelog: changelog,
	}, nil
}
