package repository

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/discussion-activity-api/internal/database"
	"github.com/discussion-activity-api/internal/models"
)

// pageRepo is the concrete implementation of PageRepository
type pageRepo struct {
	db      *database.DB
	dataDir string
	hidden  *regexp.Regexp
}

// NewPageRepo creates a new page repository. hiddenPattern is matched
// against ":"+id; an empty pattern hides nothing beyond flagged pages.
func NewPageRepo(db *database.DB, dataDir, hiddenPattern string) (PageRepository, error) {
	r := &pageRepo{db: db, dataDir: dataDir}
	if hiddenPattern != "" {
		re, err := regexp.Compile(hiddenPattern)
		if err != nil {
			return nil, fmt.Errorf("invalid hidden pages pattern: %w", err)
		}
		r.hidden = re
	}
	return r, nil
}

// ListPages returns every page id in the subtree of root, unfiltered by ACL
func (r *pageRepo) ListPages(ctx context.Context, root string) ([]string, error) {
	query := `
		SELECT id FROM pages
		WHERE $1::text = '' OR left(id, length($1::text) + 1) = $1::text || ':'
	`
	rows, err := r.db.QueryContext(ctx, query, root)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Exists checks if a page with the given id exists
func (r *pageRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM pages WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

// Locate returns the storage path of a page
func (r *pageRepo) Locate(id string) string {
	return PagePath(r.dataDir, id)
}

// Metadata retrieves title, creator and abstract of a page
func (r *pageRepo) Metadata(ctx context.Context, id string) (*models.PageMeta, error) {
	query := `
		SELECT COALESCE(title, ''), COALESCE(creator, ''), COALESCE(abstract, '')
		FROM pages WHERE id = $1
	`

	var meta models.PageMeta
	err := r.db.QueryRowContext(ctx, query, id).Scan(&meta.Title, &meta.Creator, &meta.Abstract)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// IsHidden reports whether the page is excluded from listings
func (r *pageRepo) IsHidden(ctx context.Context, id string) (bool, error) {
	if r.hidden != nil && r.hidden.MatchString(":"+id) {
		return true, nil
	}

	var hidden bool
	err := r.db.QueryRowContext(ctx, "SELECT hidden FROM pages WHERE id = $1", id).Scan(&hidden)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return hidden, err
}

// PagePath maps a page id like "ns:page" to <dataDir>/ns/page.txt
func PagePath(dataDir, id string) string {
	parts := strings.Split(id, ":")
	return filepath.Join(dataDir, filepath.Join(parts...)) + ".txt"
}
