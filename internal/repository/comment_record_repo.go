package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/discussion-activity-api/internal/database"
	"github.com/discussion-activity-api/internal/models"
)

// commentRecordRepo is the concrete implementation of CommentRecordRepository
type commentRecordRepo struct {
	db *database.DB
}

// NewCommentRecordRepo creates a new comment record repository
func NewCommentRecordRepo(db *database.DB) CommentRecordRepository {
	return &commentRecordRepo{db: db}
}

// Load retrieves the comment record of a page
func (r *commentRecordRepo) Load(ctx context.Context, pageID string) (*models.PageCommentRecord, error) {
	query := `SELECT data, updated_at FROM comment_records WHERE page_id = $1`

	var data []byte
	var updatedAt time.Time
	err := r.db.QueryRowContext(ctx, query, pageID).Scan(&data, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return DecodeCommentRecord(pageID, data, updatedAt)
}

// DecodeCommentRecord unmarshals a stored record payload
func DecodeCommentRecord(pageID string, data []byte, modifiedAt time.Time) (*models.PageCommentRecord, error) {
	var record models.PageCommentRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode comments of %s: %w: %w", pageID, models.ErrMalformedRecord, err)
	}
	record.PageID = pageID
	record.ModifiedAt = modifiedAt
	return &record, nil
}
