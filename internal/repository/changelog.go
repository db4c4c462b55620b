package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/discussion-activity-api/internal/database"
	"github.com/redis/go-redis/v9"
)

// ChangelogFileName is the changelog file inside the meta directory
const ChangelogFileName = "_comments.changes"

// redisPageSize is the number of list entries fetched per LRANGE call
const redisPageSize = 256

// postgresPageSize is the number of rows fetched per keyset query
const postgresPageSize = 256

// Chunking of the backward file read
const (
	fileChunkSize    = 64 * 1024
	maxChangelogLine = 1024 * 1024
)

// changeRow is one changelog row with its sequence number
type changeRow struct {
	seq  int64
	line string
}

// fetchPage returns up to limit rows older than before, newest first.
// A nil before starts at the newest row.
type fetchPage func(ctx context.Context, before *int64, limit int) ([]changeRow, error)

// pagedBackward visits pages from fetch until visit stops or a short page
// marks the start of the log
func pagedBackward(ctx context.Context, fetch fetchPage, limit int, visit func(line string) bool) error {
	var before *int64
	for {
		rows, err := fetch(ctx, before, limit)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if !visit(row.line) {
				return nil
			}
		}
		if len(rows) < limit {
			return nil
		}
		seq := rows[len(rows)-1].seq
		before = &seq
	}
}

// postgresChangelog reads the comment_changes table
type postgresChangelog struct {
	db *database.DB
}

// NewPostgresChangelog creates a changelog reader over the comment_changes table
func NewPostgresChangelog(db *database.DB) ChangelogReader {
	return &postgresChangelog{db: db}
}

// Backward pages through lines by descending sequence number
func (c *postgresChangelog) Backward(ctx context.Context, visit func(line string) bool) error {
	return pagedBackward(ctx, c.page, postgresPageSize, visit)
}

func (c *postgresChangelog) page(ctx context.Context, before *int64, limit int) ([]changeRow, error) {
	query := `
		SELECT seq, line FROM comment_changes
		WHERE $1::bigint IS NULL OR seq < $1::bigint
		ORDER BY seq DESC
		LIMIT $2
	`
	var cursor sql.NullInt64
	if before != nil {
		cursor = sql.NullInt64{Int64: *before, Valid: true}
	}

	rows, err := c.db.QueryContext(ctx, query, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("query changelog: %w", err)
	}
	defer rows.Close()

	page := make([]changeRow, 0, limit)
	for rows.Next() {
		var row changeRow
		if err := rows.Scan(&row.seq, &row.line); err != nil {
			return nil, err
		}
		page = append(page, row)
	}
	return page, rows.Err()
}

// fileChangelog reads the append-only changelog file
type fileChangelog struct {
	path      string
	chunkSize int
	maxLine   int
}

// NewFileChangelog creates a reader for <metaDir>/_comments.changes
func NewFileChangelog(metaDir string) ChangelogReader {
	return &fileChangelog{
		path:      filepath.Join(metaDir, ChangelogFileName),
		chunkSize: fileChunkSize,
		maxLine:   maxChangelogLine,
	}
}

// Backward reads the file in chunks from its end and visits complete lines,
// newest first. A missing file is an empty changelog. Lines longer than
// maxLine are visited as an empty line so the caller skips them as malformed.
func (c *fileChangelog) Backward(ctx context.Context, visit func(line string) bool) error {
	f, err := os.Open(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open changelog: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat changelog: %w", err)
	}

	pos := info.Size()
	buf := make([]byte, c.chunkSize)
	line := &reverseLine{max: c.maxLine}
	pendingNewline := true // a final newline terminates the last line

	for pos > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		n := int64(len(buf))
		if pos < n {
			n = pos
		}
		pos -= n
		chunk := buf[:n]
		if _, err := f.ReadAt(chunk, pos); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read changelog at %d: %w", pos, err)
		}

		end := len(chunk)
		if pendingNewline {
			pendingNewline = false
			if chunk[end-1] == '\n' {
				end--
			}
		}
		for i := end - 1; i >= 0; i-- {
			if chunk[i] != '\n' {
				continue
			}
			line.prepend(chunk[i+1 : end])
			if !visit(line.take()) {
				return nil
			}
			end = i
		}
		line.prepend(chunk[:end])
	}

	if line.started {
		visit(line.take())
	}
	return nil
}

// reverseLine assembles a line from fragments read back to front
type reverseLine struct {
	buf      []byte
	max      int
	overlong bool
	started  bool
}

func (l *reverseLine) prepend(p []byte) {
	l.started = true
	if l.overlong || len(p) == 0 {
		return
	}
	if len(l.buf)+len(p) > l.max {
		l.overlong = true
		l.buf = nil
		return
	}
	joined := make([]byte, 0, len(p)+len(l.buf))
	joined = append(joined, p...)
	l.buf = append(joined, l.buf...)
}

func (l *reverseLine) take() string {
	line := ""
	if !l.overlong {
		line = string(l.buf)
	}
	*l = reverseLine{max: l.max}
	return line
}

// redisChangelog reads a redis list appended with RPUSH
type redisChangelog struct {
	client *redis.Client
	key    string
}

// NewRedisChangelog creates a changelog reader over the list at key
func NewRedisChangelog(client *redis.Client, key string) ChangelogReader {
	return &redisChangelog{client: client, key: key}
}

// Backward pages through the list from its tail
func (c *redisChangelog) Backward(ctx context.Context, visit func(line string) bool) error {
	n, err := c.client.LLen(ctx, c.key).Result()
	if err != nil {
		return fmt.Errorf("changelog length: %w", err)
	}

	for end := n - 1; end >= 0; end -= redisPageSize {
		start := end - redisPageSize + 1
		if start < 0 {
			start = 0
		}
		lines, err := c.client.LRange(ctx, c.key, start, end).Result()
		if err != nil {
			return fmt.Errorf("changelog range %d-%d: %w", start, end, err)
		}
		for i := len(lines) - 1; i >= 0; i-- {
			if !visit(lines[i]) {
				return nil
			}
		}
	}
	return nil
}
