package service

import (
	"context"
	"sort"
	"time"

	"github.com/discussion-activity-api/internal/metrics"
	"github.com/discussion-activity-api/internal/models"
	"github.com/discussion-activity-api/pkg/markup"
)

// commentScan is the state of one backward changelog scan
type commentScan struct {
	query   models.CommentQuery
	seen    map[models.CommentKey]struct{}
	records map[string]*models.PageCommentRecord
}

// ListRecentComments walks the changelog from its newest line and collects
// the comments that are still visible to q.User, newest first
func (s *discussionService) ListRecentComments(ctx context.Context, q models.CommentQuery) (*models.RecentComments, error) {
	start := time.Now()

	limit := s.cfg.DefaultPageSize
	if q.Limit != nil && *q.Limit > 0 {
		limit = *q.Limit
	}
	toSkip := q.Offset

	scan := &commentScan{
		query:   q,
		seen:    make(map[models.CommentKey]struct{}),
		records: make(map[string]*models.PageCommentRecord),
	}
	result := &models.RecentComments{Comments: []models.CommentSummary{}}

	err := s.repos.Changelog.Backward(ctx, func(line string) bool {
		if s.cfg.MaxScanLines > 0 && result.Examined >= s.cfg.MaxScanLines {
			result.Truncated = true
			return false
		}
		result.Examined++

		summary, ok := s.acceptChange(ctx, scan, line)
		if !ok {
			return true
		}
		if toSkip > 0 {
			toSkip--
			return true
		}
		result.Comments = append(result.Comments, *summary)
		return len(result.Comments) < limit
	})
	s.metrics.LinesExamined.Add(float64(result.Examined))

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.log.Warn().Err(err).Int("examined", result.Examined).Msg("Changelog scan failed")
	}
	if result.Truncated {
		s.metrics.ScanTruncated.Inc()
		s.log.Warn().
			Int("max_scan_lines", s.cfg.MaxScanLines).
			Int("collected", len(result.Comments)).
			Msg("Changelog scan stopped at line ceiling")
	}

	sort.SliceStable(result.Comments, func(i, j int) bool {
		return result.Comments[i].Date.After(result.Comments[j].Date)
	})

	s.observe(queryComments, start, len(result.Comments))
	return result, nil
}

// acceptChange runs one changelog line through the filters and returns the
// enriched entry when it passes
func (s *discussionService) acceptChange(ctx context.Context, scan *commentScan, line string) (*models.CommentSummary, bool) {
	change, err := models.ParseChangelogLine(line)
	if err != nil {
		s.skip(queryComments, metrics.SkipMalformed)
		return nil, false
	}

	key := change.Key()
	if _, dup := scan.seen[key]; dup {
		s.skip(queryComments, metrics.SkipDuplicate)
		return nil, false
	}
	if change.Type == models.ChangeShow {
		return nil, false
	}
	// Marked before filtering so an older line cannot resurrect the comment
	scan.seen[key] = struct{}{}

	hidden, err := s.repos.Pages.IsHidden(ctx, change.PageID)
	if err != nil {
		s.log.Debug().Err(err).Str("page", change.PageID).Msg("Hidden page lookup failed")
		s.skip(queryComments, metrics.SkipHidden)
		return nil, false
	}
	if hidden || change.Type == models.ChangeHide {
		s.skip(queryComments, metrics.SkipHidden)
		return nil, false
	}

	if !models.InNamespace(change.PageID, scan.query.Namespace) {
		s.skip(queryComments, metrics.SkipNamespace)
		return nil, false
	}

	perm, ok := s.canRead(ctx, queryComments, scan.query.User, change.PageID)
	if !ok {
		return nil, false
	}

	exists, err := s.repos.Pages.Exists(ctx, change.PageID)
	if err != nil || !exists || change.Type == models.ChangeDelete {
		s.skip(queryComments, metrics.SkipMissing)
		return nil, false
	}

	record, cached := scan.records[change.PageID]
	if !cached {
		record = s.loadRecord(ctx, queryComments, change.PageID)
		scan.records[change.PageID] = record
	}
	if record == nil {
		return nil, false
	}
	if record.Status == models.StatusOff {
		s.skip(queryComments, metrics.SkipStatus)
		return nil, false
	}

	comment, ok := visibleComment(record, change.Extra)
	if !ok {
		s.skip(queryComments, metrics.SkipChain)
		return nil, false
	}

	return &models.CommentSummary{
		Date:       change.Date,
		IP:         change.IP,
		Type:       change.Type,
		ID:         change.PageID,
		User:       change.User,
		Sum:        change.Summary,
		Extra:      change.Extra,
		SizeChange: change.SizeChange,
		Perm:       perm,
		File:       s.repos.Pages.Locate(change.PageID),
		Exists:     true,
		Name:       comment.Author.DisplayName(),
		Desc:       markup.StripTags(comment.XHTML),
		Anchor:     "comment_" + change.Extra,
	}, true
}

// visibleComment returns the comment when it and every ancestor up to the
// top level exist and are shown. A self-referencing parent ends the walk;
// longer cycles are rejected.
func visibleComment(record *models.PageCommentRecord, id string) (*models.Comment, bool) {
	target, ok := record.Lookup(id)
	if !ok {
		return nil, false
	}

	current := target
	for steps := 0; ; steps++ {
		if !current.Show {
			return nil, false
		}
		if current.IsTopLevel() {
			return target, true
		}
		if steps >= len(record.Comments) {
			return nil, false
		}
		parent, ok := record.Lookup(current.ParentID)
		if !ok {
			return nil, false
		}
		current = parent
	}
}
