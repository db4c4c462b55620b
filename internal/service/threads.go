package service

import (
	"context"
	"sort"
	"time"

	"github.com/discussion-activity-api/internal/metrics"
	"github.com/discussion-activity-api/internal/models"
)

// ListThreads returns the pages under q.Namespace that have a listable
// discussion, most recently commented first
func (s *discussionService) ListThreads(ctx context.Context, q models.ThreadQuery) ([]models.ThreadSummary, error) {
	start := time.Now()
	threads := []models.ThreadSummary{}

	ids, err := s.repos.Pages.ListPages(ctx, q.Namespace)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.log.Warn().Err(err).Str("namespace", q.Namespace).Msg("Page listing failed")
		s.observe(queryThreads, start, 0)
		return threads, nil
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		summary, ok := s.threadSummary(ctx, q, id)
		if ok {
			threads = append(threads, summary)
		}
	}

	sortThreads(threads)
	if q.Limit != nil && *q.Limit >= 0 && len(threads) > *q.Limit {
		threads = threads[:*q.Limit]
	}

	s.log.Debug().
		Str("namespace", q.Namespace).
		Int("pages", len(ids)).
		Int("threads", len(threads)).
		Msg("Threads listed")
	s.observe(queryThreads, start, len(threads))
	return threads, nil
}

func (s *discussionService) threadSummary(ctx context.Context, q models.ThreadQuery, id string) (models.ThreadSummary, bool) {
	perm, ok := s.canRead(ctx, queryThreads, q.User, id)
	if !ok {
		return models.ThreadSummary{}, false
	}

	record := s.loadRecord(ctx, queryThreads, id)
	if record == nil {
		return models.ThreadSummary{}, false
	}
	if !record.Listable() {
		s.skip(queryThreads, metrics.SkipStatus)
		return models.ThreadSummary{}, false
	}
	if q.SkipEmpty && record.Count == 0 {
		s.skip(queryThreads, metrics.SkipEmpty)
		return models.ThreadSummary{}, false
	}

	meta, err := s.repos.Pages.Metadata(ctx, id)
	if err != nil {
		s.log.Debug().Err(err).Str("page", id).Msg("Page metadata unavailable")
	}
	if meta == nil {
		meta = &models.PageMeta{}
	}

	link := s.renderLink(id, record.Count)
	return models.ThreadSummary{
		ID:            id,
		File:          s.repos.Pages.Locate(id),
		Title:         meta.Title,
		Date:          record.LastActivity(),
		User:          meta.Creator,
		Desc:          meta.Abstract,
		Num:           record.Count,
		CommentsLabel: link.Label,
		CommentsLink:  link.HTML,
		Status:        record.Status,
		Perm:          perm,
		Exists:        true,
		Anchor:        models.ThreadAnchor,
	}, true
}

// sortThreads orders by last activity, then page id, both descending
func sortThreads(threads []models.ThreadSummary) {
	sort.Slice(threads, func(i, j int) bool {
		if !threads[i].Date.Equal(threads[j].Date) {
			return threads[i].Date.After(threads[j].Date)
		}
		return threads[i].ID > threads[j].ID
	})
}
