package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/discussion-activity-api/internal/mocks"
	"github.com/discussion-activity-api/internal/models"
)

func TestListThreads_OffAndOpenPages(t *testing.T) {
	m := mocks.NewMockRepositories()
	m.Pages.Add("wiki:off", "Off page")
	m.Pages.Add("wiki:open", "Open page").Meta.Creator = "Alice"

	m.Comments.Records["wiki:off"] = models.NewPageCommentRecord("wiki:off", models.StatusOff,
		newComment("a", "", true, 100))
	m.Comments.Records["wiki:open"] = models.NewPageCommentRecord("wiki:open", models.StatusOpen,
		newComment("c1", "", true, 10),
		newComment("c2", "", true, 20),
		newComment("c3", "c1", true, 30),
	)

	svc := newTestService(t, m, nil)
	threads, err := svc.ListThreads(context.Background(), models.ThreadQuery{Namespace: "wiki"})
	if err != nil {
		t.Fatalf("ListThreads failed: %v", err)
	}

	if len(threads) != 1 {
		t.Fatalf("Expected 1 thread, got %d", len(threads))
	}
	got := threads[0]
	if got.ID != "wiki:open" {
		t.Errorf("Expected wiki:open, got %s", got.ID)
	}
	if got.Num != 3 {
		t.Errorf("Expected 3 comments, got %d", got.Num)
	}
	if got.CommentsLabel != "3\u00a0Comments" {
		t.Errorf("Expected plural label, got %q", got.CommentsLabel)
	}
	if !strings.Contains(got.CommentsLink, `href="/doku.php?id=wiki:open#discussion__section"`) {
		t.Errorf("Unexpected link %s", got.CommentsLink)
	}
	if !got.Date.Equal(ts(30)) {
		t.Errorf("Expected last comment date, got %v", got.Date)
	}
	if got.Title != "Open page" || got.User != "Alice" {
		t.Errorf("Expected page metadata, got %q by %q", got.Title, got.User)
	}
	if got.Anchor != models.ThreadAnchor || !got.Exists || got.Perm != models.PermRead {
		t.Errorf("Unexpected summary fields %+v", got)
	}
	if got.File != "/data/pages/wiki/open.txt" {
		t.Errorf("Unexpected file %s", got.File)
	}
}

func TestListThreads_ClosedStatus(t *testing.T) {
	m := mocks.NewMockRepositories()
	m.Pages.Add("ns:closed-empty", "")
	m.Pages.Add("ns:closed-full", "")
	m.Comments.Records["ns:closed-empty"] = models.NewPageCommentRecord("ns:closed-empty", models.StatusClosed)
	m.Comments.Records["ns:closed-full"] = models.NewPageCommentRecord("ns:closed-full", models.StatusClosed,
		newComment("c1", "", true, 5), newComment("c2", "", true, 6))

	svc := newTestService(t, m, nil)
	threads, _ := svc.ListThreads(context.Background(), models.ThreadQuery{Namespace: "ns"})

	if len(threads) != 1 || threads[0].ID != "ns:closed-full" {
		t.Fatalf("Expected only ns:closed-full, got %+v", threads)
	}
	if threads[0].Status != models.StatusClosed {
		t.Errorf("Expected closed status, got %d", threads[0].Status)
	}
}

func TestListThreads_SortOrderAndTies(t *testing.T) {
	m := mocks.NewMockRepositories()
	dates := map[string]int64{
		"ns:a": 100,
		"ns:b": 300,
		"ns:c": 300, // same timestamp as ns:b
		"ns:d": 200,
	}
	for id, date := range dates {
		m.Pages.Add(id, id)
		m.Comments.Records[id] = models.NewPageCommentRecord(id, models.StatusOpen, newComment("x", "", true, date))
	}
	m.Pages.ExtraListing = []string{"ns:b"} // listed twice

	svc := newTestService(t, m, nil)
	threads, _ := svc.ListThreads(context.Background(), models.ThreadQuery{Namespace: "ns"})

	want := []string{"ns:c", "ns:b", "ns:d", "ns:a"}
	if len(threads) != len(want) {
		t.Fatalf("Expected %d threads, got %d", len(want), len(threads))
	}
	for i, id := range want {
		if threads[i].ID != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, threads[i].ID)
		}
	}
	for i := 1; i < len(threads); i++ {
		prev, cur := threads[i-1], threads[i]
		if cur.Date.After(prev.Date) || (cur.Date.Equal(prev.Date) && cur.ID >= prev.ID) {
			t.Errorf("Threads not strictly descending at %d: %s then %s", i, prev.ID, cur.ID)
		}
	}
}

func TestListThreads_FallbackToRecordModification(t *testing.T) {
	m := mocks.NewMockRepositories()
	m.Pages.Add("ns:empty", "")
	record := models.NewPageCommentRecord("ns:empty", models.StatusOpen)
	record.ModifiedAt = ts(555)
	m.Comments.Records["ns:empty"] = record

	svc := newTestService(t, m, nil)
	threads, _ := svc.ListThreads(context.Background(), models.ThreadQuery{Namespace: "ns"})

	if len(threads) != 1 {
		t.Fatalf("Expected 1 thread, got %d", len(threads))
	}
	if !threads[0].Date.Equal(ts(555)) {
		t.Errorf("Expected record modification time, got %v", threads[0].Date)
	}
	if threads[0].CommentsLabel != "0\u00a0Comments" {
		t.Errorf("Expected zero label, got %q", threads[0].CommentsLabel)
	}
}

func TestListThreads_SkipEmpty(t *testing.T) {
	m := mocks.NewMockRepositories()
	m.Pages.Add("ns:empty", "")
	m.Pages.Add("ns:full", "")
	m.Comments.Records["ns:empty"] = models.NewPageCommentRecord("ns:empty", models.StatusOpen)
	m.Comments.Records["ns:full"] = models.NewPageCommentRecord("ns:full", models.StatusOpen, newComment("c", "", true, 1))

	svc := newTestService(t, m, nil)

	all, _ := svc.ListThreads(context.Background(), models.ThreadQuery{Namespace: "ns"})
	if len(all) != 2 {
		t.Errorf("Expected 2 threads without skip, got %d", len(all))
	}

	nonEmpty, _ := svc.ListThreads(context.Background(), models.ThreadQuery{Namespace: "ns", SkipEmpty: true})
	if len(nonEmpty) != 1 || nonEmpty[0].ID != "ns:full" {
		t.Errorf("Expected only ns:full, got %+v", nonEmpty)
	}
}

func TestListThreads_SilentExclusions(t *testing.T) {
	m := mocks.NewMockRepositories()
	for _, id := range []string{"ns:denied", "ns:norecord", "ns:corrupt", "ns:ok"} {
		m.Pages.Add(id, "")
	}
	m.ACL.Levels["ns:denied"] = models.PermNone
	m.Comments.Records["ns:denied"] = models.NewPageCommentRecord("ns:denied", models.StatusOpen, newComment("c", "", true, 1))
	m.Comments.Errors["ns:corrupt"] = models.ErrMalformedRecord
	m.Comments.Records["ns:ok"] = models.NewPageCommentRecord("ns:ok", models.StatusOpen, newComment("c", "", true, 1))

	svc := newTestService(t, m, nil)
	threads, err := svc.ListThreads(context.Background(), models.ThreadQuery{Namespace: "ns"})
	if err != nil {
		t.Fatalf("Exclusions must not surface as errors: %v", err)
	}
	if len(threads) != 1 || threads[0].ID != "ns:ok" {
		t.Errorf("Expected only ns:ok, got %+v", threads)
	}
}

func TestListThreads_Limit(t *testing.T) {
	m := mocks.NewMockRepositories()
	for i, id := range []string{"ns:a", "ns:b", "ns:c"} {
		m.Pages.Add(id, "")
		m.Comments.Records[id] = models.NewPageCommentRecord(id, models.StatusOpen, newComment("c", "", true, int64(i+1)))
	}
	svc := newTestService(t, m, nil)

	tests := []struct {
		name  string
		limit *int
		want  []string
	}{
		{"no limit", nil, []string{"ns:c", "ns:b", "ns:a"}},
		{"limit 2", intPtr(2), []string{"ns:c", "ns:b"}},
		{"limit 0", intPtr(0), []string{}},
		{"negative limit", intPtr(-1), []string{"ns:c", "ns:b", "ns:a"}},
		{"limit above size", intPtr(10), []string{"ns:c", "ns:b", "ns:a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			threads, _ := svc.ListThreads(context.Background(), models.ThreadQuery{Namespace: "ns", Limit: tt.limit})
			if len(threads) != len(tt.want) {
				t.Fatalf("Expected %d threads, got %d", len(tt.want), len(threads))
			}
			for i, id := range tt.want {
				if threads[i].ID != id {
					t.Errorf("Position %d: expected %s, got %s", i, id, threads[i].ID)
				}
			}
		})
	}
}

func TestListThreads_EmptyNamespaceAndListingFailure(t *testing.T) {
	m := mocks.NewMockRepositories()
	svc := newTestService(t, m, nil)

	threads, err := svc.ListThreads(context.Background(), models.ThreadQuery{Namespace: "nothing:here"})
	if err != nil || threads == nil || len(threads) != 0 {
		t.Errorf("Expected empty non-nil result, got %v, %v", threads, err)
	}
	if len(m.Pages.ListedRoots) != 1 || m.Pages.ListedRoots[0] != "nothing:here" {
		t.Errorf("Expected namespace passed to traversal, got %v", m.Pages.ListedRoots)
	}

	m.Pages.ListError = errors.New("connection refused")
	threads, err = svc.ListThreads(context.Background(), models.ThreadQuery{Namespace: "ns"})
	if err != nil || len(threads) != 0 {
		t.Errorf("Listing failure should degrade to empty result, got %v, %v", threads, err)
	}
}

func TestListThreads_Cancelled(t *testing.T) {
	m := mocks.NewMockRepositories()
	m.Pages.Add("ns:a", "")
	svc := newTestService(t, m, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.ListThreads(ctx, models.ThreadQuery{Namespace: "ns"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
