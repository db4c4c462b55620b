package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseChangelogLine(t *testing.T) {
	rec, err := ParseChangelogLine("1700000000\t10.0.0.1\tcc\twiki:start\talice\tfirst post\tc1\t42\r\n")
	if err != nil {
		t.Fatalf("ParseChangelogLine failed: %v", err)
	}
	if !rec.Date.Equal(time.Unix(1700000000, 0)) || rec.IP != "10.0.0.1" || rec.Type != ChangeCreate {
		t.Errorf("Unexpected record %+v", rec)
	}
	if rec.Key() != (CommentKey{PageID: "wiki:start", CommentID: "c1"}) {
		t.Errorf("Unexpected key %+v", rec.Key())
	}
	if rec.SizeChange == nil || *rec.SizeChange != 42 {
		t.Errorf("Expected size change 42, got %v", rec.SizeChange)
	}

	again, err := ParseChangelogLine(rec.String())
	if err != nil || again.String() != rec.String() {
		t.Errorf("Line should round-trip, got %v, %v", again, err)
	}
}

func TestParseChangelogLine_Malformed(t *testing.T) {
	lines := []string{
		"",
		"   ",
		"1700000000\tcc\twiki:start",
		"yesterday\t::1\tcc\twiki:start\talice\t\tc1",
		"1700000000\t::1\tcc\t\talice\t\tc1",
	}
	for _, line := range lines {
		if _, err := ParseChangelogLine(line); !errors.Is(err, ErrMalformedLine) {
			t.Errorf("ParseChangelogLine(%q) = %v, want ErrMalformedLine", line, err)
		}
	}
}

func TestAuthorUnion(t *testing.T) {
	var c struct {
		Structured Author `json:"a"`
		Bare       Author `json:"b"`
		Null       Author `json:"c"`
	}
	data := `{"a": {"id": "alice", "name": "Alice A.", "mail": "a@example.org"}, "b": "bob", "c": null}`
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if c.Structured.DisplayName() != "Alice A." || !c.Structured.Structured || c.Structured.ID != "alice" {
		t.Errorf("Unexpected structured author %+v", c.Structured)
	}
	if c.Bare.DisplayName() != "bob" || c.Bare.Structured {
		t.Errorf("Unexpected bare author %+v", c.Bare)
	}
	if c.Null.DisplayName() != "" {
		t.Errorf("Expected empty author, got %+v", c.Null)
	}

	out, _ := json.Marshal(c.Bare)
	if string(out) != `"bob"` {
		t.Errorf("Bare author should marshal as a string, got %s", out)
	}

	var bad Author
	if err := json.Unmarshal([]byte(`42`), &bad); err == nil {
		t.Error("Expected error for numeric author")
	}
}

func TestPageCommentRecord(t *testing.T) {
	t1 := time.Unix(100, 0)
	t2 := time.Unix(50, 0)
	record := NewPageCommentRecord("p", StatusOpen,
		&Comment{ID: "a", Created: t1},
		&Comment{ID: "b", Created: t2},
	)

	if c, ok := record.Lookup("b"); !ok || c.ID != "b" {
		t.Errorf("Lookup failed")
	}
	if _, ok := record.Lookup("zz"); ok {
		t.Error("Lookup of unknown id should fail")
	}
	// Insertion order decides the last comment, not the creation time
	if !record.LastActivity().Equal(t2) {
		t.Errorf("Expected last inserted comment date, got %v", record.LastActivity())
	}

	var decoded PageCommentRecord
	if err := json.Unmarshal([]byte(`{"status": 2, "number": 1, "comments": [{"id": "x", "show": true, "user": "eve"}]}`), &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.Status != StatusClosed || decoded.Count != 1 || !decoded.Listable() {
		t.Errorf("Unexpected record %+v", decoded)
	}
	if c, ok := decoded.Lookup("x"); !ok || c.Author.DisplayName() != "eve" {
		t.Errorf("Decoded record should be indexed")
	}

	tests := []struct {
		status DiscussionStatus
		count  int
		want   bool
	}{
		{StatusOff, 3, false},
		{StatusOpen, 0, true},
		{StatusClosed, 0, false},
		{StatusClosed, 2, true},
	}
	for _, tt := range tests {
		r := &PageCommentRecord{Status: tt.status, Count: tt.count}
		if r.Listable() != tt.want {
			t.Errorf("Listable(status=%d, count=%d) = %v, want %v", tt.status, tt.count, !tt.want, tt.want)
		}
	}
}
