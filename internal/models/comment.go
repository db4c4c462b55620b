package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"
)

// ErrMalformedRecord is returned when a stored comment record cannot be decoded
var ErrMalformedRecord = errors.New("malformed comment record")

// DiscussionStatus controls whether a page's thread is listable at all
type DiscussionStatus int

const (
	StatusOff    DiscussionStatus = 0
	StatusOpen   DiscussionStatus = 1
	StatusClosed DiscussionStatus = 2 // closed, existing comments stay archived
)

// Author is the poster of a comment. Records carry either a structured
// identity object or a bare display name; both decode into Name.
type Author struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	Mail       string `json:"mail,omitempty"`
	URL        string `json:"url,omitempty"`
	Structured bool   `json:"-"`
}

// DisplayName returns the resolved name of the author
func (a Author) DisplayName() string {
	return a.Name
}

// UnmarshalJSON accepts both {"name": ...} objects and plain strings
func (a *Author) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*a = Author{Name: name}
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*a = Author{}
		return nil
	}

	type structured Author
	var s structured
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*a = Author(s)
	a.Structured = true
	return nil
}

// MarshalJSON writes the structured form, or the bare name when the author
// was ingested as a plain string
func (a Author) MarshalJSON() ([]byte, error) {
	if !a.Structured {
		return json.Marshal(a.Name)
	}
	type structured Author
	return json.Marshal(structured(a))
}

// Comment is a single discussion entry on a page
type Comment struct {
	ID       string     `json:"id"`
	ParentID string     `json:"parent,omitempty"`
	Show     bool       `json:"show"`
	Author   Author     `json:"user"`
	XHTML    string     `json:"xhtml"`
	Raw      string     `json:"raw,omitempty"`
	Created  time.Time  `json:"created"`
	Modified *time.Time `json:"modified,omitempty"`
}

// IsTopLevel reports whether the parent walk ends at this comment.
// A self-referencing parent is treated as top-level.
func (c *Comment) IsTopLevel() bool {
	return c.ParentID == "" || c.ParentID == c.ID
}

// PageCommentRecord holds the discussion state of one page
type PageCommentRecord struct {
	PageID     string           `json:"-"`
	Status     DiscussionStatus `json:"status"`
	Count      int              `json:"number"`
	Comments   []*Comment       `json:"comments"` // insertion order
	ModifiedAt time.Time        `json:"-"`

	index map[string]*Comment
}

// NewPageCommentRecord builds a record from comments in posting order
func NewPageCommentRecord(pageID string, status DiscussionStatus, comments ...*Comment) *PageCommentRecord {
	r := &PageCommentRecord{
		PageID:   pageID,
		Status:   status,
		Count:    len(comments),
		Comments: comments,
	}
	r.reindex()
	return r
}

func (r *PageCommentRecord) reindex() {
	r.index = make(map[string]*Comment, len(r.Comments))
	for _, c := range r.Comments {
		if c == nil {
			continue
		}
		r.index[c.ID] = c
	}
}

// UnmarshalJSON decodes the stored payload and builds the id index
func (r *PageCommentRecord) UnmarshalJSON(data []byte) error {
	type payload PageCommentRecord
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return errors.Join(ErrMalformedRecord, err)
	}
	*r = PageCommentRecord(p)
	r.reindex()
	return nil
}

// Lookup returns the comment with the given id
func (r *PageCommentRecord) Lookup(id string) (*Comment, bool) {
	if r.index == nil {
		r.reindex()
	}
	c, ok := r.index[id]
	return c, ok
}

// Last returns the most recently inserted comment, or nil
func (r *PageCommentRecord) Last() *Comment {
	for i := len(r.Comments) - 1; i >= 0; i-- {
		if r.Comments[i] != nil {
			return r.Comments[i]
		}
	}
	return nil
}

// Listable is false for threads that are off, or closed without comments
func (r *PageCommentRecord) Listable() bool {
	if r.Status == StatusOff {
		return false
	}
	if r.Status == StatusClosed && r.Count == 0 {
		return false
	}
	return true
}

// LastActivity is the creation time of the newest comment, falling back to
// the record's own modification time
func (r *PageCommentRecord) LastActivity() time.Time {
	if last := r.Last(); last != nil && !last.Created.IsZero() {
		return last.Created
	}
	return r.ModifiedAt
}
