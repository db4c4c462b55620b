package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedLine is returned for changelog lines that cannot be parsed
var ErrMalformedLine = errors.New("malformed changelog line")

// ChangeType discriminates changelog entries
type ChangeType string

const (
	ChangeCreate ChangeType = "cc"
	ChangeEdit   ChangeType = "ec"
	ChangeShow   ChangeType = "sc"
	ChangeHide   ChangeType = "hc"
	ChangeDelete ChangeType = "dc"
)

const changelogFieldCount = 7

// CommentKey identifies a comment across the whole store
type CommentKey struct {
	PageID    string
	CommentID string
}

// ChangelogRecord is one line of the comment changelog
type ChangelogRecord struct {
	Date       time.Time
	IP         string
	Type       ChangeType
	PageID     string
	User       string
	Summary    string
	Extra      string // comment id for comment changes
	SizeChange *int
}

// Key returns the dedup identity of the record
func (r *ChangelogRecord) Key() CommentKey {
	return CommentKey{PageID: r.PageID, CommentID: r.Extra}
}

// ParseChangelogLine decodes a tab separated changelog line:
//
//	date ip type id user sum extra [sizechange]
func ParseChangelogLine(line string) (*ChangelogRecord, error) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return nil, fmt.Errorf("%w: empty line", ErrMalformedLine)
	}

	fields := strings.Split(line, "\t")
	if len(fields) < changelogFieldCount {
		return nil, fmt.Errorf("%w: expected at least %d fields, got %d", ErrMalformedLine, changelogFieldCount, len(fields))
	}

	ts, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad timestamp %q", ErrMalformedLine, fields[0])
	}
	if fields[3] == "" {
		return nil, fmt.Errorf("%w: missing page id", ErrMalformedLine)
	}

	rec := &ChangelogRecord{
		Date:    time.Unix(ts, 0).UTC(),
		IP:      fields[1],
		Type:    ChangeType(fields[2]),
		PageID:  fields[3],
		User:    fields[4],
		Summary: fields[5],
		Extra:   fields[6],
	}
	if len(fields) > changelogFieldCount && fields[7] != "" {
		if n, err := strconv.Atoi(fields[7]); err == nil {
			rec.SizeChange = &n
		}
	}
	return rec, nil
}

// String encodes the record back into its changelog line form
func (r *ChangelogRecord) String() string {
	fields := []string{
		strconv.FormatInt(r.Date.Unix(), 10),
		r.IP,
		string(r.Type),
		r.PageID,
		r.User,
		r.Summary,
		r.Extra,
	}
	if r.SizeChange != nil {
		fields = append(fields, strconv.Itoa(*r.SizeChange))
	}
	return strings.Join(fields, "\t")
}
