package models

import (
	"strings"
	"time"
)

// Permission is an ACL level for a page
type Permission int

const (
	PermNone   Permission = 0
	PermRead   Permission = 1
	PermEdit   Permission = 2
	PermCreate Permission = 4
	PermUpload Permission = 8
	PermDelete Permission = 16
	PermAdmin  Permission = 255
)

// ThreadAnchor is the fragment of a page's discussion section
const ThreadAnchor = "discussion__section"

// PageMeta holds the page metadata shown next to a thread
type PageMeta struct {
	Title    string `json:"title" db:"title"`
	Creator  string `json:"creator" db:"creator"`
	Abstract string `json:"abstract" db:"abstract"`
}

// RequestUser identifies the caller of a query
type RequestUser struct {
	Name   string   `json:"name"`
	Groups []string `json:"groups"`
}

// InNamespace reports whether id lies in ns, matching whole path segments.
// An empty namespace matches everything.
func InNamespace(id, ns string) bool {
	if ns == "" {
		return true
	}
	return strings.HasPrefix(id+":", ns+":")
}

// ThreadSummary is one entry of the thread listing
type ThreadSummary struct {
	ID            string           `json:"id"`
	File          string           `json:"file"`
	Title         string           `json:"title"`
	Date          time.Time        `json:"date"`
	User          string           `json:"user"`
	Desc          string           `json:"desc"`
	Num           int              `json:"num"`
	CommentsLabel string           `json:"comments_label"`
	CommentsLink  string           `json:"comments"`
	Status        DiscussionStatus `json:"status"`
	Perm          Permission       `json:"perm"`
	Exists        bool             `json:"exists"`
	Anchor        string           `json:"anchor"`
}

// CommentSummary is one entry of the recent comments feed
type CommentSummary struct {
	Date       time.Time  `json:"date"`
	IP         string     `json:"ip"`
	Type       ChangeType `json:"type"`
	ID         string     `json:"id"`
	User       string     `json:"user"`
	Sum        string     `json:"sum"`
	Extra      string     `json:"extra"`
	SizeChange *int       `json:"sizechange,omitempty"`
	Perm       Permission `json:"perm"`
	File       string     `json:"file"`
	Exists     bool       `json:"exists"`
	Name       string     `json:"name"`
	Desc       string     `json:"desc"`
	Anchor     string     `json:"anchor"`
}

// RecentComments is the result of a changelog scan
type RecentComments struct {
	Comments  []CommentSummary `json:"comments"`
	Examined  int              `json:"examined"`
	Truncated bool             `json:"truncated"`
}
