package models

// ThreadQuery is a request for the thread listing
type ThreadQuery struct {
	Namespace string      `json:"ns" form:"ns"`
	Limit     *int        `json:"num,omitempty" form:"num"` // nil or negative: no limit
	SkipEmpty bool        `json:"skip_empty" form:"skip_empty"`
	User      RequestUser `json:"-"`
}

// CommentQuery is a request for the recent comments feed
type CommentQuery struct {
	Namespace string      `json:"ns" form:"ns"`
	Limit     *int        `json:"num,omitempty" form:"num"` // nil or non-positive: default page size
	Offset    int         `json:"first" form:"first"`
	User      RequestUser `json:"-"`
}

// ThreadLink is the rendered link to a page's discussion section.
// Empty is set when the page has no listable thread.
type ThreadLink struct {
	Empty bool   `json:"empty"`
	Label string `json:"label,omitempty"`
	Href  string `json:"href,omitempty"`
	Title string `json:"title,omitempty"`
	Class string `json:"class,omitempty"`
	HTML  string `json:"html"`
}
