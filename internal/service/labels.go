package service

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/discussion-activity-api/internal/models"
	"gopkg.in/yaml.v3"
)

// linkClass is the CSS class of links to existing pages
const linkClass = "wikilink1"

// Phrases holds the localized strings of the discussion labels
type Phrases struct {
	Discussion string `yaml:"discussion"`
	NoComments string `yaml:"nocomments"`
	Comment    string `yaml:"comment"`
	Comments   string `yaml:"comments"`
}

// DefaultPhrases are the English labels
var DefaultPhrases = Phrases{
	Discussion: "Discussion",
	NoComments: "Comments",
	Comment:    "Comment",
	Comments:   "Comments",
}

// LoadPhrases reads phrase overrides from a YAML file. Keys missing from the
// file keep their default; an empty path returns the defaults.
func LoadPhrases(path string) (Phrases, error) {
	phrases := DefaultPhrases
	if path == "" {
		return phrases, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return phrases, fmt.Errorf("read lang file: %w", err)
	}

	var overrides Phrases
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return phrases, fmt.Errorf("parse lang file %s: %w", path, err)
	}
	if overrides.Discussion != "" {
		phrases.Discussion = overrides.Discussion
	}
	if overrides.NoComments != "" {
		phrases.NoComments = overrides.NoComments
	}
	if overrides.Comment != "" {
		phrases.Comment = overrides.Comment
	}
	if overrides.Comments != "" {
		phrases.Comments = overrides.Comments
	}
	return phrases, nil
}

// CountLabel renders n with the matching phrase, joined by a non-breaking space
func (p Phrases) CountLabel(n int) string {
	phrase := p.Comments
	switch n {
	case 0:
		phrase = p.NoComments
	case 1:
		phrase = p.Comment
	}
	return strconv.Itoa(n) + "\u00a0" + phrase
}

// PageURL builds the link to a page below base
func PageURL(base, id string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(id), "%3A", ":")
	return base + "?id=" + escaped
}

// ColumnHeader returns the header of the comments column
func (s *discussionService) ColumnHeader() string {
	return s.phrases.Discussion
}

// ThreadLink renders the link to the discussion section of a page. Without
// a count the page's record is loaded, and threads that are off or closed
// without comments render nothing.
func (s *discussionService) ThreadLink(ctx context.Context, pageID string, count *int) (*models.ThreadLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var n int
	if count != nil {
		n = *count
	} else {
		record := s.loadRecord(ctx, queryLink, pageID)
		if record == nil || !record.Listable() {
			return &models.ThreadLink{Empty: true}, nil
		}
		n = record.Count
	}

	link := s.renderLink(pageID, n)
	return &link, nil
}

func (s *discussionService) renderLink(pageID string, n int) models.ThreadLink {
	label := s.phrases.CountLabel(n)
	href := PageURL(s.cfg.PageBaseURL, pageID) + "#" + models.ThreadAnchor
	title := pageID + "#" + models.ThreadAnchor

	return models.ThreadLink{
		Label: label,
		Href:  href,
		Title: title,
		Class: linkClass,
		HTML: fmt.Sprintf(`<a href="%s" class="%s" title="%s">%s</a>`,
			html.EscapeString(href), linkClass, html.EscapeString(title), html.EscapeString(label)),
	}
}
