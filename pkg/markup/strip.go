// Package markup turns rendered comment bodies into plain text.
package markup

import (
	"strings"

	"golang.org/x/net/html"
)

// StripTags removes all markup from s and returns its text content.
// Entities are decoded; whitespace is kept as written.
func StripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a tokenizer error; keep what was decoded so far
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}
