// Package keyword filters archive records by case-insensitive substring match.
package keyword

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/lightsoft-dev/light-archive/internal/domain/archive"
)

var tagRegex = regexp.MustCompile(`<[^>]*>`)

// Matcher holds a normalized query. The zero value and an empty query match everything.
type Matcher struct {
	term  string
	lower cases.Caser
}

// NewMatcher normalizes query (trim, NFC, lowercase).
func NewMatcher(query string) *Matcher {
	m := &Matcher{lower: cases.Lower(language.Und)}
	m.term = m.fold(strings.TrimSpace(query))
	return m
}

// Empty reports whether the query matches everything.
func (m *Matcher) Empty() bool { return m.term == "" }

// Term returns the normalized query.
func (m *Matcher) Term() string { return m.term }

// Match reports whether any searchable field of a contains the query.
// Fields: title, description, category, tags, technologies, and content with markup removed.
func (m *Matcher) Match(a *archive.Archive) bool {
	if m.term == "" {
		return true
	}
	if m.contains(a.Title) || m.contains(a.Description) || m.contains(string(a.Category)) {
		return true
	}
	for _, t := range a.Tags {
		if m.contains(t) {
			return true
		}
	}
	for _, t := range a.Technologies {
		if m.contains(t) {
			return true
		}
	}
	return a.Content != "" && m.contains(StripTags(a.Content))
}

func (m *Matcher) contains(s string) bool {
	return s != "" && strings.Contains(m.fold(s), m.term)
}

func (m *Matcher) fold(s string) string {
	return m.lower.String(norm.NFC.String(s))
}

// Search returns the records of pool matching query, in pool order.
// An empty or whitespace-only query returns pool itself.
//
// Matching is plain substring containment after case folding: no tokenizing or ranking.
func Search(pool []archive.Archive, query string) []archive.Archive {
	m := NewMatcher(query)
	if m.Empty() {
		return pool
	}
	out := make([]archive.Archive, 0)
	for i := range pool {
		if m.Match(&pool[i]) {
			out = append(out, pool[i])
		}
	}
	return out
}

// StripTags removes every <...> span. Entities are left as-is.
func StripTags(html string) string {
	return tagRegex.ReplaceAllString(html, "")
}

const (
	markOpen  = `<mark class="bg-yellow-200">`
	markClose = `</mark>`
)

// Highlight wraps each case-insensitive occurrence of query in a <mark> span.
// The query is matched literally. Text outside the matches is unchanged.
func Highlight(text, query string) string {
	query = strings.TrimSpace(query)
	if text == "" || query == "" {
		return text
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(query))
	return re.ReplaceAllStringFunc(text, func(s string) string {
		return markOpen + s + markClose
	})
}
