package archive

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lightsoft-dev/light-archive/internal/domain"
)

// Limits applied to admin submissions.
const (
	MaxTitleLen       = 200
	MaxContentSize    = 1 << 20 // 1MiB of HTML
	MaxTags           = 10
	MaxTechnologies   = 20
	MaxLabelLen       = 50
	MaxDescriptionLen = 500
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Archive is the single content entity: a project, a technical article or a general post.
type Archive struct {
	ID           string
	Title        string
	Description  string
	Category     Category
	SubCategory  string
	Status       Status
	Date         string
	Tags         []string
	Technologies []string
	Difficulty   string
	Field        string
	Author       string
	Image        string
	ThumbnailURL string
	ViewCount    int64
	CommentCount int64
	Content      string
	Excerpt      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	PublishedAt  time.Time
}

// Input is an admin submission. Title and Content are required, everything else is optional.
// An empty Category becomes DefaultCategory.
type Input struct {
	Title        string
	Description  string
	Category     Category
	SubCategory  string
	Status       Status
	Date         string
	Tags         []string
	Technologies []string
	Difficulty   string
	Field        string
	Author       string
	Image        string
	ThumbnailURL string
	Content      string
	Excerpt      string
}

// New validates a create submission and assigns id, timestamps and zeroed counters.
func New(in Input, now time.Time) (Archive, error) {
	now = now.UTC()
	a := fromInput(in)
	a.ID = NewID(now)
	a.CreatedAt = now
	a.UpdatedAt = now
	a.PublishedAt = now
	if err := Validate(&a); err != nil {
		return Archive{}, err
	}
	return a, nil
}

// Replace is the full-record replace used by admin edits.
// Identity, creation time and counters survive; every other field comes from in.
func Replace(existing Archive, in Input, now time.Time) (Archive, error) {
	a := fromInput(in)
	a.ID = existing.ID
	a.CreatedAt = existing.CreatedAt
	a.PublishedAt = existing.PublishedAt
	a.ViewCount = existing.ViewCount
	a.CommentCount = existing.CommentCount
	a.UpdatedAt = now.UTC()
	if err := Validate(&a); err != nil {
		return Archive{}, err
	}
	return a, nil
}

// Input returns the editable fields of a as a submission.
func (a *Archive) Input() Input {
	return Input{
		Title:        a.Title,
		Description:  a.Description,
		Category:     a.Category,
		SubCategory:  a.SubCategory,
		Status:       a.Status,
		Date:         a.Date,
		Tags:         cloneStrings(a.Tags),
		Technologies: cloneStrings(a.Technologies),
		Difficulty:   a.Difficulty,
		Field:        a.Field,
		Author:       a.Author,
		Image:        a.Image,
		ThumbnailURL: a.ThumbnailURL,
		Content:      a.Content,
		Excerpt:      a.Excerpt,
	}
}

func fromInput(in Input) Archive {
	status := in.Status
	if status == "" {
		status = StatusDraft
	}
	category := Category(strings.TrimSpace(string(in.Category)))
	if category == "" {
		category = DefaultCategory
	}
	return Archive{
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		Category:     category,
		SubCategory:  strings.TrimSpace(in.SubCategory),
		Status:       status,
		Date:         in.Date,
		Tags:         cleanLabels(in.Tags),
		Technologies: cleanLabels(in.Technologies),
		Difficulty:   in.Difficulty,
		Field:        in.Field,
		Author:       in.Author,
		Image:        in.Image,
		ThumbnailURL: in.ThumbnailURL,
		Content:      in.Content,
		Excerpt:      in.Excerpt,
	}
}

// Validate checks the submission rules shared by create, replace and patch.
func Validate(a *Archive) error {
	if a.Title == "" {
		return domain.Invalid("title is required")
	}
	if utf8.RuneCountInString(a.Title) > MaxTitleLen {
		return domain.Invalid("title too long (max %d)", MaxTitleLen)
	}
	if strings.TrimSpace(a.Content) == "" {
		return domain.Invalid("content is required")
	}
	if len(a.Content) > MaxContentSize {
		return domain.Invalid("content too large (max %d bytes)", MaxContentSize)
	}
	if utf8.RuneCountInString(a.Description) > MaxDescriptionLen {
		return domain.Invalid("description too long (max %d)", MaxDescriptionLen)
	}
	if !a.Status.Valid() {
		return domain.Invalid("unknown status %q", a.Status)
	}
	if len(a.Tags) > MaxTags {
		return domain.Invalid("too many tags (max %d)", MaxTags)
	}
	if len(a.Technologies) > MaxTechnologies {
		return domain.Invalid("too many technologies (max %d)", MaxTechnologies)
	}
	for _, l := range append(append([]string(nil), a.Tags...), a.Technologies...) {
		if utf8.RuneCountInString(l) > MaxLabelLen {
			return domain.Invalid("label %q too long (max %d)", l, MaxLabelLen)
		}
	}
	return nil
}

// ValidateID reports whether id is acceptable as a path segment and storage key.
func ValidateID(id string) error {
	if id == "" {
		return domain.Invalid("archive id is required")
	}
	if len(id) > 128 || !idRegex.MatchString(id) {
		return domain.Invalid("archive id must be alphanumeric with underscores and hyphens")
	}
	return nil
}

// HasSimilarityKeys reports whether the record carries tags or technologies to compare on.
func (a *Archive) HasSimilarityKeys() bool {
	return len(a.Tags) > 0 || len(a.Technologies) > 0
}

// Clone returns a deep copy; slices are not shared with the receiver.
func (a *Archive) Clone() Archive {
	c := *a
	c.Tags = cloneStrings(a.Tags)
	c.Technologies = cloneStrings(a.Technologies)
	return c
}

// cleanLabels trims labels and drops empty ones. Order and duplicates are kept.
func cleanLabels(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, l := range in {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	c := make([]string, len(s))
	copy(c, s)
	return c
}
