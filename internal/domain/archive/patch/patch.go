package patch

import (
	"fmt"
	"time"

	"github.com/lightsoft-dev/light-archive/internal/domain"
	"github.com/lightsoft-dev/light-archive/internal/domain/archive"
)

// Fields lists the patchable attributes. Nil pointers leave the field unchanged.
type Fields struct {
	Title        *string
	Description  *string
	Category     *archive.Category
	SubCategory  *string
	Status       *archive.Status
	Date         *string
	Tags         *[]string
	Technologies *[]string
	Difficulty   *string
	Field        *string
	Author       *string
	Image        *string
	ThumbnailURL *string
	Content      *string
	Excerpt      *string
}

func (f Fields) empty() bool {
	return f.Title == nil && f.Description == nil && f.Category == nil && f.SubCategory == nil &&
		f.Status == nil && f.Date == nil && f.Tags == nil && f.Technologies == nil &&
		f.Difficulty == nil && f.Field == nil && f.Author == nil && f.Image == nil &&
		f.ThumbnailURL == nil && f.Content == nil && f.Excerpt == nil
}

// Patch is a partial archive update.
type Patch struct {
	fields Fields
}

// New validates and creates a Patch. At least one field must be provided.
func New(f Fields) (Patch, error) {
	if f.empty() {
		return Patch{}, fmt.Errorf("at least one field must be provided: %w", domain.ErrInvalidInput)
	}
	if f.Content != nil && len(*f.Content) > archive.MaxContentSize {
		return Patch{}, domain.Invalid("content too large (max %d bytes)", archive.MaxContentSize)
	}
	return Patch{fields: f}, nil
}

// Fields returns the raw field set.
func (p Patch) Fields() Fields { return p.fields }

// HasContent reports whether the patch includes a content change.
func (p Patch) HasContent() bool { return p.fields.Content != nil }

// Apply returns a copy of a with the present fields replaced.
// The result goes through the same validation as a full replace.
func (p Patch) Apply(a archive.Archive, now time.Time) (archive.Archive, error) {
	in := a.Input()
	f := p.fields
	set(&in.Title, f.Title)
	set(&in.Description, f.Description)
	set(&in.Category, f.Category)
	set(&in.SubCategory, f.SubCategory)
	set(&in.Status, f.Status)
	set(&in.Date, f.Date)
	set(&in.Tags, f.Tags)
	set(&in.Technologies, f.Technologies)
	set(&in.Difficulty, f.Difficulty)
	set(&in.Field, f.Field)
	set(&in.Author, f.Author)
	set(&in.Image, f.Image)
	set(&in.ThumbnailURL, f.ThumbnailURL)
	set(&in.Content, f.Content)
	set(&in.Excerpt, f.Excerpt)
	return archive.Replace(a, in, now)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
