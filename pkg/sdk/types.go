package lightarchive

import "time"

// Category is the top-level archive section.
type Category string

// Fixed categories.
const (
	CategoryTech     Category = "기술"
	CategoryProject  Category = "프로젝트"
	CategoryResearch Category = "리서치"
	CategoryNews     Category = "뉴스"
)

// Status is the publication state.
type Status string

// Status constants.
const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Order selects the sort of a listing.
type Order string

// Order constants.
const (
	OrderRecent  Order = "recent"
	OrderPopular Order = "popular"
)

// RelatedMode tells how recommendations were picked.
type RelatedMode string

// Related mode constants.
const (
	RelatedScored   RelatedMode = "scored"
	RelatedFallback RelatedMode = "fallback"
)

// Archive is a stored record.
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
	Thumbnail    string // resolved: image, thumbnail url, first <img> in content, default
	ViewCount    int64
	CommentCount int64
	Content      string
	Excerpt      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	PublishedAt  time.Time
}

// ArchiveInput creates or fully replaces a record. Title and Content are required;
// an empty Category becomes 기술.
type ArchiveInput struct {
	Title        string
	Description  string
	Category     Category
	SubCategory  string
	Status       Status // default draft
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

// ArchivePatch is a partial update. Nil fields are unchanged.
type ArchivePatch struct {
	Title        *string
	Description  *string
	Category     *Category
	SubCategory  *string
	Status       *Status
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

// ListOptions filters and pages a listing. Empty filters match everything.
type ListOptions struct {
	Category    Category
	SubCategory string
	Status      Status
	Tag         string
	Order       Order
	Offset      int
	Limit       int
}

// SearchOptions narrows and pages a keyword search.
type SearchOptions struct {
	Category Category
	Status   Status
	Offset   int
	Limit    int
}

// SearchResult is one page of keyword matches.
type SearchResult struct {
	Items []Archive
	Total int
}

// RelatedArchive is a recommendation with its similarity score. Score is zero in fallback mode.
type RelatedArchive struct {
	Archive
	Score int
}

// RelatedResult holds recommendations.
type RelatedResult struct {
	Mode  RelatedMode
	Items []RelatedArchive
}

// Weights are the related-content scoring points.
type Weights struct {
	Category         int
	Tag              int
	Technology       int
	Popular          int
	PopularThreshold int64
}
