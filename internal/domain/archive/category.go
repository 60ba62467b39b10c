package archive

// Category partitions records into content types.
type Category string

const (
	// CategoryTech is a technical article ("기술").
	CategoryTech Category = "기술"
	// CategoryProject is a project write-up ("프로젝트").
	CategoryProject Category = "프로젝트"
	// CategoryResearch is a research note ("리서치").
	CategoryResearch Category = "리서치"
	// CategoryNews is a news post ("뉴스").
	CategoryNews Category = "뉴스"

	// DefaultCategory is assigned to submissions without a category.
	DefaultCategory = CategoryTech
)

// Known reports whether c is one of the fixed categories.
// Posts may still use free-form categories.
func (c Category) Known() bool {
	switch c {
	case CategoryTech, CategoryProject, CategoryResearch, CategoryNews:
		return true
	}
	return false
}

// Status is the publication state of a record.
type Status string

const (
	// StatusDraft is the default state of a new record.
	StatusDraft Status = "draft"
	// StatusPublished records are visible to visitors.
	StatusPublished Status = "published"
	// StatusArchived records are retired but kept.
	StatusArchived Status = "archived"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}
