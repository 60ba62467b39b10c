package archivesql

import (
	"time"

	domarchive "github.com/lightsoft-dev/light-archive/internal/domain/archive"
)

// archiveRow is the archive_items table. Tags and technologies are JSON
// arrays in TEXT columns so json_each can filter on them.
type archiveRow struct {
	ID           string   `gorm:"primaryKey;size:64"`
	Title        string   `gorm:"size:200;not null"`
	Description  string   `gorm:"size:500"`
	Category     string   `gorm:"size:50;not null;index:idx_archive_category_created,priority:1"`
	SubCategory  string   `gorm:"size:50;index"`
	Status       string   `gorm:"size:20;not null;index"`
	Date         string   `gorm:"size:32"`
	Tags         []string `gorm:"serializer:json;type:text"`
	Technologies []string `gorm:"serializer:json;type:text"`
	Difficulty   string   `gorm:"size:50"`
	Field        string   `gorm:"size:100"`
	Author       string   `gorm:"size:100"`
	Image        string
	ThumbnailURL string
	ViewCount    int64     `gorm:"not null;default:0;index"`
	CommentCount int64     `gorm:"not null;default:0"`
	Content      string    `gorm:"type:text;not null"`
	Excerpt      string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"autoCreateTime:false;index:idx_archive_category_created,priority:2;index"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime:false"`
	PublishedAt  time.Time
}

// TableName pins the table name.
func (archiveRow) TableName() string { return "archive_items" }

func toRow(a *domarchive.Archive) archiveRow {
	return archiveRow{
		ID:           a.ID,
		Title:        a.Title,
		Description:  a.Description,
		Category:     string(a.Category),
		SubCategory:  a.SubCategory,
		Status:       string(a.Status),
		Date:         a.Date,
		Tags:         orEmpty(a.Tags),
		Technologies: orEmpty(a.Technologies),
		Difficulty:   a.Difficulty,
		Field:        a.Field,
		Author:       a.Author,
		Image:        a.Image,
		ThumbnailURL: a.ThumbnailURL,
		ViewCount:    a.ViewCount,
		CommentCount: a.CommentCount,
		Content:      a.Content,
		Excerpt:      a.Excerpt,
		CreatedAt:    a.CreatedAt.UTC(),
		UpdatedAt:    a.UpdatedAt.UTC(),
		PublishedAt:  a.PublishedAt.UTC(),
	}
}

func (r *archiveRow) toDomain() domarchive.Archive {
	return domarchive.Archive{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Category:     domarchive.Category(r.Category),
		SubCategory:  r.SubCategory,
		Status:       domarchive.Status(r.Status),
		Date:         r.Date,
		Tags:         orNil(r.Tags),
		Technologies: orNil(r.Technologies),
		Difficulty:   r.Difficulty,
		Field:        r.Field,
		Author:       r.Author,
		Image:        r.Image,
		ThumbnailURL: r.ThumbnailURL,
		ViewCount:    r.ViewCount,
		CommentCount: r.CommentCount,
		Content:      r.Content,
		Excerpt:      r.Excerpt,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
		PublishedAt:  r.PublishedAt.UTC(),
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orNil(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
