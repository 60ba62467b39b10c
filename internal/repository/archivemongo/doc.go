package archivemongo

import (
	"time"

	domarchive "github.com/lightsoft-dev/light-archive/internal/domain/archive"
)

// archiveDoc is the BSON layout of the archive_items collection.
type archiveDoc struct {
	ID           string    `bson:"_id"`
	Title        string    `bson:"title"`
	Description  string    `bson:"description,omitempty"`
	Category     string    `bson:"category"`
	SubCategory  string    `bson:"sub_category,omitempty"`
	Status       string    `bson:"status"`
	Date         string    `bson:"date,omitempty"`
	Tags         []string  `bson:"tags"`
	Technologies []string  `bson:"technologies"`
	Difficulty   string    `bson:"difficulty,omitempty"`
	Field        string    `bson:"field,omitempty"`
	Author       string    `bson:"author,omitempty"`
	Image        string    `bson:"image,omitempty"`
	ThumbnailURL string    `bson:"thumbnail_url,omitempty"`
	ViewCount    int64     `bson:"view_count"`
	CommentCount int64     `bson:"comment_count"`
	Content      string    `bson:"content"`
	Excerpt      string    `bson:"excerpt,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
	PublishedAt  time.Time `bson:"published_at"`
}

func toDoc(a *domarchive.Archive) archiveDoc {
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	techs := a.Technologies
	if techs == nil {
		techs = []string{}
	}
	return archiveDoc{
		ID:           a.ID,
		Title:        a.Title,
		Description:  a.Description,
		Category:     string(a.Category),
		SubCategory:  a.SubCategory,
		Status:       string(a.Status),
		Date:         a.Date,
		Tags:         tags,
		Technologies: techs,
		Difficulty:   a.Difficulty,
		Field:        a.Field,
		Author:       a.Author,
		Image:        a.Image,
		ThumbnailURL: a.ThumbnailURL,
		ViewCount:    a.ViewCount,
		CommentCount: a.CommentCount,
		Content:      a.Content,
		Excerpt:      a.Excerpt,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
		PublishedAt:  a.PublishedAt,
	}
}

func (d *archiveDoc) toDomain() domarchive.Archive {
	var tags, techs []string
	if len(d.Tags) > 0 {
		tags = d.Tags
	}
	if len(d.Technologies) > 0 {
		techs = d.Technologies
	}
	return domarchive.Archive{
		ID:           d.ID,
		Title:        d.Title,
		Description:  d.Description,
		Category:     domarchive.Category(d.Category),
		SubCategory:  d.SubCategory,
		Status:       domarchive.Status(d.Status),
		Date:         d.Date,
		Tags:         tags,
		Technologies: techs,
		Difficulty:   d.Difficulty,
		Field:        d.Field,
		Author:       d.Author,
		Image:        d.Image,
		ThumbnailURL: d.ThumbnailURL,
		ViewCount:    d.ViewCount,
		CommentCount: d.CommentCount,
		Content:      d.Content,
		Excerpt:      d.Excerpt,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
		PublishedAt:  d.PublishedAt.UTC(),
	}
}
