package archive

import (
	"time"

	domarchive "github.com/lightsoft-dev/light-archive/internal/domain/archive"
)

// archiveJSON is the RedisJSON document layout. view_count is informational;
// the authoritative counter lives in the views sorted set.
type archiveJSON struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Category     string    `json:"category"`
	SubCategory  string    `json:"sub_category,omitempty"`
	Status       string    `json:"status"`
	Date         string    `json:"date,omitempty"`
	Tags         []string  `json:"tags"`
	Technologies []string  `json:"technologies"`
	Difficulty   string    `json:"difficulty,omitempty"`
	Field        string    `json:"field,omitempty"`
	Author       string    `json:"author,omitempty"`
	Image        string    `json:"image,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	ViewCount    int64     `json:"view_count"`
	CommentCount int64     `json:"comment_count"`
	Content      string    `json:"content"`
	Excerpt      string    `json:"excerpt,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	PublishedAt  time.Time `json:"published_at"`
}

func toJSON(a *domarchive.Archive) archiveJSON {
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	techs := a.Technologies
	if techs == nil {
		techs = []string{}
	}
	return archiveJSON{
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

func (j *archiveJSON) toDomain() domarchive.Archive {
	var tags, techs []string
	if len(j.Tags) > 0 {
		tags = j.Tags
	}
	if len(j.Technologies) > 0 {
		techs = j.Technologies
	}
	return domarchive.Archive{
		ID:           j.ID,
		Title:        j.Title,
		Description:  j.Description,
		Category:     domarchive.Category(j.Category),
		SubCategory:  j.SubCategory,
		Status:       domarchive.Status(j.Status),
		Date:         j.Date,
		Tags:         tags,
		Technologies: techs,
		Difficulty:   j.Difficulty,
		Field:        j.Field,
		Author:       j.Author,
		Image:        j.Image,
		ThumbnailURL: j.ThumbnailURL,
		ViewCount:    j.ViewCount,
		CommentCount: j.CommentCount,
		Content:      j.Content,
		Excerpt:      j.Excerpt,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
		PublishedAt:  j.PublishedAt,
	}
}
