package chi

import (
	"time"

	domarchive "github.com/lightsoft-dev/light-archive/internal/domain/archive"
	"github.com/lightsoft-dev/light-archive/internal/domain/archive/patch"
	domatt "github.com/lightsoft-dev/light-archive/internal/domain/attachment"
)

// ErrorCode is the machine-readable error code of an ErrorResponse.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeNotFound         ErrorCode = "not_found"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodePayloadTooLarge  ErrorCode = "payload_too_large"
	ErrorCodeProviderError    ErrorCode = "ai_provider_error"
	ErrorCodeNotImplemented   ErrorCode = "not_implemented"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Archive is the wire form of an archive record.
type Archive struct {
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
	Thumbnail    string    `json:"thumbnail"`
	ViewCount    int64     `json:"view_count"`
	CommentCount int64     `json:"comment_count"`
	Content      string    `json:"content"`
	Excerpt      string    `json:"excerpt,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	PublishedAt  time.Time `json:"published_at"`
}

// ArchiveList is a page of archives.
type ArchiveList struct {
	Items []Archive `json:"items"`
	Count int       `json:"count"`
}

// SearchHit is a search match with its title highlighted.
type SearchHit struct {
	Archive
	HighlightedTitle string `json:"highlighted_title"`
}

// SearchResponse is a page of search matches.
type SearchResponse struct {
	Query string      `json:"query"`
	Items []SearchHit `json:"items"`
	Total int         `json:"total"`
}

// RelatedItem is a recommendation with its relevance score.
type RelatedItem struct {
	Archive
	Score int `json:"score"`
}

// RelatedResponse lists recommendations.
type RelatedResponse struct {
	Mode  string        `json:"mode"`
	Items []RelatedItem `json:"items"`
}

// ArchiveRequest is the body of create and full-replace requests.
type ArchiveRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	SubCategory  string   `json:"sub_category"`
	Status       string   `json:"status"`
	Date         string   `json:"date"`
	Tags         []string `json:"tags"`
	Technologies []string `json:"technologies"`
	Difficulty   string   `json:"difficulty"`
	Field        string   `json:"field"`
	Author       string   `json:"author"`
	Image        string   `json:"image"`
	ThumbnailURL string   `json:"thumbnail_url"`
	Content      string   `json:"content"`
	Excerpt      string   `json:"excerpt"`
}

// PatchRequest is the body of a partial update. Absent fields are unchanged.
type PatchRequest struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	Category     *string   `json:"category"`
	SubCategory  *string   `json:"sub_category"`
	Status       *string   `json:"status"`
	Date         *string   `json:"date"`
	Tags         *[]string `json:"tags"`
	Technologies *[]string `json:"technologies"`
	Difficulty   *string   `json:"difficulty"`
	Field        *string   `json:"field"`
	Author       *string   `json:"author"`
	Image        *string   `json:"image"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	Content      *string   `json:"content"`
	Excerpt      *string   `json:"excerpt"`
}

// Attachment is the wire form of an attachment.
type Attachment struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Size      int64  `json:"size"`
	SizeLabel string `json:"size_label"`
	Type      string `json:"type"`
	Icon      string `json:"icon"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries an issued session token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// AIStatusResponse reports the AI provider key state.
type AIStatusResponse struct {
	Configured bool   `json:"configured"`
	Message    string `json:"message"`
}

func archiveToWire(a *domarchive.Archive) Archive {
	return Archive{
		ID:           a.ID,
		Title:        a.Title,
		Description:  a.Description,
		Category:     string(a.Category),
		SubCategory:  a.SubCategory,
		Status:       string(a.Status),
		Date:         a.Date,
		Tags:         nonNil(a.Tags),
		Technologies: nonNil(a.Technologies),
		Difficulty:   a.Difficulty,
		Field:        a.Field,
		Author:       a.Author,
		Image:        a.Image,
		ThumbnailURL: a.ThumbnailURL,
		Thumbnail:    a.Thumbnail(),
		ViewCount:    a.ViewCount,
		CommentCount: a.CommentCount,
		Content:      a.Content,
		Excerpt:      a.Excerpt,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
		PublishedAt:  a.PublishedAt,
	}
}

func archivesToWire(as []domarchive.Archive) []Archive {
	out := make([]Archive, len(as))
	for i := range as {
		out[i] = archiveToWire(&as[i])
	}
	return out
}

func (r *ArchiveRequest) toInput() domarchive.Input {
	return domarchive.Input{
		Title:        r.Title,
		Description:  r.Description,
		Category:     domarchive.Category(r.Category),
		SubCategory:  r.SubCategory,
		Status:       domarchive.Status(r.Status),
		Date:         r.Date,
		Tags:         r.Tags,
		Technologies: r.Technologies,
		Difficulty:   r.Difficulty,
		Field:        r.Field,
		Author:       r.Author,
		Image:        r.Image,
		ThumbnailURL: r.ThumbnailURL,
		Content:      r.Content,
		Excerpt:      r.Excerpt,
	}
}

func (r *PatchRequest) toFields() patch.Fields {
	f := patch.Fields{
		Title:        r.Title,
		Description:  r.Description,
		SubCategory:  r.SubCategory,
		Date:         r.Date,
		Tags:         r.Tags,
		Technologies: r.Technologies,
		Difficulty:   r.Difficulty,
		Field:        r.Field,
		Author:       r.Author,
		Image:        r.Image,
		ThumbnailURL: r.ThumbnailURL,
		Content:      r.Content,
		Excerpt:      r.Excerpt,
	}
	if r.Category != nil {
		c := domarchive.Category(*r.Category)
		f.Category = &c
	}
	if r.Status != nil {
		s := domarchive.Status(*r.Status)
		f.Status = &s
	}
	return f
}

func attachmentToWire(a domatt.Attachment) Attachment {
	return Attachment{
		Name:      a.Name,
		URL:       a.URL,
		Size:      a.Size,
		SizeLabel: domatt.FormatSize(a.Size),
		Type:      a.Type,
		Icon:      domatt.IconType(a.Type),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
