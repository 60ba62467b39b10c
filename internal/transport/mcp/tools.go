package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lightsoft-dev/light-archive/internal/domain"
	domarchive "github.com/lightsoft-dev/light-archive/internal/domain/archive"
	"github.com/lightsoft-dev/light-archive/internal/domain/archive/patch"
	archiveuc "github.com/lightsoft-dev/light-archive/internal/usecase/archive"
)

const (
	defaultLimit        = 20
	maxLimit            = 100
	defaultRelatedLimit = 4
	maxRelatedLimit     = 10
)

type tool struct {
	Name        string
	Title       string
	Description string
	Schema      map[string]any
	Annotations map[string]bool
	Run         func(ctx context.Context, args json.RawMessage) (string, error)
}

func annotations(readOnly, idempotent bool) map[string]bool {
	return map[string]bool{
		"readOnlyHint":    readOnly,
		"destructiveHint": false,
		"idempotentHint":  idempotent,
		"openWorldHint":   true,
	}
}

func object(required []string, props map[string]any) map[string]any {
	s := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

var (
	categoryProp = map[string]any{
		"type": "string",
		"enum": []string{
			string(domarchive.CategoryTech), string(domarchive.CategoryProject),
			string(domarchive.CategoryResearch), string(domarchive.CategoryNews),
		},
		"description": "카테고리 (기술/프로젝트/리서치/뉴스)",
	}
	statusProp = map[string]any{
		"type": "string",
		"enum": []string{
			string(domarchive.StatusDraft), string(domarchive.StatusPublished), string(domarchive.StatusArchived),
		},
	}
	formatProp = map[string]any{"type": "string", "enum": []string{formatMarkdown, formatJSON}, "default": formatMarkdown}
	idProp     = map[string]any{"type": "string", "description": "아카이브 ID"}
	stringList = func(maxItems int) map[string]any {
		return map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "maxItems": maxItems}
	}
	intRange = func(lo, hi, def int) map[string]any {
		return map[string]any{"type": "integer", "minimum": lo, "maximum": hi, "default": def}
	}
)

func newTools(archives ArchiveService) []tool {
	h := &handlers{archives: archives}
	return []tool{
		{
			Name:        "archive_search_archives",
			Title:       "Search Archives",
			Description: "Light Archive에서 게시된 아카이브를 검색합니다. 검색 대상: title, description, content",
			Schema: object([]string{"query"}, map[string]any{
				"query":           map[string]any{"type": "string", "minLength": 2, "maxLength": 200},
				"category":        categoryProp,
				"limit":           intRange(1, maxLimit, defaultLimit),
				"offset":          map[string]any{"type": "integer", "minimum": 0, "default": 0},
				"response_format": formatProp,
			}),
			Annotations: annotations(true, true),
			Run:         h.search,
		},
		{
			Name:        "archive_get_archive",
			Title:       "Get Archive Details",
			Description: "특정 아카이브의 상세 정보를 조회합니다.",
			Schema: object([]string{"archive_id"}, map[string]any{
				"archive_id":      idProp,
				"response_format": formatProp,
			}),
			Annotations: annotations(true, true),
			Run:         h.get,
		},
		{
			Name:        "archive_list_archives",
			Title:       "List Archives",
			Description: "아카이브 목록을 최신순으로 조회합니다.",
			Schema: object(nil, map[string]any{
				"category":        categoryProp,
				"status":          statusProp,
				"limit":           intRange(1, maxLimit, defaultLimit),
				"offset":          map[string]any{"type": "integer", "minimum": 0, "default": 0},
				"response_format": formatProp,
			}),
			Annotations: annotations(true, true),
			Run:         h.list,
		},
		{
			Name:        "archive_create_archive",
			Title:       "Create Archive",
			Description: "새 아카이브를 draft 상태로 생성합니다. content는 HTML로 작성합니다.",
			Schema: object([]string{"title", "content", "category", "description", "tags", "technologies"}, map[string]any{
				"title":         map[string]any{"type": "string", "minLength": 3, "maxLength": 200},
				"content":       map[string]any{"type": "string", "description": "HTML 본문"},
				"category":      categoryProp,
				"description":   map[string]any{"type": "string", "minLength": 10, "maxLength": 500},
				"tags":          stringList(domarchive.MaxTags),
				"technologies":  stringList(domarchive.MaxTechnologies),
				"sub_category":  map[string]any{"type": "string", "maxLength": 100},
				"excerpt":       map[string]any{"type": "string", "maxLength": 500},
				"author":        map[string]any{"type": "string", "maxLength": 100},
				"difficulty":    map[string]any{"type": "string"},
				"thumbnail_url": map[string]any{"type": "string"},
			}),
			Annotations: annotations(false, false),
			Run:         h.create,
		},
		{
			Name:        "archive_update_archive",
			Title:       "Update Archive",
			Description: "아카이브를 수정합니다. 전달한 필드만 변경됩니다.",
			Schema: object([]string{"archive_id"}, map[string]any{
				"archive_id":   idProp,
				"title":        map[string]any{"type": "string", "minLength": 3, "maxLength": 200},
				"content":      map[string]any{"type": "string", "minLength": 10},
				"description":  map[string]any{"type": "string", "minLength": 10, "maxLength": 500},
				"excerpt":      map[string]any{"type": "string", "maxLength": 500},
				"category":     categoryProp,
				"sub_category": map[string]any{"type": "string", "maxLength": 100},
				"tags":         stringList(domarchive.MaxTags),
				"technologies": stringList(domarchive.MaxTechnologies),
				"difficulty":   map[string]any{"type": "string"},
			}),
			Annotations: annotations(false, false),
			Run:         h.update,
		},
		{
			Name:        "archive_find_related",
			Title:       "Find Related Archives",
			Description: "태그와 기술 스택이 겹치는 유사 아카이브를 찾습니다.",
			Schema: object([]string{"archive_id"}, map[string]any{
				"archive_id":      idProp,
				"limit":           intRange(1, maxRelatedLimit, defaultRelatedLimit),
				"response_format": formatProp,
			}),
			Annotations: annotations(true, true),
			Run:         h.related,
		},
	}
}

type handlers struct {
	archives ArchiveService
}

func decodeArgs(args json.RawMessage, v any) error {
	if err := json.Unmarshal(args, v); err != nil {
		return domain.Invalid("invalid arguments: %v", err)
	}
	return nil
}

// pageArgs validates optional paging against [1, hi] with a default.
func pageArgs(limit, offset *int, def, hi int) (int, int, error) {
	l := def
	if limit != nil {
		if *limit < 1 || *limit > hi {
			return 0, 0, domain.Invalid("limit must be between 1 and %d", hi)
		}
		l = *limit
	}
	o := 0
	if offset != nil {
		if *offset < 0 {
			return 0, 0, domain.Invalid("offset must be non-negative")
		}
		o = *offset
	}
	return l, o, nil
}

func categoryArg(c *string) (domarchive.Category, error) {
	if c == nil || strings.TrimSpace(*c) == "" {
		return "", nil
	}
	cat := domarchive.Category(strings.TrimSpace(*c))
	if !cat.Known() {
		return "", domain.Invalid("unknown category %q", *c)
	}
	return cat, nil
}

func formatArg(f string) (string, error) {
	switch f {
	case "", formatMarkdown:
		return formatMarkdown, nil
	case formatJSON:
		return formatJSON, nil
	}
	return "", domain.Invalid("response_format must be markdown or json")
}

func lengthBetween(field, v string, lo, hi int) error {
	n := utf8.RuneCountInString(v)
	if n < lo || (hi > 0 && n > hi) {
		if hi > 0 {
			return domain.Invalid("%s must be %d-%d characters", field, lo, hi)
		}
		return domain.Invalid("%s must be at least %d characters", field, lo)
	}
	return nil
}

type searchArgs struct {
	Query          string  `json:"query"`
	Category       *string `json:"category"`
	Limit          *int    `json:"limit"`
	Offset         *int    `json:"offset"`
	ResponseFormat string  `json:"response_format"`
}

func (h *handlers) search(ctx context.Context, raw json.RawMessage) (string, error) {
	var a searchArgs
	if err := decodeArgs(raw, &a); err != nil {
		return "", err
	}
	query := strings.TrimSpace(a.Query)
	if err := lengthBetween("query", query, 2, 200); err != nil {
		return "", err
	}
	cat, err := categoryArg(a.Category)
	if err != nil {
		return "", err
	}
	limit, offset, err := pageArgs(a.Limit, a.Offset, defaultLimit, maxLimit)
	if err != nil {
		return "", err
	}
	format, err := formatArg(a.ResponseFormat)
	if err != nil {
		return "", err
	}

	res, err := h.archives.Search(ctx, query, archiveuc.SearchOptions{
		Category: cat,
		Status:   domarchive.StatusPublished,
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		return "", err
	}
	if len(res.Items) == 0 {
		return fmt.Sprintf("검색 결과가 없습니다: '%s'", query), nil
	}
	if format == formatJSON {
		return toJSON(map[string]any{"query": query, "total": res.Total, "archives": docs(res.Items)})
	}
	return searchMarkdown(query, res.Items), nil
}

type getArgs struct {
	ArchiveID      string `json:"archive_id"`
	ResponseFormat string `json:"response_format"`
}

func (h *handlers) get(ctx context.Context, raw json.RawMessage) (string, error) {
	var a getArgs
	if err := decodeArgs(raw, &a); err != nil {
		return "", err
	}
	format, err := formatArg(a.ResponseFormat)
	if err != nil {
		return "", err
	}
	id, err := idArg(a.ArchiveID)
	if err != nil {
		return "", err
	}
	rec, err := h.archives.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if format == formatJSON {
		return toJSON(doc(&rec))
	}
	return detailMarkdown(&rec), nil
}

type listArgs struct {
	Category       *string `json:"category"`
	Status         *string `json:"status"`
	Limit          *int    `json:"limit"`
	Offset         *int    `json:"offset"`
	ResponseFormat string  `json:"response_format"`
}

func (h *handlers) list(ctx context.Context, raw json.RawMessage) (string, error) {
	var a listArgs
	if err := decodeArgs(raw, &a); err != nil {
		return "", err
	}
	cat, err := categoryArg(a.Category)
	if err != nil {
		return "", err
	}
	limit, offset, err := pageArgs(a.Limit, a.Offset, defaultLimit, maxLimit)
	if err != nil {
		return "", err
	}
	format, err := formatArg(a.ResponseFormat)
	if err != nil {
		return "", err
	}
	opts := domarchive.ListOptions{
		Category: cat,
		Order:    domarchive.OrderRecent,
		Offset:   offset,
		Limit:    limit,
	}
	if a.Status != nil {
		opts.Status = domarchive.Status(*a.Status)
	}

	items, err := h.archives.List(ctx, opts)
	if err != nil {
		return "", err
	}
	if format == formatJSON {
		return toJSON(map[string]any{"archives": docs(items)})
	}
	return listMarkdown(items), nil
}

type createArgs struct {
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Category     string   `json:"category"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
	Technologies []string `json:"technologies"`
	SubCategory  string   `json:"sub_category"`
	Excerpt      string   `json:"excerpt"`
	Author       string   `json:"author"`
	Difficulty   string   `json:"difficulty"`
	ThumbnailURL string   `json:"thumbnail_url"`
}

func (a *createArgs) validate() error {
	if err := lengthBetween("title", strings.TrimSpace(a.Title), 3, 200); err != nil {
		return err
	}
	if err := lengthBetween("description", strings.TrimSpace(a.Description), 10, 500); err != nil {
		return err
	}
	if !domarchive.Category(a.Category).Known() {
		return domain.Invalid("unknown category %q", a.Category)
	}
	if len(a.Tags) == 0 {
		return domain.Invalid("at least one tag is required")
	}
	if len(a.Technologies) == 0 {
		return domain.Invalid("at least one technology is required")
	}
	if utf8.RuneCountInString(a.SubCategory) > 100 || utf8.RuneCountInString(a.Author) > 100 {
		return domain.Invalid("sub_category and author are limited to 100 characters")
	}
	if utf8.RuneCountInString(a.Excerpt) > 500 {
		return domain.Invalid("excerpt is limited to 500 characters")
	}
	return nil
}

func (h *handlers) create(ctx context.Context, raw json.RawMessage) (string, error) {
	var a createArgs
	if err := decodeArgs(raw, &a); err != nil {
		return "", err
	}
	if err := a.validate(); err != nil {
		return "", err
	}
	rec, err := h.archives.Create(ctx, domarchive.Input{
		Title:        a.Title,
		Content:      a.Content,
		Category:     domarchive.Category(a.Category),
		Description:  a.Description,
		Tags:         a.Tags,
		Technologies: a.Technologies,
		SubCategory:  a.SubCategory,
		Excerpt:      a.Excerpt,
		Author:       a.Author,
		Difficulty:   a.Difficulty,
		ThumbnailURL: a.ThumbnailURL,
		Status:       domarchive.StatusDraft,
	})
	if err != nil {
		return "", err
	}
	return createdMarkdown(&rec), nil
}

type updateArgs struct {
	ArchiveID    string    `json:"archive_id"`
	Title        *string   `json:"title"`
	Content      *string   `json:"content"`
	Description  *string   `json:"description"`
	Excerpt      *string   `json:"excerpt"`
	Category     *string   `json:"category"`
	SubCategory  *string   `json:"sub_category"`
	Tags         *[]string `json:"tags"`
	Technologies *[]string `json:"technologies"`
	Difficulty   *string   `json:"difficulty"`
}

// fields keeps only non-empty values, so blank arguments leave the record unchanged.
func (a *updateArgs) fields() (patch.Fields, error) {
	var f patch.Fields
	str := func(p *string) *string {
		if p == nil || strings.TrimSpace(*p) == "" {
			return nil
		}
		return p
	}
	list := func(p *[]string) *[]string {
		if p == nil || len(*p) == 0 {
			return nil
		}
		return p
	}
	f.Title = str(a.Title)
	f.Content = str(a.Content)
	f.Description = str(a.Description)
	f.Excerpt = str(a.Excerpt)
	f.SubCategory = str(a.SubCategory)
	f.Difficulty = str(a.Difficulty)
	f.Tags = list(a.Tags)
	f.Technologies = list(a.Technologies)
	if c := str(a.Category); c != nil {
		cat := domarchive.Category(*c)
		if !cat.Known() {
			return f, domain.Invalid("unknown category %q", *c)
		}
		f.Category = &cat
	}
	if f.Title != nil {
		if err := lengthBetween("title", strings.TrimSpace(*f.Title), 3, 200); err != nil {
			return f, err
		}
	}
	if f.Description != nil {
		if err := lengthBetween("description", strings.TrimSpace(*f.Description), 10, 500); err != nil {
			return f, err
		}
	}
	if f.Content != nil {
		if err := lengthBetween("content", *f.Content, 10, 0); err != nil {
			return f, err
		}
	}
	return f, nil
}

func (h *handlers) update(ctx context.Context, raw json.RawMessage) (string, error) {
	var a updateArgs
	if err := decodeArgs(raw, &a); err != nil {
		return "", err
	}
	id, err := idArg(a.ArchiveID)
	if err != nil {
		return "", err
	}
	f, err := a.fields()
	if err != nil {
		return "", err
	}
	if f == (patch.Fields{}) {
		return "변경할 내용이 없습니다.", nil
	}
	p, err := patch.New(f)
	if err != nil {
		return "", err
	}
	rec, err := h.archives.Patch(ctx, id, p)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("# ✅ 아카이브 수정 완료\n\n**ID**: `%s`\n**제목**: %s", rec.ID, rec.Title), nil
}

type relatedArgs struct {
	ArchiveID      string `json:"archive_id"`
	Limit          *int   `json:"limit"`
	ResponseFormat string `json:"response_format"`
}

func (h *handlers) related(ctx context.Context, raw json.RawMessage) (string, error) {
	var a relatedArgs
	if err := decodeArgs(raw, &a); err != nil {
		return "", err
	}
	id, err := idArg(a.ArchiveID)
	if err != nil {
		return "", err
	}
	limit, _, err := pageArgs(a.Limit, nil, defaultRelatedLimit, maxRelatedLimit)
	if err != nil {
		return "", err
	}
	format, err := formatArg(a.ResponseFormat)
	if err != nil {
		return "", err
	}

	base, err := h.archives.Get(ctx, id)
	if err != nil {
		return "", err
	}
	res, err := h.archives.Related(ctx, id, limit)
	if err != nil {
		return "", err
	}
	if len(res.Items) == 0 {
		return fmt.Sprintf("'%s'와 유사한 아카이브를 찾을 수 없습니다.", base.Title), nil
	}
	if format == formatJSON {
		related := make([]map[string]any, len(res.Items))
		for i := range res.Items {
			related[i] = map[string]any{"archive": doc(&res.Items[i]), "score": res.Scores[i]}
		}
		return toJSON(map[string]any{"base_archive": doc(&base), "mode": res.Mode, "related": related})
	}
	return relatedMarkdown(&base, res), nil
}

func idArg(id string) (string, error) {
	id = strings.TrimSpace(id)
	if err := domarchive.ValidateID(id); err != nil {
		return "", err
	}
	return id, nil
}

// toolMessage exposes validation and not-found reasons and hides everything else.
func toolMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrArchiveNotFound):
		return "Archive not found"
	case errors.Is(err, domain.ErrInvalidInput):
		return err.Error()
	}
	return "internal error"
}
