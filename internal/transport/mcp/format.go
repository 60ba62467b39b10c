package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	domarchive "github.com/lightsoft-dev/light-archive/internal/domain/archive"
	archiveuc "github.com/lightsoft-dev/light-archive/internal/usecase/archive"
)

const (
	formatMarkdown = "markdown"
	formatJSON     = "json"

	// characterLimit caps a single tool response.
	characterLimit = 25000
	truncatedNote  = "\n\n... (응답이 너무 길어 잘렸습니다)"
)

type archiveDoc struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Category     string    `json:"category"`
	SubCategory  string    `json:"sub_category,omitempty"`
	Status       string    `json:"status"`
	Tags         []string  `json:"tags"`
	Technologies []string  `json:"technologies"`
	Difficulty   string    `json:"difficulty,omitempty"`
	Author       string    `json:"author,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	ViewCount    int64     `json:"view_count"`
	Content      string    `json:"content,omitempty"`
	Excerpt      string    `json:"excerpt,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func doc(a *domarchive.Archive) archiveDoc {
	return archiveDoc{
		ID:           a.ID,
		Title:        a.Title,
		Description:  a.Description,
		Category:     string(a.Category),
		SubCategory:  a.SubCategory,
		Status:       string(a.Status),
		Tags:         orEmpty(a.Tags),
		Technologies: orEmpty(a.Technologies),
		Difficulty:   a.Difficulty,
		Author:       a.Author,
		ThumbnailURL: a.ThumbnailURL,
		ViewCount:    a.ViewCount,
		Content:      a.Content,
		Excerpt:      a.Excerpt,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func docs(as []domarchive.Archive) []archiveDoc {
	out := make([]archiveDoc, len(as))
	for i := range as {
		out[i] = doc(&as[i])
	}
	return out
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// toJSON renders v indented and without HTML escaping, since content is HTML.
func toJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= characterLimit {
		return s
	}
	return string(r[:characterLimit]) + truncatedNote
}

func codeList(vals []string) string {
	quoted := make([]string, len(vals))
	for i, v := range vals {
		quoted[i] = "`" + v + "`"
	}
	return strings.Join(quoted, ", ")
}

type lines []string

func (l *lines) add(format string, args ...any) { *l = append(*l, fmt.Sprintf(format, args...)) }

func (l *lines) addIf(cond bool, format string, args ...any) {
	if cond {
		l.add(format, args...)
	}
}

func (l lines) String() string { return strings.Join(l, "\n") }

func (l *lines) summary(a *domarchive.Archive, detailed bool) {
	l.add("**ID**: `%s`", a.ID)
	l.add("**카테고리**: %s", a.Category)
	if detailed {
		l.addIf(a.SubCategory != "", "**분야**: %s", a.SubCategory)
		l.addIf(a.Description != "", "**설명**: %s", a.Description)
	}
	l.addIf(len(a.Tags) > 0, "**태그**: %s", codeList(a.Tags))
	if detailed {
		l.addIf(len(a.Technologies) > 0, "**기술**: %s", codeList(a.Technologies))
	}
}

func searchMarkdown(query string, items []domarchive.Archive) string {
	out := lines{fmt.Sprintf("# 검색 결과: '%s'", query), "", fmt.Sprintf("총 %d개 결과", len(items)), ""}
	for i := range items {
		out.add("## %d. %s", i+1, items[i].Title)
		out.summary(&items[i], true)
		out.add("")
	}
	return out.String()
}

func listMarkdown(items []domarchive.Archive) string {
	out := lines{"# 📚 아카이브 목록", "", fmt.Sprintf("총 %d개", len(items)), ""}
	for i := range items {
		out.add("## %d. %s", i+1, items[i].Title)
		out.summary(&items[i], false)
		out.add("")
	}
	return out.String()
}

func detailMarkdown(a *domarchive.Archive) string {
	out := lines{"# " + a.Title, ""}
	out.add("**카테고리**: %s", a.Category)
	out.add("**상태**: %s", a.Status)
	out.addIf(a.SubCategory != "", "**분야**: %s", a.SubCategory)
	out.addIf(a.Description != "", "**설명**: %s", a.Description)
	out.addIf(len(a.Tags) > 0, "**태그**: %s", codeList(a.Tags))
	out.addIf(len(a.Technologies) > 0, "**기술**: %s", codeList(a.Technologies))
	out = append(out, "", "---", "")
	out.addIf(a.Content != "", "%s", a.Content)
	return out.String()
}

func createdMarkdown(a *domarchive.Archive) string {
	out := lines{"# ✅ 아카이브 생성 완료", ""}
	out.add("\"%s\" 아카이브가 %s 카테고리의 %s 상태로 저장되었습니다.", a.Title, a.Category, a.Status)
	out.add("태그 %d개, 기술 스택 %d개가 등록되었습니다.", len(a.Tags), len(a.Technologies))
	out.add("")
	out.add("| 항목 | 값 |")
	out.add("|---|---|")
	out.add("| ID | `%s` |", a.ID)
	out.add("| 제목 | %s |", a.Title)
	out.add("| 카테고리 | %s |", a.Category)
	out.add("| 상태 | %s |", a.Status)
	out.add("| 생성일시 | %s |", a.CreatedAt.Format("2006년 01월 02일 15:04"))
	out.add("| 태그 | %s |", strings.Join(a.Tags, ", "))
	out.add("| 기술 스택 | %s |", strings.Join(a.Technologies, ", "))
	return out.String()
}

func relatedMarkdown(base *domarchive.Archive, res archiveuc.RelatedResult) string {
	out := lines{fmt.Sprintf("# 🔍 '%s'와 관련된 아카이브", base.Title), "", fmt.Sprintf("총 %d개 발견", len(res.Items)), ""}
	for i := range res.Items {
		out.add("## %d. %s (유사도: %d점)", i+1, res.Items[i].Title, res.Scores[i])
		out.summary(&res.Items[i], false)
		out.add("")
	}
	return out.String()
}
