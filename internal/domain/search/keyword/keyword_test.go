package keyword

import (
	"strings"
	"testing"

	"github.com/lightsoft-dev/light-archive/internal/domain/archive"
)

func samplePool() []archive.Archive {
	return []archive.Archive{
		{ID: "1", Title: "AI 챗봇 개발기", Category: archive.CategoryProject, Tags: []string{"AI"}},
		{ID: "2", Title: "React 입문", Category: archive.CategoryTech, Technologies: []string{"React", "TypeScript"}},
		{ID: "3", Title: "Kubernetes 운영", Category: archive.CategoryTech, Content: "<p>Kubernetes</p><p>클러스터</p>"},
		{ID: "4", Title: "고객 상담 자동화", Category: archive.CategoryProject, Tags: []string{"챗봇", "NLP"}},
		{ID: "5", Title: "주간 뉴스", Category: archive.CategoryNews, Content: `<div class="챗봇">본문</div>`},
		{ID: "6", Title: "LLM 리서치", Category: archive.CategoryResearch, Content: "<p>상담 <b>챗봇</b> 성능 비교</p>"},
		{ID: "7", Title: "Redis 캐시", Description: "REACTIVE streams", Category: archive.CategoryTech},
	}
}

func ids(as []archive.Archive) string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.ID
	}
	return strings.Join(out, ",")
}

func TestSearch_EmptyQueryIdentity(t *testing.T) {
	pool := samplePool()
	for _, q := range []string{"", "   ", "\t\n"} {
		got := Search(pool, q)
		if ids(got) != ids(pool) {
			t.Errorf("Search(%q) = %s, want %s", q, ids(got), ids(pool))
		}
	}
}

func TestSearch_CaseInsensitive(t *testing.T) {
	pool := samplePool()
	upper := Search(pool, "REACT")
	lower := Search(pool, "react")
	if ids(upper) != ids(lower) {
		t.Errorf("REACT = %s, react = %s", ids(upper), ids(lower))
	}
	if ids(lower) != "2,7" {
		t.Errorf("react = %s, want 2,7", ids(lower))
	}
}

func TestSearch_StripsMarkup(t *testing.T) {
	got := Search(samplePool(), "kubernetes")
	if ids(got) != "3" {
		t.Errorf("kubernetes = %s, want 3", ids(got))
	}
	// Attribute values are removed together with the tag.
	got = Search([]archive.Archive{{ID: "x", Content: `<a href="kubernetes.io">docs</a>`}}, "kubernetes")
	if len(got) != 0 {
		t.Errorf("matched inside markup: %s", ids(got))
	}
}

func TestSearch_ScenarioChatbot(t *testing.T) {
	// 5 only has the term inside a class attribute.
	got := Search(samplePool(), "챗봇")
	if ids(got) != "1,4,6" {
		t.Errorf("챗봇 = %s, want 1,4,6", ids(got))
	}
}

func TestSearch_Fields(t *testing.T) {
	pool := samplePool()
	tests := []struct{ q, want string }{
		{"리서치", "6"},
		{"typescript", "2"},
		{"nlp", "4"},
		{"reactive", "7"},
		{"  Redis  ", "7"},
		{"없는단어", ""},
	}
	for _, tt := range tests {
		if got := ids(Search(pool, tt.q)); got != tt.want {
			t.Errorf("Search(%q) = %s, want %s", tt.q, got, tt.want)
		}
	}
}

func TestSearch_DecomposedHangul(t *testing.T) {
	// "챗봇" in NFD (jamo sequence) must match composed records.
	decomposed := "\u110e\u1162\u11ba\u1107\u1169\u11ba"
	got := Search(samplePool(), decomposed)
	if ids(got) != "1,4,6" {
		t.Errorf("NFD query = %s, want 1,4,6", ids(got))
	}
}

func TestSearch_DoesNotMutatePool(t *testing.T) {
	pool := samplePool()
	got := Search(pool, "react")
	got[0].Title = "changed"
	if pool[1].Title != "React 입문" {
		t.Error("search result aliases pool record")
	}
}

func TestStripTags(t *testing.T) {
	tests := []struct{ in, want string }{
		{"<p>Hello <b>World</b></p>", "Hello World"},
		{"a &amp; b", "a &amp; b"},
		{"1 < 2 and 3 > 2", "1  2"},
		{"unclosed <p", "unclosed <p"},
	}
	for _, tt := range tests {
		if got := StripTags(tt.in); got != tt.want {
			t.Errorf("StripTags(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHighlight(t *testing.T) {
	tests := []struct{ text, q, want string }{
		{"React and react", "REACT", `<mark class="bg-yellow-200">React</mark> and <mark class="bg-yellow-200">react</mark>`},
		{"price (USD)", "(usd)", `price <mark class="bg-yellow-200">(USD)</mark>`},
		{"a.b axb", "a.b", `<mark class="bg-yellow-200">a.b</mark> axb`},
		{"AI 챗봇", "챗봇", `AI <mark class="bg-yellow-200">챗봇</mark>`},
		{"no match", "zzz", "no match"},
		{"text", "", "text"},
		{"", "q", ""},
	}
	for _, tt := range tests {
		if got := Highlight(tt.text, tt.q); got != tt.want {
			t.Errorf("Highlight(%q, %q) = %q, want %q", tt.text, tt.q, got, tt.want)
		}
	}
}
