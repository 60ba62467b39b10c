package archive

import (
	"strings"

	"golang.org/x/net/html"
)

// DefaultThumbnail is served when a record has no image of its own.
const DefaultThumbnail = "/normal.jpg"

// Thumbnail resolves the display image: image, thumbnail_url, first <img> in content, default.
func (a *Archive) Thumbnail() string {
	if a.Image != "" {
		return a.Image
	}
	if a.ThumbnailURL != "" {
		return a.ThumbnailURL
	}
	if src := FirstImage(a.Content); src != "" {
		return src
	}
	return DefaultThumbnail
}

// FirstImage returns the src of the first <img> element in content, or "".
func FirstImage(content string) string {
	if content == "" {
		return ""
	}
	z := html.NewTokenizer(strings.NewReader(content))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "img" || !hasAttr {
				continue
			}
			for {
				key, val, more := z.TagAttr()
				if string(key) == "src" && len(val) > 0 {
					return string(val)
				}
				if !more {
					break
				}
			}
		}
	}
}
