package attachment

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Root is the folder all attachment objects live under.
const Root = "attachments"

// Placeholder is the marker object some stores create for empty folders. Never listed.
const Placeholder = ".emptyFolderPlaceholder"

var stampPrefix = regexp.MustCompile(`^\d+-`)

// Attachment is a file stored alongside an archive record.
type Attachment struct {
	Name string
	URL  string
	Size int64
	Type string
}

// Object is a stored blob as a blob store reports it.
type Object struct {
	Path        string
	Size        int64
	ContentType string
}

// Folder returns the storage folder of an archive's attachments, with a trailing slash.
func Folder(archiveID string) string {
	return Root + "/" + archiveID + "/"
}

// Path returns the storage path for a new upload: {folder}{unixMillis}-{safeName}.
func Path(archiveID, name string, now time.Time) string {
	return Folder(archiveID) + strconv.FormatInt(now.UnixMilli(), 10) + "-" + SafeName(name)
}

// PathFromURL maps a public URL served under baseURL back to its object path.
// URLs outside baseURL, or with parent-directory segments, are rejected.
func PathFromURL(baseURL, url string) (string, bool) {
	baseURL = strings.TrimRight(baseURL, "/")
	i := strings.Index(url, baseURL+"/")
	if baseURL == "" || i < 0 {
		return "", false
	}
	p := url[i+len(baseURL)+1:]
	if p == "" || strings.Contains(p, "..") {
		return "", false
	}
	return p, true
}

// SafeName replaces every rune outside [A-Za-z0-9가-힣._-] with an underscore.
func SafeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r >= '가' && r <= '힣':
			return r
		case r == '.', r == '_', r == '-':
			return r
		}
		return '_'
	}, name)
}

// OriginalName strips the upload timestamp prefix from a stored object name.
func OriginalName(object string) string {
	if i := strings.LastIndexByte(object, '/'); i >= 0 {
		object = object[i+1:]
	}
	return stampPrefix.ReplaceAllString(object, "")
}

// FormatSize renders a byte count with one decimal: 1024 -> "1.0 KB".
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(units) {
		i = len(units) - 1
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/math.Pow(1024, float64(i)), units[i])
}

// IconType maps a MIME type to one of image, pdf, document, spreadsheet, code, file.
func IconType(mime string) string {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return "image"
	case mime == "application/pdf":
		return "pdf"
	case strings.Contains(mime, "word"), strings.Contains(mime, "document"), strings.Contains(mime, "text/"):
		return "document"
	case strings.Contains(mime, "sheet"), strings.Contains(mime, "excel"):
		return "spreadsheet"
	case strings.Contains(mime, "javascript"), strings.Contains(mime, "json"),
		strings.Contains(mime, "html"), strings.Contains(mime, "css"):
		return "code"
	}
	return "file"
}
