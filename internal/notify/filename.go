package notify

import (
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"github.com/h2non/filetype/types"
)

// Title decorations download managers add around the filename.
var (
	titlePrefixes  = []string{"downloading ", "download complete: ", "download: ", "saving "}
	progressSuffix = regexp.MustCompile(`\s*(\(\s*\d{1,3}\s*%\s*\)|[•·-]\s*\d{1,3}\s*%|\d{1,3}\s*%)\s*$`)
	ellipsisSuffix = regexp.MustCompile(`(\.\.\.|…)\s*$`)
)

// IsHTTPURL reports whether raw is an absolute http(s) URL.
func IsHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// CleanFilename extracts a filename from a notification title. Titles that
// are URLs resolve to their last path segment. Returns "" when nothing
// usable remains.
func CleanFilename(title string) string {
	s := strings.TrimSpace(title)
	if s == "" {
		return ""
	}

	if IsHTTPURL(s) {
		u, _ := url.Parse(s)
		base := path.Base(u.Path)
		if unescaped, err := url.PathUnescape(base); err == nil {
			base = unescaped
		}
		if base == "." || base == "/" {
			return ""
		}
		return base
	}

	lower := strings.ToLower(s)
	for _, prefix := range titlePrefixes {
		if strings.HasPrefix(lower, prefix) {
			s = s[len(prefix):]
			break
		}
	}
	s = progressSuffix.ReplaceAllString(s, "")
	s = ellipsisSuffix.ReplaceAllString(s, "")
	s = strings.Trim(strings.TrimSpace(s), `"'`)

	// Never surface directories
	if i := strings.LastIndexAny(s, `/\`); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}

// Category buckets a filename by its extension.
const (
	CategoryFile     = "file"
	CategoryImage    = "image"
	CategoryVideo    = "video"
	CategoryAudio    = "audio"
	CategoryArchive  = "archive"
	CategoryDocument = "document"
	CategoryFont     = "font"
	CategoryApp      = "application"
)

// Category returns the category of name based on its extension.
func Category(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return CategoryFile
	}
	return categoryOf(filetype.GetType(ext))
}

func categoryOf(t types.Type) string {
	if t == filetype.Unknown {
		return CategoryFile
	}
	if _, ok := matchers.Archive[t]; ok {
		return CategoryArchive
	}
	if _, ok := matchers.Document[t]; ok {
		return CategoryDocument
	}
	switch t.MIME.Type {
	case "image":
		return CategoryImage
	case "video":
		return CategoryVideo
	case "audio":
		return CategoryAudio
	case "font":
		return CategoryFont
	case "application":
		return CategoryApp
	default:
		return CategoryFile
	}
}
