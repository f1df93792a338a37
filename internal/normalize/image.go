package normalize

import (
	"html"
	"net/url"
	"regexp"
	"strings"

	"agaxfeed/internal/blog"
)

// Size is a Blogger image size token.
type Size string

const (
	Small  Size = "s400"
	Medium Size = "s800"
	Large  Size = "s1600"
)

var (
	imgSrcPattern = regexp.MustCompile(`<img[^>]+src="([^">]+)"`)
	// sizeSegment matches path segments such as s200, s72-c or w400-h300.
	sizeSegment = regexp.MustCompile(`^[swh]\d+(-[a-z]+\d*)*$`)
)

// Image picks the first <img> of the entry content, falling back to the
// media thumbnail, and rewrites it to the requested size. It returns an empty
// string when the entry has no image.
func Image(raw blog.RawEntry, size Size) string {
	if src := FirstImage(raw.ContentHTML()); src != "" {
		return Resize(src, size)
	}
	if raw.Thumbnail != nil && raw.Thumbnail.URL != "" {
		return Resize(raw.Thumbnail.URL, size)
	}
	return ""
}

// FirstImage returns the src of the first <img> tag in htmlText.
func FirstImage(htmlText string) string {
	m := imgSrcPattern.FindStringSubmatch(htmlText)
	if m == nil {
		return ""
	}
	return html.UnescapeString(m[1])
}

// Resize rewrites the size token of a Blogger hosted image URL. URLs from
// other hosts, or without a file name, are returned unchanged.
func Resize(raw string, size Size) string {
	u, err := url.Parse(raw)
	if err != nil || !isBloggerHost(u.Hostname()) {
		return raw
	}

	path := u.EscapedPath()
	segments := strings.Split(path, "/")
	file := segments[len(segments)-1]
	if file == "" {
		return raw
	}

	// googleusercontent serves "…/ID=w400-h300" style URLs.
	if i := strings.LastIndex(file, "="); i >= 0 {
		segments[len(segments)-1] = file[:i+1] + string(size)
		return rebuild(u, strings.Join(segments, "/"))
	}

	kept := make([]string, 0, len(segments)+1)
	for _, seg := range segments[:len(segments)-1] {
		if sizeSegment.MatchString(seg) {
			continue
		}
		kept = append(kept, seg)
	}
	kept = append(kept, string(size), file)
	return rebuild(u, strings.Join(kept, "/"))
}

func isBloggerHost(host string) bool {
	host = strings.ToLower(host)
	for _, suffix := range []string{"blogspot.com", "googleusercontent.com"} {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	return false
}

// rebuild keeps query and fragment. Scheme-relative URLs become https.
func rebuild(u *url.URL, path string) string {
	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}
	var b strings.Builder
	b.WriteString(scheme + "://" + u.Host + path)
	if u.RawQuery != "" {
		b.WriteString("?" + u.RawQuery)
	}
	if u.Fragment != "" {
		b.WriteString("#" + u.EscapedFragment())
	}
	return b.String()
}
