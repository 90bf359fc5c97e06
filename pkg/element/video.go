package element

import (
	"net/url"
	"strings"
)

// EmbedURL returns the iframe source for a video URL.
//
// YouTube watch, short-link and shorts URLs are rewritten to the
// youtube.com/embed form, keeping a start offset when one is given.
// Embed URLs and anything unrecognized are returned unchanged.
func EmbedURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return raw
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch host {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com", "youtube-nocookie.com":
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/shorts/"):
			id = strings.TrimPrefix(u.Path, "/shorts/")
		case strings.HasPrefix(u.Path, "/live/"):
			id = strings.TrimPrefix(u.Path, "/live/")
		}
	}
	if id == "" || strings.ContainsAny(id, "/?#") {
		return raw
	}

	out := "https://www.youtube.com/embed/" + url.PathEscape(id)
	if start := startSeconds(u.Query()); start != "" {
		out += "?start=" + start
	}
	return out
}

func startSeconds(q url.Values) string {
	t := q.Get("t")
	if t == "" {
		t = q.Get("start")
	}
	t = strings.TrimSuffix(t, "s")
	for _, r := range t {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return t
}
