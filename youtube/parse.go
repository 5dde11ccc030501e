package youtube

import (
	"net/url"
	"strings"

	"go-mod.ewintr.nl/ytsum/model"
)

func parseURL(input string) (*url.URL, bool) {
	u, err := url.Parse(strings.TrimSpace(input))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, false
	}
	return u, true
}

// ParseVideoID extracts the video id from youtu.be links and from the
// watch?v=, shorts/ and live/ forms on youtube.com hosts.
func ParseVideoID(input string) (model.YoutubeVideoID, bool) {
	u, ok := parseURL(input)
	if !ok {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	var id string
	switch {
	case host == "youtu.be":
		id = strings.Replace(u.Path, "/", "", 1)
	case strings.Contains(host, "youtube.com"):
		if v := u.Query().Get("v"); v != "" {
			id = v
			break
		}
		parts := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
		if len(parts) >= 2 && (parts[0] == "shorts" || parts[0] == "live") {
			id = parts[1]
		}
	}
	if id == "" {
		return "", false
	}

	return model.YoutubeVideoID(id), true
}

func IsYoutubeURL(input string) bool {
	u, ok := parseURL(input)
	if !ok {
		return false
	}
	host := strings.ToLower(u.Hostname())

	return host == "youtu.be" || strings.Contains(host, "youtube.com")
}

// WatchURL is the canonical url for a video id.
func WatchURL(id model.YoutubeVideoID) string {
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(string(id))
}
