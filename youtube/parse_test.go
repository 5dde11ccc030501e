package youtube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go-mod.ewintr.nl/ytsum/model"
)

func TestParseVideoID(t *testing.T) {
	for _, tc := range []struct {
		name  string
		input string
		expID model.YoutubeVideoID
		expOK bool
	}{
		{name: "short link", input: "https://youtu.be/dQw4w9WgXcQ", expID: "dQw4w9WgXcQ", expOK: true},
		{name: "short link with query", input: "https://youtu.be/dQw4w9WgXcQ?t=42", expID: "dQw4w9WgXcQ", expOK: true},
		{name: "short link without id", input: "https://youtu.be/", expOK: false},
		{name: "watch", input: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", expID: "dQw4w9WgXcQ", expOK: true},
		{name: "watch with extra params", input: "https://www.youtube.com/watch?list=PL1&v=abc123&t=5s", expID: "abc123", expOK: true},
		{name: "mobile host", input: "https://m.youtube.com/watch?v=abc123", expID: "abc123", expOK: true},
		{name: "music host", input: "https://music.youtube.com/watch?v=abc123", expID: "abc123", expOK: true},
		{name: "uppercase host", input: "https://WWW.YOUTUBE.COM/watch?v=abc123", expID: "abc123", expOK: true},
		{name: "shorts", input: "https://www.youtube.com/shorts/xyz789", expID: "xyz789", expOK: true},
		{name: "live", input: "https://www.youtube.com/live/live42?feature=share", expID: "live42", expOK: true},
		{name: "shorts without id", input: "https://www.youtube.com/shorts/", expOK: false},
		{name: "channel page", input: "https://www.youtube.com/@gopher", expOK: false},
		{name: "other host", input: "https://vimeo.com/12345", expOK: false},
		{name: "not a url", input: "dQw4w9WgXcQ", expOK: false},
		{name: "empty", input: "", expOK: false},
		{name: "garbage", input: "://%%", expOK: false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			id, ok := ParseVideoID(tc.input)
			assert.Equal(t, tc.expOK, ok)
			assert.Equal(t, tc.expID, id)
		})
	}
}

func TestIsYoutubeURL(t *testing.T) {
	for _, tc := range []struct {
		input string
		exp   bool
	}{
		{input: "https://youtu.be/abc", exp: true},
		{input: "https://www.youtube.com/@gopher", exp: true},
		{input: "https://www.youtube.com/watch?v=abc", exp: true},
		{input: "http://youtube.com:8080/watch?v=abc", exp: true},
		{input: "https://notyoutu.be/abc", exp: false},
		{input: "https://example.com/?v=abc", exp: false},
		{input: "youtube.com/watch?v=abc", exp: false},
		{input: "", exp: false},
	} {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.exp, IsYoutubeURL(tc.input))
		})
	}
}

func TestWatchURL(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", WatchURL("abc"))
	id, ok := ParseVideoID(WatchURL("abc"))
	assert.True(t, ok)
	assert.Equal(t, model.YoutubeVideoID("abc"), id)
}
