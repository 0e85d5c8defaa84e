package render

import (
	"strings"
	"testing"

	"video-relay-go/internal/resolve"
)

func TestFormatK(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1k"},
		{1500, "1.5k"},
		{15300, "15.3k"},
		{999999, "1000k"},
		{1000000, "1m"},
		{2700000, "2.7m"},
	}
	for _, tc := range cases {
		if got := FormatK(tc.in); got != tc.want {
			t.Fatalf("FormatK(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCountryName(t *testing.T) {
	if got := CountryName("jp"); got != "Japan" {
		t.Fatalf("jp = %q", got)
	}
	if got := CountryName("XX"); got != "XX" {
		t.Fatalf("unknown code = %q", got)
	}
	if got := CountryName(""); got != "N/A" {
		t.Fatalf("empty code = %q", got)
	}
}

func TestFormatTimestamp(t *testing.T) {
	if got := FormatTimestamp(1716800000); got != "27.05.2024" {
		t.Fatalf("timestamp = %q", got)
	}
	if got := FormatTimestamp(0); got != "N/A" {
		t.Fatalf("zero = %q", got)
	}
}

func TestEscapeHTML(t *testing.T) {
	if got := EscapeHTML(`a < b & c > d`); got != "a &lt; b &amp; c &gt; d" {
		t.Fatalf("escaped = %q", got)
	}
}

func TestCaptionVideo(t *testing.T) {
	follower, favorited := int64(15300), int64(2700000)
	rec := &resolve.Record{
		Type:       resolve.TypeVideo,
		Platform:   resolve.PlatformTikTok,
		ContentID:  "1",
		Desc:       "cats <3",
		CreateTime: 1716800000,
		Region:     "JP",
		Author: resolve.Author{
			Nickname:       "Cat Channel",
			UniqueID:       "catchannel",
			FollowerCount:  &follower,
			TotalFavorited: &favorited,
		},
		Music:      &resolve.Music{Title: "catchy tune"},
		Statistics: resolve.Statistics{DiggCount: 1500, CommentCount: 30, ShareCount: 7, PlayCount: 98000},
		Video:      &resolve.VideoMedia{PlayURL: "https://cdn/a.mp4", DurationMs: 14500, Width: 1080, Height: 1920},
	}

	got := Caption(rec, &Extra{FPS: 29.97, SizeMB: "4.2 MB"})

	for _, want := range []string{
		"› @catchannel",
		"Followers: 15.3k · Total Likes: 2.7m",
		"<blockquote expandable>cats &lt;3</blockquote>",
		"♥ 1.5k · 💬 30 · ↱ 7 · ▷ 98k",
		"[ 15s | 1080x1920 | 29.97 FPS | 4.2 MB ]",
		"◷ 27.05.2024 · ⌖ Japan",
		"♪ catchy tune",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("caption missing %q:\n%s", want, got)
		}
	}
}

func TestCaptionMinimalRecord(t *testing.T) {
	rec := &resolve.Record{
		Type:   resolve.TypeImage,
		Author: resolve.Author{Nickname: "someone"},
		Images: &resolve.ImageAlbum{URLs: []string{"https://img/1.jpg"}},
	}
	got := Caption(rec, nil)
	if !strings.Contains(got, "› @someone") {
		t.Fatalf("author fallback missing:\n%s", got)
	}
	if strings.Contains(got, "Followers") {
		t.Fatalf("enrichment line must be absent")
	}
	if strings.Contains(got, "[ ") {
		t.Fatalf("tech line must be absent for albums without extra")
	}
	if !strings.Contains(got, "♪ Original Sound") {
		t.Fatalf("sound fallback missing:\n%s", got)
	}
	if !strings.Contains(got, "⌖ N/A") {
		t.Fatalf("region fallback missing:\n%s", got)
	}
}

func TestCaptionOriginalSoundNormalized(t *testing.T) {
	rec := &resolve.Record{
		Author: resolve.Author{UniqueID: "x"},
		Music:  &resolve.Music{Title: "original sound - x"},
	}
	if got := Caption(rec, nil); !strings.Contains(got, "♪ Original Sound") {
		t.Fatalf("original sound title must collapse:\n%s", got)
	}
}
