package render

import (
	"fmt"
	"strings"

	"video-relay-go/internal/resolve"
)

// Extra carries probe results merged into the tech line when present.
type Extra struct {
	FPS    float64
	SizeMB string
}

// Caption builds the HTML caption for a resolved record. Sections are
// separated by blank lines; empty sections are dropped.
func Caption(rec *resolve.Record, extra *Extra) string {
	if rec == nil {
		return ""
	}
	var parts []string

	handle := rec.Author.UniqueID
	if handle == "" {
		handle = rec.Author.Nickname
	}
	authorLine := "› @" + EscapeHTML(handle)
	if rec.Author.FollowerCount != nil && rec.Author.TotalFavorited != nil {
		authorLine += fmt.Sprintf("\n  └ Followers: %s · Total Likes: %s",
			FormatK(*rec.Author.FollowerCount), FormatK(*rec.Author.TotalFavorited))
	}
	parts = append(parts, authorLine)

	if rec.Desc != "" {
		parts = append(parts, "\n<blockquote expandable>"+EscapeHTML(rec.Desc)+"</blockquote>")
	}

	parts = append(parts, fmt.Sprintf("♥ %s · 💬 %s · ↱ %s · ▷ %s",
		FormatK(rec.Statistics.DiggCount),
		FormatK(rec.Statistics.CommentCount),
		FormatK(rec.Statistics.ShareCount),
		FormatK(rec.Statistics.PlayCount)))

	var tech []string
	if rec.Video != nil {
		if rec.Video.DurationMs > 0 {
			tech = append(tech, fmt.Sprintf("%ds", (rec.Video.DurationMs+500)/1000))
		}
		if rec.Video.Width > 0 && rec.Video.Height > 0 {
			tech = append(tech, fmt.Sprintf("%dx%d", rec.Video.Width, rec.Video.Height))
		}
	}
	if extra != nil {
		if extra.FPS > 0 {
			tech = append(tech, fmt.Sprintf("%g FPS", extra.FPS))
		}
		if extra.SizeMB != "" {
			tech = append(tech, extra.SizeMB)
		}
	}
	if len(tech) > 0 {
		parts = append(parts, "[ "+strings.Join(tech, " | ")+" ]")
	}

	parts = append(parts, fmt.Sprintf("◷ %s · ⌖ %s", FormatTimestamp(rec.CreateTime), CountryName(rec.Region)))

	sound := "Original Sound"
	if rec.Music != nil && rec.Music.Title != "" && !strings.HasPrefix(rec.Music.Title, "original sound") {
		sound = EscapeHTML(rec.Music.Title)
	}
	parts = append(parts, "♪ "+sound)

	return strings.Join(parts, "\n\n")
}
