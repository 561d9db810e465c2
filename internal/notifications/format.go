package notifications

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/palma21/yt-analysis-bot/internal/models"
)

const (
	// MaxMessageLength is the Telegram limit for a single message
	MaxMessageLength = 4096
	truncateAt       = 4000
	truncatedMarker  = "\n\n...<i>Mensaje truncado</i>"
)

var (
	boldRE      = regexp.MustCompile(`\*\*(.*?)\*\*`)
	htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

// FormatHTML escapes text for Telegram HTML and turns **bold** into <b>bold</b>
func FormatHTML(text string) string {
	return boldRE.ReplaceAllString(htmlEscaper.Replace(text), "<b>$1</b>")
}

// BuildMessage renders the message for a video, already truncated
func BuildMessage(video models.Video, analysis string) string {
	message := fmt.Sprintf("<b>%s</b>\n%s\n%s",
		htmlEscaper.Replace(video.Title), htmlEscaper.Replace(video.Link), FormatHTML(analysis))
	return TruncateMessage(message)
}

// TruncateMessage keeps a message within MaxMessageLength runes. A cut message
// never ends inside a tag or an entity and has no unclosed <b>.
func TruncateMessage(message string) string {
	runes := []rune(message)
	if len(runes) <= MaxMessageLength {
		return message
	}

	cut := string(runes[:truncateAt])
	if open := strings.LastIndexByte(cut, '<'); open > strings.LastIndexByte(cut, '>') {
		cut = cut[:open]
	}
	if amp := strings.LastIndexByte(cut, '&'); amp > strings.LastIndexByte(cut, ';') {
		cut = cut[:amp]
	}
	if strings.Count(cut, "<b>") > strings.Count(cut, "</b>") {
		cut += "</b>"
	}
	return cut + truncatedMarker
}
