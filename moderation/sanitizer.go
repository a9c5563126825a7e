package moderation

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// Sanitized is a message body ready to be persisted.
type Sanitized struct {
	Body  string
	Lang  string
	Words []string
}

// Sanitize trims, censors and tags the body with its ISO 639-1 language
// when detection is reliable enough.
func (m *Moderator) Sanitize(body string) Sanitized {
	trimmed := strings.TrimSpace(body)
	censored, words := m.Censor(trimmed)
	return Sanitized{Body: censored, Lang: detectLang(trimmed), Words: words}
}

func detectLang(text string) string {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}
