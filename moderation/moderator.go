// Package moderation censors chat message bodies before they are persisted.
package moderation

import (
	"log/slog"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// leet maps the look-alike characters users type to dodge the filter.
var leet = map[rune]rune{
	'4': 'a', '@': 'a',
	'3': 'e', '€': 'e',
	'1': 'i', '!': 'i', '|': 'i',
	'0': 'o',
	'5': 's', '$': 's',
}

// Moderator finds censored words in a body, whatever their case, leet spelling
// or the punctuation inserted between their letters. A zero Moderator censors nothing.
type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
	log         *slog.Logger
}

func NewModerator(censoredWords []string, replacement rune, log *slog.Logger) (Moderator, error) {
	mod := Moderator{replacement: replacement, log: log}

	var patterns [][]rune
	for _, word := range censoredWords {
		if folded, _ := fold(word); len(folded) > 0 {
			patterns = append(patterns, folded)
		}
	}
	if len(patterns) == 0 {
		log.Warn("No censored word, moderation disabled")
		return mod, nil
	}

	matcher := new(goahocorasick.Machine)
	if err := matcher.Build(patterns); err != nil {
		return Moderator{}, err
	}
	mod.matcher = matcher
	log.Debug("Moderator ready", "patterns", len(patterns))
	return mod, nil
}

func (m *Moderator) Enabled() bool {
	return m.matcher != nil
}

// Censor masks every rune of the body spanned by a censored word, separators
// inside the word included, and returns the folded words it found.
func (m *Moderator) Censor(body string) (string, []string) {
	if !m.Enabled() {
		return body, nil
	}
	folded, origin := fold(body)
	if len(folded) == 0 {
		return body, nil
	}
	hits := m.matcher.MultiPatternSearch(folded, false)
	if len(hits) == 0 {
		return body, nil
	}

	masked := []rune(body)
	words := make([]string, 0, len(hits))
	for _, hit := range hits {
		last := hit.Pos + len(hit.Word) - 1
		if hit.Pos < 0 || last >= len(origin) {
			continue
		}
		for i := origin[hit.Pos]; i <= origin[last]; i++ {
			masked[i] = m.replacement
		}
		words = append(words, string(hit.Word))
	}
	return string(masked), words
}

// fold lowercases the searchable runes of s, undoing leet spelling and dropping
// separators; origin[i] is the index in s of the rune folded[i] comes from.
func fold(s string) (folded []rune, origin []int) {
	for i, r := range []rune(s) {
		if plain, ok := leet[r]; ok {
			r = plain
		}
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			continue
		}
		folded = append(folded, unicode.ToLower(r))
		origin = append(origin, i)
	}
	return folded, origin
}
