// Package moderation masks censored words in chat text.
package moderation

import (
	"errors"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// DefaultMask replaces every character of a censored word.
const DefaultMask = '*'

// ErrNoWords is returned when the censored word list is empty after normalization.
var ErrNoWords = errors.New("moderation: no censored words")

// Moderator finds censored words with an Aho-Corasick automaton. Matching ignores case,
// punctuation, spacing and common leet substitutions. It is safe for concurrent use.
type Moderator struct {
	matcher *goahocorasick.Machine
	mask    rune
}

type textMapping struct {
	normalized []rune
	origIdx    []int
}

// NewModerator builds the automaton over the normalized words. Words without a single
// letter are skipped: "!!" would otherwise normalize to "ii" and mask ordinary text.
func NewModerator(words []string, mask rune) (*Moderator, error) {
	patterns := make([][]rune, 0, len(words))
	for _, word := range words {
		if !strings.ContainsFunc(word, unicode.IsLetter) {
			continue
		}
		if p := normalizeRunes([]rune(word)); len(p) > 0 {
			patterns = append(patterns, p)
		}
	}
	if len(patterns) == 0 {
		return nil, ErrNoWords
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m, mask: mask}, nil
}

// Censor returns text with every censored word masked. Spacing and untouched characters are kept.
func (m *Moderator) Censor(text string) string {
	out, _ := m.censor(text)
	return out
}

// Matches returns the normalized censored words found in text, in order of appearance.
func (m *Moderator) Matches(text string) []string {
	_, words := m.censor(text)
	return words
}

func (m *Moderator) censor(original string) (string, []string) {
	mapping := normalize(original)
	if len(mapping.normalized) == 0 {
		return original, nil
	}

	terms := m.matcher.MultiPatternSearch(mapping.normalized, false)
	if len(terms) == 0 {
		return original, nil
	}

	runes := []rune(original)
	words := make([]string, 0, len(terms))
	for _, term := range terms {
		start := term.Pos
		end := start + len(term.Word)
		if start < 0 || end > len(mapping.origIdx) {
			continue
		}
		for i := mapping.origIdx[start]; i <= mapping.origIdx[end-1]; i++ {
			runes[i] = m.mask
		}
		words = append(words, string(term.Word))
	}
	return string(runes), words
}

// normalize strips noise from input and remembers where each kept rune came from.
func normalize(input string) textMapping {
	runes := []rune(input)
	tm := textMapping{
		normalized: make([]rune, 0, len(runes)),
		origIdx:    make([]int, 0, len(runes)),
	}
	for i, r := range runes {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		tm.normalized = append(tm.normalized, unicode.ToLower(clean))
		tm.origIdx = append(tm.origIdx, i)
	}
	return tm
}

func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

// simplifyRune maps leet characters back to letters.
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
