// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

package features

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tomtom215/cinecompass/internal/models"
)

// boilerplatePhrases are stripped from overviews before tokenizing.
var boilerplatePhrases = []string{"the movie", "the film"}

// joinName lowercases a multi-word name and joins it into a single token.
func joinName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// cleanOverview lowercases text and removes boilerplate phrases that stand
// as whole words.
func cleanOverview(text string) string {
	text = strings.ToLower(text)
	for _, p := range boilerplatePhrases {
		text = stripPhrase(text, p)
	}
	return text
}

// stripPhrase replaces each whole-word occurrence of phrase with a space.
// Occurrences inside a longer word ("the moviegoer") are kept.
func stripPhrase(text, phrase string) string {
	var b strings.Builder
	b.Grow(len(text))
	kept := 0
	for from := 0; from < len(text); {
		i := strings.Index(text[from:], phrase)
		if i < 0 {
			break
		}
		i += from
		end := i + len(phrase)
		if wordEndsAt(text, i) && !wordRuneAt(text, end) {
			b.WriteString(text[kept:i])
			b.WriteByte(' ')
			kept = end
			from = end
			continue
		}
		from = i + 1
	}
	b.WriteString(text[kept:])
	return b.String()
}

// wordEndsAt reports whether no word rune precedes byte offset i.
func wordEndsAt(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

// wordRuneAt reports whether a word rune starts at byte offset i.
func wordRuneAt(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return isWordRune(r)
}

// featureString builds the weighted feature text for m.
//
//nolint:gocritic // hugeParam: Movie passed by value for immutability
func featureString(m models.Movie, cfg Config) string {
	var parts []string

	for _, g := range m.Genres {
		tok := joinName(g)
		if tok == "" {
			continue
		}
		for i := 0; i < cfg.GenreWeight; i++ {
			parts = append(parts, tok)
		}
	}

	if tok := joinName(m.Director); tok != "" {
		for i := 0; i < cfg.DirectorWeight; i++ {
			parts = append(parts, tok)
		}
	}

	for i, member := range m.Cast {
		if i >= cfg.MaxCast {
			break
		}
		tok := joinName(member)
		if tok == "" {
			continue
		}
		reps := cfg.CastWeight - i
		if reps < 1 {
			reps = 1
		}
		for j := 0; j < reps; j++ {
			parts = append(parts, tok)
		}
	}

	if ov := cleanOverview(m.Overview); strings.TrimSpace(ov) != "" {
		parts = append(parts, ov)
	}

	return strings.Join(parts, " ")
}

// tokenize splits text on non-alphanumeric runes, lowercases, and drops
// tokens shorter than two runes and English stop words.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < 2 {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

// ngrams expands tokens into space-joined n-grams for n in [lo, hi].
func ngrams(tokens []string, lo, hi int) []string {
	if lo == 1 && hi == 1 {
		return tokens
	}
	var out []string
	for n := lo; n <= hi; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}
