// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package extraction

import (
	"strings"
	"unicode"
)

// token is a lower-cased word with its sentence index and a stopword flag.
type token struct {
	text     string
	sentence int
	stop     bool
}

// maxPhraseLen caps candidate phrases at three words.
const maxPhraseLen = 3

// tokenize splits text into sentences and lower-cased alphanumeric
// tokens. URLs, mentions and hashtag markers common in social posts are
// stripped before splitting.
func tokenize(text string) []token {
	var tokens []token

	for si, sentence := range splitSentences(text) {
		words := strings.FieldsFunc(sentence, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, w := range words {
			w = strings.ToLower(w)
			if len(w) < 2 || isNoiseToken(w) {
				continue
			}
			tokens = append(tokens, token{
				text:     w,
				sentence: si,
				stop:     stopwords[w],
			})
		}
	}
	return tokens
}

// splitSentences breaks text on sentence punctuation and newlines, with
// URL-bearing fragments removed up front.
func splitSentences(text string) []string {
	cleaned := make([]string, 0, 8)
	for _, field := range strings.Fields(text) {
		if strings.HasPrefix(field, "http://") || strings.HasPrefix(field, "https://") ||
			strings.HasPrefix(field, "www.") || strings.HasPrefix(field, "@") {
			continue
		}
		cleaned = append(cleaned, strings.TrimPrefix(field, "#"))
	}

	joined := strings.Join(cleaned, " ")
	sentences := strings.FieldsFunc(joined, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == ';' || r == '\n'
	})

	out := make([]string, 0, len(sentences))
	for _, s := range sentences {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// isNoiseToken reports tokens that carry no topical signal: pure numbers
// and residual artifacts like "rt" or "amp".
func isNoiseToken(w string) bool {
	switch w {
	case "rt", "amp", "via":
		return true
	}
	for _, r := range w {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true // all digits
}

// phrases returns candidate phrases: every run of 1..maxPhraseLen
// consecutive non-stopword tokens, in document order. Runs are broken by
// stopwords and sentence boundaries.
func phrases(tokens []token) [][]token {
	var out [][]token
	var run []token

	flush := func() {
		for start := range run {
			for length := 1; length <= maxPhraseLen && start+length <= len(run); length++ {
				phrase := run[start : start+length]
				out = append(out, phrase)
			}
		}
		run = nil
	}

	for i, t := range tokens {
		if t.stop || (i > 0 && tokens[i-1].sentence != t.sentence) {
			flush()
			if t.stop {
				continue
			}
		}
		run = append(run, t)
	}
	flush()
	return out
}

// phraseText joins phrase tokens with single spaces.
func phraseText(phrase []token) string {
	parts := make([]string, len(phrase))
	for i, t := range phrase {
		parts[i] = t.text
	}
	return strings.Join(parts, " ")
}
