// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package extraction

import "math"

// wordStats holds per-word occurrence statistics for the YAKE-style scorer.
type wordStats struct {
	tf            int
	firstSentence int
	sentences     map[int]struct{}
}

// scoreYake implements a single-document statistical scorer in the YAKE
// family: a word is important when it is frequent, appears early, and
// spreads across sentences. Word scores combine into phrase scores where
// a LOWER intermediate score means a better keyword; the returned map is
// inverted to weight = 1/(1+score) so higher is better at the boundary.
func scoreYake(tokens []token) map[string]float64 {
	stats := collectWordStats(tokens)
	if len(stats) == 0 {
		return map[string]float64{}
	}

	maxTF := 0
	sentenceCount := 0
	for _, s := range stats {
		if s.tf > maxTF {
			maxTF = s.tf
		}
		for si := range s.sentences {
			if si+1 > sentenceCount {
				sentenceCount = si + 1
			}
		}
	}

	wordScore := make(map[string]float64, len(stats))
	for w, s := range stats {
		relFreq := float64(s.tf) / float64(maxTF)
		position := math.Log2(2 + float64(s.firstSentence))
		spread := float64(len(s.sentences)) / float64(sentenceCount)
		// Lower is better: early position lowers, frequency and spread divide.
		wordScore[w] = position / (relFreq * (1 + spread))
	}

	phraseTF := make(map[string]int)
	phraseWords := make(map[string][]string)
	for _, phrase := range phrases(tokens) {
		text := phraseText(phrase)
		phraseTF[text]++
		if _, seen := phraseWords[text]; !seen {
			words := make([]string, len(phrase))
			for i, t := range phrase {
				words[i] = t.text
			}
			phraseWords[text] = words
		}
	}

	out := make(map[string]float64, len(phraseTF))
	for text, tf := range phraseTF {
		product, sum := 1.0, 0.0
		for _, w := range phraseWords[text] {
			product *= wordScore[w]
			sum += wordScore[w]
		}
		score := product / (float64(tf) * (1 + sum))
		out[text] = 1 / (1 + score)
	}
	return out
}

// collectWordStats gathers tf, first sentence and sentence spread for
// every non-stopword token.
func collectWordStats(tokens []token) map[string]*wordStats {
	stats := make(map[string]*wordStats)
	for _, t := range tokens {
		if t.stop {
			continue
		}
		s, ok := stats[t.text]
		if !ok {
			s = &wordStats{firstSentence: t.sentence, sentences: make(map[int]struct{})}
			stats[t.text] = s
		}
		s.tf++
		s.sentences[t.sentence] = struct{}{}
	}
	return stats
}
