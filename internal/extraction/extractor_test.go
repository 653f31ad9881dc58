// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package extraction

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Algorithm
		wantErr bool
	}{
		{name: "yake", input: "yake", want: AlgorithmYake},
		{name: "singlerank", input: "singlerank", want: AlgorithmSingleRank},
		{name: "unknown", input: "textrank", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "case sensitive", input: "YAKE", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAlgorithm(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAlgorithm(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseAlgorithm(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractDegenerateInput(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxTerms int
	}{
		{name: "empty text", text: "", maxTerms: 10},
		{name: "whitespace only", text: "   \n\t  ", maxTerms: 10},
		{name: "only stopwords", text: "the and of in to", maxTerms: 10},
		{name: "only urls", text: "https://example.com http://example.org", maxTerms: 10},
		{name: "zero max terms", text: "machine learning", maxTerms: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, alg := range []Algorithm{AlgorithmYake, AlgorithmSingleRank} {
				got := Extract(tt.text, alg, tt.maxTerms)
				if len(got) != 0 {
					t.Errorf("Extract(%q, %s) = %v, want empty", tt.text, alg, got)
				}
			}
		})
	}
}

func TestExtractYakeRanksRepeatedTerms(t *testing.T) {
	text := "Machine learning transforms science. Machine learning models need data. " +
		"We applied machine learning to genomics. The weather was nice once."

	got := Extract(text, AlgorithmYake, 10)
	if len(got) == 0 {
		t.Fatal("Extract returned no terms")
	}

	ml, ok := got["machine learning"]
	if !ok {
		t.Fatalf("expected %q among terms, got %v", "machine learning", got)
	}
	if weather, ok := got["weather"]; ok && weather >= ml {
		t.Errorf("one-off term scored %v, repeated term %v, want repeated higher", weather, ml)
	}
	for term, score := range got {
		if score <= 0 {
			t.Errorf("term %q has non-positive score %v", term, score)
		}
	}
}

func TestExtractSingleRankOnAbstract(t *testing.T) {
	text := "Graph neural networks have emerged as a powerful tool for molecular " +
		"property prediction. We propose a graph neural network architecture that " +
		"captures long-range interactions between atoms. Experiments on molecular " +
		"property prediction benchmarks show that graph neural networks outperform " +
		"descriptor-based baselines."

	got := Extract(text, AlgorithmSingleRank, 15)
	if len(got) == 0 {
		t.Fatal("Extract returned no terms")
	}

	var hasGraphPhrase bool
	for term := range got {
		if strings.Contains(term, "graph neural") {
			hasGraphPhrase = true
		}
		if score := got[term]; score <= 0 {
			t.Errorf("term %q has non-positive score %v", term, score)
		}
	}
	if !hasGraphPhrase {
		t.Errorf("expected a graph neural phrase among terms, got %v", got)
	}
}

func TestExtractCapsTermCount(t *testing.T) {
	text := "alpha bravo. charlie delta. echo foxtrot. golf hotel. india juliet. " +
		"kilo lima. mike november. oscar papa. quebec romeo. sierra tango."

	got := Extract(text, AlgorithmYake, 5)
	if len(got) > 5 {
		t.Errorf("Extract returned %d terms, want at most 5", len(got))
	}
}

func TestExtractDeterministic(t *testing.T) {
	text := "Deep learning for protein structure prediction. Protein folding is a " +
		"grand challenge. Deep learning methods predict protein structure from sequence."

	first := Extract(text, AlgorithmSingleRank, 8)
	for i := 0; i < 5; i++ {
		again := Extract(text, AlgorithmSingleRank, 8)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %v vs %v", i, again, first)
		}
	}
}

func TestTokenizeStripsSocialNoise(t *testing.T) {
	tokens := tokenize("RT @friend check https://t.co/abc #quantum computing is wild 2024")

	for _, tok := range tokens {
		switch tok.text {
		case "rt", "friend", "2024":
			t.Errorf("noise token %q survived tokenization", tok.text)
		case "https", "co", "abc":
			t.Errorf("url fragment %q survived tokenization", tok.text)
		}
	}

	var hasQuantum bool
	for _, tok := range tokens {
		if tok.text == "quantum" {
			hasQuantum = true
		}
	}
	if !hasQuantum {
		t.Errorf("hashtag term lost its word: tokens = %+v", tokens)
	}
}

func TestPhrasesBreakOnStopwordsAndSentences(t *testing.T) {
	tokens := tokenize("neural networks for vision. reinforcement learning")

	seen := make(map[string]bool)
	for _, p := range phrases(tokens) {
		seen[phraseText(p)] = true
	}

	for _, want := range []string{"neural networks", "vision", "reinforcement learning"} {
		if !seen[want] {
			t.Errorf("missing phrase %q, got %v", want, seen)
		}
	}
	for _, reject := range []string{"networks for vision", "vision reinforcement"} {
		if seen[reject] {
			t.Errorf("phrase %q crosses a stopword or sentence boundary", reject)
		}
	}
}

func TestPhrasesCapLength(t *testing.T) {
	tokens := tokenize("convolutional neural network image classifier benchmark")
	for _, p := range phrases(tokens) {
		if len(p) > maxPhraseLen {
			t.Errorf("phrase %q has %d words, cap is %d", phraseText(p), len(p), maxPhraseLen)
		}
	}
}
