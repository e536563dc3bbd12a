package nlp

import (
	"fmt"
	"strings"
)

// Vectorizer turns free text into a TF-IDF vector over a closed vocabulary.
// Tokenization is lowercase whitespace splitting, nothing more: no stemming
// and no punctuation stripping, matching how the intent model was trained.
type Vectorizer struct {
	vocab []string
	index map[string]int
	idf   []float64
}

// NewVectorizer builds a Vectorizer from an ordered vocabulary and its
// index-aligned IDF weights.
func NewVectorizer(vocab []string, idf []float64) (*Vectorizer, error) {
	if len(vocab) != len(idf) {
		return nil, fmt.Errorf("vocabulary has %d tokens but idf has %d weights", len(vocab), len(idf))
	}

	index := make(map[string]int, len(vocab))
	for i, token := range vocab {
		index[token] = i
	}

	return &Vectorizer{
		vocab: append([]string(nil), vocab...),
		index: index,
		idf:   append([]float64(nil), idf...),
	}, nil
}

// Vectorize computes the TF-IDF vector for text. Out-of-vocabulary tokens
// contribute nothing but still count toward the term-frequency denominator.
func (v *Vectorizer) Vectorize(text string) []float64 {
	vector := make([]float64, len(v.vocab))

	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return vector
	}

	counts := make(map[string]int, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}

	total := float64(len(tokens))
	for token, count := range counts {
		if i, ok := v.index[token]; ok {
			vector[i] = float64(count) / total * v.idf[i]
		}
	}

	return vector
}

// VocabSize returns the vocabulary (and vector) length.
func (v *Vectorizer) VocabSize() int {
	return len(v.vocab)
}
