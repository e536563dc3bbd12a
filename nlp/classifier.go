package nlp

import (
	"fmt"
	"math"
)

// IntentModel scores a feature vector into an intent label with a
// confidence. The implementation is an externally trained model and is
// treated as opaque by callers.
type IntentModel interface {
	Score(vector []float64) (label string, confidence float64, err error)
}

// LinearClassifier is a multinomial linear model: one weight row and
// intercept per label, softmax over the decision scores. Confidence is the
// maximum posterior probability.
type LinearClassifier struct {
	labels     []string
	weights    [][]float64
	intercepts []float64
}

// NewLinearClassifier validates the weight matrix shape against the label
// list. Every weight row must have featureDim columns.
func NewLinearClassifier(labels []string, weights [][]float64, intercepts []float64, featureDim int) (*LinearClassifier, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("classifier needs at least one label")
	}
	if len(weights) != len(labels) || len(intercepts) != len(labels) {
		return nil, fmt.Errorf("classifier has %d labels but %d weight rows and %d intercepts",
			len(labels), len(weights), len(intercepts))
	}
	for i, row := range weights {
		if len(row) != featureDim {
			return nil, fmt.Errorf("weight row %d has %d columns, want %d", i, len(row), featureDim)
		}
	}

	return &LinearClassifier{
		labels:     append([]string(nil), labels...),
		weights:    weights,
		intercepts: append([]float64(nil), intercepts...),
	}, nil
}

// Score computes softmax posteriors and returns the argmax label.
func (c *LinearClassifier) Score(vector []float64) (string, float64, error) {
	if len(vector) != len(c.weights[0]) {
		return "", 0, fmt.Errorf("feature vector has %d dimensions, model expects %d",
			len(vector), len(c.weights[0]))
	}

	scores := make([]float64, len(c.labels))
	maxScore := math.Inf(-1)
	for i, row := range c.weights {
		z := c.intercepts[i]
		for j, w := range row {
			z += w * vector[j]
		}
		scores[i] = z
		if z > maxScore {
			maxScore = z
		}
	}

	// Softmax shifted by the max score for numeric stability.
	var sum float64
	for i, z := range scores {
		scores[i] = math.Exp(z - maxScore)
		sum += scores[i]
	}

	best := 0
	for i := range scores {
		scores[i] /= sum
		if scores[i] > scores[best] {
			best = i
		}
	}

	return c.labels[best], scores[best], nil
}

// Labels returns the label set in model order.
func (c *LinearClassifier) Labels() []string {
	return append([]string(nil), c.labels...)
}
