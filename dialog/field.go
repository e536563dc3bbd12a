package dialog

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Str1k3rFl0/Afira-ChatBotAI/models"
)

// FieldType is the closed set of answer types a schema field can have.
type FieldType int

const (
	Numeric FieldType = iota
	Binary
	Categorical
)

// CategoryOption is one canonical label for a categorical field. Matching is
// substring containment against Label (case-insensitive) plus exact-match
// Aliases ("m" for Male). Options are checked in declaration order.
type CategoryOption struct {
	Label   string
	Aliases []string
}

// FieldSpec is one slot of a risk-dialog schema. Schema order is both the
// prompting order and the feature order fed to the risk model.
type FieldSpec struct {
	Name    string
	Prompt  string
	Type    FieldType
	Options []CategoryOption
}

// Affirmative and negative keyword sets for binary answers, matched by
// substring in this order. Includes the Romanian variants the shipped
// models were collected with.
var (
	affirmativeWords = []string{"yes", "y", "da", "true", "1"}
	negativeWords    = []string{"no", "n", "nu", "false", "0"}
)

var decimalToken = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)$`)

// Parse interprets raw user input against the field's type. The boolean is
// false when the input doesn't parse; categorical fields always parse
// because unmatched input falls back to its title-cased form.
func (f FieldSpec) Parse(input string) (models.Value, bool) {
	text := strings.ToLower(strings.TrimSpace(input))

	switch f.Type {
	case Binary:
		for _, word := range affirmativeWords {
			if strings.Contains(text, word) {
				return models.Value{Number: 1}, true
			}
		}
		for _, word := range negativeWords {
			if strings.Contains(text, word) {
				return models.Value{Number: 0}, true
			}
		}
		return models.Value{}, false

	case Numeric:
		for _, token := range strings.Fields(text) {
			if !decimalToken.MatchString(token) {
				continue
			}
			if n, err := strconv.ParseFloat(token, 64); err == nil {
				return models.Value{Number: n}, true
			}
		}
		return models.Value{}, false

	case Categorical:
		for _, opt := range f.Options {
			if strings.Contains(text, strings.ToLower(opt.Label)) {
				return models.Value{Text: opt.Label, IsText: true}, true
			}
			for _, alias := range opt.Aliases {
				if text == alias {
					return models.Value{Text: opt.Label, IsText: true}, true
				}
			}
		}
		return models.Value{Text: cases.Title(language.Und).String(text), IsText: true}, true
	}

	return models.Value{}, false
}
