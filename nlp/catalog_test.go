package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRespondPicksFromIntentTemplates(t *testing.T) {
	c := NewCatalog(map[string][]string{
		"greeting": {"Hello!", "Hi there!", "Hey!"},
	})

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		response := c.Respond("greeting")
		assert.Contains(t, []string{"Hello!", "Hi there!", "Hey!"}, response)
		seen[response] = true
	}
	// 100 uniform draws over 3 templates hitting only one would be
	// astronomically unlikely.
	assert.Greater(t, len(seen), 1)
}

func TestRespondFallsBackForUnknownIntent(t *testing.T) {
	c := NewCatalog(map[string][]string{"greeting": {"Hello!"}})
	assert.Equal(t, FallbackResponse, c.Respond("no_such_intent"))
}

func TestEmptyTemplateListBehavesAsAbsent(t *testing.T) {
	c := NewCatalog(map[string][]string{"hollow": {}})
	assert.Equal(t, FallbackResponse, c.Respond("hollow"))
	assert.Equal(t, 0, c.Size())
}
