package nlp

import "math/rand"

// FallbackResponse is returned for intents the catalog has no entry for.
const FallbackResponse = "I'm not sure how to respond to that."

// Catalog maps intent names to canned response templates. Templates may
// carry placeholders like {time}; substitution is the caller's job.
type Catalog struct {
	intents map[string][]string
}

// NewCatalog copies the intent -> templates mapping. Intents with no
// templates behave as if absent.
func NewCatalog(intents map[string][]string) *Catalog {
	copied := make(map[string][]string, len(intents))
	for name, responses := range intents {
		if len(responses) == 0 {
			continue
		}
		copied[name] = append([]string(nil), responses...)
	}
	return &Catalog{intents: copied}
}

// Respond picks a template for the intent uniformly at random. Repeat calls
// for the same intent may return different strings.
func (c *Catalog) Respond(intent string) string {
	responses, ok := c.intents[intent]
	if !ok {
		return FallbackResponse
	}
	return responses[rand.Intn(len(responses))]
}

// Templates returns the raw template list for an intent, for callers that
// need to inspect rather than pick.
func (c *Catalog) Templates(intent string) []string {
	return append([]string(nil), c.intents[intent]...)
}

// Size returns the number of intents with at least one template.
func (c *Catalog) Size() int {
	return len(c.intents)
}
