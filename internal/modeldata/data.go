package modeldata

import "github.com/nulzo/model-radar/internal/core/domain"

// KnownPrices maps model-name fragments to list prices per million tokens (USD).
// Keys are matched case-insensitively as substrings of a model identifier.
var KnownPrices = map[string]domain.Price{
	// OpenAI
	"gpt-4o":        {Input: 2.50, Output: 10.00},
	"gpt-4o-mini":   {Input: 0.15, Output: 0.60},
	"gpt-4-turbo":   {Input: 10.00, Output: 30.00},
	"gpt-3.5-turbo": {Input: 0.50, Output: 1.50},

	// Anthropic
	"claude-3-5-sonnet": {Input: 3.00, Output: 15.00},
	"claude-3-opus":     {Input: 15.00, Output: 75.00},
	"claude-3-haiku":    {Input: 0.25, Output: 1.25},

	// Gemini
	"gemini-1.5-pro":   {Input: 3.50, Output: 10.50},
	"gemini-1.5-flash": {Input: 0.075, Output: 0.30},

	// Meta (Groq list prices)
	"llama-3.1-70b-versatile": {Input: 0.59, Output: 0.79},
	"llama-3.1-8b-instant":    {Input: 0.05, Output: 0.08},
}
