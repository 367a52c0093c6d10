package translation

import (
	"context"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// transportError classifies a failure that happened before any HTTP status
// was received. Cancellation is permanent, everything else is retryable.
func transportError(ctx context.Context, backend string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Permanent(backend, fmt.Errorf("%w: %w", ctxErr, err))
	}
	return Retryable(backend, fmt.Errorf("%w: %w", ErrServiceUnavailable, err))
}

// languageName returns the English name of an ISO code for LLM prompts,
// falling back to the code itself.
func languageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}

func llmSystemPrompt(sourceLang, targetLang string) string {
	return fmt.Sprintf("You translate short voice assistant queries from %s to %s. "+
		"Keep names, numbers and dates intact. Respond with only the translation, "+
		"without quotes, notes or alternatives.",
		languageName(sourceLang), languageName(targetLang))
}
