package translation

import (
	"context"
	"strings"
)

// Dummy upper-cases its input. It never fails and needs no network.
type Dummy struct{}

// Translate implements Backend.
func (Dummy) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return strings.ToUpper(text), nil
}

// Name implements Backend.
func (Dummy) Name() string { return string(ModelDummy) }

// Noop returns its input unchanged.
type Noop struct{}

// Translate implements Backend.
func (Noop) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return text, nil
}

// Name implements Backend.
func (Noop) Name() string { return string(ModelNoop) }
