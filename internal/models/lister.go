package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/slotrans/internal/translation"
)

// Lister handles listing available translation models
type Lister struct {
	apiKey string
	client *openai.Client
	out    io.Writer
}

// NewLister creates a new model lister writing to out. The OpenAI part is
// skipped when apiKey is empty.
func NewLister(apiKey string, out io.Writer) *Lister {
	return NewListerWithConfig(apiKey, openai.DefaultConfig(apiKey), out)
}

// NewListerWithConfig creates a lister with a custom OpenAI client config.
func NewListerWithConfig(apiKey string, cfg openai.ClientConfig, out io.Writer) *Lister {
	return &Lister{
		apiKey: apiKey,
		client: openai.NewClientWithConfig(cfg),
		out:    out,
	}
}

// ListAvailableModels prints the registered backends and the OpenAI chat
// models available for the API key.
func (l *Lister) ListAvailableModels(ctx context.Context) error {
	fmt.Fprintln(l.out, "Translation models:")
	for _, m := range translation.Models() {
		name := string(m.Name)
		if len(m.Aliases) > 0 {
			name += " (" + strings.Join(m.Aliases, ", ") + ")"
		}
		fmt.Fprintf(l.out, "  %-28s %s\n", name, m.Description)
	}

	if l.apiKey == "" {
		fmt.Fprintln(l.out, "\nSet OPENAI_API_KEY or translation.openai_key in .slotrans.yaml to list OpenAI chat models.")
		return nil
	}

	chatModels, err := l.ChatModels(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(l.out, "\nOpenAI chat models (for --model openai --openai-model):")
	if len(chatModels) == 0 {
		fmt.Fprintln(l.out, "  No chat models found")
	}
	for _, model := range chatModels {
		fmt.Fprintf(l.out, "  %s\n", model)
	}
	return nil
}

// ChatModels returns the sorted ids of the GPT and chat models.
func (l *Lister) ChatModels(ctx context.Context) ([]string, error) {
	models, err := l.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	var chatModels []string
	for _, model := range models.Models {
		id := model.ID
		if strings.Contains(id, "tts") || strings.Contains(id, "audio") ||
			strings.Contains(id, "realtime") || strings.Contains(id, "transcribe") {
			continue
		}
		if strings.Contains(id, "gpt") || strings.Contains(id, "chat") {
			chatModels = append(chatModels, id)
		}
	}
	sort.Strings(chatModels)
	return chatModels, nil
}
