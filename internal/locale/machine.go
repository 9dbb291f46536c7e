package locale

import (
	"context"
	"fmt"
	"html"
	"sync"

	"cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// TextTranslator translates free text coming from the backend.
type TextTranslator interface {
	Translate(ctx context.Context, text string, target Lang) string
}

// MachineTranslator wraps the Cloud Translation API. Results are memoized per
// target language; failures return the input unchanged.
type MachineTranslator struct {
	client *translate.Client
	cache  sync.Map
}

// NewMachineTranslator creates a client authenticated with an API key.
func NewMachineTranslator(ctx context.Context, apiKey string) (*MachineTranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("translate api key is empty")
	}
	client, err := translate.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating translate client: %w", err)
	}
	return &MachineTranslator{client: client}, nil
}

// Translate implements TextTranslator.
func (m *MachineTranslator) Translate(ctx context.Context, text string, target Lang) string {
	if text == "" || target == English {
		return text
	}
	key := string(target) + "|" + text
	if v, ok := m.cache.Load(key); ok {
		return v.(string)
	}

	resp, err := m.client.Translate(ctx, []string{text}, target.Tag(), &translate.Options{
		Source: language.English,
		Format: translate.Text,
	})
	if err != nil || len(resp) == 0 {
		return text
	}

	out := html.UnescapeString(resp[0].Text)
	m.cache.Store(key, out)
	return out
}

// Close releases the underlying client.
func (m *MachineTranslator) Close() error {
	return m.client.Close()
}
