package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockBackend mocks a translation backend. It is safe for concurrent use.
type MockBackend struct {
	// BackendName is returned by Name, "mock" when empty.
	BackendName string
	// Translations maps input text to output text.
	Translations map[string]string
	// Errors maps input text to an error returned on every call.
	Errors map[string]error
	// FailFirst makes the first n calls for a text return FailErr.
	FailFirst map[string]int
	FailErr   error
	// Transform computes the output for texts not in Translations.
	// The default returns the text unchanged.
	Transform func(string) string
	// Delay is waited (honouring ctx) before answering.
	Delay time.Duration

	mu    sync.Mutex
	calls []string
	seen  map[string]int
}

// Name returns the backend name
func (m *MockBackend) Name() string {
	if m.BackendName == "" {
		return "mock"
	}
	return m.BackendName
}

// Translate mocks translating text
func (m *MockBackend) Translate(ctx context.Context, text, fromLang, toLang string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, fmt.Sprintf("%s (%s->%s)", text, fromLang, toLang))
	if m.seen == nil {
		m.seen = make(map[string]int)
	}
	m.seen[text]++
	attempt := m.seen[text]
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(m.Delay):
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if n, ok := m.FailFirst[text]; ok && attempt <= n {
		return "", m.FailErr
	}
	if err, ok := m.Errors[text]; ok {
		return "", err
	}
	if translation, ok := m.Translations[text]; ok {
		return translation, nil
	}
	if m.Transform != nil {
		return m.Transform(text), nil
	}
	return text, nil
}

// Calls returns all recorded calls in order.
func (m *MockBackend) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the total number of Translate calls.
func (m *MockBackend) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// CallsFor returns how often text was requested.
func (m *MockBackend) CallsFor(text string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen[text]
}
