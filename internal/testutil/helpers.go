package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// BookTableDataset is a small English dataset with two slots per utterance.
const BookTableDataset = `{
  "language": "en",
  "entities": {
    "object": {
      "data": [{"value": "table", "synonyms": ["desk"]}],
      "use_synonyms": true,
      "automatically_extensible": true
    }
  },
  "intents": {
    "bookTable": {
      "utterances": [
        {"data": [
          {"text": "book a "},
          {"text": "table", "entity": "object", "slot_name": "object"},
          {"text": " for "},
          {"text": "two", "entity": "snips/number", "slot_name": "count"}
        ]},
        {"data": [{"text": "I want to eat"}]}
      ]
    }
  }
}`

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileContains checks if a file contains a substring
func AssertFileContains(t *testing.T, path string, substring string) {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if !strings.Contains(string(content), substring) {
		t.Errorf("File %s does not contain expected substring: %q", path, substring)
	}
}
