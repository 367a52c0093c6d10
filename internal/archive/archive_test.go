package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestArchiveFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	cachePath := "/cache/cache_google-neural_en_fr.json"
	if err := afero.WriteFile(fs, cachePath, []byte(`{"two":"deux"}`), 0644); err != nil {
		t.Fatalf("Failed to create cache file: %v", err)
	}

	archived, err := ArchiveFile(fs, cachePath)
	if err != nil {
		t.Fatalf("ArchiveFile failed: %v", err)
	}

	// Check that the cache file no longer exists
	if _, err := fs.Stat(cachePath); !os.IsNotExist(err) {
		t.Error("Cache file still exists after archiving")
	}

	if filepath.Dir(archived) != "/cache/archive" {
		t.Errorf("Archived into %s, want /cache/archive", filepath.Dir(archived))
	}

	// Verify name format: cache_google-neural_en_fr-YYYYMMDD-HHMMSS.json
	name := filepath.Base(archived)
	if !strings.HasPrefix(name, "cache_google-neural_en_fr-") || !strings.HasSuffix(name, ".json") {
		t.Errorf("Unexpected archive name: %s", name)
	}

	content, err := afero.ReadFile(fs, archived)
	if err != nil {
		t.Fatalf("Archived file not readable: %v", err)
	}
	if string(content) != `{"two":"deux"}` {
		t.Errorf("Archived content = %s", content)
	}
}

func TestArchiveFileTwice(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/cache/cache.db"

	var archived []string
	for i := 0; i < 2; i++ {
		if err := afero.WriteFile(fs, path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		a, err := ArchiveFile(fs, path)
		if err != nil {
			t.Fatalf("ArchiveFile %d failed: %v", i, err)
		}
		archived = append(archived, a)
	}

	if archived[0] == archived[1] {
		t.Errorf("Second archive overwrote the first: %s", archived[0])
	}
	entries, err := afero.ReadDir(fs, "/cache/archive")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 archived files, got %d", len(entries))
	}
}

func TestArchiveFileNotExist(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := ArchiveFile(fs, "/nonexistent/cache.json")
	if err == nil {
		t.Error("Expected error for non-existent file")
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Expected 'does not exist' error, got: %v", err)
	}
}
