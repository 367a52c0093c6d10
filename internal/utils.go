package internal

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Version is the slotrans release, overridden via -ldflags at build time.
var Version = "0.3.0"

// SanitizeFilename creates a safe filename from a string
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		if isAlphaNumeric(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// CacheFileName returns the per model and language pair cache file name,
// e.g. cache_google-neural_en_fr.json.
func CacheFileName(model, source, target string) string {
	return fmt.Sprintf("cache_%s_%s_%s.json",
		SanitizeFilename(model), SanitizeFilename(source), SanitizeFilename(target))
}

// StatsFileName returns the time statistics file for a base name,
// e.g. times_google-neural_en_fr.json.
func StatsFileName(base, model, source, target string) string {
	return fmt.Sprintf("%s_%s_%s_%s.json", base,
		SanitizeFilename(model), SanitizeFilename(source), SanitizeFilename(target))
}

// RoundTripFileName derives the output of a source->pivot->source run from
// the input path: data.json becomes data_<model>_<s>_<t>_<s>.json.
func RoundTripFileName(input, model, source, pivot string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return fmt.Sprintf("%s_%s_%s_%s_%s.json", base,
		SanitizeFilename(model), source, pivot, source)
}

// TranslatedFileName derives a default output path for a target language:
// data.json becomes data_fr.json.
func TranslatedFileName(input, target string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return fmt.Sprintf("%s_%s.json", base, SanitizeFilename(target))
}

// isAlphaNumeric checks if a rune is an ASCII letter or digit
func isAlphaNumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
