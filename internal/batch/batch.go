package batch

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Job is one dataset to translate.
type Job struct {
	Input string
	// Output is empty when the default output path should be used.
	Output string
}

// ReadBatchFile reads translation jobs from a file and returns Job slice
// Supports formats:
// - Input only: "weather.json" (output path derived from the target language)
// - With output: "weather.json = weather_fr.json"
// Lines starting with '#' are comments. Relative paths are resolved
// against the directory of the batch file.
func ReadBatchFile(fs afero.Fs, filename string) ([]Job, error) {
	content, err := afero.ReadFile(fs, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	dir := filepath.Dir(filename)
	var jobs []Job

	for n, line := range splitLines(string(content)) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		input, output := line, ""
		if i := strings.Index(line, "="); i >= 0 {
			input = strings.TrimSpace(line[:i])
			output = strings.TrimSpace(line[i+1:])
		}
		if input == "" {
			return nil, fmt.Errorf("%s:%d: missing input file", filename, n+1)
		}

		job := Job{Input: resolve(dir, input)}
		if output != "" {
			job.Output = resolve(dir, output)
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// splitLines splits a string by newlines, dropping carriage returns
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.Split(s, "\n")
}
