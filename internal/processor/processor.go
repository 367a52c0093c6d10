package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"codeberg.org/snonux/slotrans/internal"
	"codeberg.org/snonux/slotrans/internal/archive"
	"codeberg.org/snonux/slotrans/internal/batch"
	"codeberg.org/snonux/slotrans/internal/cli"
	"codeberg.org/snonux/slotrans/internal/dataset"
	"codeberg.org/snonux/slotrans/internal/logger"
	"codeberg.org/snonux/slotrans/internal/realign"
	"codeberg.org/snonux/slotrans/internal/review"
	"codeberg.org/snonux/slotrans/internal/stem"
	"codeberg.org/snonux/slotrans/internal/tokenize"
	"codeberg.org/snonux/slotrans/internal/translation"
)

// stemCacheSize bounds the memoized stems per translator.
const stemCacheSize = 8192

// BackendFactory builds a translation backend, translation.New in production.
type BackendFactory func(cfg *translation.Config) (translation.Backend, error)

// StoreOpener opens the cache store for a path, translation.OpenStore in
// production.
type StoreOpener func(fs afero.Fs, path string) (translation.Store, error)

// Processor handles the main dataset processing logic
type Processor struct {
	flags      *cli.Flags
	fs         afero.Fs
	log        logger.Logger
	out        io.Writer
	newBackend BackendFactory
	openStore  StoreOpener
}

// NewProcessor creates a new dataset processor working on the OS filesystem
func NewProcessor(flags *cli.Flags, log logger.Logger) *Processor {
	if log == nil {
		log = logger.Nop()
	}
	return &Processor{
		flags:      flags,
		fs:         afero.NewOsFs(),
		log:        log,
		out:        os.Stdout,
		newBackend: translation.New,
		openStore:  translation.OpenStore,
	}
}

// WithFs replaces the filesystem, used by tests.
func (p *Processor) WithFs(fs afero.Fs) *Processor {
	p.fs = fs
	return p
}

// WithOutput replaces the writer summaries are printed to.
func (p *Processor) WithOutput(w io.Writer) *Processor {
	p.out = w
	return p
}

// WithBackendFactory replaces the backend factory.
func (p *Processor) WithBackendFactory(f BackendFactory) *Processor {
	p.newBackend = f
	return p
}

// WithStoreOpener replaces the cache store opener.
func (p *Processor) WithStoreOpener(f StoreOpener) *Processor {
	p.openStore = f
	return p
}

// modelName returns the canonical name of the configured model for file
// names, the raw flag value when it does not resolve.
func (p *Processor) modelName() string {
	if m, err := translation.ParseModel(p.flags.Model); err == nil {
		return string(m)
	}
	return p.flags.Model
}

// CachePath returns the cache file for a language pair: --cache when set,
// otherwise a per model and pair file in the cache directory.
func (p *Processor) CachePath(sourceLang, targetLang string) string {
	if p.flags.CacheFile != "" {
		return p.flags.CacheFile
	}
	if p.flags.CacheDir == "" {
		return ""
	}
	return filepath.Join(p.flags.CacheDir, internal.CacheFileName(p.modelName(), sourceLang, targetLang))
}

// NewTranslator wires backend, cache, statistics and realignment engine
// for one language pair. Configuration errors surface here, before any
// request is sent. The caller closes the translator's cache.
func (p *Processor) NewTranslator(sourceLang, targetLang, cachePath, statsPath string) (*Translator, error) {
	backend, err := p.newBackend(p.flags.BackendConfig(sourceLang, targetLang))
	if err != nil {
		return nil, err
	}

	if p.flags.ArchiveCache && cachePath != "" {
		if _, err := p.fs.Stat(cachePath); err == nil {
			archived, err := archive.ArchiveFile(p.fs, cachePath)
			if err != nil {
				return nil, err
			}
			fmt.Fprintf(p.out, "Cache archived to: %s\n", archived)
		}
	}

	store, err := p.openStore(p.fs, cachePath)
	if err != nil {
		return nil, err
	}
	var stats *translation.TimeStats
	if statsPath != "" {
		stats = translation.NewTimeStats(p.fs, statsPath)
	}

	cache, err := translation.LoadCache(store, stats)
	var loadErr *translation.LoadError
	if errors.As(err, &loadErr) {
		p.log.Warn("could not load translation cache, starting empty", "path", loadErr.Location, "err", loadErr.Err)
	}

	stemmer, err := stem.NewCached(stem.ForLanguage(targetLang), stemCacheSize)
	if err != nil {
		cache.Close()
		return nil, err
	}
	if !stem.Supported(targetLang) {
		p.log.Info("no stemmer for language, matching lower-cased tokens", "language", targetLang)
	}

	tr, err := NewTranslator(backend, cache, stats, realign.New(tokenize.Words{}, stemmer), Options{
		SourceLang: sourceLang,
		TargetLang: targetLang,
		MinIntents: p.flags.MinIntents,
		Workers:    p.flags.Workers,
	}, p.log)
	if err != nil {
		cache.Close()
		return nil, err
	}
	return tr, nil
}

// translateFile loads input, translates it and saves the result to output.
func (p *Processor) translateFile(ctx context.Context, tr *Translator, input, output string) (*Report, error) {
	ds, err := dataset.Load(p.fs, input)
	if err != nil {
		return nil, err
	}
	out, report, err := tr.TranslateDataset(ctx, ds)
	if err != nil {
		return report, err
	}
	if err := dataset.Save(p.fs, output, out); err != nil {
		return report, fmt.Errorf("failed to save translated dataset: %w", err)
	}
	return report, nil
}

// ProcessSingle translates one dataset file. An empty output derives the
// path from input and target language.
func (p *Processor) ProcessSingle(ctx context.Context, input, sourceLang, targetLang, output string) (*Report, error) {
	if output == "" {
		output = internal.TranslatedFileName(input, targetLang)
	}

	tr, err := p.NewTranslator(sourceLang, targetLang, p.CachePath(sourceLang, targetLang), p.flags.StatsFile)
	if err != nil {
		return nil, err
	}
	defer tr.Cache().Close()

	fmt.Fprintf(p.out, "\nTranslating %s (%s -> %s)\n", input, sourceLang, targetLang)
	report, err := p.translateFile(ctx, tr, input, output)
	if err != nil {
		return report, err
	}

	report.Print(p.out)
	if g := p.newReview(); g != nil {
		report.AddTo(g, input)
		if err := p.saveReview(g); err != nil {
			return report, err
		}
	}
	fmt.Fprintf(p.out, "\nDone! Translated dataset saved to: %s\n", output)
	return report, nil
}

// ProcessBatch translates every dataset listed in the batch file with one
// shared translator. A failed job is reported and the others continue.
func (p *Processor) ProcessBatch(ctx context.Context, sourceLang, targetLang string) error {
	jobs, err := batch.ReadBatchFile(p.fs, p.flags.BatchFile)
	if err != nil {
		return err
	}

	tr, err := p.NewTranslator(sourceLang, targetLang, p.CachePath(sourceLang, targetLang), p.flags.StatsFile)
	if err != nil {
		return err
	}
	defer tr.Cache().Close()

	g := p.newReview()

	// Track statistics
	processedCount := 0
	errorCount := 0
	unassignedCount := 0

	for i, job := range jobs {
		output := job.Output
		if output == "" {
			output = internal.TranslatedFileName(job.Input, targetLang)
		}

		fmt.Fprintf(p.out, "\nProcessing %d/%d: %s\n", i+1, len(jobs), job.Input)
		report, err := p.translateFile(ctx, tr, job.Input, output)
		if err != nil {
			if ctx.Err() != nil {
				if g != nil {
					if err := p.saveReview(g); err != nil {
						p.log.Error("could not save review rows", "path", p.flags.ReviewFile, "err", err)
					}
				}
				return ctx.Err()
			}
			p.log.Error("job failed", "input", job.Input, "err", err)
			fmt.Fprintf(os.Stderr, "Error processing '%s': %v\n", job.Input, err)
			errorCount++
			// Continue with next job
			continue
		}

		processedCount++
		unassignedCount += len(report.Unassigned)
		if g != nil {
			report.AddTo(g, job.Input)
		}
		fmt.Fprintf(p.out, "  Saved: %s (%d utterances, %d unassigned slots)\n",
			output, report.Utterances, len(report.Unassigned))
	}

	// Print summary
	hits, misses := tr.Cache().Stats()
	fmt.Fprintf(p.out, "\n=== Batch Processing Summary ===\n")
	fmt.Fprintf(p.out, "Total datasets: %d\n", len(jobs))
	fmt.Fprintf(p.out, "Processed: %d\n", processedCount)
	fmt.Fprintf(p.out, "Unassigned slots: %d\n", unassignedCount)
	fmt.Fprintf(p.out, "Cache hits: %d, misses: %d\n", hits, misses)
	if errorCount > 0 {
		fmt.Fprintf(p.out, "Errors: %d\n", errorCount)
	}
	fmt.Fprintf(p.out, "================================\n")

	if g != nil {
		return p.saveReview(g)
	}
	return nil
}

// RoundTrip translates input from sourceLang to pivotLang and back. Each
// direction keeps its own cache in the cache directory and its own time
// statistics next to the input. It returns the path of the result.
func (p *Processor) RoundTrip(ctx context.Context, input, sourceLang, pivotLang string) (string, error) {
	model := p.modelName()
	base := strings.TrimSuffix(input, filepath.Ext(input))
	if p.flags.CacheDir == "" {
		return "", &translation.ConfigError{Field: "cache.dir", Err: errors.New("round trips need a cache directory")}
	}

	ds, err := dataset.Load(p.fs, input)
	if err != nil {
		return "", err
	}

	g := p.newReview()
	current := ds
	for _, pair := range [][2]string{{sourceLang, pivotLang}, {pivotLang, sourceLang}} {
		from, to := pair[0], pair[1]
		cachePath := filepath.Join(p.flags.CacheDir, internal.CacheFileName(model, from, to))
		statsPath := internal.StatsFileName(base, model, from, to)

		tr, err := p.NewTranslator(from, to, cachePath, statsPath)
		if err != nil {
			return "", err
		}

		fmt.Fprintf(p.out, "\nTranslating %s -> %s\n", from, to)
		next, report, err := tr.TranslateDataset(ctx, current)
		tr.Cache().Close()
		if err != nil {
			return "", err
		}
		report.Print(p.out)
		if g != nil {
			report.AddTo(g, fmt.Sprintf("%s (%s->%s)", input, from, to))
		}
		current = next
	}

	output := internal.RoundTripFileName(input, model, sourceLang, pivotLang)
	if err := dataset.Save(p.fs, output, current); err != nil {
		return "", fmt.Errorf("failed to save round trip dataset: %w", err)
	}
	if g != nil {
		if err := p.saveReview(g); err != nil {
			return output, err
		}
	}
	fmt.Fprintf(p.out, "\nDone! Round trip saved to: %s\n", output)
	return output, nil
}

// newReview returns a review export when --review is set, nil otherwise.
func (p *Processor) newReview() *review.Generator {
	if p.flags.ReviewFile == "" {
		return nil
	}
	return review.NewGenerator(&review.Options{OutputPath: p.flags.ReviewFile, IncludeHeaders: true})
}

func (p *Processor) saveReview(g *review.Generator) error {
	if err := g.GenerateCSV(p.fs); err != nil {
		return fmt.Errorf("failed to write review file: %w", err)
	}
	fmt.Fprintf(p.out, "Review file with %d rows saved to: %s\n", g.Len(), p.flags.ReviewFile)
	return nil
}
