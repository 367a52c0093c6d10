package processor

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"codeberg.org/snonux/slotrans/internal/dataset"
	"codeberg.org/snonux/slotrans/internal/logger"
	"codeberg.org/snonux/slotrans/internal/realign"
	"codeberg.org/snonux/slotrans/internal/translation"
)

// ErrTooFewIntents rejects a dataset before any translation work starts.
var ErrTooFewIntents = errors.New("dataset has too few intents")

// Options configures a Translator.
type Options struct {
	SourceLang string `validate:"required"`
	TargetLang string `validate:"required"`
	// MinIntents rejects smaller datasets, 0 accepts everything.
	MinIntents int `validate:"gte=0"`
	// Workers is the number of utterances of one intent translated in parallel.
	Workers int `validate:"gte=1"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Translator translates whole datasets for one language pair. It owns its
// cache and time statistics; two Translators must not share a cache file.
type Translator struct {
	backend translation.Backend
	cache   *translation.Cache
	stats   *translation.TimeStats
	engine  *realign.Engine
	opts    Options
	log     logger.Logger
}

// NewTranslator creates a Translator. The cache must record its misses into
// stats for the statistics file to be complete; stats may be nil.
func NewTranslator(backend translation.Backend, cache *translation.Cache, stats *translation.TimeStats,
	engine *realign.Engine, opts Options, log logger.Logger) (*Translator, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, &translation.ConfigError{Field: "options", Err: err}
	}
	if backend == nil {
		return nil, &translation.ConfigError{Field: "backend", Err: errors.New("no backend")}
	}
	if cache == nil {
		cache = translation.NewTranslationCache(nil, stats)
	}
	if engine == nil {
		engine = realign.New(nil, nil)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Translator{
		backend: backend,
		cache:   cache,
		stats:   stats,
		engine:  engine,
		opts:    opts,
		log:     log.With("source", opts.SourceLang, "target", opts.TargetLang),
	}, nil
}

// Cache returns the translator's cache.
func (t *Translator) Cache() *translation.Cache { return t.cache }

// TranslateDataset returns a translated copy of ds with Language set to the
// target language. The source dataset is never modified. Phrase failures
// and unplaced slots are collected in the report and do not fail the run;
// only invalid input and context cancellation do. Cache and statistics
// are flushed before returning, also after cancellation.
func (t *Translator) TranslateDataset(ctx context.Context, ds *dataset.Dataset) (out *dataset.Dataset, report *Report, err error) {
	if n := len(ds.Intents); n < t.opts.MinIntents {
		return nil, nil, fmt.Errorf("%w: %d, need at least %d", ErrTooFewIntents, n, t.opts.MinIntents)
	}
	if err := ds.Validate(); err != nil {
		return nil, nil, err
	}

	defer func() {
		if ferr := t.Flush(); ferr != nil && err == nil {
			err = ferr
		}
	}()

	hits, misses := t.cache.Stats()
	report = &Report{}
	out = ds.Clone()
	out.Language = t.opts.TargetLang

	if err := t.TranslateEntities(ctx, out, report); err != nil {
		return nil, report, err
	}
	for _, name := range out.IntentNames() {
		if err := t.translateIntent(ctx, name, out.Intents[name], report); err != nil {
			return nil, report, err
		}
	}

	h, m := t.cache.Stats()
	report.CacheHits = h - hits
	report.CacheMisses = m - misses
	return out, report, nil
}

// TranslateEntities translates every entity value and synonym of ds in
// place. A value that fails to translate keeps its source text.
func (t *Translator) TranslateEntities(ctx context.Context, ds *dataset.Dataset, report *Report) error {
	for _, name := range ds.EntityNames() {
		entity := ds.Entities[name]
		if entity == nil {
			continue
		}
		for i := range entity.Data {
			entry := &entity.Data[i]
			value, err := t.translateValue(ctx, entry.Value, report)
			if err != nil {
				return err
			}
			entry.Value = value
			for j, syn := range entry.Synonyms {
				if entry.Synonyms[j], err = t.translateValue(ctx, syn, report); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (t *Translator) translateValue(ctx context.Context, phrase string, report *Report) (string, error) {
	out, err := t.translate(ctx, phrase)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		report.addFailed(phrase, err)
		return phrase, nil
	}
	report.EntityValues++
	return out, nil
}

func (t *Translator) translate(ctx context.Context, phrase string) (string, error) {
	out, err := t.cache.GetOrTranslate(ctx, phrase, t.backend, t.opts.SourceLang, t.opts.TargetLang)
	if err != nil {
		t.log.Warn("translation failed", "phrase", phrase, "err", err)
		return "", err
	}
	t.log.Debug("translated", "phrase", phrase, "translation", out)
	return out, nil
}

// utteranceResult is the outcome of one utterance.
type utteranceResult struct {
	utterance  dataset.Utterance
	unassigned []realign.Slot
	failed     []FailedPhrase
}

func (t *Translator) translateIntent(ctx context.Context, name string, intent *dataset.Intent, report *Report) error {
	if intent == nil {
		return nil
	}
	results := make([]utteranceResult, len(intent.Utterances))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.opts.Workers)
	for i := range intent.Utterances {
		g.Go(func() error {
			res, err := t.translateUtterance(gctx, intent.Utterances[i])
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, res := range results {
		intent.Utterances[i] = res.utterance
		report.Utterances++
		report.Failed = append(report.Failed, res.failed...)
		for _, s := range res.unassigned {
			report.Unassigned = append(report.Unassigned, UnassignedSlot{Intent: name, Utterance: i, Slot: s})
			t.log.Info("slot not placed",
				"intent", name, "utterance", i, "slot_name", s.SlotName,
				"entity", s.Entity, "id", s.ID, "text", s.Text, "translated", s.Translated)
		}
	}
	return nil
}

// TranslateUtterance translates one utterance and realigns its slots. It
// returns the slots that could not be placed. Only context cancellation
// is returned as error; when the full text fails to translate the source
// utterance is returned unchanged.
func (t *Translator) TranslateUtterance(ctx context.Context, u dataset.Utterance) (dataset.Utterance, []realign.Slot, error) {
	res, err := t.translateUtterance(ctx, u)
	return res.utterance, res.unassigned, err
}

func (t *Translator) translateUtterance(ctx context.Context, u dataset.Utterance) (utteranceResult, error) {
	var res utteranceResult

	text := u.Text()
	translated, err := t.translate(ctx, text)
	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		res.failed = append(res.failed, FailedPhrase{Phrase: text, Err: err})
		res.utterance = copyUtterance(u)
		return res, nil
	}

	chunks := u.Slots()
	slots := make([]realign.Slot, len(chunks))
	for i, c := range chunks {
		slots[i] = realign.FromChunk(c)
		tr, err := t.translate(ctx, c.Text)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.failed = append(res.failed, FailedPhrase{Phrase: c.Text, Err: err})
			continue
		}
		slots[i].Translated = tr
	}

	res.utterance, res.unassigned = t.engine.Align(translated, slots)
	return res, nil
}

func copyUtterance(u dataset.Utterance) dataset.Utterance {
	out := dataset.Utterance{Data: make([]dataset.Chunk, len(u.Data))}
	copy(out.Data, u.Data)
	realign.SetRanges(&out)
	return out
}

// Flush saves the cache and the time statistics.
func (t *Translator) Flush() error {
	var errs []error
	if err := t.cache.Save(); err != nil {
		errs = append(errs, fmt.Errorf("saving cache: %w", err))
	} else if loc := t.cache.Location(); loc != "" {
		t.log.Info("cache saved", "path", loc, "entries", t.cache.Len())
	}
	if err := t.stats.Save(); err != nil {
		errs = append(errs, fmt.Errorf("saving time stats: %w", err))
	}
	return errors.Join(errs...)
}
