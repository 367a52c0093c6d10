package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/afero"

	"codeberg.org/snonux/slotrans/internal/dataset"
	"codeberg.org/snonux/slotrans/internal/logger"
	"codeberg.org/snonux/slotrans/internal/realign"
	"codeberg.org/snonux/slotrans/internal/stem"
	"codeberg.org/snonux/slotrans/internal/testutil"
	"codeberg.org/snonux/slotrans/internal/translation"
)

func frenchBackend() *testutil.MockBackend {
	return &testutil.MockBackend{
		Translations: map[string]string{
			"book a table for two": "réserver une table pour deux",
			"table":                "table",
			"two":                  "deux",
			"desk":                 "bureau",
			"I want to eat":        "je veux manger",
		},
	}
}

func loadFixture(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Parse([]byte(testutil.BookTableDataset))
	if err != nil {
		t.Fatalf("Failed to parse fixture: %v", err)
	}
	return ds
}

func newTestTranslator(t *testing.T, backend translation.Backend, cache *translation.Cache, opts Options) *Translator {
	t.Helper()
	if opts.SourceLang == "" {
		opts.SourceLang = "en"
	}
	if opts.TargetLang == "" {
		opts.TargetLang = "fr"
	}
	if opts.Workers == 0 {
		opts.Workers = 1
	}
	tr, err := NewTranslator(backend, cache, nil, realign.New(nil, stem.ForLanguage(opts.TargetLang)), opts, logger.Nop())
	if err != nil {
		t.Fatalf("NewTranslator failed: %v", err)
	}
	return tr
}

func TestTranslateDataset(t *testing.T) {
	backend := frenchBackend()
	tr := newTestTranslator(t, backend, nil, Options{})
	ds := loadFixture(t)

	out, report, err := tr.TranslateDataset(context.Background(), ds)
	if err != nil {
		t.Fatalf("TranslateDataset failed: %v", err)
	}

	if out.Language != "fr" {
		t.Errorf("Language = %q, want fr", out.Language)
	}

	entry := out.Entities["object"].Data[0]
	if entry.Value != "table" || len(entry.Synonyms) != 1 || entry.Synonyms[0] != "bureau" {
		t.Errorf("Unexpected entity entry %+v", entry)
	}
	if !out.Entities["object"].UseSynonyms || !out.Entities["object"].AutomaticallyExtensible {
		t.Error("Entity flags not carried over")
	}

	utterances := out.Intents["bookTable"].Utterances
	if len(utterances) != 2 {
		t.Fatalf("Expected 2 utterances, got %d", len(utterances))
	}
	want := []dataset.Chunk{
		{Text: "réserver une "},
		{Text: "table", Entity: "object", SlotName: "object"},
		{Text: " pour "},
		{Text: "deux", Entity: "snips/number", SlotName: "count"},
	}
	got := utterances[0].Data
	if len(got) != len(want) {
		t.Fatalf("Got %d chunks, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i].Text != want[i].Text || got[i].SlotName != want[i].SlotName || got[i].Entity != want[i].Entity {
			t.Errorf("Chunk %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if text := utterances[1].Text(); text != "je veux manger" {
		t.Errorf("Second utterance = %q", text)
	}

	if report.Utterances != 2 || report.EntityValues != 2 {
		t.Errorf("Report counts = %d utterances, %d values", report.Utterances, report.EntityValues)
	}
	if len(report.Unassigned) != 0 || len(report.Failed) != 0 {
		t.Errorf("Unexpected report problems: %+v", report)
	}

	// source untouched
	if ds.Language != "en" {
		t.Errorf("Source language changed to %q", ds.Language)
	}
	if text := ds.Intents["bookTable"].Utterances[0].Text(); text != "book a table for two" {
		t.Errorf("Source utterance changed to %q", text)
	}
	if ds.Entities["object"].Data[0].Synonyms[0] != "desk" {
		t.Error("Source synonyms changed")
	}
}

func TestTranslateDatasetIdempotent(t *testing.T) {
	backend := frenchBackend()
	tr := newTestTranslator(t, backend, nil, Options{})
	ds := loadFixture(t)
	ctx := context.Background()

	first, _, err := tr.TranslateDataset(ctx, ds)
	if err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	calls := backend.CallCount()

	second, report, err := tr.TranslateDataset(ctx, ds)
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if backend.CallCount() != calls {
		t.Errorf("Warm cache issued %d additional calls", backend.CallCount()-calls)
	}
	if report.CacheMisses != 0 {
		t.Errorf("Second run reported %d misses", report.CacheMisses)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("Outputs differ:\n%s\n%s", a, b)
	}
}

func TestTranslateDatasetSlotFailure(t *testing.T) {
	backend := frenchBackend()
	backend.Errors = map[string]error{"two": translation.Permanent("mock", errors.New("quota"))}
	tr := newTestTranslator(t, backend, nil, Options{})

	out, report, err := tr.TranslateDataset(context.Background(), loadFixture(t))
	if err != nil {
		t.Fatalf("Slot failure must not fail the run: %v", err)
	}

	if len(report.Unassigned) != 1 {
		t.Fatalf("Expected 1 unassigned slot, got %+v", report.Unassigned)
	}
	u := report.Unassigned[0]
	if u.Intent != "bookTable" || u.Utterance != 0 || u.Slot.SlotName != "count" {
		t.Errorf("Unexpected unassigned slot %+v", u)
	}
	if len(report.Failed) != 1 || report.Failed[0].Phrase != "two" {
		t.Errorf("Expected failed phrase two, got %+v", report.Failed)
	}

	got := out.Intents["bookTable"].Utterances[0]
	if got.Text() != "réserver une table pour deux" {
		t.Errorf("Translated text = %q", got.Text())
	}
	if n := len(got.Slots()); n != 1 {
		t.Errorf("Expected 1 placed slot, got %d", n)
	}
}

func TestTranslateDatasetTextFailure(t *testing.T) {
	backend := frenchBackend()
	backend.Errors = map[string]error{"book a table for two": translation.Permanent("mock", errors.New("bad"))}
	tr := newTestTranslator(t, backend, nil, Options{})

	out, report, err := tr.TranslateDataset(context.Background(), loadFixture(t))
	if err != nil {
		t.Fatalf("TranslateDataset failed: %v", err)
	}

	got := out.Intents["bookTable"].Utterances[0]
	if got.Text() != "book a table for two" {
		t.Errorf("Expected source utterance to be kept, got %q", got.Text())
	}
	if len(report.Failed) != 1 || report.Failed[0].Phrase != "book a table for two" {
		t.Errorf("Unexpected failed phrases %+v", report.Failed)
	}
}

func TestTranslateDatasetEntityFailure(t *testing.T) {
	backend := frenchBackend()
	backend.Errors = map[string]error{"desk": translation.Permanent("mock", errors.New("bad"))}
	tr := newTestTranslator(t, backend, nil, Options{})

	out, report, err := tr.TranslateDataset(context.Background(), loadFixture(t))
	if err != nil {
		t.Fatalf("TranslateDataset failed: %v", err)
	}
	if syn := out.Entities["object"].Data[0].Synonyms[0]; syn != "desk" {
		t.Errorf("Failed synonym should keep source text, got %q", syn)
	}
	if report.EntityValues != 1 {
		t.Errorf("EntityValues = %d, want 1", report.EntityValues)
	}
}

func TestTranslateDatasetTooFewIntents(t *testing.T) {
	backend := frenchBackend()
	tr := newTestTranslator(t, backend, nil, Options{MinIntents: 2})

	_, _, err := tr.TranslateDataset(context.Background(), loadFixture(t))
	if !errors.Is(err, ErrTooFewIntents) {
		t.Fatalf("Expected ErrTooFewIntents, got %v", err)
	}
	if backend.CallCount() != 0 {
		t.Errorf("Rejected dataset issued %d calls", backend.CallCount())
	}
}

func TestTranslateDatasetInvalid(t *testing.T) {
	backend := frenchBackend()
	tr := newTestTranslator(t, backend, nil, Options{})
	ds := loadFixture(t)
	ds.Intents["empty"] = &dataset.Intent{Utterances: []dataset.Utterance{{}}}

	if _, _, err := tr.TranslateDataset(context.Background(), ds); err == nil {
		t.Fatal("Expected validation error")
	}
	if backend.CallCount() != 0 {
		t.Errorf("Invalid dataset issued %d calls", backend.CallCount())
	}
}

func TestTranslateDatasetCancelledFlushes(t *testing.T) {
	fs := afero.NewMemMapFs()
	cache := translation.NewTranslationCache(translation.NewJSONStore(fs, "/cache.json"), nil)
	cache.Add("seen", "vu")
	tr := newTestTranslator(t, frenchBackend(), cache, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := tr.TranslateDataset(ctx, loadFixture(t))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	data, err := afero.ReadFile(fs, "/cache.json")
	if err != nil {
		t.Fatalf("Cache not flushed: %v", err)
	}
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil || entries["seen"] != "vu" {
		t.Errorf("Unexpected flushed cache %s (%v)", data, err)
	}
}

func TestTranslateDatasetParallel(t *testing.T) {
	ds := &dataset.Dataset{
		Language: "en",
		Entities: map[string]*dataset.Entity{},
		Intents:  map[string]*dataset.Intent{"count": {}},
	}
	for i := 0; i < 40; i++ {
		ds.Intents["count"].Utterances = append(ds.Intents["count"].Utterances, dataset.Utterance{
			Data: []dataset.Chunk{
				{Text: "give me "},
				{Text: fmt.Sprintf("item%d", i%7), Entity: "item", SlotName: "item"},
			},
		})
	}

	run := func(workers int) ([]byte, int) {
		backend := &testutil.MockBackend{Transform: func(s string) string { return "<" + s + ">" }}
		tr := newTestTranslator(t, backend, nil, Options{Workers: workers})
		out, _, err := tr.TranslateDataset(context.Background(), ds)
		if err != nil {
			t.Fatalf("TranslateDataset with %d workers failed: %v", workers, err)
		}
		data, _ := json.Marshal(out)
		return data, backend.CallCount()
	}

	sequential, seqCalls := run(1)
	parallel, parCalls := run(8)
	if string(sequential) != string(parallel) {
		t.Error("Parallel output differs from sequential output")
	}
	if seqCalls != parCalls {
		t.Errorf("Backend calls differ: %d sequential, %d parallel", seqCalls, parCalls)
	}
}

func TestTranslateUtterance(t *testing.T) {
	tr := newTestTranslator(t, frenchBackend(), nil, Options{})
	ds := loadFixture(t)

	u, unassigned, err := tr.TranslateUtterance(context.Background(), ds.Intents["bookTable"].Utterances[0])
	if err != nil {
		t.Fatalf("TranslateUtterance failed: %v", err)
	}
	if len(unassigned) != 0 {
		t.Errorf("Unexpected unassigned %+v", unassigned)
	}
	if u.Text() != "réserver une table pour deux" {
		t.Errorf("Text = %q", u.Text())
	}
}

func TestNewTranslatorInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"missing source", Options{TargetLang: "fr", Workers: 1}},
		{"missing target", Options{SourceLang: "en", Workers: 1}},
		{"zero workers", Options{SourceLang: "en", TargetLang: "fr"}},
		{"negative min intents", Options{SourceLang: "en", TargetLang: "fr", Workers: 1, MinIntents: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTranslator(translation.Noop{}, nil, nil, nil, tt.opts, nil)
			if !translation.IsConfigError(err) {
				t.Errorf("Expected ConfigError, got %v", err)
			}
		})
	}
}
