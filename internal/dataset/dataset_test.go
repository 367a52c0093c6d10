package dataset

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

const sampleJSON = `{
  "language": "en",
  "entities": {
    "city": {
      "data": [{"value": "paris", "synonyms": ["city of light"]}],
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
        ]}
      ]
    }
  }
}`

func TestParse(t *testing.T) {
	d, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if d.Language != "en" {
		t.Errorf("Language = %q, want en", d.Language)
	}
	if got := d.UtteranceCount(); got != 1 {
		t.Errorf("UtteranceCount() = %d, want 1", got)
	}

	utt := d.Intents["bookTable"].Utterances[0]
	if utt.Text() != "book a table for two" {
		t.Errorf("Text() = %q", utt.Text())
	}

	slots := utt.Slots()
	if len(slots) != 2 {
		t.Fatalf("Slots() returned %d chunks, want 2", len(slots))
	}
	if slots[0].SlotName != "object" || slots[1].SlotName != "count" {
		t.Errorf("unexpected slots: %+v", slots)
	}
}

func TestParse_EmptyMaps(t *testing.T) {
	d, err := Parse([]byte(`{"language": "en"}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if d.Entities == nil || d.Intents == nil {
		t.Error("Parse should initialise empty entity and intent maps")
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte(`{"intents": [`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestChunk_IsSlot(t *testing.T) {
	tests := []struct {
		chunk Chunk
		want  bool
	}{
		{Chunk{Text: "book"}, false},
		{Chunk{Text: "two", SlotName: "count"}, true},
		{Chunk{Text: "paris", Entity: "city"}, true},
	}
	for _, tt := range tests {
		if got := tt.chunk.IsSlot(); got != tt.want {
			t.Errorf("IsSlot(%+v) = %v, want %v", tt.chunk, got, tt.want)
		}
	}
}

func TestClone_IsDeep(t *testing.T) {
	d, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	c := d.Clone()
	c.Language = "fr"
	c.Entities["city"].Data[0].Value = "lyon"
	c.Intents["bookTable"].Utterances[0].Data[1].Text = "tableau"

	if d.Language != "en" {
		t.Error("clone shares Language")
	}
	if d.Entities["city"].Data[0].Value != "paris" {
		t.Error("clone shares entity data")
	}
	if d.Intents["bookTable"].Utterances[0].Data[1].Text != "table" {
		t.Error("clone shares utterance chunks")
	}
}

func TestValidate(t *testing.T) {
	d, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("Validate() on valid dataset: %v", err)
	}

	d.Intents["empty"] = &Intent{Utterances: []Utterance{{}}}
	if err := d.Validate(); err == nil {
		t.Error("expected validation error for utterance without chunks")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	d, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if err := Save(fs, "/data/out.json", d); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(fs, "/data/out.json")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Intents["bookTable"].Utterances[0].Text() != "book a table for two" {
		t.Errorf("round trip lost utterance text")
	}
	if !loaded.Entities["city"].UseSynonyms {
		t.Errorf("round trip lost use_synonyms")
	}

	raw, _ := afero.ReadFile(fs, "/data/out.json")
	if strings.Contains(string(raw), `"range"`) {
		t.Errorf("chunks without range should omit the field: %s", raw)
	}
}

const snipsJSON = `{
  "snips_nlu_version": "0.1",
  "language": "en",
  "entities": {
    "snips/datetime": {},
    "city": {
      "data": [{"value": "paris", "synonyms": []}],
      "use_synonyms": false,
      "automatically_extensible": true,
      "matching_strictness": 0.8
    }
  },
  "intents": {
    "searchFlight": {
      "utterances": [
        {"data": [
          {"text": "fly to "},
          {"text": "paris", "entity": "city", "slot_name": "destination"}
        ]}
      ],
      "description": "flight search"
    }
  }
}`

func TestSaveLoad_KeepsStructure(t *testing.T) {
	fs := afero.NewMemMapFs()
	d, err := Parse([]byte(snipsJSON))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !d.Entities["snips/datetime"].IsBuiltin() {
		t.Error("snips/datetime should be a builtin entity")
	}
	if d.Entities["city"].IsBuiltin() {
		t.Error("city should be a custom entity")
	}

	if err := Save(fs, "/data/out.json", d.Clone()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	raw, err := afero.ReadFile(fs, "/data/out.json")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	var want, got map[string]any
	if err := json.Unmarshal([]byte(snipsJSON), &want); err != nil {
		t.Fatalf("Unmarshal input: %v", err)
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Unmarshal output: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("saved dataset differs from input\ngot:  %s\nwant: %s", raw, snipsJSON)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(afero.NewMemMapFs(), "/nope.json"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNames_Sorted(t *testing.T) {
	d := &Dataset{
		Entities: map[string]*Entity{"b": {}, "a": {}},
		Intents:  map[string]*Intent{"z": {}, "m": {}},
	}
	if got := d.EntityNames(); got[0] != "a" || got[1] != "b" {
		t.Errorf("EntityNames() = %v", got)
	}
	if got := d.IntentNames(); got[0] != "m" || got[1] != "z" {
		t.Errorf("IntentNames() = %v", got)
	}
}
