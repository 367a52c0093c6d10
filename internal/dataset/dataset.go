package dataset

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mohae/deepcopy"
	"github.com/spf13/afero"

	"codeberg.org/snonux/slotrans/internal"
)

// Range is a character offset span in an utterance, end exclusive.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Chunk is a contiguous piece of an utterance.
type Chunk struct {
	Text     string `json:"text"`
	Entity   string `json:"entity,omitempty"`
	SlotName string `json:"slot_name,omitempty"`
	ID       string `json:"id,omitempty"`
	Range    *Range `json:"range,omitempty"`
}

// IsSlot reports whether the chunk is annotated.
func (c Chunk) IsSlot() bool {
	return c.SlotName != "" || c.Entity != ""
}

// SameSlot reports whether two chunks carry the same entity and slot name.
func (c Chunk) SameSlot(o Chunk) bool {
	return c.Entity == o.Entity && c.SlotName == o.SlotName
}

// Utterance is one annotated training example.
type Utterance struct {
	Data []Chunk `json:"data" validate:"required,min=1"`
}

// Text assembles the full utterance text from its chunks.
func (u Utterance) Text() string {
	var b strings.Builder
	for _, c := range u.Data {
		b.WriteString(c.Text)
	}
	return b.String()
}

// Slots returns the annotated chunks in order.
func (u Utterance) Slots() []Chunk {
	var slots []Chunk
	for _, c := range u.Data {
		if c.IsSlot() {
			slots = append(slots, c)
		}
	}
	return slots
}

// EntityEntry is a reference value and its synonyms.
type EntityEntry struct {
	Value    string   `json:"value" validate:"required"`
	Synonyms []string `json:"synonyms"`
}

// Entity is an entity of the dataset. Custom entities carry Data; builtin
// entities such as "snips/datetime" are empty references.
type Entity struct {
	Data                    []EntityEntry `json:"data" validate:"dive"`
	UseSynonyms             bool          `json:"use_synonyms"`
	AutomaticallyExtensible bool          `json:"automatically_extensible"`

	// Extra holds keys slotrans does not interpret, written back unchanged.
	Extra map[string]json.RawMessage `json:"-"`
}

var entityKeys = []string{"data", "use_synonyms", "automatically_extensible"}

// IsBuiltin reports whether the entity is a reference without values.
func (e *Entity) IsBuiltin() bool {
	return e.Data == nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Entity) UnmarshalJSON(data []byte) error {
	type plain Entity
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data, entityKeys...)
	if err != nil {
		return err
	}
	*e = Entity(p)
	e.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler. A builtin entity is written
// without the custom entity fields, so {} stays {}.
func (e Entity) MarshalJSON() ([]byte, error) {
	type plain Entity
	var drop []string
	if e.IsBuiltin() {
		drop = []string{"data"}
		if !e.UseSynonyms {
			drop = append(drop, "use_synonyms")
		}
		if !e.AutomaticallyExtensible {
			drop = append(drop, "automatically_extensible")
		}
	}
	return marshalWithExtra(plain(e), e.Extra, drop...)
}

// Intent holds the utterances of one intent.
type Intent struct {
	Utterances []Utterance `json:"utterances" validate:"dive"`

	// Extra holds keys slotrans does not interpret, written back unchanged.
	Extra map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (in *Intent) UnmarshalJSON(data []byte) error {
	type plain Intent
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data, "utterances")
	if err != nil {
		return err
	}
	*in = Intent(p)
	in.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler.
func (in Intent) MarshalJSON() ([]byte, error) {
	type plain Intent
	return marshalWithExtra(plain(in), in.Extra)
}

// Dataset is a complete training set.
type Dataset struct {
	Language string             `json:"language"`
	Entities map[string]*Entity `json:"entities" validate:"dive"`
	Intents  map[string]*Intent `json:"intents" validate:"dive"`

	// Extra holds top level keys such as snips_nlu_version, written back
	// unchanged.
	Extra map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Dataset) UnmarshalJSON(data []byte) error {
	type plain Dataset
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data, "language", "entities", "intents")
	if err != nil {
		return err
	}
	*d = Dataset(p)
	d.Extra = extra
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Dataset) MarshalJSON() ([]byte, error) {
	type plain Dataset
	return marshalWithExtra(plain(d), d.Extra)
}

// splitExtra returns the keys of the JSON object data that are not known.
func splitExtra(data []byte, known ...string) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(raw, k)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}

// marshalWithExtra encodes v, removes the drop keys and adds extra keys
// that v does not set itself.
func marshalWithExtra(v any, extra map[string]json.RawMessage, drop ...string) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 && len(drop) == 0 {
		return data, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for _, k := range drop {
		delete(fields, k)
	}
	for k, raw := range extra {
		if _, ok := fields[k]; !ok {
			fields[k] = raw
		}
	}
	return json.Marshal(fields)
}

// EntityNames returns entity names in sorted order.
func (d *Dataset) EntityNames() []string {
	return sortedKeys(d.Entities)
}

// IntentNames returns intent names in sorted order.
func (d *Dataset) IntentNames() []string {
	return sortedKeys(d.Intents)
}

// UtteranceCount returns the number of utterances across all intents.
func (d *Dataset) UtteranceCount() int {
	n := 0
	for _, in := range d.Intents {
		if in != nil {
			n += len(in.Utterances)
		}
	}
	return n
}

// Clone returns a deep copy so callers can translate without touching the
// source dataset.
func (d *Dataset) Clone() *Dataset {
	return deepcopy.Copy(d).(*Dataset)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks structural constraints: every utterance has at least one
// chunk and every entity entry has a value.
func (d *Dataset) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("invalid dataset: %w", err)
	}
	return nil
}

// Load reads a dataset from a JSON file.
func Load(fs afero.Fs, path string) (*Dataset, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	return Parse(data)
}

// Parse decodes a dataset from JSON.
func Parse(data []byte) (*Dataset, error) {
	var d Dataset
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	if d.Entities == nil {
		d.Entities = make(map[string]*Entity)
	}
	if d.Intents == nil {
		d.Intents = make(map[string]*Intent)
	}
	return &d, nil
}

// Save writes the dataset as indented JSON, replacing path atomically.
func Save(fs afero.Fs, path string, d *Dataset) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}
	return internal.WriteFileAtomic(fs, path, append(data, '\n'))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
