package processor

import (
	"fmt"
	"io"

	"codeberg.org/snonux/slotrans/internal/realign"
	"codeberg.org/snonux/slotrans/internal/review"
)

// UnassignedSlot is a slot that could not be placed on the translation of
// its utterance.
type UnassignedSlot struct {
	Intent    string
	Utterance int
	Slot      realign.Slot
}

// FailedPhrase is a phrase the backend did not translate.
type FailedPhrase struct {
	Phrase string
	Err    error
}

// Report summarizes one dataset translation.
type Report struct {
	Utterances   int
	EntityValues int
	Unassigned   []UnassignedSlot
	Failed       []FailedPhrase
	CacheHits    int64
	CacheMisses  int64
}

func (r *Report) addFailed(phrase string, err error) {
	r.Failed = append(r.Failed, FailedPhrase{Phrase: phrase, Err: err})
}

// Print writes a human readable summary to w.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintf(w, "Utterances translated: %d\n", r.Utterances)
	fmt.Fprintf(w, "Entity values translated: %d\n", r.EntityValues)
	fmt.Fprintf(w, "Cache hits: %d, misses: %d\n", r.CacheHits, r.CacheMisses)
	if len(r.Unassigned) > 0 {
		fmt.Fprintf(w, "Unassigned slots: %d\n", len(r.Unassigned))
		for _, u := range r.Unassigned {
			fmt.Fprintf(w, "  %s #%d: %s=%q (translated %q)\n",
				u.Intent, u.Utterance, u.Slot.SlotName, u.Slot.Text, u.Slot.Translated)
		}
	}
	if len(r.Failed) > 0 {
		fmt.Fprintf(w, "Failed phrases: %d\n", len(r.Failed))
		for _, f := range r.Failed {
			fmt.Fprintf(w, "  %q: %v\n", f.Phrase, f.Err)
		}
	}
}

// AddTo appends the unassigned slots and failed phrases to a review export.
func (r *Report) AddTo(g *review.Generator, datasetName string) {
	for _, u := range r.Unassigned {
		g.AddRow(review.Row{
			Dataset:    datasetName,
			Kind:       review.KindUnassigned,
			Intent:     u.Intent,
			Utterance:  u.Utterance,
			SlotName:   u.Slot.SlotName,
			Entity:     u.Slot.Entity,
			ID:         u.Slot.ID,
			Text:       u.Slot.Text,
			Translated: u.Slot.Translated,
		})
	}
	for _, f := range r.Failed {
		g.AddRow(review.Row{
			Dataset:   datasetName,
			Kind:      review.KindFailed,
			Utterance: -1,
			Text:      f.Phrase,
			Error:     f.Err.Error(),
		})
	}
}
